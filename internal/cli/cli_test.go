package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/export"
	"github.com/bigkaa/repairshop-portal/internal/service"
)

// mockBackend — REST backend мастерской для команд repairctl.
type mockBackend struct {
	mu           sync.Mutex
	data         map[string]any
	bodies       map[string][]byte
	calls        map[string]int
	unauthorized map[string]bool
}

func newMockBackend(t *testing.T) (*mockBackend, string) {
	t.Helper()
	m := &mockBackend{
		data: map[string]any{
			"/worker/account/token": map[string]any{"token": "worker-token", "id": 7, "username": "ivanov", "role": "WORKER"},
			"/admin/account/token":  map[string]any{"token": "admin-token", "id": 1, "username": "admin", "role": "ADMIN"},
			"/worker/account/info":  map[string]any{"id": 7, "workerName": "Иванов", "specialty": "ENGINE"},
			"/worker/repair-order": []map[string]any{
				{"id": 42, "vehicleId": 3, "issue": "стук", "status": "ASSIGNED"},
			},
			"/admin/worker-settlements": []map[string]any{
				{"workerId": 7, "workerName": "Иванов", "settlementMonth": "2026-09", "baseSalary": 3000, "bonus": 450.5, "totalEarnings": 3450.5},
			},
		},
		bodies:       make(map[string][]byte),
		calls:        make(map[string]int),
		unauthorized: make(map[string]bool),
	}
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)
	return m, srv.URL
}

func (m *mockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.calls[r.URL.Path]++
	m.bodies[r.URL.Path] = body
	data := m.data[r.URL.Path]
	deny := m.unauthorized[r.URL.Path]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if deny {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 401, "message": "token expired"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (m *mockBackend) callCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// repairctl выполняет команду с отдельным деревом команд, как при
// новом запуске процесса.
func repairctl(t *testing.T, backend, sessionFile string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{
		"--backend", backend,
		"--session-file", sessionFile,
		"--log-level", "error",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLogin_PersistsSession(t *testing.T) {
	backend, url := newMockBackend(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")

	out, err := repairctl(t, url, sessionFile, "login", "--role", "worker", "-u", "ivanov", "-p", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "WORKER") {
		t.Errorf("вывод login = %q", out)
	}

	data, err := os.ReadFile(sessionFile)
	if err != nil {
		t.Fatalf("файл сессии не создан: %v", err)
	}
	if !strings.Contains(string(data), "userRole: WORKER") || !strings.Contains(string(data), "token: worker-token") {
		t.Errorf("файл сессии:\n%s", data)
	}

	// Новый запуск восстанавливает сессию из файла
	out, err = repairctl(t, url, sessionFile, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"role: WORKER", "userId: 7", "displayName: Иванов"} {
		if !strings.Contains(out, want) {
			t.Errorf("вывод whoami не содержит %q:\n%s", want, out)
		}
	}
	if backend.callCount("/worker/account/info") < 2 {
		t.Error("whoami должен перечитать профиль")
	}
}

func TestGuard_DeniesCommands(t *testing.T) {
	_, url := newMockBackend(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")

	if _, err := repairctl(t, url, sessionFile, "worker", "orders"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("без входа: ошибка = %v, ожидается ErrAccessDenied", err)
	}

	if _, err := repairctl(t, url, sessionFile, "login", "--role", "WORKER", "-u", "ivanov", "-p", "secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := repairctl(t, url, sessionFile, "admin", "users"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("мастер в admin: ошибка = %v, ожидается ErrAccessDenied", err)
	}
	if _, err := repairctl(t, url, sessionFile, "worker", "orders"); err != nil {
		t.Errorf("мастер в worker: %v", err)
	}
}

func TestWorker_AcceptAndReject(t *testing.T) {
	backend, url := newMockBackend(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	if _, err := repairctl(t, url, sessionFile, "login", "--role", "WORKER", "-u", "ivanov", "-p", "secret"); err != nil {
		t.Fatal(err)
	}

	out, err := repairctl(t, url, sessionFile, "worker", "accept", "42")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !strings.Contains(out, "Заказ 42") {
		t.Errorf("вывод accept = %q", out)
	}

	backend.mu.Lock()
	body := backend.bodies["/worker/repair-order/accept"]
	backend.mu.Unlock()
	var ref model.OrderRef
	if err := json.Unmarshal(body, &ref); err != nil || ref.OrderID != 42 {
		t.Errorf("тело accept = %s (ошибка %v)", body, err)
	}

	_, err = repairctl(t, url, sessionFile, "worker", "reject", "42")
	if !service.IsValidation(err) {
		t.Errorf("reject без причины: ошибка = %v, ожидается ошибка валидации", err)
	}
	if n := backend.callCount("/worker/repair-order/reject"); n != 0 {
		t.Errorf("reject без причины отправлен в backend %d раз", n)
	}

	if _, err := repairctl(t, url, sessionFile, "worker", "accept", "abc"); err == nil {
		t.Error("некорректный id должен давать ошибку")
	}
}

func TestUnauthorized_ClearsSessionFile(t *testing.T) {
	backend, url := newMockBackend(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	if _, err := repairctl(t, url, sessionFile, "login", "--role", "WORKER", "-u", "ivanov", "-p", "secret"); err != nil {
		t.Fatal(err)
	}

	backend.mu.Lock()
	backend.unauthorized["/worker/repair-order"] = true
	backend.mu.Unlock()

	if _, err := repairctl(t, url, sessionFile, "worker", "orders"); err == nil {
		t.Fatal("ожидалась ошибка 401")
	}
	if _, err := os.Stat(sessionFile); !os.IsNotExist(err) {
		t.Errorf("файл сессии должен быть удалён, stat: %v", err)
	}
	if _, err := repairctl(t, url, sessionFile, "worker", "orders"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("после 401: ошибка = %v, ожидается ErrAccessDenied", err)
	}
}

func TestLogout(t *testing.T) {
	_, url := newMockBackend(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	if _, err := repairctl(t, url, sessionFile, "login", "--role", "ADMIN", "-u", "admin", "-p", "secret"); err != nil {
		t.Fatal(err)
	}

	out, err := repairctl(t, url, sessionFile, "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(out, sessionFile) {
		t.Errorf("вывод logout = %q", out)
	}
	if _, err := os.Stat(sessionFile); !os.IsNotExist(err) {
		t.Errorf("файл сессии должен быть удалён, stat: %v", err)
	}
	if _, err := repairctl(t, url, sessionFile, "whoami"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("whoami после logout: ошибка = %v", err)
	}
}

func TestAdmin_ExportSettlements(t *testing.T) {
	_, url := newMockBackend(t)
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.yaml")
	if _, err := repairctl(t, url, sessionFile, "login", "--role", "ADMIN", "-u", "admin", "-p", "secret"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "settlements.xlsx")
	if _, err := repairctl(t, url, sessionFile, "admin", "settlements", "--year", "2026", "--month", "9", "--xlsx", path); err != nil {
		t.Fatalf("settlements --xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("строк = %d, ожидается 2", len(rows))
	}
	if rows[0][1] != "Мастер" {
		t.Errorf("заголовок = %q, ожидается перевод на русский", rows[0][1])
	}
	if rows[1][1] != "Иванов" {
		t.Errorf("мастер = %q", rows[1][1])
	}
}

func TestMissingBackend(t *testing.T) {
	t.Setenv("RP_BACKEND_URL", "")
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--session-file", filepath.Join(t.TempDir(), "s.yaml"), "whoami"})
	if err := cmd.Execute(); err == nil {
		t.Error("без --backend ожидалась ошибка")
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	err := printYAML(&buf, []model.RepairOrder{{ID: 42, Issue: "123", Status: "ASSIGNED"}})
	if err != nil {
		t.Fatalf("printYAML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"- id: 42", "status: ASSIGNED", `issue: "123"`} {
		if !strings.Contains(out, want) {
			t.Errorf("вывод не содержит %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Errorf("вывод в flow-стиле:\n%s", out)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", " 2 ", "30"})
	if err != nil || len(ids) != 3 || ids[2] != 30 {
		t.Errorf("parseIDs = %v, %v", ids, err)
	}
	for _, bad := range [][]string{{"0"}, {"-1"}, {"1", "x"}} {
		if _, err := parseIDs(bad); err == nil {
			t.Errorf("parseIDs(%v) принят", bad)
		}
	}
}
