package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	apihandlers "github.com/bigkaa/repairshop-portal/internal/api/handlers"
	"github.com/bigkaa/repairshop-portal/internal/export"
	"github.com/bigkaa/repairshop-portal/internal/guard"
	"github.com/bigkaa/repairshop-portal/internal/session"
	"github.com/bigkaa/repairshop-portal/internal/ui/handlers"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// testLogger создаёт логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeHealth — состояние проверок backend для /health/ready и SSE.
type fakeHealth map[string]bool

func (f fakeHealth) Health() map[string]bool { return f }

// mockBackend — REST backend мастерской: отвечает конвертом
// {success, data} и запоминает запросы.
type mockBackend struct {
	mu           sync.Mutex
	data         map[string]any
	bodies       map[string][]byte
	calls        map[string]int
	unauthorized map[string]bool
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		data: map[string]any{
			"/worker/account/token": map[string]any{"token": "worker-token", "id": 7, "username": "ivanov", "role": "WORKER"},
			"/admin/account/token":  map[string]any{"token": "admin-token", "id": 1, "username": "admin", "role": "ADMIN"},
			"/worker/account/info":  map[string]any{"id": 7, "workerName": "Иванов", "specialty": "ENGINE"},
			"/worker/repair-order": []map[string]any{
				{"id": 42, "vehicleId": 3, "repairType": "ENGINE", "description": "стук", "status": "ASSIGNED"},
			},
			"/admin/worker-settlements": []map[string]any{
				{"workerId": 7, "workerName": "Иванов", "settlementMonth": "2026-09", "baseSalary": 3000, "bonus": 450.5, "totalEarnings": 3450.5, "settlementDate": "2026-10-01"},
			},
		},
		bodies:       make(map[string][]byte),
		calls:        make(map[string]int),
		unauthorized: make(map[string]bool),
	}
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

func (m *mockBackend) body(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[path]
}

func (m *mockBackend) deny(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unauthorized[path] = true
}

// newPortal поднимает портал поверх mock backend и возвращает клиента
// с cookie jar, который не следует редиректам.
func newPortal(t *testing.T) (*httptest.Server, *http.Client, *mockBackend) {
	t.Helper()
	logger := testLogger()

	backend := newMockBackend()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	langs, err := i18n.NewLanguages([]string{"en", "ru", "zh"})
	if err != nil {
		t.Fatalf("NewLanguages: %v", err)
	}
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, langs, logger); err != nil {
		t.Fatalf("LoadFromEmbedFS: %v", err)
	}

	storage, err := session.NewCookieStorage("test-key", false)
	if err != nil {
		t.Fatalf("NewCookieStorage: %v", err)
	}
	build := workspace.NewBuilder(backendSrv.URL, backendSrv.Client(), storage, logger)
	registry := workspace.NewRegistry(16, time.Hour, build, false, logger)

	health := fakeHealth{"repair-backend": true}
	router := NewRouter(Deps{
		Languages: langs,
		Registry:  registry,
		Guard:     guard.NewTable(guard.DefaultRoutes()),
		Health:    apihandlers.NewHealthHandler(health),
		Auth:      handlers.NewAuthHandler(langs, registry, logger),
		User:      handlers.NewUserHandler(langs, logger),
		Worker:    handlers.NewWorkerHandler(langs, logger),
		Admin:     handlers.NewAdminHandler(langs, logger),
		Language:  handlers.NewLanguageHandler(langs),
		Events:    handlers.NewEventsHandler(health, 50*time.Millisecond, logger),
	}, logger)

	portal := httptest.NewServer(router)
	t.Cleanup(portal.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return portal, client, backend
}

// login выполняет вход через форму и проверяет переход на dashboard.
func login(t *testing.T, client *http.Client, base, username, roleName, home string) {
	t.Helper()
	resp, err := client.PostForm(base+"/login", url.Values{
		"username": {username},
		"password": {"secret"},
		"role":     {roleName},
	})
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /login: статус %d, ожидается 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != home {
		t.Fatalf("POST /login: Location = %q, ожидается %q", loc, home)
	}
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()
	resp, err := client.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_AnonymousRedirectedToLogin(t *testing.T) {
	portal, client, _ := newPortal(t)

	resp := get(t, client, portal.URL+"/worker/dashboard")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("статус = %d, ожидается 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location = %q, ожидается /login", loc)
	}
}

// workspaceID возвращает cookie рабочего пространства из cookie jar клиента.
func workspaceID(t *testing.T, client *http.Client, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == workspace.CookieName {
			return c.Value
		}
	}
	return ""
}

func TestRouter_LoginRotatesWorkspace(t *testing.T) {
	portal, client, _ := newPortal(t)

	get(t, client, portal.URL+"/login")
	before := workspaceID(t, client, portal.URL)
	if before == "" {
		t.Fatal("cookie рабочего пространства не выдана")
	}

	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")
	after := workspaceID(t, client, portal.URL)
	if after == "" || after == before {
		t.Fatalf("id пространства после входа = %q, до входа %q: ожидается новый", after, before)
	}

	// Клиент со старым id и без cookie сессии не получает доступ
	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse(portal.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: workspace.CookieName, Value: before}})
	stale := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp := get(t, stale, portal.URL+"/worker/dashboard")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("старый id: статус %d, ожидается 302 на /login", resp.StatusCode)
	}

	resp = get(t, client, portal.URL+"/worker/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("новый id: статус %d, ожидается 200", resp.StatusCode)
	}
}

func TestRouter_WorkerLoginAndRoleGuard(t *testing.T) {
	portal, client, backend := newPortal(t)
	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")

	resp := get(t, client, portal.URL+"/worker/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /worker/dashboard: статус %d, ожидается 200", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Иванов") {
		t.Error("dashboard не показывает имя мастера из профиля")
	}
	if backend.callCount("/worker/account/info") == 0 {
		t.Error("профиль мастера не загружен")
	}

	resp = get(t, client, portal.URL+"/admin/dashboard")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("GET /admin/dashboard мастером: статус %d, ожидается 302", resp.StatusCode)
	}
}

func TestRouter_WorkerAcceptOrder(t *testing.T) {
	portal, client, backend := newPortal(t)
	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")

	resp, err := client.PostForm(portal.URL+"/worker/orders/42/accept", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("статус = %d, ожидается 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/worker/orders?notice=notice.order_updated" {
		t.Errorf("Location = %q", loc)
	}

	var ref struct {
		OrderID int64 `json:"orderId"`
	}
	if err := json.Unmarshal(backend.body("/worker/repair-order/accept"), &ref); err != nil {
		t.Fatalf("тело запроса accept: %v", err)
	}
	if ref.OrderID != 42 {
		t.Errorf("orderId = %d, ожидается 42", ref.OrderID)
	}
}

func TestRouter_WorkerRejectWithoutReason(t *testing.T) {
	portal, client, backend := newPortal(t)
	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")

	resp, err := client.PostForm(portal.URL+"/worker/orders/42/reject", url.Values{"reason": {"  "}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("статус = %d, ожидается 400", resp.StatusCode)
	}
	if n := backend.callCount("/worker/repair-order/reject"); n != 0 {
		t.Errorf("backend вызван %d раз, ожидается 0", n)
	}
}

func TestRouter_BackendUnauthorizedLogsOut(t *testing.T) {
	portal, client, backend := newPortal(t)
	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")

	backend.deny("/worker/repair-order/accept")
	resp, err := client.PostForm(portal.URL+"/worker/orders/42/accept", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Fatalf("после 401 Location = %q, ожидается /login", loc)
	}

	resp = get(t, client, portal.URL+"/worker/orders")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("после выхода статус = %d, ожидается 302", resp.StatusCode)
	}
}

func TestRouter_AdminExportSettlements(t *testing.T) {
	portal, client, _ := newPortal(t)
	login(t, client, portal.URL, "admin", "ADMIN", "/admin/dashboard")

	resp := get(t, client, portal.URL+"/admin/settlements/export?year=2026&month=9")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != export.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "settlements-2026-09.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("строк = %d, ожидается 2 (заголовок и расчёт)", len(rows))
	}
	if rows[1][1] != "Иванов" {
		t.Errorf("мастер = %q, ожидается Иванов", rows[1][1])
	}
}

func TestRouter_SetLanguage(t *testing.T) {
	portal, client, _ := newPortal(t)

	req, _ := http.NewRequest(http.MethodGet, portal.URL+"/lang/ru", nil)
	req.Header.Set("Referer", "https://evil.example/login?notice=x")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("статус = %d, ожидается 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login?notice=x" {
		t.Errorf("Location = %q, ожидается /login?notice=x", loc)
	}
	if !hasCookie(resp, "lang", "ru") {
		t.Error("cookie lang=ru не установлена")
	}

	resp = get(t, client, portal.URL+"/lang/de")
	if hasCookie(resp, "lang", "de") {
		t.Error("недоступный язык не должен сохраняться")
	}
}

func hasCookie(resp *http.Response, name, value string) bool {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.Value == value {
			return true
		}
	}
	return false
}

func TestRouter_HealthWithoutWorkspace(t *testing.T) {
	portal, client, _ := newPortal(t)

	resp := get(t, client, portal.URL+"/health/live")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", resp.StatusCode)
	}
	if len(resp.Cookies()) > 0 {
		t.Error("служебный endpoint не должен создавать рабочее пространство")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("нет заголовка X-Request-ID")
	}

	resp = get(t, client, portal.URL+"/health/ready")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health/ready: статус %d, ожидается 200", resp.StatusCode)
	}
}

func TestRouter_EventsStream(t *testing.T) {
	portal, client, _ := newPortal(t)
	login(t, client, portal.URL, "ivanov", "WORKER", "/worker/dashboard")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, portal.URL+"/events", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if scanner.Text() == "event: backend" {
			if !scanner.Scan() {
				break
			}
			if data := scanner.Text(); !strings.Contains(data, "online") {
				t.Errorf("данные события = %q, ожидается online", data)
			}
			return
		}
	}
	t.Fatalf("событие backend не получено: %v", scanner.Err())
}

func TestRouter_UnknownPath(t *testing.T) {
	portal, client, _ := newPortal(t)

	resp := get(t, client, portal.URL+"/static/missing.css")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("статус = %d, ожидается 404", resp.StatusCode)
	}
}
