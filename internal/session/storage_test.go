package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// signedToken создаёт JWT с заданным exp.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ivan",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("подпись токена: %v", err)
	}
	return tok
}

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	fs := NewFileStorage(path)
	ctx := context.Background()

	snap, err := fs.Load(ctx)
	if err != nil || !snap.IsZero() {
		t.Fatalf("отсутствующий файл: %+v, %v", snap, err)
	}

	want := Snapshot{Token: "tok", Role: role.Worker, UserID: 12}
	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("Save вернул ошибку: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"token: tok", "userRole: WORKER", "id: 12"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("файл не содержит %q:\n%s", key, data)
		}
	}
	info, _ := os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("права файла = %o, ожидается 600", perm)
	}

	got, err := fs.Load(ctx)
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; ожидается %+v", got, err, want)
	}

	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("Clear вернул ошибку: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("файл сессии должен быть удалён")
	}
	if err := fs.Clear(ctx); err != nil {
		t.Errorf("повторный Clear не должен падать: %v", err)
	}
}

func TestFileStorage_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStorage(path).Load(context.Background()); err == nil {
		t.Error("ожидалась ошибка разбора")
	}
}

func TestCookieStorage_RoundTrip(t *testing.T) {
	cs, err := NewCookieStorage("test-key", false)
	if err != nil {
		t.Fatal(err)
	}

	want := Snapshot{Token: "tok", Role: role.Admin, UserID: 1}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := cs.Save(WithHTTP(context.Background(), rec, req), want); err != nil {
		t.Fatalf("Save вернул ошибку: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if !c.HttpOnly || c.MaxAge != CookieMaxAge {
		t.Errorf("cookie: HttpOnly=%v MaxAge=%d", c.HttpOnly, c.MaxAge)
	}
	if strings.Contains(c.Value, "tok") {
		t.Error("токен не должен храниться открытым текстом")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(c)
	got, err := cs.Load(WithHTTP(context.Background(), httptest.NewRecorder(), req2))
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; ожидается %+v", got, err, want)
	}
}

func TestCookieStorage_MaxAgeBoundedByToken(t *testing.T) {
	cs, _ := NewCookieStorage("", false)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	ctx := WithHTTP(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil))
	tok := signedToken(t, now.Add(time.Hour))

	if err := cs.Save(ctx, Snapshot{Token: tok, Role: role.User, UserID: 2}); err != nil {
		t.Fatal(err)
	}
	c := rec.Result().Cookies()[0]
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, ожидается 3600", c.MaxAge)
	}
}

func TestCookieStorage_TamperedCookie(t *testing.T) {
	cs, _ := NewCookieStorage("k", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bm90LWEtc2Vzc2lvbg=="})
	rec := httptest.NewRecorder()

	if _, err := cs.Load(WithHTTP(context.Background(), rec, req)); err == nil {
		t.Fatal("ожидалась ошибка дешифрования")
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("повреждённый cookie должен удаляться, получено %v", cleared)
	}
}

func TestCookieStorage_NoHTTPContext(t *testing.T) {
	cs, _ := NewCookieStorage("k", false)
	if _, err := cs.Load(context.Background()); !errors.Is(err, ErrNoHTTPContext) {
		t.Errorf("Load без HTTP-контекста: %v", err)
	}
	if err := cs.Clear(context.Background()); !errors.Is(err, ErrNoHTTPContext) {
		t.Errorf("Clear без HTTP-контекста: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{"JWT с exp", signedToken(t, exp), true},
		{"непрозрачный токен", "3f1c9a-opaque", false},
		{"пустой токен", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TokenExpiry(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, ожидается %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(exp) {
				t.Errorf("exp = %v, ожидается %v", got, exp)
			}
		})
	}
}
