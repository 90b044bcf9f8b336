package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/", "/"},
		{"/admin/orders", "/admin/orders"},
		{"/admin/orders/42/assign", "/admin/orders/{id}/assign"},
		{"/worker/orders/7", "/worker/orders/{id}"},
		{"/static/portal.css", "/static/*"},
		{"/lang/ru", "/lang/{lang}"},
		{"/health/ready", "/health/ready"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = apiclient.RequestIDFromContext(r.Context())
	}))

	t.Run("генерируется новый", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("id в контексте %q не UUID", seen)
		}
		if w.Header().Get(apiclient.RequestIDHeader) != seen {
			t.Error("id в ответе не совпадает с id в контексте")
		}
	})

	t.Run("входящий UUID сохраняется", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(apiclient.RequestIDHeader, id)
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != id {
			t.Errorf("id = %q, ожидается %q", seen, id)
		}
	})

	t.Run("мусорный заголовок заменяется", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(apiclient.RequestIDHeader, "<script>")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen == "<script>" {
			t.Error("недопустимый id не должен попадать в контекст")
		}
	})
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("backend down"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/orders", nil))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status=502", "bytes=12", "path=/user/orders"} {
		if !strings.Contains(out, want) {
			t.Errorf("в логе нет %q: %s", want, out)
		}
	}
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	h := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/orders/5/proof", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, ожидается 418", w.Code)
	}
}
