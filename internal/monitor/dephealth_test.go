package monitor

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWithRegisterer(t *testing.T) {
	for _, backend := range []string{"http://backend.repair.lan:8080", "https://backend.repair.lan"} {
		t.Run(backend, func(t *testing.T) {
			m, err := NewWithRegisterer(Options{
				Group:         "repairshop",
				BackendURL:    backend,
				HealthPath:    "/actuator/health",
				CheckInterval: 15 * time.Second,
			}, testLogger(), prometheus.NewRegistry())
			if err != nil {
				t.Fatalf("NewWithRegisterer вернул ошибку: %v", err)
			}
			if m == nil {
				t.Fatal("монитор не создан")
			}
		})
	}
}
