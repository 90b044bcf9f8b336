// Пакет handlers — служебные endpoints портала.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (REST backend доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/repairshop-portal/internal/config"
)

// serviceName — имя сервиса в ответах probe.
const serviceName = "repair-portal"

// HealthReporter — источник статусов зависимостей (topologymetrics).
type HealthReporter interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	backend     HealthReporter
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// backend может быть nil: мониторинг не запущен, readiness вернёт "fail".
func NewHealthHandler(backend HealthReporter) *HealthHandler {
	return &HealthHandler{
		backend:     backend,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		Backend healthCheckResult `json:"backend"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	resp := healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe по результатам проверок backend.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
	resp.Checks.Backend = h.checkBackend()
	resp.Status = resp.Checks.Backend.Status

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == "fail" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// checkBackend сводит проверки backend к статусу probe. Пока первая
// проверка не выполнена, статус degraded.
func (h *HealthHandler) checkBackend() healthCheckResult {
	if h.backend == nil {
		return healthCheckResult{Status: "fail", Message: "мониторинг не инициализирован"}
	}
	health := h.backend.Health()
	if len(health) == 0 {
		return healthCheckResult{Status: "degraded", Message: "проверка ещё не выполнена"}
	}
	for name, ok := range health {
		if !ok {
			return healthCheckResult{Status: "fail", Message: name + " недоступен"}
		}
	}
	return healthCheckResult{Status: "ok"}
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
