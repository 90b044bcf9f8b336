// Пакет monitor — мониторинг доступности REST backend через
// topologymetrics SDK.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
package monitor

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceID — имя вершины графа портала в метриках.
const ServiceID = "repair-portal"

// BackendDependency — имя зависимости REST backend.
const BackendDependency = "repair-backend"

// Options — параметры мониторинга backend.
type Options struct {
	// Group — имя группы в метриках (RP_DEPHEALTH_GROUP).
	Group string
	// BackendURL — базовый URL backend.
	BackendURL string
	// HealthPath — путь health endpoint backend (RP_BACKEND_HEALTH_PATH).
	HealthPath string
	// CheckInterval — интервал проверки (RP_DEPHEALTH_CHECK_INTERVAL).
	CheckInterval time.Duration
}

// Monitor периодически проверяет health endpoint backend.
type Monitor struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// New создаёт монитор. Метрики регистрируются в глобальном Prometheus registry.
func New(opts Options, logger *slog.Logger) (*Monitor, error) {
	return newMonitor(opts, logger)
}

// NewWithRegisterer создаёт монитор с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewWithRegisterer(opts Options, logger *slog.Logger, registerer prometheus.Registerer) (*Monitor, error) {
	return newMonitor(opts, logger, dephealth.WithRegisterer(registerer))
}

func newMonitor(opts Options, logger *slog.Logger, extraOpts ...dephealth.Option) (*Monitor, error) {
	depOpts := []dephealth.DependencyOption{
		dephealth.FromURL(opts.BackendURL),
		dephealth.WithHTTPHealthPath(opts.HealthPath),
		dephealth.CheckInterval(opts.CheckInterval),
		dephealth.Critical(true),
	}
	if parsed, err := url.Parse(opts.BackendURL); err == nil && parsed.Scheme == "https" {
		depOpts = append(depOpts, dephealth.WithHTTPTLSSkipVerify(false))
	}

	all := make([]dephealth.Option, 0, 2+len(extraOpts))
	all = append(all,
		dephealth.WithLogger(logger),
		dephealth.HTTP(BackendDependency, depOpts...),
	)
	all = append(all, extraOpts...)

	dh, err := dephealth.New(ServiceID, opts.Group, all...)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку backend.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("Мониторинг backend запущен")
	return m.dh.Start(ctx)
}

// Stop останавливает мониторинг.
func (m *Monitor) Stop() {
	m.dh.Stop()
	m.logger.Info("Мониторинг backend остановлен")
}

// Health возвращает текущее состояние проверок.
// Ключ — имя зависимости, значение — true если ok.
func (m *Monitor) Health() map[string]bool {
	return m.dh.Health()
}
