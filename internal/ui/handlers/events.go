// events.go — SSE-поток событий рабочего пространства: фазы действий
// хранилищ, события сессии и доступность backend.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/repairshop-portal/internal/api/errors"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// HealthReporter — источник статусов зависимостей (topologymetrics).
type HealthReporter interface {
	Health() map[string]bool
}

// EventsHandler — обработчик GET /events.
type EventsHandler struct {
	health   HealthReporter // может быть nil
	interval time.Duration
	logger   *slog.Logger
}

// NewEventsHandler создаёт EventsHandler. interval — период heartbeat
// и статуса backend (RP_SSE_INTERVAL).
func NewEventsHandler(health HealthReporter, interval time.Duration, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		health:   health,
		interval: interval,
		logger:   logger.With(slog.String("component", "ui.events")),
	}
}

// backendEvent — SSE-событие доступности backend.
type backendEvent struct {
	Status string `json:"status"` // online, offline, unavailable
}

// HandleEvents транслирует события пространства браузера до отключения
// клиента или закрытия пространства.
// Формат: event: store|session|backend\ndata: {json}\n\n
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ws := workspace.FromContext(r.Context())
	if ws == nil {
		apierrors.Unauthorized(w, "рабочее пространство не найдено")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// ResponseController находит Flusher за обёртками middleware через Unwrap().
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		apierrors.InternalError(w, "SSE не поддерживается")
		return
	}

	events, cancel := ws.Listen()
	defer cancel()

	ctx := r.Context()
	h.logger.Debug("SSE клиент подключён",
		slog.String("workspace", ws.ID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	h.sendBackend(w, rc)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён", slog.String("workspace", ws.ID))
			return
		case ev, ok := <-events:
			if !ok {
				// пространство закрыто реестром
				return
			}
			h.send(w, rc, ev.Type, ev)
		case <-ticker.C:
			h.sendBackend(w, rc)
		}
	}
}

// sendBackend отправляет статус backend; он же служит heartbeat.
func (h *EventsHandler) sendBackend(w http.ResponseWriter, rc *http.ResponseController) {
	status := "unavailable"
	if h.health != nil {
		status = backendStatus(h.health.Health())
	}
	h.send(w, rc, "backend", backendEvent{Status: status})
}

func (h *EventsHandler) send(w http.ResponseWriter, rc *http.ResponseController, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Ошибка сериализации SSE-события",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	_ = rc.Flush()
}

// backendStatus сводит статусы проверок к одному: online, если все
// проверки успешны, unavailable, если проверок ещё нет.
func backendStatus(health map[string]bool) string {
	if len(health) == 0 {
		return "unavailable"
	}
	for _, ok := range health {
		if !ok {
			return "offline"
		}
	}
	return "online"
}
