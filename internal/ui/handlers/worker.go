// worker.go — страницы и действия мастера (WORKER).
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/pages"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// WorkerHandler — страницы мастера.
type WorkerHandler struct {
	pageBase
}

// NewWorkerHandler создаёт WorkerHandler.
func NewWorkerHandler(langs *i18n.Languages, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{pageBase: newPageBase(langs, logger, "ui.worker")}
}

// HandleDashboard обрабатывает GET /worker/dashboard.
func (h *WorkerHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if ws.Session.Profile() == nil {
		ws.Session.FetchProfile(ctx)
	}
	errs := []error{
		ws.Worker.FetchAssignedOrders(ctx),
		ws.Worker.FetchEarnings(ctx),
		ws.Worker.FetchDetailedEarnings(ctx),
		ws.Worker.FetchPerformance(ctx),
		ws.Worker.FetchPendingStatistics(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "worker.dashboard_title")
	c.Error = firstMessage(errs...)
	h.render(w, r, http.StatusOK, pages.WorkerDashboard(pages.WorkerDashboardData{
		Chrome:      c,
		Earnings:    ws.Worker.Earnings(),
		Detailed:    ws.Worker.DetailedEarnings(),
		Performance: ws.Worker.Performance(),
		Pending:     ws.Worker.PendingStatistics(),
		Assigned:    len(ws.Worker.AssignedOrders()),
	}))
}

// HandleOrders обрабатывает GET /worker/orders — назначенные заказы.
func (h *WorkerHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.Worker.FetchAssignedOrders(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "worker.orders_title")
	c.Error = ws.Worker.Err()
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.WorkerOrders(pages.WorkerOrdersData{Chrome: c, Orders: ws.Worker.AssignedOrders()}))
}

// renderOrders показывает назначенные заказы с ошибкой действия.
func (h *WorkerHandler) renderOrders(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, err error) {
	c := h.chrome(r, ws, "worker.orders_title")
	c.Error = apiclient.Message(err)
	h.render(w, r, statusFor(err), pages.WorkerOrders(pages.WorkerOrdersData{Chrome: c, Orders: ws.Worker.AssignedOrders()}))
}

// HandleAccept обрабатывает POST /worker/orders/{id}/accept.
func (h *WorkerHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, ws *workspace.Workspace, id int64) error {
		return ws.Worker.AcceptOrder(ctx, id)
	})
}

// HandleReject обрабатывает POST /worker/orders/{id}/reject. Причина
// обязательна: пустая причина не отправляется в backend.
func (h *WorkerHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, ws *workspace.Workspace, id int64) error {
		return ws.Worker.RejectOrder(ctx, id, r.FormValue("reason"))
	})
}

// HandleStart обрабатывает POST /worker/orders/{id}/start.
func (h *WorkerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, ws *workspace.Workspace, id int64) error {
		return ws.Worker.StartOrder(ctx, id)
	})
}

// transition выполняет действие над заказом и возвращает к списку.
func (h *WorkerHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, ws *workspace.Workspace, id int64) error,
) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	if err := action(r.Context(), ws, id); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		h.renderOrders(w, r, ws, err)
		return
	}
	redirectNotice(w, r, "/worker/orders", "notice.order_updated")
}

// findOrder ищет заказ в кэше назначенных, затем обработанных заказов.
func findOrder(ws *workspace.Workspace, id int64) *model.RepairOrder {
	for _, list := range [][]model.RepairOrder{ws.Worker.AssignedOrders(), ws.Worker.ProcessedOrders()} {
		for i := range list {
			if list[i].ID == id {
				o := list[i]
				return &o
			}
		}
	}
	return nil
}

// HandleOrder обрабатывает GET /worker/orders/{id} — карточка заказа.
func (h *WorkerHandler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	ctx := r.Context()
	errs := []error{ws.Worker.FetchAssignedOrders(ctx)}
	if findOrder(ws, id) == nil {
		errs = append(errs, ws.Worker.FetchProcessedOrders(ctx))
	}
	errs = append(errs, ws.Worker.FetchMaterials(ctx, id))
	if h.expired(w, r, ws) {
		return
	}

	o := findOrder(ws, id)
	if o == nil && firstMessage(errs...) == "" {
		h.notFound(w, r, ws)
		return
	}

	c := h.chrome(r, ws, "worker.order_title")
	c.Error = firstMessage(errs...)
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.WorkerOrder(pages.WorkerOrderData{
		Chrome:    c,
		Order:     o,
		Materials: ws.Worker.Materials(id),
	}))
}

// renderOrder показывает карточку заказа с ошибкой действия.
func (h *WorkerHandler) renderOrder(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, id int64, err error) {
	c := h.chrome(r, ws, "worker.order_title")
	c.Error = apiclient.Message(err)
	h.render(w, r, statusFor(err), pages.WorkerOrder(pages.WorkerOrderData{
		Chrome:    c,
		Order:     findOrder(ws, id),
		Materials: ws.Worker.Materials(id),
	}))
}

// HandleComplete обрабатывает POST /worker/orders/{id}/complete.
func (h *WorkerHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	req := model.CompleteOrderRequest{
		LaborHours:  formFloat(r, "laborHours"),
		Description: strings.TrimSpace(r.FormValue("description")),
		Suggestion:  strings.TrimSpace(r.FormValue("suggestion")),
	}
	if err := ws.Worker.CompleteOrder(r.Context(), id, req); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		h.renderOrder(w, r, ws, id, err)
		return
	}
	redirectNotice(w, r, "/worker/orders", "notice.order_completed")
}

// HandleAddMaterial обрабатывает POST /worker/orders/{id}/materials.
func (h *WorkerHandler) HandleAddMaterial(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	req := model.MaterialRequest{
		OrderID:  id,
		Name:     strings.TrimSpace(r.FormValue("name")),
		Quantity: formInt(r, "quantity"),
		Price:    formFloat(r, "price"),
	}
	if _, err := ws.Worker.AddMaterial(r.Context(), req); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		h.renderOrder(w, r, ws, id, err)
		return
	}
	redirectNotice(w, r, "/worker/orders/"+chi.URLParam(r, "id"), "notice.material_added")
}

// HandleHistory обрабатывает GET /worker/history — обработанные заказы.
func (h *WorkerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.Worker.FetchProcessedOrders(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "worker.history_title")
	c.Error = ws.Worker.Err()
	h.render(w, r, http.StatusOK, pages.WorkerHistory(pages.WorkerHistoryData{Chrome: c, Orders: ws.Worker.ProcessedOrders()}))
}

// HandleEarnings обрабатывает GET /worker/earnings.
func (h *WorkerHandler) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	errs := []error{
		ws.Worker.FetchDetailedEarnings(ctx),
		ws.Worker.FetchSettlements(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "worker.earnings_title")
	c.Error = firstMessage(errs...)
	h.render(w, r, http.StatusOK, pages.WorkerEarnings(pages.WorkerEarningsData{
		Chrome:      c,
		Detailed:    ws.Worker.DetailedEarnings(),
		Settlements: ws.Worker.Settlements(),
	}))
}
