// user.go — страницы и действия клиента (USER).
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/pages"
)

// UserHandler — страницы клиента.
type UserHandler struct {
	pageBase
}

// NewUserHandler создаёт UserHandler.
func NewUserHandler(langs *i18n.Languages, logger *slog.Logger) *UserHandler {
	return &UserHandler{pageBase: newPageBase(langs, logger, "ui.user")}
}

// HandleDashboard обрабатывает GET /user/dashboard.
func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if ws.Session.Profile() == nil {
		ws.Session.FetchProfile(ctx)
	}
	errs := []error{
		ws.User.FetchVehicles(ctx),
		ws.User.FetchRepairOrders(ctx),
		ws.User.FetchRepairLogs(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "user.dashboard_title")
	c.Error = firstMessage(errs...)
	h.render(w, r, http.StatusOK, pages.UserDashboard(pages.UserDashboardData{
		Chrome:   c,
		Vehicles: ws.User.Vehicles(),
		Orders:   ws.User.RepairOrders(),
		Logs:     ws.User.RepairLogs(),
	}))
}

// HandleVehicles обрабатывает GET /user/vehicles.
func (h *UserHandler) HandleVehicles(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.User.FetchVehicles(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "user.vehicles_title")
	c.Error = ws.User.Err()
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.Vehicles(pages.VehiclesData{Chrome: c, Vehicles: ws.User.Vehicles()}))
}

// HandleAddVehicle обрабатывает POST /user/vehicles.
func (h *UserHandler) HandleAddVehicle(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	v := model.Vehicle{
		LicensePlate: strings.TrimSpace(r.FormValue("licensePlate")),
		Brand:        strings.TrimSpace(r.FormValue("brand")),
		Model:        strings.TrimSpace(r.FormValue("model")),
		Year:         formInt(r, "year"),
		VIN:          strings.TrimSpace(r.FormValue("vin")),
	}
	if _, err := ws.User.AddVehicle(r.Context(), v); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		c := h.chrome(r, ws, "user.vehicles_title")
		c.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.Vehicles(pages.VehiclesData{
			Chrome: c, Vehicles: ws.User.Vehicles(), Form: v,
		}))
		return
	}
	redirectNotice(w, r, "/user/vehicles", "notice.vehicle_added")
}

// HandleOrders обрабатывает GET /user/orders.
func (h *UserHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	errs := []error{
		ws.User.FetchRepairOrders(ctx),
		ws.User.FetchVehicles(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "user.orders_title")
	c.Error = firstMessage(errs...)
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.UserOrders(pages.UserOrdersData{
		Chrome:   c,
		Orders:   ws.User.RepairOrders(),
		Vehicles: ws.User.Vehicles(),
	}))
}

// HandleSubmitRepair обрабатывает POST /user/orders — заявка на ремонт.
func (h *UserHandler) HandleSubmitRepair(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	req := model.SubmitRepairRequest{
		VehicleID:      formInt64(r, "vehicleId"),
		Issue:          strings.TrimSpace(r.FormValue("issue")),
		RepairType:     strings.TrimSpace(r.FormValue("repairType")),
		AdditionalInfo: strings.TrimSpace(r.FormValue("additionalInfo")),
		Priority:       r.FormValue("priority"),
	}
	if _, err := ws.User.SubmitRepair(r.Context(), req); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		c := h.chrome(r, ws, "user.orders_title")
		c.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.UserOrders(pages.UserOrdersData{
			Chrome:   c,
			Orders:   ws.User.RepairOrders(),
			Vehicles: ws.User.Vehicles(),
			Form:     req,
		}))
		return
	}
	redirectNotice(w, r, "/user/orders", "notice.repair_submitted")
}

// HandleFeedback обрабатывает POST /user/orders/{id}/feedback.
func (h *UserHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	req := model.FeedbackRequest{
		RepairOrderID: id,
		Rating:        formInt(r, "rating"),
		Content:       strings.TrimSpace(r.FormValue("content")),
	}
	if err := ws.User.SubmitFeedback(r.Context(), req); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		c := h.chrome(r, ws, "user.orders_title")
		c.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.UserOrders(pages.UserOrdersData{
			Chrome:   c,
			Orders:   ws.User.RepairOrders(),
			Vehicles: ws.User.Vehicles(),
		}))
		return
	}
	redirectNotice(w, r, "/user/orders", "notice.feedback_sent")
}

// HandleLogs обрабатывает GET /user/logs.
func (h *UserHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.User.FetchRepairLogs(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "user.logs_title")
	c.Error = ws.User.Err()
	h.render(w, r, http.StatusOK, pages.RepairLogs(pages.RepairLogsData{Chrome: c, Logs: ws.User.RepairLogs()}))
}
