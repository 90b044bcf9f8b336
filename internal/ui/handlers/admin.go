// admin.go — страницы и действия администратора (ADMIN).
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/export"
	"github.com/bigkaa/repairshop-portal/internal/service"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/pages"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// AdminHandler — страницы администратора.
type AdminHandler struct {
	pageBase
}

// NewAdminHandler создаёт AdminHandler.
func NewAdminHandler(langs *i18n.Languages, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{pageBase: newPageBase(langs, logger, "ui.admin")}
}

// HandleDashboard обрабатывает GET /admin/dashboard: финансовая сводка,
// состояние backend и мониторинг.
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if ws.Session.Profile() == nil {
		ws.Session.FetchProfile(ctx)
	}
	errs := []error{
		ws.Admin.FetchOverview(ctx),
		ws.Admin.FetchSystemHealth(ctx),
		ws.Admin.FetchSystemStatus(ctx),
		ws.Admin.FetchMonitorInfo(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.dashboard_title")
	c.Error = firstMessage(errs...)
	h.render(w, r, http.StatusOK, pages.AdminDashboard(pages.AdminDashboardData{Chrome: c, System: ws.Admin.System()}))
}

// HandleUsers обрабатывает GET /admin/users.
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.Admin.FetchUsers(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.users_title")
	c.Error = ws.Admin.Err()
	h.render(w, r, http.StatusOK, pages.AdminUsers(pages.AdminUsersData{Chrome: c, Users: ws.Admin.Users()}))
}

// HandleWorkers обрабатывает GET /admin/workers.
func (h *AdminHandler) HandleWorkers(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.Admin.FetchWorkers(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.workers_title")
	c.Error = ws.Admin.Err()
	h.render(w, r, http.StatusOK, pages.AdminWorkers(pages.AdminWorkersData{Chrome: c, Workers: ws.Admin.Workers()}))
}

// HandleOrders обрабатывает GET /admin/orders. Список мастеров нужен
// для формы назначения.
func (h *AdminHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	errs := []error{
		ws.Admin.FetchRepairOrders(ctx),
		ws.Admin.FetchWorkers(ctx),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.orders_title")
	c.Error = firstMessage(errs...)
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, h.ordersPage(ws, c))
}

func (h *AdminHandler) ordersPage(ws *workspace.Workspace, c pages.Chrome) templ.Component {
	return pages.AdminOrders(pages.AdminOrdersData{
		Chrome:  c,
		Orders:  ws.Admin.RepairOrders(),
		Workers: ws.Admin.Workers(),
	})
}

// renderOrders показывает заказы с сообщением об ошибке действия.
func (h *AdminHandler) renderOrders(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, status int, msg string) {
	c := h.chrome(r, ws, "admin.orders_title")
	c.Error = msg
	h.render(w, r, status, h.ordersPage(ws, c))
}

// failed — общая обработка ошибки действия над заказами.
func (h *AdminHandler) failed(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, err error) {
	if h.actionFailed(w, r, ws, err) {
		return
	}
	h.renderOrders(w, r, ws, statusFor(err), apiclient.Message(err))
}

// HandleAssign обрабатывает POST /admin/orders/{id}/assign.
func (h *AdminHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	req := model.AssignOrderRequest{
		WorkerID:       formInt64(r, "workerId"),
		Priority:       strings.TrimSpace(r.FormValue("priority")),
		EstimatedHours: formFloat(r, "estimatedHours"),
		Notes:          strings.TrimSpace(r.FormValue("notes")),
	}
	if err := ws.Admin.AssignOrder(r.Context(), id, req); err != nil {
		h.failed(w, r, ws, err)
		return
	}
	redirectNotice(w, r, "/admin/orders", "notice.order_assigned")
}

// HandleRollback обрабатывает POST /admin/orders/{id}/rollback.
func (h *AdminHandler) HandleRollback(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	req := model.RollbackRequest{
		RollbackToStatus: order.Status(strings.ToUpper(strings.TrimSpace(r.FormValue("rollbackToStatus")))),
		Reason:           strings.TrimSpace(r.FormValue("reason")),
	}
	if _, err := ws.Admin.RollbackOrder(r.Context(), id, req); err != nil {
		h.failed(w, r, ws, err)
		return
	}
	redirectNotice(w, r, "/admin/orders", "notice.order_rolled_back")
}

// HandleBatchDelete обрабатывает POST /admin/orders/batch-delete.
// Выбранные заказы приходят повторяющимся полем ids.
func (h *AdminHandler) HandleBatchDelete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderOrders(w, r, ws, http.StatusBadRequest, err.Error())
		return
	}

	ids := make([]int64, 0, len(r.PostForm["ids"]))
	for _, raw := range r.PostForm["ids"] {
		id, ok := pathID(strings.TrimSpace(raw))
		if !ok {
			h.renderOrders(w, r, ws, http.StatusBadRequest, fmt.Sprintf("некорректный id заказа: %q", raw))
			return
		}
		ids = append(ids, id)
	}

	res, err := ws.Admin.BatchDeleteOrders(r.Context(), ids)
	if err != nil {
		h.failed(w, r, ws, err)
		return
	}
	if res.Failed > 0 {
		h.renderOrders(w, r, ws, http.StatusOK, partialFailure(res.SuccessfullyDeleted, res.TotalRequested, res.FailureReasons))
		return
	}
	redirectNotice(w, r, "/admin/orders", "notice.orders_deleted")
}

// HandleBatchSubmit обрабатывает POST /admin/orders/batch-submit.
func (h *AdminHandler) HandleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	orders, err := parseBatchOrders(r.FormValue("orders"))
	if err != nil {
		h.renderOrders(w, r, ws, statusFor(err), apiclient.Message(err))
		return
	}
	res, err := ws.Admin.BatchSubmitOrders(r.Context(), model.BatchSubmitRequest{Orders: orders})
	if err != nil {
		h.failed(w, r, ws, err)
		return
	}
	if res.Failed > 0 {
		h.renderOrders(w, r, ws, http.StatusOK, partialFailure(res.SuccessfullyCreated, res.TotalSubmitted, res.FailureReasons))
		return
	}
	redirectNotice(w, r, "/admin/orders", "notice.orders_submitted")
}

// parseBatchOrders разбирает пакет заявок: по одной на строку в формате
// "vehicleId;repairType;issue[;priority]". Пустые строки пропускаются.
func parseBatchOrders(text string) ([]model.SubmitRepairRequest, error) {
	var orders []model.SubmitRepairRequest
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, &service.ValidationError{
				Field:   "orders",
				Message: fmt.Sprintf("строка %d: ожидается vehicleId;repairType;issue[;priority]", n+1),
			}
		}
		vehicleID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil || vehicleID <= 0 {
			return nil, &service.ValidationError{
				Field:   "orders",
				Message: fmt.Sprintf("строка %d: некорректный vehicleId %q", n+1, parts[0]),
			}
		}
		req := model.SubmitRepairRequest{
			VehicleID:  vehicleID,
			RepairType: strings.TrimSpace(parts[1]),
			Issue:      strings.TrimSpace(parts[2]),
		}
		if len(parts) == 4 {
			req.Priority = strings.ToUpper(strings.TrimSpace(parts[3]))
		}
		orders = append(orders, req)
	}
	if len(orders) == 0 {
		return nil, &service.ValidationError{Field: "orders", Message: "пакет заявок пуст"}
	}
	return orders, nil
}

// partialFailure — сообщение о частично выполненной пакетной операции.
func partialFailure(done, total int, reasons []string) string {
	msg := fmt.Sprintf("%d/%d", done, total)
	if len(reasons) > 0 {
		msg += ": " + strings.Join(reasons, "; ")
	}
	return msg
}

// HandleProof обрабатывает GET /admin/orders/{id}/proof.
func (h *AdminHandler) HandleProof(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, ws)
		return
	}

	_ = ws.Admin.FetchBlockchainProof(r.Context(), id)
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.proof")
	c.Error = ws.Admin.Err()
	h.render(w, r, http.StatusOK, pages.Proof(pages.ProofData{
		Chrome:  c,
		OrderID: id,
		Proof:   ws.Admin.BlockchainProof(id),
	}))
}

// HandleLogs обрабатывает GET /admin/logs.
func (h *AdminHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	_ = ws.Admin.FetchRepairLogs(r.Context())
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.logs_title")
	c.Error = ws.Admin.Err()
	h.render(w, r, http.StatusOK, pages.RepairLogs(pages.RepairLogsData{Chrome: c, Logs: ws.Admin.RepairLogs()}))
}

// HandleStatistics обрабатывает GET /admin/statistics: все шесть отчётов
// по одному фильтру из query.
func (h *AdminHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	f := statisticsFilter(r.URL.Query())
	ctx := r.Context()
	errs := []error{
		ws.Admin.FetchVehicleTypeStats(ctx, f),
		ws.Admin.FetchVehicleRepairStats(ctx, f),
		ws.Admin.FetchCostAnalysis(ctx, f),
		ws.Admin.FetchNegativeFeedback(ctx, f),
		ws.Admin.FetchSpecialtyWorkload(ctx, f),
		ws.Admin.FetchPendingTasks(ctx, f),
	}
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.statistics_title")
	c.Error = firstMessage(errs...)
	h.render(w, r, http.StatusOK, pages.Statistics(pages.StatisticsData{Chrome: c, Filter: f, Stats: ws.Admin.Statistics()}))
}

// statisticsFilter разбирает фильтр статистики из query.
func statisticsFilter(q url.Values) model.StatisticsFilter {
	return model.StatisticsFilter{
		StartDate:   strings.TrimSpace(q.Get("startDate")),
		EndDate:     strings.TrimSpace(q.Get("endDate")),
		VehicleType: strings.TrimSpace(q.Get("vehicleType")),
		RepairType:  strings.TrimSpace(q.Get("repairType")),
		WorkerID:    queryInt64(q, "workerId"),
		Status:      strings.TrimSpace(q.Get("status")),
		Period:      strings.TrimSpace(q.Get("period")),
		Year:        queryInt(q, "year"),
		Quarter:     queryInt(q, "quarter"),
		Month:       queryInt(q, "month"),
		GroupBy:     strings.TrimSpace(q.Get("groupBy")),
		MinDays:     queryInt(q, "minDays"),
	}
}

// settlementFilter разбирает фильтр расчётов из query.
func settlementFilter(q url.Values) model.SettlementFilter {
	return model.SettlementFilter{
		Year:     queryInt(q, "year"),
		Month:    queryInt(q, "month"),
		WorkerID: queryInt64(q, "workerId"),
		Status:   strings.TrimSpace(q.Get("status")),
	}
}

// HandleSettlements обрабатывает GET /admin/settlements.
func (h *AdminHandler) HandleSettlements(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	f := settlementFilter(r.URL.Query())
	_ = ws.Admin.FetchWorkerSettlements(r.Context(), f)
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.settlements_title")
	c.Error = ws.Admin.Err()
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.Settlements(pages.SettlementsData{Chrome: c, Filter: f, Settlements: ws.Admin.Settlements()}))
}

// HandleRunSettlement обрабатывает POST /admin/settlements — запуск
// месячного расчёта. После успеха показывает расчёты того же месяца.
func (h *AdminHandler) HandleRunSettlement(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	req := model.MonthlySettlementRequest{
		Year:             formInt(r, "year"),
		Month:            formInt(r, "month"),
		SettleIncomplete: r.FormValue("settleIncomplete") != "",
	}
	if _, err := ws.Admin.RunMonthlySettlement(r.Context(), req); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		c := h.chrome(r, ws, "admin.settlements_title")
		c.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.Settlements(pages.SettlementsData{
			Chrome:      c,
			Filter:      model.SettlementFilter{Year: req.Year, Month: req.Month},
			Settlements: ws.Admin.Settlements(),
		}))
		return
	}

	q := url.Values{}
	q.Set("year", strconv.Itoa(req.Year))
	q.Set("month", strconv.Itoa(req.Month))
	q.Set("notice", "notice.settlement_done")
	http.Redirect(w, r, "/admin/settlements?"+q.Encode(), http.StatusSeeOther)
}

// HandleExportSettlements обрабатывает GET /admin/settlements/export —
// выгрузка расчётов по фильтру в xlsx.
func (h *AdminHandler) HandleExportSettlements(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	f := settlementFilter(r.URL.Query())
	if err := ws.Admin.FetchWorkerSettlements(r.Context(), f); err != nil {
		if h.actionFailed(w, r, ws, err) {
			return
		}
		c := h.chrome(r, ws, "admin.settlements_title")
		c.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.Settlements(pages.SettlementsData{Chrome: c, Filter: f}))
		return
	}

	ctx := r.Context()
	translate := func(key string) string { return i18n.T(ctx, key) }
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName(f)+`"`)
	if err := export.WriteSettlements(w, ws.Admin.Settlements(), translate); err != nil {
		h.logger.Error("Ошибка выгрузки расчётов",
			slog.String("error", err.Error()),
		)
	}
}

// exportFileName — имя файла выгрузки с периодом фильтра.
func exportFileName(f model.SettlementFilter) string {
	name := "settlements"
	if f.Year > 0 {
		name += "-" + strconv.Itoa(f.Year)
		if f.Month > 0 {
			name += fmt.Sprintf("-%02d", f.Month)
		}
	}
	return name + ".xlsx"
}

// HandleAudit обрабатывает GET /admin/audit — журнал аудита с фильтром
// и постраничным выводом.
func (h *AdminHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := model.AuditLogFilter{
		EntityType: strings.TrimSpace(q.Get("entityType")),
		EntityID:   queryInt64(q, "entityId"),
		Action:     strings.TrimSpace(q.Get("action")),
		StartTime:  strings.TrimSpace(q.Get("startTime")),
		EndTime:    strings.TrimSpace(q.Get("endTime")),
		Username:   strings.TrimSpace(q.Get("username")),
		Page:       queryInt(q, "page"),
		Size:       queryInt(q, "size"),
	}
	_ = ws.Admin.FetchAuditLogs(r.Context(), f)
	if h.expired(w, r, ws) {
		return
	}

	c := h.chrome(r, ws, "admin.audit_title")
	c.Error = ws.Admin.Err()
	h.render(w, r, http.StatusOK, pages.AuditLogs(pages.AuditLogsData{Chrome: c, Filter: f, Page: ws.Admin.AuditLogs()}))
}

func queryInt(q url.Values, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(q.Get(name)))
	return n
}

func queryInt64(q url.Values, name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(q.Get(name)), 10, 64)
	return n
}
