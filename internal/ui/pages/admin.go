package pages

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/store"
)

// batchDeleteFormID — id формы пакетного удаления заказов.
const batchDeleteFormID = "batch-delete"

// optInt — число для поля формы, 0 — пустое поле.
func optInt[N ~int | ~int64](n N) string {
	if n == 0 {
		return ""
	}
	return Int(n)
}

// AdminDashboardData — сводка администратора.
type AdminDashboardData struct {
	Chrome
	System store.System
}

// AdminDashboard — финансовая сводка, мониторинг и состояние backend.
func AdminDashboard(d AdminDashboardData) templ.Component {
	parts := []templ.Component{}
	if o := d.System.Overview; o != nil {
		parts = append(parts, Section("admin.overview", Stats(
			Stat{Key: "admin.total_revenue", Value: Money(o.TotalRevenue)},
			Stat{Key: "admin.labor_cost", Value: Money(o.TotalLaborCost)},
			Stat{Key: "admin.material_cost", Value: Money(o.TotalMaterialCost)},
			Stat{Key: "admin.net_income", Value: Money(o.NetIncome)},
			Stat{Key: "admin.total_orders", Value: Int(o.TotalRepairOrders)},
			Stat{Key: "admin.completed_orders", Value: Int(o.CompletedRepairOrders)},
			Stat{Key: "admin.average_rating", Value: Money(o.AverageCustomerRating)},
		)))
	}
	if m := d.System.Monitor; m != nil {
		parts = append(parts, Section("admin.monitor", Stats(
			Stat{Key: "admin.total_users", Value: Int(m.TotalUsers)},
			Stat{Key: "admin.total_workers", Value: Int(m.TotalWorkers)},
			Stat{Key: "admin.total_orders", Value: Int(m.TotalOrders)},
			Stat{Key: "admin.pending_orders", Value: Int(m.PendingOrders)},
			Stat{Key: "admin.completed_orders", Value: Int(m.CompletedOrders)},
			Stat{Key: "admin.average_repair_time", Value: Money(m.AverageRepairTime)},
		)))
	}
	if h := d.System.Health; h != nil {
		parts = append(parts, Section("admin.health", Stats(
			Stat{Key: "admin.status", Value: h.Status},
			Stat{Key: "admin.version", Value: Dash(h.Version)},
			Stat{Key: "admin.database", Value: Dash(h.Database)},
			Stat{Key: "admin.redis", Value: Dash(h.Redis)},
		)))
	}
	if s := d.System.Status; s != nil {
		parts = append(parts, Section("admin.load", Stats(
			Stat{Key: "admin.uptime", Value: Dash(s.Uptime)},
			Stat{Key: "admin.active_users", Value: Int(s.ActiveUsers)},
			Stat{Key: "admin.active_workers", Value: Int(s.ActiveWorkers)},
			Stat{Key: "admin.system_load", Value: Money(s.SystemLoad)},
			Stat{Key: "admin.memory_usage", Value: Percent(s.MemoryUsage)},
			Stat{Key: "admin.disk_usage", Value: Percent(s.DiskUsage)},
		)))
	}
	return Layout(d.Chrome, Group(parts...))
}

// AdminUsersData — клиенты мастерской.
type AdminUsersData struct {
	Chrome
	Users []model.User
}

// AdminUsers — таблица клиентов.
func AdminUsers(d AdminUsersData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Users))
	for _, u := range d.Users {
		rows = append(rows, []templ.Component{Text(Int(u.ID)), Text(u.Username), Text(Dash(u.Phone))})
	}
	return Layout(d.Chrome, Table([]string{"col.id", "auth.username", "col.phone"}, rows))
}

// AdminWorkersData — мастера.
type AdminWorkersData struct {
	Chrome
	Workers []model.Worker
}

// AdminWorkers — таблица мастеров.
func AdminWorkers(d AdminWorkersData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Workers))
	for _, w := range d.Workers {
		rows = append(rows, []templ.Component{
			Text(Int(w.ID)), Text(w.WorkerName), Text(Dash(w.Specialty)), Text(Money(w.HourlyWage)),
			Text(Int(w.CurrentOrders)), Text(Int(w.CompletedOrders)), Text(Money(w.TotalEarnings)), Text(Dash(w.Status)),
		})
	}
	return Layout(d.Chrome, Table([]string{
		"col.id", "col.name", "col.specialty", "col.hourly_wage",
		"col.current_orders", "col.completed_orders", "col.total_earnings", "col.status",
	}, rows))
}

// AdminOrdersData — все заказы мастерской.
type AdminOrdersData struct {
	Chrome
	Orders  []model.RepairOrder
	Workers []model.Worker
}

// AdminOrders — заказы с назначением, откатом, пакетными операциями.
func AdminOrders(d AdminOrdersData) templ.Component {
	workerOpts := make([]Option, 0, len(d.Workers))
	for _, w := range d.Workers {
		workerOpts = append(workerOpts, Option{Value: Int(w.ID), Label: w.WorkerName + " · " + w.Specialty})
	}
	statusOpts := make([]Option, 0, len(order.Statuses))
	for _, s := range order.Statuses {
		statusOpts = append(statusOpts, Option{Value: string(s), Label: string(s)})
	}

	rows := make([][]templ.Component, 0, len(d.Orders))
	for _, o := range d.Orders {
		base := "/admin/orders/" + Int(o.ID)
		actions := []templ.Component{}
		if order.CanPerform(o.Status, order.ActionAssign, role.Admin) {
			actions = append(actions, Form(base+"/assign", "action.assign",
				Field{Name: "workerId", Label: "col.worker", Type: "select", Options: workerOpts, Required: true},
				Field{Name: "priority", Label: "col.priority", Type: "select", Options: priorityOptions},
				Field{Name: "estimatedHours", Label: "col.estimated_hours", Type: "number"},
				Field{Name: "notes", Label: "col.notes"},
			))
		}
		if order.CanPerform(o.Status, order.ActionRollback, role.Admin) {
			actions = append(actions, Form(base+"/rollback", "action.rollback",
				Field{Name: "rollbackToStatus", Label: "col.status", Type: "select", Options: statusOpts},
				Field{Name: "reason", Label: "col.reason", Required: true},
			))
		}
		if o.Status == order.StatusCompleted {
			actions = append(actions, Link(base+"/proof", "admin.proof"))
		}

		rows = append(rows, []templ.Component{
			Checkbox(batchDeleteFormID, "ids", Int(o.ID)),
			Text(Int(o.ID)), Text(vehicleLabel(o)), Text(o.Issue), StatusLabel(o.Status),
			Text(Dash(o.WorkerName)), Text(Dash(o.Priority)), Group(actions...),
		})
	}

	return Layout(d.Chrome, Group(
		Table([]string{
			"col.select", "col.id", "col.vehicle", "col.issue", "col.status", "col.worker", "col.priority", "col.actions",
		}, rows),
		FormWithID(batchDeleteFormID, "/admin/orders/batch-delete", "admin.batch_delete"),
		Section("admin.batch_submit", Form("/admin/orders/batch-submit", "admin.batch_submit",
			Field{Name: "orders", Label: "admin.batch_format", Type: "textarea", Required: true},
		)),
	))
}

// ProofData — подтверждение заказа в блокчейне.
type ProofData struct {
	Chrome
	OrderID int64
	Proof   *model.BlockchainProof
}

// Proof — карточка подтверждения.
func Proof(d ProofData) templ.Component {
	if d.Proof == nil {
		return Layout(d.Chrome, T("admin.proof_missing"))
	}
	p := d.Proof
	verified := "common.no"
	if p.Verified {
		verified = "common.yes"
	}
	return Layout(d.Chrome, Group(
		Stats(
			Stat{Key: "col.order", Value: Int(p.OrderID)},
			Stat{Key: "admin.block_hash", Value: p.BlockHash},
			Stat{Key: "admin.transaction_hash", Value: p.TransactionHash},
			Stat{Key: "col.created", Value: Dash(p.Timestamp)},
			Stat{Key: "col.total_cost", Value: Money(p.ProofData.TotalCost)},
			Stat{Key: "col.completed", Value: Dash(p.ProofData.CompletionTime)},
		),
		Group(T("admin.verified"), Text(": "), T(verified)),
	))
}

// StatisticsData — отчёты администратора.
type StatisticsData struct {
	Chrome
	Filter model.StatisticsFilter
	Stats  store.Statistics
}

// Statistics — фильтр и шесть отчётов.
func Statistics(d StatisticsData) templ.Component {
	f := d.Filter
	s := d.Stats
	parts := []templ.Component{
		FilterForm("/admin/statistics", "common.apply",
			Field{Name: "startDate", Label: "stats.start_date", Type: "date", Value: f.StartDate},
			Field{Name: "endDate", Label: "stats.end_date", Type: "date", Value: f.EndDate},
			Field{Name: "period", Label: "stats.period", Type: "select", Value: f.Period, Options: []Option{
				{Value: "", Label: "—"}, {Value: "month", Label: "month"},
				{Value: "quarter", Label: "quarter"}, {Value: "year", Label: "year"},
			}},
			Field{Name: "year", Label: "col.year", Type: "number", Value: optInt(f.Year)},
			Field{Name: "quarter", Label: "stats.quarter", Type: "number", Value: optInt(f.Quarter)},
			Field{Name: "month", Label: "col.month", Type: "number", Value: optInt(f.Month)},
			Field{Name: "groupBy", Label: "stats.group_by", Type: "select", Value: f.GroupBy, Options: []Option{
				{Value: "", Label: "—"}, {Value: "specialty", Label: "specialty"},
				{Value: "vehicle", Label: "vehicle"}, {Value: "status", Label: "status"},
			}},
			Field{Name: "minDays", Label: "stats.min_days", Type: "number", Value: optInt(f.MinDays)},
		),
	}

	typeRows := make([][]templ.Component, 0, len(s.VehicleTypes))
	for _, v := range s.VehicleTypes {
		typeRows = append(typeRows, []templ.Component{
			Text(v.VehicleType), Text(Int(v.RepairCount)), Text(Money(v.AverageCost)), Text(Money(v.TotalCost)),
		})
	}
	parts = append(parts, Section("stats.vehicle_types",
		Table([]string{"stats.vehicle_type", "stats.repair_count", "stats.average_cost", "col.total_cost"}, typeRows)))

	repairRows := make([][]templ.Component, 0, len(s.VehicleRepairs))
	for _, v := range s.VehicleRepairs {
		repairRows = append(repairRows, []templ.Component{
			Text(v.Brand), Text(v.Model), Text(Int(v.RepairCount)), Text(Money(v.AverageCost)),
			Text(strings.Join(v.CommonIssues, ", ")),
		})
	}
	parts = append(parts, Section("stats.vehicle_repairs",
		Table([]string{"col.brand", "col.model", "stats.repair_count", "stats.average_cost", "stats.common_issues"}, repairRows)))

	if c := s.CostAnalysis; c != nil {
		costRows := make([][]templ.Component, 0, len(c.Breakdown))
		for _, b := range c.Breakdown {
			costRows = append(costRows, []templ.Component{
				Text(b.Category), Text(Money(b.LaborCost)), Text(Money(b.MaterialCost)), Text(Money(b.TotalCost)),
			})
		}
		parts = append(parts, Section("stats.cost_analysis",
			Stats(
				Stat{Key: "stats.period", Value: Dash(c.Period)},
				Stat{Key: "col.total_cost", Value: Money(c.TotalCost)},
				Stat{Key: "stats.labor_ratio", Value: Percent(c.LaborCostRatio)},
				Stat{Key: "stats.material_ratio", Value: Percent(c.MaterialCostRatio)},
			),
			Table([]string{"stats.category", "col.labor_cost", "col.materials_cost", "col.total_cost"}, costRows),
		))
	}

	if n := s.NegativeFeedback; n != nil {
		workerRows := make([][]templ.Component, 0, len(n.WorkerStats))
		for _, w := range n.WorkerStats {
			workerRows = append(workerRows, []templ.Component{
				Text(w.WorkerName), Text(Int(w.NegativeCount)), Text(Money(w.AverageRating)),
			})
		}
		feedbackRows := make([][]templ.Component, 0, len(n.Feedbacks))
		for _, fb := range n.Feedbacks {
			feedbackRows = append(feedbackRows, []templ.Component{
				Text(Int(fb.OrderID)), Text(Int(fb.Rating)), Text(fb.Content),
			})
		}
		parts = append(parts, Section("stats.negative_feedback",
			Stats(Stat{Key: "stats.negative_total", Value: Int(n.TotalNegativeFeedback)}),
			Table([]string{"col.worker", "stats.negative_count", "admin.average_rating"}, workerRows),
			Table([]string{"col.order", "col.rating", "col.comment"}, feedbackRows),
		))
	}

	loadRows := make([][]templ.Component, 0, len(s.SpecialtyWorkload))
	for _, w := range s.SpecialtyWorkload {
		loadRows = append(loadRows, []templ.Component{
			Text(w.Specialty), Text(Int(w.WorkerCount)), Text(Int(w.ReceivedTasks)), Text(Int(w.CompletedTasks)),
			Text(Percent(w.CompletionRate)), Text(Money(w.AverageHoursPerTask)),
		})
	}
	parts = append(parts, Section("stats.specialty_workload", Table([]string{
		"col.specialty", "stats.worker_count", "stats.received", "stats.completed", "worker.completion_rate", "stats.hours_per_task",
	}, loadRows)))

	if p := s.PendingTasks; p != nil {
		items := []Stat{{Key: "stats.pending_total", Value: Int(p.TotalPendingTasks)}}
		for _, k := range slices.Sorted(maps.Keys(p.ByStatus)) {
			items = append(items, Stat{Key: "status." + k, Value: Int(p.ByStatus[k])})
		}
		parts = append(parts, Section("stats.pending_tasks",
			Stats(items...),
			pendingGroups("col.specialty", p.BySpecialty),
			pendingGroups("col.vehicle", p.ByVehicle),
		))
	}
	return Layout(d.Chrome, Group(parts...))
}

func pendingGroups(keyHeader string, groups []model.PendingGroup) templ.Component {
	rows := make([][]templ.Component, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []templ.Component{Text(g.Key), Text(Int(g.Count))})
	}
	return Table([]string{keyHeader, "stats.count"}, rows)
}

// SettlementsData — месячные расчёты мастеров.
type SettlementsData struct {
	Chrome
	Filter      model.SettlementFilter
	Settlements []model.MonthlySettlement
}

// Settlements — запуск расчёта, фильтр, выгрузка в Excel и таблица.
func Settlements(d SettlementsData) templ.Component {
	f := d.Filter
	q := settlementQuery(f)
	exportURL := "/admin/settlements/export"
	if len(q) > 0 {
		exportURL += "?" + q.Encode()
	}
	return Layout(d.Chrome, Group(
		Section("admin.run_settlement", Form("/admin/settlements", "admin.run",
			Field{Name: "year", Label: "col.year", Type: "number", Value: optInt(f.Year), Required: true},
			Field{Name: "month", Label: "col.month", Type: "number", Value: optInt(f.Month), Required: true},
			Field{Name: "settleIncomplete", Label: "admin.settle_incomplete", Type: "checkbox"},
		)),
		FilterForm("/admin/settlements", "common.apply",
			Field{Name: "year", Label: "col.year", Type: "number", Value: optInt(f.Year)},
			Field{Name: "month", Label: "col.month", Type: "number", Value: optInt(f.Month)},
			Field{Name: "workerId", Label: "col.worker", Type: "number", Value: optInt(f.WorkerID)},
			Field{Name: "status", Label: "col.status", Value: f.Status},
		),
		Link(exportURL, "admin.export_xlsx"),
		settlementsTable(d.Settlements),
	))
}

// settlementQuery — параметры фильтра расчётов для ссылки выгрузки.
func settlementQuery(f model.SettlementFilter) url.Values {
	q := url.Values{}
	if f.Year > 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Month > 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.WorkerID > 0 {
		q.Set("workerId", strconv.FormatInt(f.WorkerID, 10))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return q
}

// AuditLogsData — журнал аудита.
type AuditLogsData struct {
	Chrome
	Filter model.AuditLogFilter
	Page   *model.Page[model.AuditLog]
}

// AuditLogs — фильтр, таблица и постраничная навигация журнала аудита.
func AuditLogs(d AuditLogsData) templ.Component {
	f := d.Filter
	parts := []templ.Component{
		FilterForm("/admin/audit", "common.apply",
			Field{Name: "entityType", Label: "audit.entity_type", Value: f.EntityType},
			Field{Name: "entityId", Label: "audit.entity_id", Type: "number", Value: optInt(f.EntityID)},
			Field{Name: "action", Label: "audit.action", Value: f.Action},
			Field{Name: "username", Label: "auth.username", Value: f.Username},
			Field{Name: "startTime", Label: "stats.start_date", Value: f.StartTime},
			Field{Name: "endTime", Label: "stats.end_date", Value: f.EndTime},
		),
	}

	var logs []model.AuditLog
	if d.Page != nil {
		logs = d.Page.Content
	}
	rows := make([][]templ.Component, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []templ.Component{
			Text(Dash(l.Timestamp)), Text(l.Action), Text(l.EntityType), Text(Int(l.EntityID)),
			Text(Int(l.UserID)), Text(l.Details),
		})
	}
	parts = append(parts, Table([]string{
		"col.created", "audit.action", "audit.entity_type", "audit.entity_id", "audit.user_id", "audit.details",
	}, rows))

	if p := d.Page; p != nil && p.TotalPages > 1 {
		// страницы backend нумеруются с нуля
		if p.CurrentPage > 0 {
			parts = append(parts, Link(auditPageURL(f, p.CurrentPage-1), "common.prev"))
		}
		parts = append(parts, Text(" "+Int(p.CurrentPage+1)+" / "+Int(p.TotalPages)+" "))
		if p.CurrentPage+1 < p.TotalPages {
			parts = append(parts, Link(auditPageURL(f, p.CurrentPage+1), "common.next"))
		}
	}
	return Layout(d.Chrome, Group(parts...))
}

// auditPageURL — ссылка на страницу page журнала с текущими фильтрами.
func auditPageURL(f model.AuditLogFilter, page int) string {
	q := url.Values{}
	for k, v := range map[string]string{
		"entityType": f.EntityType, "action": f.Action, "username": f.Username,
		"startTime": f.StartTime, "endTime": f.EndTime, "entityId": optInt(f.EntityID),
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	return "/admin/audit?" + q.Encode()
}
