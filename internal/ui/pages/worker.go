package pages

import (
	"maps"
	"slices"

	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// WorkerDashboardData — сводка мастера.
type WorkerDashboardData struct {
	Chrome
	Earnings    float64
	Detailed    *model.Earning
	Performance *model.WorkerPerformance
	Pending     *model.WorkerPendingStatistics
	Assigned    int
}

// WorkerDashboard — заработок, показатели и незавершённые заказы мастера.
func WorkerDashboard(d WorkerDashboardData) templ.Component {
	items := []Stat{
		{Key: "worker.assigned_count", Value: Int(d.Assigned)},
		{Key: "worker.total_earnings", Value: Money(d.Earnings)},
	}
	if d.Detailed != nil {
		items = append(items,
			Stat{Key: "worker.month_earnings", Value: Money(d.Detailed.ThisMonthEarnings)},
			Stat{Key: "worker.average_order", Value: Money(d.Detailed.AverageOrderValue)},
		)
	}

	parts := []templ.Component{Stats(items...)}
	if p := d.Performance; p != nil {
		parts = append(parts, Section("worker.performance", Stats(
			Stat{Key: "worker.completed_orders", Value: Int(p.CompletedOrders)},
			Stat{Key: "worker.total_hours", Value: Money(p.TotalHours)},
			Stat{Key: "worker.efficiency", Value: Percent(p.Efficiency)},
			Stat{Key: "worker.completion_rate", Value: Percent(p.CompletionRate)},
			Stat{Key: "worker.on_time_rate", Value: Percent(p.OnTimeCompletionRate)},
			Stat{Key: "worker.average_rating", Value: Money(p.AverageRating)},
		)))
	}
	if p := d.Pending; p != nil {
		stats := []Stat{
			{Key: "worker.pending_total", Value: Int(p.TotalPending)},
			{Key: "worker.oldest_days", Value: Int(p.OldestDays)},
		}
		for _, s := range slices.Sorted(maps.Keys(p.ByStatus)) {
			stats = append(stats, Stat{Key: "status." + s, Value: Int(p.ByStatus[s])})
		}
		parts = append(parts, Section("worker.pending", Stats(stats...)))
	}
	return Layout(d.Chrome, Group(parts...))
}

// WorkerOrdersData — назначенные мастеру заказы.
type WorkerOrdersData struct {
	Chrome
	Orders []model.RepairOrder
}

// WorkerOrders — назначенные заказы с кнопками доступных действий.
func WorkerOrders(d WorkerOrdersData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Orders))
	for _, o := range d.Orders {
		rows = append(rows, []templ.Component{
			Text(Int(o.ID)), Text(vehicleLabel(o)), Text(o.Issue), Text(Dash(o.Priority)),
			StatusLabel(o.Status), Text(Dash(o.CustomerPhone)), workerActions(o),
		})
	}
	return Layout(d.Chrome, Table([]string{
		"col.id", "col.vehicle", "col.issue", "col.priority", "col.status", "col.phone", "col.actions",
	}, rows))
}

// workerActions — формы действий мастера, разрешённых машиной состояний.
func workerActions(o model.RepairOrder) templ.Component {
	base := "/worker/orders/" + Int(o.ID)
	parts := []templ.Component{Link(base, "common.open")}
	for _, a := range order.AvailableActions(o.Status, role.Worker) {
		switch a {
		case order.ActionAccept:
			parts = append(parts, ActionButton(base+"/accept", "action.accept"))
		case order.ActionStart:
			parts = append(parts, ActionButton(base+"/start", "action.start"))
		case order.ActionReject:
			parts = append(parts, Form(base+"/reject", "action.reject",
				Field{Name: "reason", Label: "col.reason", Required: true},
			))
		}
	}
	return Group(parts...)
}

// WorkerOrderData — карточка заказа мастера: материалы и завершение.
type WorkerOrderData struct {
	Chrome
	Order     *model.RepairOrder
	Materials []model.Material
}

// WorkerOrder — карточка заказа.
func WorkerOrder(d WorkerOrderData) templ.Component {
	if d.Order == nil {
		return Layout(d.Chrome, T("worker.order_missing"))
	}
	o := *d.Order
	base := "/worker/orders/" + Int(o.ID)

	rows := make([][]templ.Component, 0, len(d.Materials))
	total := 0.0
	for _, m := range d.Materials {
		total += m.TotalCost
		rows = append(rows, []templ.Component{
			Text(m.Name), Text(Int(m.Quantity)), Text(Money(m.UnitPrice)), Text(Money(m.TotalCost)),
		})
	}

	parts := []templ.Component{
		Stats(
			Stat{Key: "col.id", Value: Int(o.ID)},
			Stat{Key: "col.vehicle", Value: vehicleLabel(o)},
			Stat{Key: "col.issue", Value: o.Issue},
			Stat{Key: "col.repair_type", Value: Dash(o.RepairType)},
			Stat{Key: "col.priority", Value: Dash(o.Priority)},
			Stat{Key: "col.estimated_hours", Value: Money(o.EstimatedHours)},
			Stat{Key: "col.notes", Value: Dash(o.Notes)},
		),
		Group(T("col.status"), Text(": "), StatusLabel(o.Status)),
		workerActions(o),
		Section("worker.materials",
			Table([]string{"col.name", "col.quantity", "col.unit_price", "col.total_cost"}, rows),
			Stats(Stat{Key: "worker.materials_total", Value: Money(total)}),
			Form(base+"/materials", "common.add",
				Field{Name: "name", Label: "col.name", Required: true},
				Field{Name: "quantity", Label: "col.quantity", Type: "number", Value: "1", Required: true},
				Field{Name: "price", Label: "col.unit_price", Type: "number", Value: "0"},
			),
		),
	}
	if order.CanPerform(o.Status, order.ActionComplete, role.Worker) {
		parts = append(parts, Section("worker.complete",
			Form(base+"/complete", "action.complete",
				Field{Name: "laborHours", Label: "col.labor_hours", Type: "number", Required: true},
				Field{Name: "description", Label: "col.description", Type: "textarea", Required: true},
				Field{Name: "suggestion", Label: "worker.suggestion", Type: "textarea"},
			),
		))
	}
	return Layout(d.Chrome, Group(parts...))
}

// WorkerHistoryData — обработанные мастером заказы.
type WorkerHistoryData struct {
	Chrome
	Orders []model.RepairOrder
}

// WorkerHistory — история обработанных заказов.
func WorkerHistory(d WorkerHistoryData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Orders))
	for _, o := range d.Orders {
		rows = append(rows, []templ.Component{
			Text(Int(o.ID)), Text(vehicleLabel(o)), Text(o.Issue), StatusLabel(o.Status),
			Text(Dash(o.RepairResult)), Text(Dash(o.CreateTime)),
		})
	}
	return Layout(d.Chrome, Table([]string{
		"col.id", "col.vehicle", "col.issue", "col.status", "col.result", "col.created",
	}, rows))
}

// WorkerEarningsData — заработок и расчёты мастера.
type WorkerEarningsData struct {
	Chrome
	Detailed    *model.Earning
	Settlements []model.MonthlySettlement
}

// WorkerEarnings — детальный заработок и помесячные расчёты.
func WorkerEarnings(d WorkerEarningsData) templ.Component {
	parts := []templ.Component{}
	if e := d.Detailed; e != nil {
		parts = append(parts, Stats(
			Stat{Key: "worker.total_earnings", Value: Money(e.TotalEarnings)},
			Stat{Key: "worker.month_earnings", Value: Money(e.ThisMonthEarnings)},
			Stat{Key: "worker.completed_orders", Value: Int(e.CompletedOrders)},
			Stat{Key: "worker.average_order", Value: Money(e.AverageOrderValue)},
		))
	}
	parts = append(parts, Section("nav.settlements", settlementsTable(d.Settlements)))
	return Layout(d.Chrome, Group(parts...))
}

// settlementsTable — таблица помесячных расчётов.
func settlementsTable(items []model.MonthlySettlement) templ.Component {
	rows := make([][]templ.Component, 0, len(items))
	for _, s := range items {
		rows = append(rows, []templ.Component{
			Text(s.SettlementMonth), Text(Dash(s.WorkerName)), Text(Money(s.BaseSalary)),
			Text(Money(s.Bonus)), Text(Money(s.TotalEarnings)), Text(Dash(s.SettlementDate)), Text(Dash(s.Status)),
		})
	}
	return Table([]string{
		"col.month", "col.worker", "col.base_salary", "col.bonus", "col.total_earnings", "col.settled_at", "col.status",
	}, rows)
}
