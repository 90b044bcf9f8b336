package pages

import (
	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
)

// priorityOptions — варианты приоритета заказа.
var priorityOptions = []Option{
	{Value: "", Label: "—"},
	{Value: "LOW", Label: "LOW"},
	{Value: "MEDIUM", Label: "MEDIUM"},
	{Value: "HIGH", Label: "HIGH"},
	{Value: "URGENT", Label: "URGENT"},
}

// ratingOptions — оценки отзыва.
var ratingOptions = []Option{
	{Value: "5", Label: "5"}, {Value: "4", Label: "4"}, {Value: "3", Label: "3"},
	{Value: "2", Label: "2"}, {Value: "1", Label: "1"},
}

// StatusLabel — переведённый статус заказа.
func StatusLabel(s order.Status) templ.Component {
	if s == order.StatusNone {
		return Text("—")
	}
	return T("status." + string(s))
}

// vehicleLabel — номер автомобиля заказа.
func vehicleLabel(o model.RepairOrder) string {
	switch {
	case o.LicensePlate != "":
		return o.LicensePlate
	case o.VehicleInfo != nil && o.VehicleInfo.LicensePlate != "":
		return o.VehicleInfo.LicensePlate
	default:
		return "#" + Int(o.VehicleID)
	}
}

// UserDashboardData — сводка клиента.
type UserDashboardData struct {
	Chrome
	Vehicles []model.Vehicle
	Orders   []model.RepairOrder
	Logs     []model.RepairLog
}

// UserDashboard — сводка клиента: число автомобилей, активных заказов и
// записей журнала.
func UserDashboard(d UserDashboardData) templ.Component {
	active := 0
	for _, o := range d.Orders {
		if !o.Status.IsTerminal() {
			active++
		}
	}
	return Layout(d.Chrome, Group(
		Stats(
			Stat{Key: "user.vehicles_count", Value: Int(len(d.Vehicles))},
			Stat{Key: "user.active_orders", Value: Int(active)},
			Stat{Key: "user.logs_count", Value: Int(len(d.Logs))},
		),
		Section("user.recent_orders", userOrdersTable(d.Orders, false)),
	))
}

// VehiclesData — автомобили клиента.
type VehiclesData struct {
	Chrome
	Vehicles []model.Vehicle
	Form     model.Vehicle
}

// Vehicles — список автомобилей и форма добавления.
func Vehicles(d VehiclesData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		rows = append(rows, []templ.Component{
			Text(Int(v.VehicleID)), Text(v.LicensePlate), Text(v.Brand), Text(v.Model),
			Text(yearLabel(v.Year)), Text(Dash(v.VIN)),
		})
	}
	return Layout(d.Chrome, Group(
		Table([]string{"col.id", "col.license_plate", "col.brand", "col.model", "col.year", "col.vin"}, rows),
		Section("user.add_vehicle", Form("/user/vehicles", "common.add",
			Field{Name: "licensePlate", Label: "col.license_plate", Value: d.Form.LicensePlate, Required: true},
			Field{Name: "brand", Label: "col.brand", Value: d.Form.Brand, Required: true},
			Field{Name: "model", Label: "col.model", Value: d.Form.Model, Required: true},
			Field{Name: "year", Label: "col.year", Type: "number", Value: yearLabel(d.Form.Year)},
			Field{Name: "vin", Label: "col.vin", Value: d.Form.VIN},
		)),
	))
}

func yearLabel(y int) string {
	if y == 0 {
		return ""
	}
	return Int(y)
}

// UserOrdersData — заказы клиента.
type UserOrdersData struct {
	Chrome
	Orders   []model.RepairOrder
	Vehicles []model.Vehicle
	Form     model.SubmitRepairRequest
}

// UserOrders — заказы клиента, форма заявки и отзывы по завершённым заказам.
func UserOrders(d UserOrdersData) templ.Component {
	vehicleOpts := make([]Option, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		vehicleOpts = append(vehicleOpts, Option{
			Value: Int(v.VehicleID),
			Label: v.LicensePlate + " · " + v.Brand + " " + v.Model,
		})
	}
	formVehicle := ""
	if d.Form.VehicleID > 0 {
		formVehicle = Int(d.Form.VehicleID)
	}

	return Layout(d.Chrome, Group(
		userOrdersTable(d.Orders, true),
		Section("user.submit_repair", Form("/user/orders", "user.submit",
			Field{Name: "vehicleId", Label: "col.vehicle", Type: "select", Value: formVehicle, Options: vehicleOpts, Required: true},
			Field{Name: "repairType", Label: "col.repair_type", Value: d.Form.RepairType, Required: true},
			Field{Name: "issue", Label: "col.issue", Type: "textarea", Value: d.Form.Issue, Required: true},
			Field{Name: "priority", Label: "col.priority", Type: "select", Value: d.Form.Priority, Options: priorityOptions},
			Field{Name: "additionalInfo", Label: "user.additional_info", Type: "textarea", Value: d.Form.AdditionalInfo},
		)),
	))
}

// userOrdersTable — таблица заказов клиента. withFeedback добавляет
// колонку отзыва для завершённых заказов.
func userOrdersTable(orders []model.RepairOrder, withFeedback bool) templ.Component {
	headers := []string{"col.id", "col.vehicle", "col.issue", "col.status", "col.worker", "col.created"}
	if withFeedback {
		headers = append(headers, "col.feedback")
	}
	rows := make([][]templ.Component, 0, len(orders))
	for _, o := range orders {
		row := []templ.Component{
			Text(Int(o.ID)), Text(vehicleLabel(o)), Text(o.Issue), StatusLabel(o.Status),
			Text(Dash(o.WorkerName)), Text(Dash(o.CreateTime)),
		}
		if withFeedback {
			row = append(row, feedbackCell(o))
		}
		rows = append(rows, row)
	}
	return Table(headers, rows)
}

func feedbackCell(o model.RepairOrder) templ.Component {
	switch {
	case o.HasFeedback:
		return T("user.feedback_given")
	case o.Status == order.StatusCompleted:
		return Form("/user/orders/"+Int(o.ID)+"/feedback", "user.send_feedback",
			Field{Name: "rating", Label: "col.rating", Type: "select", Value: "5", Options: ratingOptions},
			Field{Name: "content", Label: "col.comment", Type: "textarea"},
		)
	default:
		return Text("—")
	}
}

// RepairLogsData — журнал ремонтов (клиент и администратор).
type RepairLogsData struct {
	Chrome
	Logs []model.RepairLog
}

// RepairLogs — таблица журнала ремонтов.
func RepairLogs(d RepairLogsData) templ.Component {
	rows := make([][]templ.Component, 0, len(d.Logs))
	for _, l := range d.Logs {
		plate := l.LicensePlate
		if plate == "" && l.VehicleInfo != nil {
			plate = l.VehicleInfo.LicensePlate
		}
		rows = append(rows, []templ.Component{
			Text(Int(l.OrderID)), Text(Dash(plate)), Text(l.Issue), Text(l.RepairDescription),
			Text(Dash(l.WorkerName)), Text(Money(l.MaterialsCost)), Text(Money(l.LaborCost)),
			Text(Money(l.TotalCost)), Text(Dash(l.CompletionTime)),
		})
	}
	return Layout(d.Chrome, Table([]string{
		"col.order", "col.vehicle", "col.issue", "col.description", "col.worker",
		"col.materials_cost", "col.labor_cost", "col.total_cost", "col.completed",
	}, rows))
}
