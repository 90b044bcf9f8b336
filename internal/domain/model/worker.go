package model

import "github.com/bigkaa/repairshop-portal/internal/domain/order"

// OrderRef — тело запросов, адресующих заказ по id.
type OrderRef struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

// RejectRequest — отказ мастера от заказа с указанием причины.
type RejectRequest struct {
	OrderID int64  `json:"orderId" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required"`
}

// UpdateOrderRequest — изменение статуса и результатов ремонта мастером.
type UpdateOrderRequest struct {
	OrderID      int64        `json:"orderId" validate:"required,gt=0"`
	Status       order.Status `json:"status" validate:"required"`
	Description  string       `json:"description,omitempty"`
	RepairResult string       `json:"repairResult,omitempty"`
	LaborCost    *float64     `json:"laborCost,omitempty" validate:"omitempty,gte=0"`
	LaborHours   *float64     `json:"laborHours,omitempty" validate:"omitempty,gte=0"`
}

// CompleteOrderRequest — завершение ремонта.
type CompleteOrderRequest struct {
	LaborHours  float64 `validate:"gt=0"`
	Description string  `validate:"required"`
	Suggestion  string
}

// MaterialRequest — добавление материала к заказу.
type MaterialRequest struct {
	OrderID  int64   `json:"orderId" validate:"required,gt=0"`
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// Material — использованный материал.
type Material struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"orderId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	TotalCost float64 `json:"totalCost"`
	Supplier  string  `json:"supplier,omitempty"`
}

// Earning — сводка заработка мастера.
type Earning struct {
	TotalEarnings     float64 `json:"totalEarnings"`
	ThisMonthEarnings float64 `json:"thisMonthEarnings"`
	CompletedOrders   int     `json:"completedOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// WorkerPerformance — показатели мастера.
type WorkerPerformance struct {
	WorkerID             int64   `json:"workerId"`
	WorkerName           string  `json:"workerName"`
	Specialty            string  `json:"specialty"`
	CompletedOrders      int     `json:"completedOrders"`
	TotalHours           float64 `json:"totalHours"`
	TotalEarnings        float64 `json:"totalEarnings"`
	Efficiency           float64 `json:"efficiency"`
	CompletionRate       float64 `json:"completionRate"`
	AverageRating        float64 `json:"averageRating"`
	OnTimeCompletionRate float64 `json:"onTimeCompletionRate"`
}

// WorkerPendingStatistics — статистика незавершённых заказов мастера.
type WorkerPendingStatistics struct {
	TotalPending int            `json:"totalPending"`
	ByStatus     map[string]int `json:"byStatus"`
	OldestDays   int            `json:"oldestDays"`
}
