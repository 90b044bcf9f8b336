package model

import "github.com/bigkaa/repairshop-portal/internal/domain/order"

// AssignOrderRequest — назначение заказа мастеру.
type AssignOrderRequest struct {
	WorkerID       int64   `json:"workerId" validate:"required,gt=0"`
	Priority       string  `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	EstimatedHours float64 `json:"estimatedHours,omitempty" validate:"gte=0"`
	Notes          string  `json:"notes,omitempty"`
}

// BatchSubmitRequest — пакетное создание заказов администратором.
type BatchSubmitRequest struct {
	Orders []SubmitRepairRequest `json:"orders" validate:"required,min=1,dive"`
}

// BatchSubmitResult — результат пакетного создания (частичный успех допустим).
type BatchSubmitResult struct {
	TotalSubmitted      int      `json:"totalSubmitted"`
	SuccessfullyCreated int      `json:"successfullyCreated"`
	Failed              int      `json:"failed"`
	CreatedOrderIDs     []int64  `json:"createOrderIds"`
	FailureReasons      []string `json:"failureReasons,omitempty"`
}

// RollbackRequest — откат заказа в предыдущий статус.
type RollbackRequest struct {
	Reason           string       `json:"reason" validate:"required"`
	RollbackToStatus order.Status `json:"rollbackToStatus" validate:"required"`
}

// RollbackResult — результат отката.
type RollbackResult struct {
	OrderID        int64        `json:"orderId"`
	PreviousStatus order.Status `json:"previousStatus"`
	CurrentStatus  order.Status `json:"currentStatus"`
	RollbackTime   string       `json:"rollbackTime"`
	Reason         string       `json:"reason"`
}

// BatchDeleteResult — результат пакетного удаления (частичный успех допустим).
// DeletedOrderIDs перечисляет фактически удалённые заказы, если backend их
// возвращает.
type BatchDeleteResult struct {
	TotalRequested      int      `json:"totalRequested"`
	SuccessfullyDeleted int      `json:"successfullyDeleted"`
	Failed              int      `json:"failed"`
	DeletedOrderIDs     []int64  `json:"deletedOrderIds,omitempty"`
	FailureReasons      []string `json:"failureReasons,omitempty"`
}

// MonthlySettlementRequest — запуск месячного расчёта.
type MonthlySettlementRequest struct {
	Year             int  `json:"year" validate:"required,min=2000,max=2100"`
	Month            int  `json:"month" validate:"required,min=1,max=12"`
	SettleIncomplete bool `json:"settleIncomplete,omitempty"`
}

// MonthlySettlement — расчёт мастера за месяц.
type MonthlySettlement struct {
	WorkerID        int64   `json:"workerId"`
	WorkerName      string  `json:"workerName"`
	SettlementMonth string  `json:"settlementMonth"`
	BaseSalary      float64 `json:"baseSalary"`
	Bonus           float64 `json:"bonus"`
	TotalEarnings   float64 `json:"totalEarnings"`
	SettlementDate  string  `json:"settlementDate"`
	Status          string  `json:"status,omitempty"`
}

// SettlementFilter — фильтр списка расчётов.
type SettlementFilter struct {
	Year     int
	Month    int
	WorkerID int64
	Status   string
}

// SystemStats — сводка мониторинга (GET /admin/monitor-info).
type SystemStats struct {
	TotalUsers        int     `json:"totalUsers"`
	TotalWorkers      int     `json:"totalWorkers"`
	TotalOrders       int     `json:"totalOrders"`
	PendingOrders     int     `json:"pendingOrders"`
	CompletedOrders   int     `json:"completedOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRepairTime float64 `json:"averageRepairTime"`
}

// AdminStatisticsOverview — финансовая сводка.
type AdminStatisticsOverview struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalLaborCost        float64 `json:"totalLaborCost"`
	TotalMaterialCost     float64 `json:"totalMaterialCost"`
	NetIncome             float64 `json:"netIncome"`
	TotalRepairOrders     int     `json:"totalRepairOrders"`
	CompletedRepairOrders int     `json:"completedRepairOrders"`
	AverageCustomerRating float64 `json:"averageCustomerRating"`
}

// SystemHealth — состояние backend.
type SystemHealth struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

// SystemStatus — нагрузка backend.
type SystemStatus struct {
	Uptime        string  `json:"uptime"`
	ActiveUsers   int     `json:"activeUsers"`
	ActiveWorkers int     `json:"activeWorkers"`
	SystemLoad    float64 `json:"systemLoad"`
	MemoryUsage   float64 `json:"memoryUsage"`
	DiskUsage     float64 `json:"diskUsage"`
}

// BlockchainProof — подтверждение заказа в журнале блокчейна.
type BlockchainProof struct {
	OrderID         int64  `json:"orderId"`
	BlockHash       string `json:"blockHash"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       string `json:"timestamp"`
	Verified        bool   `json:"verified"`
	ProofData       struct {
		OrderStatus    order.Status `json:"orderStatus"`
		CompletionTime string       `json:"completionTime"`
		TotalCost      float64      `json:"totalCost"`
		WorkerID       int64        `json:"workerId"`
	} `json:"proofData"`
}

// AuditLog — запись журнала аудита.
type AuditLog struct {
	ID         int64  `json:"id"`
	Action     string `json:"action"`
	EntityType string `json:"entityType"`
	EntityID   int64  `json:"entityId"`
	UserID     int64  `json:"userId"`
	Details    string `json:"details"`
	Timestamp  string `json:"timestamp"`
}

// AuditLogFilter — фильтр журнала аудита.
type AuditLogFilter struct {
	EntityType string
	EntityID   int64
	Action     string
	StartTime  string
	EndTime    string
	Username   string
	Page       int
	Size       int
}
