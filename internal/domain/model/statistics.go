package model

// StatisticsFilter — общий фильтр статистических запросов.
// Пустые поля в запрос не попадают.
type StatisticsFilter struct {
	StartDate   string
	EndDate     string
	VehicleType string
	RepairType  string
	WorkerID    int64
	Status      string
	Period      string
	Year        int
	Quarter     int
	Month       int
	GroupBy     string
	MinDays     int
}

// VehicleTypeStats — статистика ремонтов по типам автомобилей.
type VehicleTypeStats struct {
	VehicleType   string  `json:"vehicleType"`
	RepairCount   int     `json:"repairCount"`
	AverageCost   float64 `json:"averageCost"`
	TotalCost     float64 `json:"totalCost"`
	AverageRating float64 `json:"averageRating,omitempty"`
}

// VehicleRepairStats — статистика по марке и модели.
type VehicleRepairStats struct {
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	RepairCount  int      `json:"repairCount"`
	AverageCost  float64  `json:"averageCost"`
	CommonIssues []string `json:"commonIssues"`
}

// CostBreakdown — строка разбивки затрат.
type CostBreakdown struct {
	Category     string  `json:"category"`
	TotalCost    float64 `json:"totalCost"`
	LaborCost    float64 `json:"laborCost"`
	MaterialCost float64 `json:"materialCost"`
}

// CostAnalysis — анализ затрат за период.
type CostAnalysis struct {
	Period            string          `json:"period"`
	TotalCost         float64         `json:"totalCost"`
	LaborCostRatio    float64         `json:"laborCostRatio"`
	MaterialCostRatio float64         `json:"materialCostRatio"`
	Breakdown         []CostBreakdown `json:"breakdown"`
}

// NegativeFeedbackWorker — негативные отзывы по мастеру.
type NegativeFeedbackWorker struct {
	WorkerID      int64   `json:"workerId"`
	WorkerName    string  `json:"workerName"`
	NegativeCount int     `json:"negativeCount"`
	AverageRating float64 `json:"averageRating"`
}

// NegativeFeedback — сводка негативных отзывов.
type NegativeFeedback struct {
	TotalNegativeFeedback int                      `json:"totalNegativeFeedback"`
	Feedbacks             []Feedback               `json:"feedbacks"`
	WorkerStats           []NegativeFeedbackWorker `json:"workerStats"`
}

// SpecialtyWorkload — загрузка по специализации.
type SpecialtyWorkload struct {
	Specialty           string  `json:"specialty"`
	WorkerCount         int     `json:"workerCount"`
	ReceivedTasks       int     `json:"receivedTasks"`
	CompletedTasks      int     `json:"completedTasks"`
	TaskRatio           float64 `json:"taskRatio"`
	CompletionRate      float64 `json:"completionRate"`
	AverageHoursPerTask float64 `json:"averageHoursPerTask"`
}

// PendingGroup — группа незавершённых задач.
type PendingGroup struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PendingTasks — незавершённые задачи.
type PendingTasks struct {
	TotalPendingTasks int            `json:"totalPendingTasks"`
	ByStatus          map[string]int `json:"byStatus"`
	BySpecialty       []PendingGroup `json:"bySpecialty"`
	ByVehicle         []PendingGroup `json:"byVehicle"`
}
