package model

import "github.com/bigkaa/repairshop-portal/internal/domain/order"

// Vehicle — автомобиль клиента.
type Vehicle struct {
	VehicleID    int64  `json:"vehicleId"`
	LicensePlate string `json:"licensePlate" validate:"required"`
	Brand        string `json:"brand" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Year         int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	VIN          string `json:"vin" validate:"omitempty,len=17"`
}

// VehicleInfo — краткие сведения об автомобиле в составе заказа.
type VehicleInfo struct {
	LicensePlate string `json:"licensePlate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
}

// RepairOrder — заказ на ремонт.
type RepairOrder struct {
	ID                      int64        `json:"id"`
	Issue                   string       `json:"issue"`
	Status                  order.Status `json:"status"`
	VehicleID               int64        `json:"vehicleId"`
	LicensePlate            string       `json:"licensePlate,omitempty"`
	WorkerID                *int64       `json:"workerId,omitempty"`
	WorkerName              string       `json:"workerName,omitempty"`
	CreateTime              string       `json:"createTime,omitempty"`
	AssignTime              string       `json:"assignTime,omitempty"`
	EstimatedCompletionTime string       `json:"estimatedCompletionTime,omitempty"`
	RepairType              string       `json:"repairType,omitempty"`
	RepairSolution          string       `json:"repairSolution,omitempty"`
	RepairResult            string       `json:"repairResult,omitempty"`
	FeedbackID              *int64       `json:"feedbackId,omitempty"`
	HasFeedback             bool         `json:"hasFeedback,omitempty"`
	VehicleInfo             *VehicleInfo `json:"vehicleInfo,omitempty"`
	CustomerPhone           string       `json:"customerPhone,omitempty"`
	Priority                string       `json:"priority,omitempty"`
	Notes                   string       `json:"notes,omitempty"`
	EstimatedHours          float64      `json:"estimatedHours,omitempty"`
}

// RepairLog — запись журнала выполненного ремонта.
type RepairLog struct {
	ID                int64        `json:"id"`
	OrderID           int64        `json:"orderId"`
	VehicleID         int64        `json:"vehicleId"`
	LicensePlate      string       `json:"licensePlate,omitempty"`
	Issue             string       `json:"issue"`
	RepairDescription string       `json:"repairDescription"`
	MaterialsCost     float64      `json:"materialsCost"`
	LaborCost         float64      `json:"laborCost"`
	TotalCost         float64      `json:"totalCost"`
	WorkerName        string       `json:"workerName"`
	SubmitTime        string       `json:"submitTime,omitempty"`
	CompletionTime    string       `json:"completionTime,omitempty"`
	LaborHours        float64      `json:"laborHours,omitempty"`
	VehicleInfo       *VehicleInfo `json:"vehicleInfo,omitempty"`
}

// SubmitRepairRequest — заявка клиента на ремонт.
type SubmitRepairRequest struct {
	VehicleID      int64  `json:"vehicleId" validate:"required,gt=0"`
	Issue          string `json:"issue" validate:"required"`
	RepairType     string `json:"repairType" validate:"required"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	Priority       string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
}

// FeedbackRequest — отзыв клиента о выполненном заказе.
type FeedbackRequest struct {
	RepairOrderID int64  `json:"repairOrderId" validate:"required,gt=0"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Content       string `json:"content" validate:"max=1000"`
}

// Feedback — отзыв клиента.
type Feedback struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"orderId"`
	Rating     int    `json:"rating"`
	Content    string `json:"content"`
	Category   string `json:"category,omitempty"`
	SubmitTime string `json:"submitTime,omitempty"`
}
