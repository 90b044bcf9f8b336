package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
)

// WorkerService — действия мастера над назначенными заказами.
type WorkerService struct {
	client *apiclient.Client
}

// NewWorkerService создаёт WorkerService.
func NewWorkerService(client *apiclient.Client) *WorkerService {
	return &WorkerService{client: client}
}

// AssignedOrders — назначенные мастеру заказы (GET /worker/repair-order).
func (s *WorkerService) AssignedOrders(ctx context.Context) ([]model.RepairOrder, error) {
	orders, err := apiclient.Get[[]model.RepairOrder](ctx, s.client, "/worker/repair-order", nil)
	if err != nil {
		return nil, fmt.Errorf("назначенные заказы: %w", err)
	}
	return orders, nil
}

// ProcessedOrders — обработанные мастером заказы (GET /worker/query/repair-order).
func (s *WorkerService) ProcessedOrders(ctx context.Context) ([]model.RepairOrder, error) {
	orders, err := apiclient.Get[[]model.RepairOrder](ctx, s.client, "/worker/query/repair-order", nil)
	if err != nil {
		return nil, fmt.Errorf("обработанные заказы: %w", err)
	}
	return orders, nil
}

// AcceptOrder принимает заказ (POST /worker/repair-order/accept).
func (s *WorkerService) AcceptOrder(ctx context.Context, orderID int64) error {
	if err := requireID("orderId", orderID); err != nil {
		return err
	}
	if _, err := apiclient.Post[struct{}](ctx, s.client, "/worker/repair-order/accept", model.OrderRef{OrderID: orderID}); err != nil {
		return fmt.Errorf("принятие заказа %d: %w", orderID, err)
	}
	return nil
}

// RejectOrder отказывается от заказа (POST /worker/repair-order/reject).
// Пустая причина или причина из пробелов — ошибка валидации без запроса.
func (s *WorkerService) RejectOrder(ctx context.Context, orderID int64, reason string) error {
	if err := requireText("reason", reason); err != nil {
		return err
	}
	if err := requireID("orderId", orderID); err != nil {
		return err
	}
	req := model.RejectRequest{OrderID: orderID, Reason: reason}
	if _, err := apiclient.Post[struct{}](ctx, s.client, "/worker/repair-order/reject", req); err != nil {
		return fmt.Errorf("отказ от заказа %d: %w", orderID, err)
	}
	return nil
}

// UpdateOrder изменяет статус и результаты ремонта (POST /worker/repair-order/update).
func (s *WorkerService) UpdateOrder(ctx context.Context, req model.UpdateOrderRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if !req.Status.IsValid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("неизвестный статус %q", req.Status)}
	}
	if _, err := apiclient.Post[struct{}](ctx, s.client, "/worker/repair-order/update", req); err != nil {
		return fmt.Errorf("обновление заказа %d: %w", req.OrderID, err)
	}
	return nil
}

// StartOrder переводит заказ в IN_PROGRESS.
func (s *WorkerService) StartOrder(ctx context.Context, orderID int64) error {
	return s.UpdateOrder(ctx, model.UpdateOrderRequest{OrderID: orderID, Status: order.StatusInProgress})
}

// CompleteOrder завершает ремонт: трудозатраты, описание и рекомендация.
func (s *WorkerService) CompleteOrder(ctx context.Context, orderID int64, req model.CompleteOrderRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := requireText("description", req.Description); err != nil {
		return err
	}
	hours := req.LaborHours
	return s.UpdateOrder(ctx, model.UpdateOrderRequest{
		OrderID:      orderID,
		Status:       order.StatusCompleted,
		Description:  req.Description,
		RepairResult: req.Suggestion,
		LaborHours:   &hours,
	})
}

// AddMaterial добавляет материал к заказу (POST /worker/material).
func (s *WorkerService) AddMaterial(ctx context.Context, req model.MaterialRequest) (*model.Material, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	m, err := apiclient.Post[model.Material](ctx, s.client, "/worker/material", req)
	if err != nil {
		return nil, fmt.Errorf("добавление материала к заказу %d: %w", req.OrderID, err)
	}
	return &m, nil
}

// Materials — материалы заказа (GET /worker/material?orderId=).
func (s *WorkerService) Materials(ctx context.Context, orderID int64) ([]model.Material, error) {
	if err := requireID("orderId", orderID); err != nil {
		return nil, err
	}
	q := url.Values{"orderId": {strconv.FormatInt(orderID, 10)}}
	m, err := apiclient.Get[[]model.Material](ctx, s.client, "/worker/material", q)
	if err != nil {
		return nil, fmt.Errorf("материалы заказа %d: %w", orderID, err)
	}
	return m, nil
}

// Earnings — общий заработок (GET /worker/query/earnings).
func (s *WorkerService) Earnings(ctx context.Context) (float64, error) {
	total, err := apiclient.Get[float64](ctx, s.client, "/worker/query/earnings", nil)
	if err != nil {
		return 0, fmt.Errorf("заработок мастера: %w", err)
	}
	return total, nil
}

// DetailedEarnings — подробная сводка заработка (GET /worker/query/detailed-earnings).
func (s *WorkerService) DetailedEarnings(ctx context.Context) (*model.Earning, error) {
	e, err := apiclient.Get[model.Earning](ctx, s.client, "/worker/query/detailed-earnings", nil)
	if err != nil {
		return nil, fmt.Errorf("подробный заработок: %w", err)
	}
	return &e, nil
}

// Performance — показатели мастера (GET /worker/query/performance).
func (s *WorkerService) Performance(ctx context.Context) (*model.WorkerPerformance, error) {
	p, err := apiclient.Get[model.WorkerPerformance](ctx, s.client, "/worker/query/performance", nil)
	if err != nil {
		return nil, fmt.Errorf("показатели мастера: %w", err)
	}
	return &p, nil
}

// Settlements — месячные расчёты мастера (GET /worker/query/settlements).
func (s *WorkerService) Settlements(ctx context.Context) ([]model.MonthlySettlement, error) {
	st, err := apiclient.Get[[]model.MonthlySettlement](ctx, s.client, "/worker/query/settlements", nil)
	if err != nil {
		return nil, fmt.Errorf("расчёты мастера: %w", err)
	}
	return st, nil
}

// PendingStatistics — статистика незавершённых заказов (GET /worker/statistics/pending-orders).
func (s *WorkerService) PendingStatistics(ctx context.Context) (*model.WorkerPendingStatistics, error) {
	st, err := apiclient.Get[model.WorkerPendingStatistics](ctx, s.client, "/worker/statistics/pending-orders", nil)
	if err != nil {
		return nil, fmt.Errorf("статистика незавершённых заказов: %w", err)
	}
	return &st, nil
}
