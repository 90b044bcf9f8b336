package service

import (
	"context"
	"fmt"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
)

// UserService — самообслуживание клиента.
type UserService struct {
	client *apiclient.Client
}

// NewUserService создаёт UserService.
func NewUserService(client *apiclient.Client) *UserService {
	return &UserService{client: client}
}

// SubmitRepair создаёт заявку на ремонт (POST /submit).
// Возвращает созданный заказ в статусе PENDING.
func (s *UserService) SubmitRepair(ctx context.Context, req model.SubmitRepairRequest) (*model.RepairOrder, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	o, err := apiclient.Post[model.RepairOrder](ctx, s.client, "/submit", req)
	if err != nil {
		return nil, fmt.Errorf("создание заявки на ремонт: %w", err)
	}
	return &o, nil
}

// Vehicles — автомобили клиента (GET /query/vehicle).
func (s *UserService) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	v, err := apiclient.Get[[]model.Vehicle](ctx, s.client, "/query/vehicle", nil)
	if err != nil {
		return nil, fmt.Errorf("список автомобилей: %w", err)
	}
	return v, nil
}

// AddVehicle регистрирует автомобиль (POST /vehicle).
func (s *UserService) AddVehicle(ctx context.Context, v model.Vehicle) (*model.Vehicle, error) {
	if err := validateStruct(v); err != nil {
		return nil, err
	}
	created, err := apiclient.Post[model.Vehicle](ctx, s.client, "/vehicle", v)
	if err != nil {
		return nil, fmt.Errorf("добавление автомобиля %s: %w", v.LicensePlate, err)
	}
	return &created, nil
}

// RepairLogs — журнал ремонтов клиента (GET /query/repair-log).
func (s *UserService) RepairLogs(ctx context.Context) ([]model.RepairLog, error) {
	logs, err := apiclient.Get[[]model.RepairLog](ctx, s.client, "/query/repair-log", nil)
	if err != nil {
		return nil, fmt.Errorf("журнал ремонтов: %w", err)
	}
	return logs, nil
}

// RepairOrders — заказы клиента (GET /query/repair-order).
// hasFeedback вычисляется по наличию feedbackId.
func (s *UserService) RepairOrders(ctx context.Context) ([]model.RepairOrder, error) {
	orders, err := apiclient.Get[[]model.RepairOrder](ctx, s.client, "/query/repair-order", nil)
	if err != nil {
		return nil, fmt.Errorf("заказы клиента: %w", err)
	}
	for i := range orders {
		orders[i].HasFeedback = orders[i].FeedbackID != nil
	}
	return orders, nil
}

// SubmitFeedback оставляет отзыв (POST /feedback) и возвращает
// обновлённый заказ.
func (s *UserService) SubmitFeedback(ctx context.Context, req model.FeedbackRequest) (*model.RepairOrder, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	o, err := apiclient.Post[model.RepairOrder](ctx, s.client, "/feedback", req)
	if err != nil {
		return nil, fmt.Errorf("отзыв по заказу %d: %w", req.RepairOrderID, err)
	}
	o.HasFeedback = true
	return &o, nil
}
