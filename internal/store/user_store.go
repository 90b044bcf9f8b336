package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// UserAPI — операции backend для клиента. Реализуется *service.UserService.
type UserAPI interface {
	Vehicles(ctx context.Context) ([]model.Vehicle, error)
	AddVehicle(ctx context.Context, v model.Vehicle) (*model.Vehicle, error)
	RepairOrders(ctx context.Context) ([]model.RepairOrder, error)
	RepairLogs(ctx context.Context) ([]model.RepairLog, error)
	SubmitRepair(ctx context.Context, req model.SubmitRepairRequest) (*model.RepairOrder, error)
	SubmitFeedback(ctx context.Context, req model.FeedbackRequest) (*model.RepairOrder, error)
}

// UserStore — данные клиента: автомобили, заказы, журнал ремонтов.
type UserStore struct {
	base
	api UserAPI

	vehicles []model.Vehicle
	orders   []model.RepairOrder
	logs     []model.RepairLog
}

// NewUserStore создаёт хранилище клиента.
func NewUserStore(api UserAPI, logger *slog.Logger) *UserStore {
	s := &UserStore{api: api}
	s.init("user", logger)
	return s
}

// Vehicles возвращает копию списка автомобилей.
func (s *UserStore) Vehicles() []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.vehicles)
}

// RepairOrders возвращает копию списка заказов.
func (s *UserStore) RepairOrders() []model.RepairOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// RepairLogs возвращает копию журнала ремонтов.
func (s *UserStore) RepairLogs() []model.RepairLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs)
}

// FetchVehicles загружает автомобили клиента.
func (s *UserStore) FetchVehicles(ctx context.Context) error {
	return s.run(ctx, "fetchVehicles", func(ctx context.Context) error {
		v, err := s.api.Vehicles(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.vehicles = v
		s.mu.Unlock()
		return nil
	})
}

// AddVehicle регистрирует автомобиль и добавляет его в кэш.
func (s *UserStore) AddVehicle(ctx context.Context, v model.Vehicle) (*model.Vehicle, error) {
	var created *model.Vehicle
	err := s.run(ctx, "addVehicle", func(ctx context.Context) error {
		var err error
		created, err = s.api.AddVehicle(ctx, v)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.vehicles = append(s.vehicles, *created)
		s.mu.Unlock()
		return nil
	})
	return created, err
}

// FetchRepairOrders загружает заказы клиента.
func (s *UserStore) FetchRepairOrders(ctx context.Context) error {
	return s.run(ctx, "fetchRepairOrders", s.loadOrders)
}

func (s *UserStore) loadOrders(ctx context.Context) error {
	o, err := s.api.RepairOrders(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.orders = o
	s.mu.Unlock()
	return nil
}

// FetchRepairLogs загружает журнал ремонтов.
func (s *UserStore) FetchRepairLogs(ctx context.Context) error {
	return s.run(ctx, "fetchRepairLogs", func(ctx context.Context) error {
		l, err := s.api.RepairLogs(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.logs = l
		s.mu.Unlock()
		return nil
	})
}

// SubmitRepair создаёт заявку и добавляет ровно один заказ в статусе
// PENDING в конец списка.
func (s *UserStore) SubmitRepair(ctx context.Context, req model.SubmitRepairRequest) (*model.RepairOrder, error) {
	var created *model.RepairOrder
	err := s.run(ctx, "submitRepair", func(ctx context.Context) error {
		o, err := s.api.SubmitRepair(ctx, req)
		if err != nil {
			return err
		}
		if o.Status == order.StatusNone {
			o.Status, _ = order.Transition(order.StatusNone, order.ActionSubmit, role.User)
		}
		if o.VehicleID == 0 {
			o.VehicleID = req.VehicleID
		}
		created = o
		s.mu.Lock()
		s.orders = append(s.orders, *o)
		s.mu.Unlock()
		return nil
	})
	return created, err
}

// SubmitFeedback оставляет отзыв и подставляет обновлённый заказ в кэш.
func (s *UserStore) SubmitFeedback(ctx context.Context, req model.FeedbackRequest) error {
	return s.run(ctx, "submitFeedback", func(ctx context.Context) error {
		o, err := s.api.SubmitFeedback(ctx, req)
		if err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if o.ID != 0 {
			s.orders = upsertOrder(s.orders, *o)
			return nil
		}
		// backend не вернул заказ: отмечаем отзыв у закэшированного
		for i := range s.orders {
			if s.orders[i].ID == req.RepairOrderID {
				s.orders[i].HasFeedback = true
			}
		}
		return nil
	})
}

// Reset очищает кэш (при завершении сессии).
func (s *UserStore) Reset() {
	s.mu.Lock()
	s.vehicles, s.orders, s.logs = nil, nil, nil
	s.errMsg = ""
	s.mu.Unlock()
	s.emit("reset", PhaseReset)
}
