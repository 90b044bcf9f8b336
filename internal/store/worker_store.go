package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// WorkerAPI — операции backend для мастера. Реализуется *service.WorkerService.
type WorkerAPI interface {
	AssignedOrders(ctx context.Context) ([]model.RepairOrder, error)
	ProcessedOrders(ctx context.Context) ([]model.RepairOrder, error)
	AcceptOrder(ctx context.Context, orderID int64) error
	RejectOrder(ctx context.Context, orderID int64, reason string) error
	StartOrder(ctx context.Context, orderID int64) error
	CompleteOrder(ctx context.Context, orderID int64, req model.CompleteOrderRequest) error
	AddMaterial(ctx context.Context, req model.MaterialRequest) (*model.Material, error)
	Materials(ctx context.Context, orderID int64) ([]model.Material, error)
	Earnings(ctx context.Context) (float64, error)
	DetailedEarnings(ctx context.Context) (*model.Earning, error)
	Performance(ctx context.Context) (*model.WorkerPerformance, error)
	Settlements(ctx context.Context) ([]model.MonthlySettlement, error)
	PendingStatistics(ctx context.Context) (*model.WorkerPendingStatistics, error)
}

// WorkerStore — данные мастера: назначенные и обработанные заказы,
// материалы, заработок, показатели.
type WorkerStore struct {
	base
	api WorkerAPI

	assigned    []model.RepairOrder
	processed   []model.RepairOrder
	materials   map[int64][]model.Material
	earnings    float64
	detailed    *model.Earning
	performance *model.WorkerPerformance
	settlements []model.MonthlySettlement
	pending     *model.WorkerPendingStatistics
}

// NewWorkerStore создаёт хранилище мастера.
func NewWorkerStore(api WorkerAPI, logger *slog.Logger) *WorkerStore {
	s := &WorkerStore{api: api, materials: make(map[int64][]model.Material)}
	s.init("worker", logger)
	return s
}

// AssignedOrders возвращает копию назначенных заказов.
func (s *WorkerStore) AssignedOrders() []model.RepairOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.assigned)
}

// ProcessedOrders возвращает копию обработанных заказов.
func (s *WorkerStore) ProcessedOrders() []model.RepairOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.processed)
}

// Materials возвращает материалы заказа.
func (s *WorkerStore) Materials(orderID int64) []model.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.materials[orderID])
}

// Earnings возвращает общий заработок.
func (s *WorkerStore) Earnings() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.earnings
}

// DetailedEarnings возвращает подробную сводку заработка или nil.
func (s *WorkerStore) DetailedEarnings() *model.Earning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailed
}

// Performance возвращает показатели или nil.
func (s *WorkerStore) Performance() *model.WorkerPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.performance
}

// Settlements возвращает месячные расчёты мастера.
func (s *WorkerStore) Settlements() []model.MonthlySettlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settlements)
}

// PendingStatistics возвращает статистику незавершённых заказов или nil.
func (s *WorkerStore) PendingStatistics() *model.WorkerPendingStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// FetchAssignedOrders загружает назначенные заказы.
func (s *WorkerStore) FetchAssignedOrders(ctx context.Context) error {
	return s.run(ctx, "fetchAssignedOrders", s.loadAssigned)
}

func (s *WorkerStore) loadAssigned(ctx context.Context) error {
	o, err := s.api.AssignedOrders(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.assigned = o
	s.mu.Unlock()
	return nil
}

// FetchProcessedOrders загружает обработанные заказы.
func (s *WorkerStore) FetchProcessedOrders(ctx context.Context) error {
	return s.run(ctx, "fetchProcessedOrders", s.loadProcessed)
}

func (s *WorkerStore) loadProcessed(ctx context.Context) error {
	o, err := s.api.ProcessedOrders(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.processed = o
	s.mu.Unlock()
	return nil
}

// AcceptOrder принимает заказ: ASSIGNED → ACCEPTED.
func (s *WorkerStore) AcceptOrder(ctx context.Context, orderID int64) error {
	return s.transition(ctx, "acceptOrder", orderID, order.ActionAccept, func(ctx context.Context) error {
		return s.api.AcceptOrder(ctx, orderID)
	})
}

// RejectOrder отказывается от заказа: ASSIGNED → REJECTED.
// Пустая причина — ошибка валидации без запроса к backend.
func (s *WorkerStore) RejectOrder(ctx context.Context, orderID int64, reason string) error {
	return s.transition(ctx, "rejectOrder", orderID, order.ActionReject, func(ctx context.Context) error {
		return s.api.RejectOrder(ctx, orderID, reason)
	})
}

// StartOrder начинает ремонт: ACCEPTED → IN_PROGRESS.
func (s *WorkerStore) StartOrder(ctx context.Context, orderID int64) error {
	return s.transition(ctx, "startOrder", orderID, order.ActionStart, func(ctx context.Context) error {
		return s.api.StartOrder(ctx, orderID)
	})
}

// CompleteOrder завершает ремонт: IN_PROGRESS → COMPLETED.
func (s *WorkerStore) CompleteOrder(ctx context.Context, orderID int64, req model.CompleteOrderRequest) error {
	return s.transition(ctx, "completeOrder", orderID, order.ActionComplete, func(ctx context.Context) error {
		return s.api.CompleteOrder(ctx, orderID, req)
	})
}

// transition — общая схема действия мастера: вызов backend, локальная
// смена статуса, перечитывание назначенных заказов.
func (s *WorkerStore) transition(ctx context.Context, name string, orderID int64, action order.Action, call func(ctx context.Context) error) error {
	return s.run(ctx, name, func(ctx context.Context) error {
		if err := call(ctx); err != nil {
			return err
		}

		s.mu.Lock()
		patched := s.patchStatus(s.assigned, orderID, action, transitionTo(action, role.Worker))
		s.mu.Unlock()
		if patched {
			s.emit(name, PhaseOptimistic)
		}

		s.reconcile(ctx, name, s.loadAssigned)
		return nil
	})
}

// AddMaterial добавляет материал к заказу.
func (s *WorkerStore) AddMaterial(ctx context.Context, req model.MaterialRequest) (*model.Material, error) {
	var created *model.Material
	err := s.run(ctx, "addMaterial", func(ctx context.Context) error {
		m, err := s.api.AddMaterial(ctx, req)
		if err != nil {
			return err
		}
		created = m
		s.mu.Lock()
		s.materials[req.OrderID] = append(s.materials[req.OrderID], *m)
		s.mu.Unlock()
		return nil
	})
	return created, err
}

// FetchMaterials загружает материалы заказа.
func (s *WorkerStore) FetchMaterials(ctx context.Context, orderID int64) error {
	return s.run(ctx, "fetchMaterials", func(ctx context.Context) error {
		m, err := s.api.Materials(ctx, orderID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.materials[orderID] = m
		s.mu.Unlock()
		return nil
	})
}

// FetchEarnings загружает общий заработок.
func (s *WorkerStore) FetchEarnings(ctx context.Context) error {
	return s.run(ctx, "fetchEarnings", func(ctx context.Context) error {
		total, err := s.api.Earnings(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.earnings = total
		s.mu.Unlock()
		return nil
	})
}

// FetchDetailedEarnings загружает подробную сводку заработка.
func (s *WorkerStore) FetchDetailedEarnings(ctx context.Context) error {
	return s.run(ctx, "fetchDetailedEarnings", func(ctx context.Context) error {
		e, err := s.api.DetailedEarnings(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.detailed = e
		s.mu.Unlock()
		return nil
	})
}

// FetchPerformance загружает показатели мастера.
func (s *WorkerStore) FetchPerformance(ctx context.Context) error {
	return s.run(ctx, "fetchPerformance", func(ctx context.Context) error {
		p, err := s.api.Performance(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.performance = p
		s.mu.Unlock()
		return nil
	})
}

// FetchSettlements загружает месячные расчёты.
func (s *WorkerStore) FetchSettlements(ctx context.Context) error {
	return s.run(ctx, "fetchSettlements", func(ctx context.Context) error {
		st, err := s.api.Settlements(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.settlements = st
		s.mu.Unlock()
		return nil
	})
}

// FetchPendingStatistics загружает статистику незавершённых заказов.
func (s *WorkerStore) FetchPendingStatistics(ctx context.Context) error {
	return s.run(ctx, "fetchPendingStatistics", func(ctx context.Context) error {
		p, err := s.api.PendingStatistics(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.pending = p
		s.mu.Unlock()
		return nil
	})
}

// Reset очищает кэш (при завершении сессии).
func (s *WorkerStore) Reset() {
	s.mu.Lock()
	s.assigned, s.processed, s.settlements = nil, nil, nil
	s.materials = make(map[int64][]model.Material)
	s.earnings = 0
	s.detailed, s.performance, s.pending = nil, nil, nil
	s.errMsg = ""
	s.mu.Unlock()
	s.emit("reset", PhaseReset)
}
