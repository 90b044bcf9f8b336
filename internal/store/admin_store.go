package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// AdminAPI — операции backend для администратора.
// Реализуется *service.AdminService.
type AdminAPI interface {
	Users(ctx context.Context) ([]model.User, error)
	Workers(ctx context.Context) ([]model.Worker, error)
	RepairOrders(ctx context.Context) ([]model.RepairOrder, error)
	RepairLogs(ctx context.Context) ([]model.RepairLog, error)
	MonitorInfo(ctx context.Context) (*model.SystemStats, error)
	AssignOrder(ctx context.Context, orderID int64, req model.AssignOrderRequest) (*model.RepairOrder, error)
	BatchSubmitOrders(ctx context.Context, req model.BatchSubmitRequest) (*model.BatchSubmitResult, error)
	RollbackOrder(ctx context.Context, orderID int64, req model.RollbackRequest) (*model.RollbackResult, error)
	BatchDeleteOrders(ctx context.Context, orderIDs []int64) (*model.BatchDeleteResult, error)
	BlockchainProof(ctx context.Context, orderID int64) (*model.BlockchainProof, error)
	RunMonthlySettlement(ctx context.Context, req model.MonthlySettlementRequest) ([]model.MonthlySettlement, error)
	WorkerSettlements(ctx context.Context, f model.SettlementFilter) ([]model.MonthlySettlement, error)
	Overview(ctx context.Context) (*model.AdminStatisticsOverview, error)
	SystemHealth(ctx context.Context) (*model.SystemHealth, error)
	SystemStatus(ctx context.Context) (*model.SystemStatus, error)
	AuditLogs(ctx context.Context, f model.AuditLogFilter) (*model.Page[model.AuditLog], error)
	VehicleTypeStats(ctx context.Context, f model.StatisticsFilter) ([]model.VehicleTypeStats, error)
	VehicleRepairStats(ctx context.Context, f model.StatisticsFilter) ([]model.VehicleRepairStats, error)
	CostAnalysis(ctx context.Context, f model.StatisticsFilter) (*model.CostAnalysis, error)
	NegativeFeedback(ctx context.Context, f model.StatisticsFilter) (*model.NegativeFeedback, error)
	SpecialtyWorkload(ctx context.Context, f model.StatisticsFilter) ([]model.SpecialtyWorkload, error)
	PendingTasks(ctx context.Context, f model.StatisticsFilter) (*model.PendingTasks, error)
}

// Statistics — последние загруженные статистические отчёты.
type Statistics struct {
	VehicleTypes      []model.VehicleTypeStats
	VehicleRepairs    []model.VehicleRepairStats
	CostAnalysis      *model.CostAnalysis
	NegativeFeedback  *model.NegativeFeedback
	SpecialtyWorkload []model.SpecialtyWorkload
	PendingTasks      *model.PendingTasks
}

// System — сводки состояния мастерской и backend.
type System struct {
	Overview *model.AdminStatisticsOverview
	Health   *model.SystemHealth
	Status   *model.SystemStatus
	Monitor  *model.SystemStats
}

// AdminStore — данные администратора.
type AdminStore struct {
	base
	api AdminAPI

	users       []model.User
	workers     []model.Worker
	orders      []model.RepairOrder
	logs        []model.RepairLog
	settlements []model.MonthlySettlement
	stats       Statistics
	system      System
	auditLogs   *model.Page[model.AuditLog]
	proofs      map[int64]*model.BlockchainProof
}

// NewAdminStore создаёт хранилище администратора.
func NewAdminStore(api AdminAPI, logger *slog.Logger) *AdminStore {
	s := &AdminStore{api: api, proofs: make(map[int64]*model.BlockchainProof)}
	s.init("admin", logger)
	return s
}

// Users возвращает копию списка клиентов.
func (s *AdminStore) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Workers возвращает копию списка мастеров.
func (s *AdminStore) Workers() []model.Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.workers)
}

// RepairOrders возвращает копию списка заказов.
func (s *AdminStore) RepairOrders() []model.RepairOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// RepairLogs возвращает копию журнала ремонтов.
func (s *AdminStore) RepairLogs() []model.RepairLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs)
}

// Settlements возвращает последние загруженные расчёты мастеров.
func (s *AdminStore) Settlements() []model.MonthlySettlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settlements)
}

// Statistics возвращает загруженные статистические отчёты.
func (s *AdminStore) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// System возвращает сводки состояния.
func (s *AdminStore) System() System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system
}

// AuditLogs возвращает последнюю загруженную страницу журнала аудита.
func (s *AdminStore) AuditLogs() *model.Page[model.AuditLog] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auditLogs
}

// BlockchainProof возвращает загруженное подтверждение заказа или nil.
func (s *AdminStore) BlockchainProof(orderID int64) *model.BlockchainProof {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proofs[orderID]
}

// FetchUsers загружает клиентов.
func (s *AdminStore) FetchUsers(ctx context.Context) error {
	return s.run(ctx, "fetchUsers", func(ctx context.Context) error {
		u, err := s.api.Users(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.users = u
		s.mu.Unlock()
		return nil
	})
}

// FetchWorkers загружает мастеров.
func (s *AdminStore) FetchWorkers(ctx context.Context) error {
	return s.run(ctx, "fetchWorkers", func(ctx context.Context) error {
		w, err := s.api.Workers(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.workers = w
		s.mu.Unlock()
		return nil
	})
}

// FetchRepairOrders загружает все заказы.
func (s *AdminStore) FetchRepairOrders(ctx context.Context) error {
	return s.run(ctx, "fetchRepairOrders", s.loadOrders)
}

func (s *AdminStore) loadOrders(ctx context.Context) error {
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
func (s *AdminStore) FetchRepairLogs(ctx context.Context) error {
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

// AssignOrder назначает заказ мастеру: PENDING → ASSIGNED.
func (s *AdminStore) AssignOrder(ctx context.Context, orderID int64, req model.AssignOrderRequest) error {
	const name = "assignOrder"
	return s.run(ctx, name, func(ctx context.Context) error {
		o, err := s.api.AssignOrder(ctx, orderID, req)
		if err != nil {
			return err
		}

		s.mu.Lock()
		patched := s.patchStatus(s.orders, orderID, order.ActionAssign, transitionTo(order.ActionAssign, role.Admin))
		if patched {
			for i := range s.orders {
				if s.orders[i].ID == orderID {
					workerID := req.WorkerID
					s.orders[i].WorkerID = &workerID
				}
			}
		}
		if o != nil && o.ID == orderID && o.Status.IsValid() {
			s.orders = upsertOrder(s.orders, *o)
			patched = true
		}
		s.mu.Unlock()
		if patched {
			s.emit(name, PhaseOptimistic)
		}

		s.reconcile(ctx, name, s.loadOrders)
		return nil
	})
}

// BatchSubmitOrders создаёт заказы пакетом и перечитывает список.
// Частичный успех возвращается как данные.
func (s *AdminStore) BatchSubmitOrders(ctx context.Context, req model.BatchSubmitRequest) (*model.BatchSubmitResult, error) {
	const name = "batchSubmitOrders"
	var res *model.BatchSubmitResult
	err := s.run(ctx, name, func(ctx context.Context) error {
		var err error
		res, err = s.api.BatchSubmitOrders(ctx, req)
		if err != nil {
			return err
		}
		s.reconcile(ctx, name, s.loadOrders)
		return nil
	})
	return res, err
}

// RollbackOrder откатывает заказ в указанный статус.
func (s *AdminStore) RollbackOrder(ctx context.Context, orderID int64, req model.RollbackRequest) (*model.RollbackResult, error) {
	const name = "rollbackOrder"
	var res *model.RollbackResult
	err := s.run(ctx, name, func(ctx context.Context) error {
		var err error
		res, err = s.api.RollbackOrder(ctx, orderID, req)
		if err != nil {
			return err
		}

		s.mu.Lock()
		patched := s.patchStatus(s.orders, orderID, order.ActionRollback, func(from order.Status) (order.Status, error) {
			if res.CurrentStatus.IsValid() {
				return res.CurrentStatus, nil
			}
			return order.Rollback(from, req.RollbackToStatus, role.Admin)
		})
		s.mu.Unlock()
		if patched {
			s.emit(name, PhaseOptimistic)
		}

		s.reconcile(ctx, name, s.loadOrders)
		return nil
	})
	return res, err
}

// BatchDeleteOrders удаляет заказы пакетом. Из кэша убираются ровно
// успешно удалённые; если backend их не перечислил, а удалены не все,
// список перечитывается целиком.
func (s *AdminStore) BatchDeleteOrders(ctx context.Context, orderIDs []int64) (*model.BatchDeleteResult, error) {
	const name = "batchDeleteOrders"
	var res *model.BatchDeleteResult
	err := s.run(ctx, name, func(ctx context.Context) error {
		var err error
		res, err = s.api.BatchDeleteOrders(ctx, orderIDs)
		if err != nil {
			return err
		}

		var removed []int64
		switch {
		case len(res.DeletedOrderIDs) > 0:
			removed = res.DeletedOrderIDs
		case res.SuccessfullyDeleted == len(orderIDs):
			removed = orderIDs
		default:
			s.reconcile(ctx, name, s.loadOrders)
			return nil
		}

		s.mu.Lock()
		s.orders = slices.DeleteFunc(s.orders, func(o model.RepairOrder) bool {
			return slices.Contains(removed, o.ID)
		})
		for _, id := range removed {
			delete(s.proofs, id)
		}
		s.mu.Unlock()
		return nil
	})
	return res, err
}

// RunMonthlySettlement запускает месячный расчёт и перечитывает
// расчёты за тот же месяц.
func (s *AdminStore) RunMonthlySettlement(ctx context.Context, req model.MonthlySettlementRequest) ([]model.MonthlySettlement, error) {
	const name = "runMonthlySettlement"
	var result []model.MonthlySettlement
	err := s.run(ctx, name, func(ctx context.Context) error {
		var err error
		result, err = s.api.RunMonthlySettlement(ctx, req)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.settlements = slices.Clone(result)
		s.mu.Unlock()

		s.reconcile(ctx, name, func(ctx context.Context) error {
			return s.loadSettlements(ctx, model.SettlementFilter{Year: req.Year, Month: req.Month})
		})
		return nil
	})
	return result, err
}

// FetchWorkerSettlements загружает расчёты мастеров по фильтру.
func (s *AdminStore) FetchWorkerSettlements(ctx context.Context, f model.SettlementFilter) error {
	return s.run(ctx, "fetchWorkerSettlements", func(ctx context.Context) error {
		return s.loadSettlements(ctx, f)
	})
}

func (s *AdminStore) loadSettlements(ctx context.Context, f model.SettlementFilter) error {
	st, err := s.api.WorkerSettlements(ctx, f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.settlements = st
	s.mu.Unlock()
	return nil
}

// FetchOverview загружает финансовую сводку.
func (s *AdminStore) FetchOverview(ctx context.Context) error {
	return s.run(ctx, "fetchOverview", func(ctx context.Context) error {
		o, err := s.api.Overview(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.system.Overview = o
		s.mu.Unlock()
		return nil
	})
}

// FetchSystemHealth загружает состояние backend.
func (s *AdminStore) FetchSystemHealth(ctx context.Context) error {
	return s.run(ctx, "fetchSystemHealth", func(ctx context.Context) error {
		h, err := s.api.SystemHealth(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.system.Health = h
		s.mu.Unlock()
		return nil
	})
}

// FetchSystemStatus загружает нагрузку backend.
func (s *AdminStore) FetchSystemStatus(ctx context.Context) error {
	return s.run(ctx, "fetchSystemStatus", func(ctx context.Context) error {
		st, err := s.api.SystemStatus(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.system.Status = st
		s.mu.Unlock()
		return nil
	})
}

// FetchMonitorInfo загружает сводку мониторинга.
func (s *AdminStore) FetchMonitorInfo(ctx context.Context) error {
	return s.run(ctx, "fetchMonitorInfo", func(ctx context.Context) error {
		m, err := s.api.MonitorInfo(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.system.Monitor = m
		s.mu.Unlock()
		return nil
	})
}

// FetchVehicleTypeStats загружает статистику по типам автомобилей.
func (s *AdminStore) FetchVehicleTypeStats(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchVehicleTypeStats", func(ctx context.Context) error {
		v, err := s.api.VehicleTypeStats(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.VehicleTypes = v
		s.mu.Unlock()
		return nil
	})
}

// FetchVehicleRepairStats загружает статистику по маркам и моделям.
func (s *AdminStore) FetchVehicleRepairStats(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchVehicleRepairStats", func(ctx context.Context) error {
		v, err := s.api.VehicleRepairStats(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.VehicleRepairs = v
		s.mu.Unlock()
		return nil
	})
}

// FetchCostAnalysis загружает анализ затрат.
func (s *AdminStore) FetchCostAnalysis(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchCostAnalysis", func(ctx context.Context) error {
		c, err := s.api.CostAnalysis(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.CostAnalysis = c
		s.mu.Unlock()
		return nil
	})
}

// FetchNegativeFeedback загружает негативные отзывы.
func (s *AdminStore) FetchNegativeFeedback(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchNegativeFeedback", func(ctx context.Context) error {
		n, err := s.api.NegativeFeedback(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.NegativeFeedback = n
		s.mu.Unlock()
		return nil
	})
}

// FetchSpecialtyWorkload загружает загрузку по специализациям.
func (s *AdminStore) FetchSpecialtyWorkload(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchSpecialtyWorkload", func(ctx context.Context) error {
		w, err := s.api.SpecialtyWorkload(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.SpecialtyWorkload = w
		s.mu.Unlock()
		return nil
	})
}

// FetchPendingTasks загружает незавершённые задачи.
func (s *AdminStore) FetchPendingTasks(ctx context.Context, f model.StatisticsFilter) error {
	return s.run(ctx, "fetchPendingTasks", func(ctx context.Context) error {
		p, err := s.api.PendingTasks(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.stats.PendingTasks = p
		s.mu.Unlock()
		return nil
	})
}

// FetchAuditLogs загружает страницу журнала аудита.
func (s *AdminStore) FetchAuditLogs(ctx context.Context, f model.AuditLogFilter) error {
	return s.run(ctx, "fetchAuditLogs", func(ctx context.Context) error {
		p, err := s.api.AuditLogs(ctx, f)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.auditLogs = p
		s.mu.Unlock()
		return nil
	})
}

// FetchBlockchainProof загружает подтверждение заказа.
func (s *AdminStore) FetchBlockchainProof(ctx context.Context, orderID int64) error {
	return s.run(ctx, "fetchBlockchainProof", func(ctx context.Context) error {
		p, err := s.api.BlockchainProof(ctx, orderID)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.proofs[orderID] = p
		s.mu.Unlock()
		return nil
	})
}

// Reset очищает кэш (при завершении сессии).
func (s *AdminStore) Reset() {
	s.mu.Lock()
	s.users, s.workers, s.orders, s.logs, s.settlements = nil, nil, nil, nil, nil
	s.stats = Statistics{}
	s.system = System{}
	s.auditLogs = nil
	s.proofs = make(map[int64]*model.BlockchainProof)
	s.errMsg = ""
	s.mu.Unlock()
	s.emit("reset", PhaseReset)
}
