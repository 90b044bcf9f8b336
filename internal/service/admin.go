package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
)

// AdminService — администрирование мастерской, расчёты и статистика.
type AdminService struct {
	client *apiclient.Client
}

// NewAdminService создаёт AdminService.
func NewAdminService(client *apiclient.Client) *AdminService {
	return &AdminService{client: client}
}

// Users — все клиенты (GET /admin/query/user).
func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	u, err := apiclient.Get[[]model.User](ctx, s.client, "/admin/query/user", nil)
	if err != nil {
		return nil, fmt.Errorf("список клиентов: %w", err)
	}
	return u, nil
}

// Workers — все мастера (GET /admin/query/worker).
func (s *AdminService) Workers(ctx context.Context) ([]model.Worker, error) {
	w, err := apiclient.Get[[]model.Worker](ctx, s.client, "/admin/query/worker", nil)
	if err != nil {
		return nil, fmt.Errorf("список мастеров: %w", err)
	}
	return w, nil
}

// RepairLogs — все записи журнала ремонтов (GET /admin/query/repair-log).
func (s *AdminService) RepairLogs(ctx context.Context) ([]model.RepairLog, error) {
	l, err := apiclient.Get[[]model.RepairLog](ctx, s.client, "/admin/query/repair-log", nil)
	if err != nil {
		return nil, fmt.Errorf("журнал ремонтов: %w", err)
	}
	return l, nil
}

// RepairOrders — все заказы (GET /admin/query/repair-order).
func (s *AdminService) RepairOrders(ctx context.Context) ([]model.RepairOrder, error) {
	o, err := apiclient.Get[[]model.RepairOrder](ctx, s.client, "/admin/query/repair-order", nil)
	if err != nil {
		return nil, fmt.Errorf("список заказов: %w", err)
	}
	for i := range o {
		o[i].HasFeedback = o[i].FeedbackID != nil
	}
	return o, nil
}

// MonitorInfo — сводка мониторинга (GET /admin/monitor-info).
func (s *AdminService) MonitorInfo(ctx context.Context) (*model.SystemStats, error) {
	st, err := apiclient.Get[model.SystemStats](ctx, s.client, "/admin/monitor-info", nil)
	if err != nil {
		return nil, fmt.Errorf("сводка мониторинга: %w", err)
	}
	return &st, nil
}

// AssignOrder назначает заказ мастеру (POST /admin/repair-order/{id}/assign).
func (s *AdminService) AssignOrder(ctx context.Context, orderID int64, req model.AssignOrderRequest) (*model.RepairOrder, error) {
	if err := requireID("orderId", orderID); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/admin/repair-order/%d/assign", orderID)
	o, err := apiclient.Post[model.RepairOrder](ctx, s.client, path, req)
	if err != nil {
		return nil, fmt.Errorf("назначение заказа %d мастеру %d: %w", orderID, req.WorkerID, err)
	}
	return &o, nil
}

// BatchSubmitOrders создаёт заказы пакетом (POST /admin/repair-order/batch-submit).
// Частичный успех — нормальный результат, не ошибка.
func (s *AdminService) BatchSubmitOrders(ctx context.Context, req model.BatchSubmitRequest) (*model.BatchSubmitResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	res, err := apiclient.Post[model.BatchSubmitResult](ctx, s.client, "/admin/repair-order/batch-submit", req)
	if err != nil {
		return nil, fmt.Errorf("пакетное создание заказов: %w", err)
	}
	return &res, nil
}

// RollbackOrder откатывает заказ (POST /admin/repair-order/{id}/rollback).
func (s *AdminService) RollbackOrder(ctx context.Context, orderID int64, req model.RollbackRequest) (*model.RollbackResult, error) {
	if err := requireID("orderId", orderID); err != nil {
		return nil, err
	}
	if err := requireText("reason", req.Reason); err != nil {
		return nil, err
	}
	if !req.RollbackToStatus.IsValid() {
		return nil, &ValidationError{Field: "rollbackToStatus", Message: fmt.Sprintf("неизвестный статус %q", req.RollbackToStatus)}
	}
	path := fmt.Sprintf("/admin/repair-order/%d/rollback", orderID)
	res, err := apiclient.Post[model.RollbackResult](ctx, s.client, path, req)
	if err != nil {
		return nil, fmt.Errorf("откат заказа %d: %w", orderID, err)
	}
	return &res, nil
}

// BatchDeleteOrders удаляет заказы пакетом (POST /admin/repair-order/batch-delete).
// Частичный успех — нормальный результат, не ошибка.
func (s *AdminService) BatchDeleteOrders(ctx context.Context, orderIDs []int64) (*model.BatchDeleteResult, error) {
	if len(orderIDs) == 0 {
		return nil, &ValidationError{Field: "orderIds", Message: "не выбрано ни одного заказа"}
	}
	for _, id := range orderIDs {
		if err := requireID("orderId", id); err != nil {
			return nil, err
		}
	}
	res, err := apiclient.Post[model.BatchDeleteResult](ctx, s.client, "/admin/repair-order/batch-delete", orderIDs)
	if err != nil {
		return nil, fmt.Errorf("пакетное удаление заказов: %w", err)
	}
	return &res, nil
}

// BlockchainProof — подтверждение заказа (GET /admin/repair-order/{id}/blockchain-proof).
func (s *AdminService) BlockchainProof(ctx context.Context, orderID int64) (*model.BlockchainProof, error) {
	if err := requireID("orderId", orderID); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/admin/repair-order/%d/blockchain-proof", orderID)
	p, err := apiclient.Get[model.BlockchainProof](ctx, s.client, path, nil)
	if err != nil {
		return nil, fmt.Errorf("подтверждение заказа %d: %w", orderID, err)
	}
	return &p, nil
}

// RunMonthlySettlement запускает месячный расчёт (POST /admin/monthly-settlement).
func (s *AdminService) RunMonthlySettlement(ctx context.Context, req model.MonthlySettlementRequest) ([]model.MonthlySettlement, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	st, err := apiclient.Post[[]model.MonthlySettlement](ctx, s.client, "/admin/monthly-settlement", req)
	if err != nil {
		return nil, fmt.Errorf("месячный расчёт %04d-%02d: %w", req.Year, req.Month, err)
	}
	return st, nil
}

// WorkerSettlements — расчёты мастеров (GET /admin/worker-settlements).
func (s *AdminService) WorkerSettlements(ctx context.Context, f model.SettlementFilter) ([]model.MonthlySettlement, error) {
	q := url.Values{}
	setInt(q, "year", f.Year)
	setInt(q, "month", f.Month)
	setInt64(q, "workerId", f.WorkerID)
	setString(q, "status", f.Status)
	st, err := apiclient.Get[[]model.MonthlySettlement](ctx, s.client, "/admin/worker-settlements", q)
	if err != nil {
		return nil, fmt.Errorf("расчёты мастеров: %w", err)
	}
	return st, nil
}

// Overview — финансовая сводка (GET /admin/statistics/overview).
func (s *AdminService) Overview(ctx context.Context) (*model.AdminStatisticsOverview, error) {
	o, err := apiclient.Get[model.AdminStatisticsOverview](ctx, s.client, "/admin/statistics/overview", nil)
	if err != nil {
		return nil, fmt.Errorf("финансовая сводка: %w", err)
	}
	return &o, nil
}

// SystemHealth — состояние backend (GET /admin/system/health).
func (s *AdminService) SystemHealth(ctx context.Context) (*model.SystemHealth, error) {
	h, err := apiclient.Get[model.SystemHealth](ctx, s.client, "/admin/system/health", nil)
	if err != nil {
		return nil, fmt.Errorf("состояние системы: %w", err)
	}
	return &h, nil
}

// SystemStatus — нагрузка backend (GET /admin/system/status).
func (s *AdminService) SystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	st, err := apiclient.Get[model.SystemStatus](ctx, s.client, "/admin/system/status", nil)
	if err != nil {
		return nil, fmt.Errorf("нагрузка системы: %w", err)
	}
	return &st, nil
}

// AuditLogs — журнал аудита с фильтрами и пагинацией (GET /admin/audit-logs).
func (s *AdminService) AuditLogs(ctx context.Context, f model.AuditLogFilter) (*model.Page[model.AuditLog], error) {
	q := url.Values{}
	setString(q, "entityType", f.EntityType)
	setInt64(q, "entityId", f.EntityID)
	setString(q, "action", f.Action)
	setString(q, "startTime", f.StartTime)
	setString(q, "endTime", f.EndTime)
	setString(q, "username", f.Username)
	q.Set("page", strconv.Itoa(max(f.Page, 0)))
	size := f.Size
	if size <= 0 {
		size = 20
	}
	q.Set("size", strconv.Itoa(size))

	p, err := apiclient.Get[model.Page[model.AuditLog]](ctx, s.client, "/admin/audit-logs", q)
	if err != nil {
		return nil, fmt.Errorf("журнал аудита: %w", err)
	}
	return &p, nil
}

// --- Статистика ---

// VehicleTypeStats — статистика по типам автомобилей (GET /statistics/vehicle-types).
func (s *AdminService) VehicleTypeStats(ctx context.Context, f model.StatisticsFilter) ([]model.VehicleTypeStats, error) {
	q := url.Values{}
	setString(q, "startDate", f.StartDate)
	setString(q, "endDate", f.EndDate)
	setString(q, "vehicleType", f.VehicleType)
	return getStats[[]model.VehicleTypeStats](ctx, s.client, "/statistics/vehicle-types", q)
}

// VehicleRepairStats — статистика по маркам и моделям (GET /statistics/vehicle-repairs).
func (s *AdminService) VehicleRepairStats(ctx context.Context, f model.StatisticsFilter) ([]model.VehicleRepairStats, error) {
	q := url.Values{}
	setString(q, "startDate", f.StartDate)
	setString(q, "endDate", f.EndDate)
	return getStats[[]model.VehicleRepairStats](ctx, s.client, "/statistics/vehicle-repairs", q)
}

// CostAnalysis — анализ затрат (GET /statistics/cost-analysis).
func (s *AdminService) CostAnalysis(ctx context.Context, f model.StatisticsFilter) (*model.CostAnalysis, error) {
	q := url.Values{}
	setString(q, "period", f.Period)
	setInt(q, "year", f.Year)
	setInt(q, "quarter", f.Quarter)
	setInt(q, "month", f.Month)
	setString(q, "repairType", f.RepairType)
	c, err := getStats[model.CostAnalysis](ctx, s.client, "/statistics/cost-analysis", q)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NegativeFeedback — негативные отзывы (GET /statistics/negative-feedback).
func (s *AdminService) NegativeFeedback(ctx context.Context, f model.StatisticsFilter) (*model.NegativeFeedback, error) {
	q := url.Values{}
	setString(q, "startDate", f.StartDate)
	setString(q, "endDate", f.EndDate)
	setInt64(q, "workerId", f.WorkerID)
	setString(q, "repairType", f.RepairType)
	n, err := getStats[model.NegativeFeedback](ctx, s.client, "/statistics/negative-feedback", q)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SpecialtyWorkload — загрузка по специализациям (GET /statistics/specialty-workload).
func (s *AdminService) SpecialtyWorkload(ctx context.Context, f model.StatisticsFilter) ([]model.SpecialtyWorkload, error) {
	q := url.Values{}
	setString(q, "startDate", f.StartDate)
	setString(q, "endDate", f.EndDate)
	setString(q, "status", f.Status)
	return getStats[[]model.SpecialtyWorkload](ctx, s.client, "/statistics/specialty-workload", q)
}

// PendingTasks — незавершённые задачи (GET /statistics/pending-orders).
func (s *AdminService) PendingTasks(ctx context.Context, f model.StatisticsFilter) (*model.PendingTasks, error) {
	q := url.Values{}
	setString(q, "groupBy", f.GroupBy)
	setString(q, "status", f.Status)
	setInt(q, "minDays", f.MinDays)
	p, err := getStats[model.PendingTasks](ctx, s.client, "/statistics/pending-orders", q)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// getStats — общий GET статистического endpoint.
func getStats[T any](ctx context.Context, c *apiclient.Client, path string, q url.Values) (T, error) {
	v, err := apiclient.Get[T](ctx, c, path, q)
	if err != nil {
		return v, fmt.Errorf("статистика %s: %w", path, err)
	}
	return v, nil
}

// --- Параметры запроса ---

func setString(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}

func setInt(q url.Values, key string, val int) {
	if val != 0 {
		q.Set(key, strconv.Itoa(val))
	}
}

func setInt64(q url.Values, key string, val int64) {
	if val != 0 {
		q.Set(key, strconv.FormatInt(val, 10))
	}
}
