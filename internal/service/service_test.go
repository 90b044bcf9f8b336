package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordedRequest — запрос, полученный mock backend.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Raw    []byte
}

// mockBackend — mock REST backend с записью запросов.
type mockBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

// setupMockBackend создаёт mock backend. routes: "METHOD /path" → data конверта.
// Значение типа error превращается в ответ success=false.
func setupMockBackend(t *testing.T, routes map[string]any) *mockBackend {
	t.Helper()
	mb := &mockBackend{}
	mb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mb.mu.Lock()
		mb.requests = append(mb.requests, recordedRequest{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body, Raw: raw,
		})
		mb.mu.Unlock()

		data, ok := routes[r.Method+" "+r.URL.Path]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "not found"})
			return
		}
		if e, isErr := data.(error); isErr {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": e.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok", "data": data})
	}))
	t.Cleanup(mb.server.Close)
	return mb
}

// client возвращает клиент с фиксированным токеном.
func (mb *mockBackend) client() *apiclient.Client {
	return apiclient.New(mb.server.URL, nil, testLogger()).WithSession(
		func(ctx context.Context) (string, error) { return "test-token", nil }, nil)
}

// last возвращает последний запрос.
func (mb *mockBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.requests) == 0 {
		t.Fatal("backend не получил ни одного запроса")
	}
	return mb.requests[len(mb.requests)-1]
}

// count возвращает количество запросов.
func (mb *mockBackend) count() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.requests)
}

// --- AuthService ---

func TestAuthService_LoginPerRole(t *testing.T) {
	tests := []struct {
		role role.Role
		path string
	}{
		{role.User, "/account/token"},
		{role.Worker, "/worker/account/token"},
		{role.Admin, "/admin/account/token"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			mb := setupMockBackend(t, map[string]any{
				"POST " + tt.path: map[string]any{"token": "jwt-1", "id": 42, "username": "ivan", "role": string(tt.role)},
			})
			svc := NewAuthService(mb.client())

			resp, err := svc.Login(context.Background(), model.Credentials{Username: "ivan", Password: "secret"}, tt.role)
			if err != nil {
				t.Fatalf("Login вернул ошибку: %v", err)
			}
			if resp.Token != "jwt-1" || resp.ID != 42 || resp.Role != tt.role {
				t.Errorf("ответ = %+v", resp)
			}
			if got := mb.last(t); got.Path != tt.path || got.Body["username"] != "ivan" {
				t.Errorf("запрос = %+v", got)
			}
		})
	}
}

func TestAuthService_LoginRejected(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /account/token": errors.New("Неверный логин или пароль"),
	})
	svc := NewAuthService(mb.client())

	_, err := svc.Login(context.Background(), model.Credentials{Username: "ivan", Password: "bad"}, role.User)
	var authErr *apiclient.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("ожидалась AuthenticationError, получено %v", err)
	}
	if authErr.Message != "Неверный логин или пароль" || authErr.Role != role.User {
		t.Errorf("ошибка = %+v", authErr)
	}
}

func TestAuthService_LoginRoleMismatch(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /worker/account/token": map[string]any{"token": "jwt", "id": 1, "role": "USER"},
	})
	svc := NewAuthService(mb.client())

	_, err := svc.Login(context.Background(), model.Credentials{Username: "u", Password: "p"}, role.Worker)
	var authErr *apiclient.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("ожидалась AuthenticationError, получено %v", err)
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{})
	svc := NewAuthService(mb.client())

	tests := []struct {
		name  string
		creds model.Credentials
		role  role.Role
	}{
		{"пустой логин", model.Credentials{Password: "p"}, role.User},
		{"пустой пароль", model.Credentials{Username: "u"}, role.User},
		{"неизвестная роль", model.Credentials{Username: "u", Password: "p"}, role.Role("GUEST")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.creds, tt.role)
			if !IsValidation(err) {
				t.Errorf("ожидалась ошибка валидации, получено %v", err)
			}
		})
	}
	if mb.count() != 0 {
		t.Errorf("невалидный вход не должен доходить до backend, запросов: %d", mb.count())
	}
}

func TestAuthService_Register(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{"POST /account/register": nil})
	svc := NewAuthService(mb.client())

	bad := model.RegisterRequest{Username: "ivan", Password: "secret1", ConfirmedPassword: "secret2", Phone: "+79990001122"}
	if err := svc.Register(context.Background(), bad); !IsValidation(err) {
		t.Fatalf("несовпадающие пароли: ожидалась ошибка валидации, получено %v", err)
	}
	if mb.count() != 0 {
		t.Fatal("невалидная регистрация не должна доходить до backend")
	}

	ok := bad
	ok.ConfirmedPassword = ok.Password
	if err := svc.Register(context.Background(), ok); err != nil {
		t.Fatalf("Register вернул ошибку: %v", err)
	}
	if got := mb.last(t); got.Body["confirmedPassword"] != "secret1" || got.Body["phone"] != "+79990001122" {
		t.Errorf("тело регистрации = %v", got.Body)
	}
}

func TestAuthService_Profiles(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"GET /account/info":        map[string]any{"id": 1, "username": "ivan", "phone": "123"},
		"GET /worker/account/info": map[string]any{"id": 2, "workerName": "Пётр", "specialty": "ENGINE"},
	})
	svc := NewAuthService(mb.client())

	u, err := svc.UserInfo(context.Background())
	if err != nil || u.Username != "ivan" {
		t.Fatalf("UserInfo = %+v, %v", u, err)
	}
	w, err := svc.WorkerInfo(context.Background())
	if err != nil || w.WorkerName != "Пётр" || w.Specialty != "ENGINE" {
		t.Fatalf("WorkerInfo = %+v, %v", w, err)
	}
}

// --- UserService ---

func TestUserService_SubmitRepair(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /submit": map[string]any{"id": 10, "issue": "brake noise", "status": "PENDING", "vehicleId": 1},
	})
	svc := NewUserService(mb.client())

	o, err := svc.SubmitRepair(context.Background(), model.SubmitRepairRequest{VehicleID: 1, Issue: "brake noise", RepairType: "mechanical"})
	if err != nil {
		t.Fatalf("SubmitRepair вернул ошибку: %v", err)
	}
	if o.ID != 10 || o.Status != order.StatusPending {
		t.Errorf("заказ = %+v", o)
	}
	got := mb.last(t)
	if got.Body["vehicleId"] != float64(1) || got.Body["repairType"] != "mechanical" {
		t.Errorf("тело = %v", got.Body)
	}
	if _, present := got.Body["additionalInfo"]; present {
		t.Error("пустой additionalInfo не должен передаваться")
	}
}

func TestUserService_SubmitRepairValidation(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{})
	svc := NewUserService(mb.client())

	_, err := svc.SubmitRepair(context.Background(), model.SubmitRepairRequest{Issue: "x", RepairType: "y"})
	if !IsValidation(err) {
		t.Fatalf("без vehicleId ожидалась ошибка валидации, получено %v", err)
	}
	if mb.count() != 0 {
		t.Error("невалидная заявка не должна доходить до backend")
	}
}

func TestUserService_RepairOrdersHasFeedback(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"GET /query/repair-order": []map[string]any{
			{"id": 1, "status": "COMPLETED", "feedbackId": 5},
			{"id": 2, "status": "COMPLETED"},
		},
	})
	svc := NewUserService(mb.client())

	orders, err := svc.RepairOrders(context.Background())
	if err != nil {
		t.Fatalf("RepairOrders вернул ошибку: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("получено %d заказов, ожидается 2", len(orders))
	}
	if !orders[0].HasFeedback || orders[1].HasFeedback {
		t.Errorf("hasFeedback = %v, %v; ожидается true, false", orders[0].HasFeedback, orders[1].HasFeedback)
	}
}

func TestUserService_FeedbackValidation(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{})
	svc := NewUserService(mb.client())

	for _, rating := range []int{0, 6} {
		_, err := svc.SubmitFeedback(context.Background(), model.FeedbackRequest{RepairOrderID: 1, Rating: rating})
		if !IsValidation(err) {
			t.Errorf("rating=%d: ожидалась ошибка валидации, получено %v", rating, err)
		}
	}
}

// --- WorkerService ---

func TestWorkerService_RejectRequiresReason(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{"POST /worker/repair-order/reject": nil})
	svc := NewWorkerService(mb.client())

	for _, reason := range []string{"", "   ", "\t\n"} {
		if err := svc.RejectOrder(context.Background(), 3, reason); !IsValidation(err) {
			t.Errorf("причина %q: ожидалась ошибка валидации, получено %v", reason, err)
		}
	}
	if mb.count() != 0 {
		t.Fatalf("отказ без причины не должен доходить до backend, запросов: %d", mb.count())
	}

	if err := svc.RejectOrder(context.Background(), 3, "нет запчастей"); err != nil {
		t.Fatalf("RejectOrder вернул ошибку: %v", err)
	}
	got := mb.last(t)
	if got.Body["orderId"] != float64(3) || got.Body["reason"] != "нет запчастей" {
		t.Errorf("тело = %v", got.Body)
	}
}

func TestWorkerService_StartAndComplete(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{"POST /worker/repair-order/update": nil})
	svc := NewWorkerService(mb.client())

	if err := svc.StartOrder(context.Background(), 8); err != nil {
		t.Fatalf("StartOrder вернул ошибку: %v", err)
	}
	if got := mb.last(t); got.Body["status"] != "IN_PROGRESS" || got.Body["orderId"] != float64(8) {
		t.Errorf("тело start = %v", got.Body)
	}

	err := svc.CompleteOrder(context.Background(), 8, model.CompleteOrderRequest{
		LaborHours: 2.5, Description: "заменены колодки", Suggestion: "проверить диски через 10000 км",
	})
	if err != nil {
		t.Fatalf("CompleteOrder вернул ошибку: %v", err)
	}
	got := mb.last(t)
	if got.Body["status"] != "COMPLETED" || got.Body["laborHours"] != 2.5 ||
		got.Body["description"] != "заменены колодки" || got.Body["repairResult"] != "проверить диски через 10000 км" {
		t.Errorf("тело complete = %v", got.Body)
	}

	if err := svc.CompleteOrder(context.Background(), 8, model.CompleteOrderRequest{LaborHours: 0, Description: "x"}); !IsValidation(err) {
		t.Errorf("нулевые трудозатраты: ожидалась ошибка валидации, получено %v", err)
	}
}

func TestWorkerService_MaterialsAndEarnings(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /worker/material":               map[string]any{"id": 1, "orderId": 4, "name": "Колодки", "quantity": 2, "unitPrice": 1500, "totalCost": 3000},
		"GET /worker/material":                []map[string]any{{"id": 1, "orderId": 4, "name": "Колодки"}},
		"GET /worker/query/earnings":          12500.5,
		"GET /worker/query/detailed-earnings": map[string]any{"totalEarnings": 12500.5, "completedOrders": 7},
	})
	svc := NewWorkerService(mb.client())
	ctx := context.Background()

	m, err := svc.AddMaterial(ctx, model.MaterialRequest{OrderID: 4, Name: "Колодки", Quantity: 2, Price: 1500})
	if err != nil || m.TotalCost != 3000 {
		t.Fatalf("AddMaterial = %+v, %v", m, err)
	}

	list, err := svc.Materials(ctx, 4)
	if err != nil || len(list) != 1 {
		t.Fatalf("Materials = %+v, %v", list, err)
	}
	if got := mb.last(t); got.Query != "orderId=4" {
		t.Errorf("query = %q, ожидается orderId=4", got.Query)
	}

	total, err := svc.Earnings(ctx)
	if err != nil || total != 12500.5 {
		t.Fatalf("Earnings = %v, %v", total, err)
	}

	e, err := svc.DetailedEarnings(ctx)
	if err != nil || e.CompletedOrders != 7 {
		t.Fatalf("DetailedEarnings = %+v, %v", e, err)
	}
}

// --- AdminService ---

func TestAdminService_AssignAndRollback(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /admin/repair-order/5/assign":   map[string]any{"id": 5, "status": "ASSIGNED", "workerId": 9},
		"POST /admin/repair-order/5/rollback": map[string]any{"orderId": 5, "previousStatus": "ASSIGNED", "currentStatus": "PENDING"},
	})
	svc := NewAdminService(mb.client())
	ctx := context.Background()

	o, err := svc.AssignOrder(ctx, 5, model.AssignOrderRequest{WorkerID: 9, Priority: "HIGH", EstimatedHours: 3})
	if err != nil || o.Status != order.StatusAssigned {
		t.Fatalf("AssignOrder = %+v, %v", o, err)
	}
	if got := mb.last(t); got.Body["workerId"] != float64(9) || got.Body["priority"] != "HIGH" {
		t.Errorf("тело assign = %v", got.Body)
	}

	if _, err := svc.RollbackOrder(ctx, 5, model.RollbackRequest{Reason: " ", RollbackToStatus: order.StatusPending}); !IsValidation(err) {
		t.Errorf("откат без причины: ожидалась ошибка валидации, получено %v", err)
	}
	if _, err := svc.RollbackOrder(ctx, 5, model.RollbackRequest{Reason: "ошибка", RollbackToStatus: "LOST"}); !IsValidation(err) {
		t.Errorf("откат в неизвестный статус: ожидалась ошибка валидации, получено %v", err)
	}

	res, err := svc.RollbackOrder(ctx, 5, model.RollbackRequest{Reason: "ошибочное назначение", RollbackToStatus: order.StatusPending})
	if err != nil || res.CurrentStatus != order.StatusPending {
		t.Fatalf("RollbackOrder = %+v, %v", res, err)
	}
}

func TestAdminService_BatchDelete(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /admin/repair-order/batch-delete": map[string]any{
			"totalRequested": 3, "successfullyDeleted": 2, "failed": 1, "deletedOrderIds": []int{1, 2},
		},
	})
	svc := NewAdminService(mb.client())

	if _, err := svc.BatchDeleteOrders(context.Background(), nil); !IsValidation(err) {
		t.Errorf("пустой список: ожидалась ошибка валидации, получено %v", err)
	}

	res, err := svc.BatchDeleteOrders(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("BatchDeleteOrders вернул ошибку: %v", err)
	}
	if res.SuccessfullyDeleted != 2 || res.Failed != 1 || len(res.DeletedOrderIDs) != 2 {
		t.Errorf("результат = %+v", res)
	}
	if got := mb.last(t); string(got.Raw) != "[1,2,3]\n" && string(got.Raw) != "[1,2,3]" {
		t.Errorf("тело = %q, ожидается массив id", got.Raw)
	}
}

func TestAdminService_QueryParameters(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"GET /admin/worker-settlements":      []map[string]any{},
		"GET /admin/audit-logs":              map[string]any{"content": []map[string]any{{"id": 1, "action": "ASSIGN"}}, "totalElements": 1},
		"GET /statistics/cost-analysis":      map[string]any{"period": "2024-Q1", "totalCost": 100},
		"GET /statistics/pending-orders":     map[string]any{"totalPendingTasks": 4},
		"GET /statistics/vehicle-types":      []map[string]any{},
		"GET /statistics/specialty-workload": []map[string]any{},
	})
	svc := NewAdminService(mb.client())
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() error
		wantQuery string
	}{
		{"расчёты", func() error {
			_, err := svc.WorkerSettlements(ctx, model.SettlementFilter{Year: 2024, Month: 3})
			return err
		}, "month=3&year=2024"},
		{"аудит", func() error {
			p, err := svc.AuditLogs(ctx, model.AuditLogFilter{EntityType: "ORDER", Page: 1})
			if err == nil && (len(p.Content) != 1 || p.TotalElements != 1) {
				t.Errorf("страница = %+v", p)
			}
			return err
		}, "entityType=ORDER&page=1&size=20"},
		{"затраты", func() error {
			c, err := svc.CostAnalysis(ctx, model.StatisticsFilter{Period: "quarter", Year: 2024, Quarter: 1})
			if err == nil && c.TotalCost != 100 {
				t.Errorf("затраты = %+v", c)
			}
			return err
		}, "period=quarter&quarter=1&year=2024"},
		{"незавершённые", func() error {
			_, err := svc.PendingTasks(ctx, model.StatisticsFilter{GroupBy: "specialty", MinDays: 3})
			return err
		}, "groupBy=specialty&minDays=3"},
		{"типы автомобилей без фильтра", func() error {
			_, err := svc.VehicleTypeStats(ctx, model.StatisticsFilter{})
			return err
		}, ""},
		{"загрузка", func() error {
			_, err := svc.SpecialtyWorkload(ctx, model.StatisticsFilter{Status: "ACTIVE"})
			return err
		}, "status=ACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("вызов вернул ошибку: %v", err)
			}
			if got := mb.last(t).Query; got != tt.wantQuery {
				t.Errorf("query = %q, ожидается %q", got, tt.wantQuery)
			}
		})
	}
}

func TestAdminService_MonthlySettlementValidation(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"POST /admin/monthly-settlement": []map[string]any{{"workerId": 1, "workerName": "Пётр", "totalEarnings": 50000}},
	})
	svc := NewAdminService(mb.client())

	if _, err := svc.RunMonthlySettlement(context.Background(), model.MonthlySettlementRequest{Year: 2024, Month: 13}); !IsValidation(err) {
		t.Errorf("месяц 13: ожидалась ошибка валидации, получено %v", err)
	}
	st, err := svc.RunMonthlySettlement(context.Background(), model.MonthlySettlementRequest{Year: 2024, Month: 5})
	if err != nil || len(st) != 1 || st[0].TotalEarnings != 50000 {
		t.Fatalf("RunMonthlySettlement = %+v, %v", st, err)
	}
}

func TestAdminService_BackendErrorWrapped(t *testing.T) {
	mb := setupMockBackend(t, map[string]any{
		"GET /admin/query/worker": errors.New("нет доступа к базе"),
	})
	svc := NewAdminService(mb.client())

	_, err := svc.Workers(context.Background())
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ожидалась APIError в цепочке, получено %v", err)
	}
	if apiclient.Message(err) != "нет доступа к базе" {
		t.Errorf("Message = %q", apiclient.Message(err))
	}
}
