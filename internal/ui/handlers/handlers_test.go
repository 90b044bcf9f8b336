package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/service"
)

func TestParseBatchOrders(t *testing.T) {
	orders, err := parseBatchOrders("3;ENGINE;стук в двигателе\n\n  5 ; BRAKES ; скрип ; high \n")
	if err != nil {
		t.Fatalf("parseBatchOrders вернул ошибку: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("заявок = %d, ожидается 2", len(orders))
	}
	if orders[0].VehicleID != 3 || orders[0].RepairType != "ENGINE" || orders[0].Priority != "" {
		t.Errorf("первая заявка = %+v", orders[0])
	}
	if orders[1].VehicleID != 5 || orders[1].Issue != "скрип" || orders[1].Priority != "HIGH" {
		t.Errorf("вторая заявка = %+v", orders[1])
	}
}

func TestParseBatchOrders_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"пустой пакет", " \n\n"},
		{"мало полей", "3;ENGINE"},
		{"много полей", "3;ENGINE;стук;HIGH;лишнее"},
		{"некорректный vehicleId", "abc;ENGINE;стук"},
		{"нулевой vehicleId", "0;ENGINE;стук"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBatchOrders(tt.text)
			if !service.IsValidation(err) {
				t.Errorf("ошибка = %v, ожидается ошибка валидации", err)
			}
		})
	}
}

func TestPartialFailure(t *testing.T) {
	if got := partialFailure(3, 3, nil); got != "3/3" {
		t.Errorf("partialFailure = %q, ожидается 3/3", got)
	}
	got := partialFailure(1, 3, []string{"vehicle 5: not found", "vehicle 6: not found"})
	if got != "1/3: vehicle 5: not found; vehicle 6: not found" {
		t.Errorf("partialFailure = %q", got)
	}
}

func TestBackPath(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"http://portal.lan/worker/orders?notice=x", "/worker/orders?notice=x"},
		{"https://evil.example/login", "/login"},
		{"http://portal.lan//evil.example", "/"},
		{"http://portal.lan/\\evil.example", "/"},
		{"relative/path", "/"},
		{"://broken", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.referer, func(t *testing.T) {
			if got := backPath(tt.referer); got != tt.want {
				t.Errorf("backPath(%q) = %q, ожидается %q", tt.referer, got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"валидация", &service.ValidationError{Field: "reason", Message: "пусто"}, http.StatusBadRequest},
		{"обёрнутая валидация", fmt.Errorf("отказ: %w", &service.ValidationError{Field: "reason"}), http.StatusBadRequest},
		{"вход отклонён", &apiclient.AuthenticationError{Role: role.Worker, Message: "bad"}, http.StatusUnauthorized},
		{"сессия истекла", fmt.Errorf("заказы: %w", apiclient.ErrUnauthorized), http.StatusUnauthorized},
		{"конфликт backend", &apiclient.APIError{StatusCode: http.StatusConflict, Message: "busy"}, http.StatusConflict},
		{"ошибка backend 500", &apiclient.APIError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{"сетевая ошибка", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor = %d, ожидается %d", got, tt.want)
			}
		})
	}
}

func TestNotice(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"notice=notice.order_updated", "notice.order_updated"},
		{"notice=<script>", ""},
		{"notice=nav.logout", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/worker/orders?"+tt.query, nil)
			if got := notice(r); got != tt.want {
				t.Errorf("notice = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		filter model.SettlementFilter
		want   string
	}{
		{model.SettlementFilter{}, "settlements.xlsx"},
		{model.SettlementFilter{Year: 2026}, "settlements-2026.xlsx"},
		{model.SettlementFilter{Year: 2026, Month: 9}, "settlements-2026-09.xlsx"},
		{model.SettlementFilter{Month: 9}, "settlements.xlsx"},
	}
	for _, tt := range tests {
		if got := exportFileName(tt.filter); got != tt.want {
			t.Errorf("exportFileName(%+v) = %q, ожидается %q", tt.filter, got, tt.want)
		}
	}
}

func TestBackendStatus(t *testing.T) {
	tests := []struct {
		name   string
		health map[string]bool
		want   string
	}{
		{"нет проверок", nil, "unavailable"},
		{"все успешны", map[string]bool{"repair-backend": true}, "online"},
		{"есть сбой", map[string]bool{"repair-backend": false, "other": true}, "offline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backendStatus(tt.health); got != tt.want {
				t.Errorf("backendStatus = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	for _, s := range []string{"", "0", "-3", "abc", "1.5"} {
		if _, ok := pathID(s); ok {
			t.Errorf("pathID(%q) принят, ожидается отказ", s)
		}
	}
	if id, ok := pathID("42"); !ok || id != 42 {
		t.Errorf("pathID(42) = %d, %v", id, ok)
	}
}

func TestFirstMessage(t *testing.T) {
	if got := firstMessage(nil, nil); got != "" {
		t.Errorf("firstMessage без ошибок = %q", got)
	}
	got := firstMessage(nil, &apiclient.APIError{StatusCode: 404, Message: "заказ не найден"}, errors.New("второй"))
	if !strings.Contains(got, "заказ не найден") {
		t.Errorf("firstMessage = %q, ожидается сообщение первой ошибки", got)
	}
}

func TestSettlementFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/settlements?year=2026&month=9&workerId=7&status=%20SETTLED%20", nil)
	f := settlementFilter(r.URL.Query())
	want := model.SettlementFilter{Year: 2026, Month: 9, WorkerID: 7, Status: "SETTLED"}
	if f != want {
		t.Errorf("settlementFilter = %+v, ожидается %+v", f, want)
	}
}
