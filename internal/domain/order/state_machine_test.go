package order

import (
	"errors"
	"slices"
	"testing"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// TestTransition_Lifecycle проверяет основной жизненный цикл заказа.
func TestTransition_Lifecycle(t *testing.T) {
	steps := []struct {
		action Action
		actor  role.Role
		want   Status
	}{
		{ActionSubmit, role.User, StatusPending},
		{ActionAssign, role.Admin, StatusAssigned},
		{ActionAccept, role.Worker, StatusAccepted},
		{ActionStart, role.Worker, StatusInProgress},
		{ActionComplete, role.Worker, StatusCompleted},
	}

	current := StatusNone
	for _, s := range steps {
		next, err := Transition(current, s.action, s.actor)
		if err != nil {
			t.Fatalf("%s из %q: неожиданная ошибка: %v", s.action, current, err)
		}
		if next != s.want {
			t.Fatalf("%s из %q: получен %s, ожидается %s", s.action, current, next, s.want)
		}
		current = next
	}
}

func TestTransition_Errors(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		action   Action
		actor    role.Role
		wantCode string
	}{
		{"accept из PENDING", StatusPending, ActionAccept, role.Worker, CodeInvalidTransition},
		{"reject из ACCEPTED", StatusAccepted, ActionReject, role.Worker, CodeInvalidTransition},
		{"start из ASSIGNED", StatusAssigned, ActionStart, role.Worker, CodeInvalidTransition},
		{"complete из ACCEPTED", StatusAccepted, ActionComplete, role.Worker, CodeInvalidTransition},
		{"accept из REJECTED", StatusRejected, ActionAccept, role.Worker, CodeInvalidTransition},
		{"assign мастером", StatusPending, ActionAssign, role.Worker, CodeForbiddenActor},
		{"accept клиентом", StatusAssigned, ActionAccept, role.User, CodeForbiddenActor},
		{"submit админом", StatusNone, ActionSubmit, role.Admin, CodeForbiddenActor},
		{"повторный submit", StatusPending, ActionSubmit, role.User, CodeInvalidTransition},
		{"rollback без цели", StatusCompleted, ActionRollback, role.Admin, CodeInvalidTransition},
		{"неизвестное действие", StatusPending, Action("archive"), role.Admin, CodeUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.action, tt.actor)
			if err == nil {
				t.Fatalf("ожидалась ошибка, получен статус %s", got)
			}
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("ожидалась *TransitionError, получен %T", err)
			}
			if te.Code != tt.wantCode {
				t.Errorf("код ошибки = %s, ожидается %s", te.Code, tt.wantCode)
			}
			if got != tt.from {
				t.Errorf("при ошибке статус должен остаться %s, получен %s", tt.from, got)
			}
		})
	}
}

func TestTransition_RejectFromAssigned(t *testing.T) {
	got, err := Transition(StatusAssigned, ActionReject, role.Worker)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if got != StatusRejected {
		t.Errorf("получен %s, ожидается REJECTED", got)
	}
	if !got.IsTerminal() {
		t.Error("REJECTED должен быть конечным статусом")
	}
}

func TestRollback(t *testing.T) {
	// Откат допустим из любого статуса
	for _, from := range Statuses {
		target := StatusPending
		if from == StatusPending {
			target = StatusAssigned
		}
		got, err := Rollback(from, target, role.Admin)
		if err != nil {
			t.Errorf("Rollback %s → %s: неожиданная ошибка: %v", from, target, err)
			continue
		}
		if got != target {
			t.Errorf("Rollback %s → %s: получен %s", from, target, got)
		}
	}

	if _, err := Rollback(StatusCompleted, StatusPending, role.Worker); err == nil {
		t.Error("откат мастером должен быть запрещён")
	}
	if _, err := Rollback(StatusCompleted, Status("LOST"), role.Admin); err == nil {
		t.Error("откат в неизвестный статус должен быть запрещён")
	}
	if _, err := Rollback(StatusCompleted, StatusCompleted, role.Admin); err == nil {
		t.Error("откат в текущий статус должен быть запрещён")
	}
}

func TestAvailableActions(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		actor  role.Role
		want   []Action
	}{
		{"мастер, ASSIGNED", StatusAssigned, role.Worker, []Action{ActionAccept, ActionReject}},
		{"мастер, ACCEPTED", StatusAccepted, role.Worker, []Action{ActionStart}},
		{"мастер, IN_PROGRESS", StatusInProgress, role.Worker, []Action{ActionComplete}},
		{"мастер, COMPLETED", StatusCompleted, role.Worker, []Action{}},
		{"админ, PENDING", StatusPending, role.Admin, []Action{ActionAssign, ActionRollback, ActionDelete}},
		{"админ, COMPLETED", StatusCompleted, role.Admin, []Action{ActionRollback, ActionDelete}},
		{"клиент, PENDING", StatusPending, role.User, []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableActions(tt.status, tt.actor)
			if !slices.Equal(got, tt.want) {
				t.Errorf("AvailableActions(%s, %s) = %v, ожидается %v", tt.status, tt.actor, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" in_progress ")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if got != StatusInProgress {
		t.Errorf("получен %s, ожидается IN_PROGRESS", got)
	}
	if _, err := ParseStatus("DONE"); err == nil {
		t.Error("ожидалась ошибка для неизвестного статуса")
	}
}
