// Пакет order — конечный автомат статусов заказа на ремонт.
//
// Основной жизненный цикл:
//
//	PENDING → ASSIGNED → ACCEPTED → IN_PROGRESS → COMPLETED
//
// Боковой переход ASSIGNED → REJECTED (конечный) и административный
// откат rollback из любого статуса в указанный. Пакетное удаление
// убирает заказ из кэша и не имеет целевого статуса.
//
// Каждый переход выполняет определённая роль. Автомат не хранит состояние:
// backend остаётся источником истины, а клиент использует автомат для
// вычисления оптимистичного статуса и набора доступных действий.
package order

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// Status — статус заказа на ремонт.
type Status string

const (
	// StatusNone — заказа ещё нет (до submit) или он удалён.
	StatusNone Status = ""
	// StatusPending — заявка создана клиентом и ждёт назначения.
	StatusPending Status = "PENDING"
	// StatusAssigned — заказ назначен мастеру.
	StatusAssigned Status = "ASSIGNED"
	// StatusAccepted — мастер принял заказ.
	StatusAccepted Status = "ACCEPTED"
	// StatusInProgress — ремонт выполняется.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted — ремонт завершён.
	StatusCompleted Status = "COMPLETED"
	// StatusRejected — мастер отказался от заказа (конечный).
	StatusRejected Status = "REJECTED"
)

// Statuses — все статусы в порядке жизненного цикла.
var Statuses = []Status{
	StatusPending, StatusAssigned, StatusAccepted,
	StatusInProgress, StatusCompleted, StatusRejected,
}

// Action — действие над заказом.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionAssign   Action = "assign"
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionRollback Action = "rollback"
	ActionDelete   Action = "delete"
)

// Коды ошибок перехода.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbiddenActor    = "FORBIDDEN_ACTOR"
	CodeUnknownStatus     = "UNKNOWN_STATUS"
	CodeUnknownAction     = "UNKNOWN_ACTION"
)

// TransitionError — ошибка перехода между статусами.
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return e.Code + ": " + e.Message
}

// rule — правило перехода для одного действия.
type rule struct {
	// from — статусы, из которых действие допустимо (nil — любой)
	from map[Status]bool
	// to — целевой статус (для rollback задаётся вызывающим)
	to Status
	// actor — роль, выполняющая действие
	actor role.Role
}

// rules — матрица допустимых переходов.
var rules = map[Action]rule{
	ActionSubmit:   {from: map[Status]bool{StatusNone: true}, to: StatusPending, actor: role.User},
	ActionAssign:   {from: map[Status]bool{StatusPending: true}, to: StatusAssigned, actor: role.Admin},
	ActionAccept:   {from: map[Status]bool{StatusAssigned: true}, to: StatusAccepted, actor: role.Worker},
	ActionReject:   {from: map[Status]bool{StatusAssigned: true}, to: StatusRejected, actor: role.Worker},
	ActionStart:    {from: map[Status]bool{StatusAccepted: true}, to: StatusInProgress, actor: role.Worker},
	ActionComplete: {from: map[Status]bool{StatusInProgress: true}, to: StatusCompleted, actor: role.Worker},
	ActionRollback: {from: nil, to: StatusNone, actor: role.Admin},
	ActionDelete:   {from: nil, to: StatusNone, actor: role.Admin},
}

// actionOrder — порядок действий при выводе доступных кнопок.
var actionOrder = []Action{
	ActionSubmit, ActionAssign, ActionAccept, ActionReject,
	ActionStart, ActionComplete, ActionRollback, ActionDelete,
}

// ParseStatus разбирает строку статуса без учёта регистра.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return StatusNone, &TransitionError{
			Code:    CodeUnknownStatus,
			Message: fmt.Sprintf("неизвестный статус заказа: %q", s),
		}
	}
	return st, nil
}

// IsValid проверяет, что статус входит в перечисление.
func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

// IsTerminal — статус, из которого нет переходов, кроме административных.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Transition вычисляет целевой статус для действия action, выполняемого
// ролью actor над заказом в статусе from.
// Для ActionRollback используйте Rollback, для ActionDelete результат — StatusNone.
//
// Ошибки:
//   - UNKNOWN_ACTION — действие не существует
//   - FORBIDDEN_ACTOR — действие выполняет другая роль
//   - INVALID_TRANSITION — из текущего статуса действие недопустимо
func Transition(from Status, action Action, actor role.Role) (Status, error) {
	r, ok := rules[action]
	if !ok {
		return from, &TransitionError{
			Code:    CodeUnknownAction,
			Message: fmt.Sprintf("неизвестное действие: %q", action),
		}
	}

	if actor != r.actor {
		return from, &TransitionError{
			Code: CodeForbiddenActor,
			Message: fmt.Sprintf("действие %s выполняет роль %s, а не %s",
				action, r.actor, actor),
		}
	}

	if action == ActionRollback {
		return from, &TransitionError{
			Code:    CodeInvalidTransition,
			Message: "для отката требуется целевой статус, используйте Rollback",
		}
	}

	if r.from != nil && !r.from[from] {
		return from, &TransitionError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("действие %s недопустимо в статусе %s", action, displayStatus(from)),
		}
	}

	return r.to, nil
}

// Rollback проверяет административный откат заказа в статус target.
// Откат допустим из любого статуса в любой известный статус, кроме текущего.
func Rollback(from, target Status, actor role.Role) (Status, error) {
	if actor != role.Admin {
		return from, &TransitionError{
			Code:    CodeForbiddenActor,
			Message: fmt.Sprintf("откат выполняет роль %s, а не %s", role.Admin, actor),
		}
	}
	if !target.IsValid() {
		return from, &TransitionError{
			Code:    CodeUnknownStatus,
			Message: fmt.Sprintf("неизвестный целевой статус отката: %q", target),
		}
	}
	if from == target {
		return from, &TransitionError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("заказ уже в статусе %s", target),
		}
	}
	return target, nil
}

// CanPerform проверяет, может ли роль actor выполнить action в статусе status.
func CanPerform(status Status, action Action, actor role.Role) bool {
	if action == ActionRollback {
		return actor == role.Admin && status != StatusNone
	}
	if action == ActionDelete {
		return actor == role.Admin && status != StatusNone
	}
	_, err := Transition(status, action, actor)
	return err == nil
}

// AvailableActions возвращает действия, доступные роли actor для заказа
// в статусе status, в порядке жизненного цикла.
func AvailableActions(status Status, actor role.Role) []Action {
	result := make([]Action, 0, 2)
	for _, a := range actionOrder {
		if a == ActionSubmit {
			continue
		}
		if CanPerform(status, a, actor) {
			result = append(result, a)
		}
	}
	return result
}

// displayStatus — статус для сообщений об ошибках.
func displayStatus(s Status) string {
	if s == StatusNone {
		return "(нет заказа)"
	}
	return string(s)
}
