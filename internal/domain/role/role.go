// Пакет role — роли участников ремонтной мастерской.
// Закрытое перечисление: USER (клиент), WORKER (мастер), ADMIN (администратор).
// Роль фиксирована на время сессии и определяет доступное поддерево маршрутов
// и набор сервисов backend.
package role

import (
	"fmt"
	"strings"
)

// Role — роль пользователя портала.
type Role string

const (
	// None — роль отсутствует (нет сессии).
	None Role = ""
	// User — клиент мастерской.
	User Role = "USER"
	// Worker — мастер (ремонтник).
	Worker Role = "WORKER"
	// Admin — администратор.
	Admin Role = "ADMIN"
)

// All — все допустимые роли в порядке отображения.
var All = []Role{User, Worker, Admin}

// validRoles — набор допустимых ролей для быстрой проверки.
var validRoles = toSet(All)

// IsValid проверяет, является ли роль одной из USER, WORKER, ADMIN.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String возвращает строковое представление роли.
func (r Role) String() string {
	return string(r)
}

// HomePath возвращает путь dashboard для роли.
func (r Role) HomePath() string {
	switch r {
	case User:
		return "/user/dashboard"
	case Worker:
		return "/worker/dashboard"
	case Admin:
		return "/admin/dashboard"
	default:
		return "/login"
	}
}

// Parse разбирает строку в Role без учёта регистра.
// Пустая строка и неизвестные значения — ошибка.
func Parse(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return None, fmt.Errorf("недопустимая роль %q, допустимые: USER, WORKER, ADMIN", s)
	}
	return r, nil
}

// toSet конвертирует срез ролей в map для быстрого поиска.
func toSet(items []Role) map[Role]bool {
	s := make(map[Role]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
