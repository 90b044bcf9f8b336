package model

import "github.com/bigkaa/repairshop-portal/internal/domain/role"

// Credentials — имя пользователя и пароль для входа.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse — ответ endpoint выдачи токена.
type LoginResponse struct {
	Token    string    `json:"token"`
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Role     role.Role `json:"role"`
}

// RegisterRequest — регистрация клиента.
type RegisterRequest struct {
	Username          string `json:"username" validate:"required,min=3,max=32"`
	Password          string `json:"password" validate:"required,min=6"`
	ConfirmedPassword string `json:"confirmedPassword" validate:"required,eqfield=Password"`
	Phone             string `json:"phone" validate:"required,min=5,max=20"`
}

// User — клиент мастерской.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// Worker — мастер.
type Worker struct {
	ID              int64   `json:"id"`
	WorkerName      string  `json:"workerName"`
	Specialty       string  `json:"specialty"`
	HourlyWage      float64 `json:"hourlyWage"`
	BaseSalary      float64 `json:"baseSalary"`
	TotalEarnings   float64 `json:"totalEarnings"`
	Status          string  `json:"status"`
	CurrentOrders   int     `json:"currentOrders"`
	CompletedOrders int     `json:"completedOrders"`
}

// Profile — профиль текущего пользователя сессии.
// Для USER заполнен User, для WORKER — Worker; у ADMIN профиля нет.
type Profile struct {
	User   *User   `json:"user,omitempty"`
	Worker *Worker `json:"worker,omitempty"`
}

// DisplayName возвращает имя для отображения в шапке страницы.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.User != nil:
		return p.User.Username
	case p.Worker != nil:
		return p.Worker.WorkerName
	default:
		return ""
	}
}
