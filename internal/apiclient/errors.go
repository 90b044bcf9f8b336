package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// ErrUnauthorized — backend отклонил токен (HTTP 401) или токена нет.
// Любой такой ответ на запрос, кроме входа, завершает сессию.
var ErrUnauthorized = errors.New("сессия недействительна, требуется повторный вход")

// APIError — ошибка, возвращённая backend: HTTP-статус вне 2xx
// или конверт с success=false.
type APIError struct {
	// StatusCode — HTTP-статус ответа.
	StatusCode int
	// Message — текст ошибки из конверта или тела ответа.
	Message string
	// Method и Path — запрос, вызвавший ошибку.
	Method string
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: статус %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap сопоставляет 401 с ErrUnauthorized для errors.Is.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// AuthenticationError — backend отклонил учётные данные при входе.
// Возвращается вызывающему без изменений, сессия не затрагивается.
type AuthenticationError struct {
	// Role — роль, под которой выполнялся вход.
	Role role.Role
	// Message — сообщение backend.
	Message string
	// Err — исходная ошибка.
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("вход как %s отклонён: %s", e.Role, e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Message возвращает человекочитаемое сообщение для показа пользователю.
// Для ошибок backend — текст из конверта, для сетевых — описание
// недоступности сервера.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	if errors.Is(err, ErrUnauthorized) {
		return ErrUnauthorized.Error()
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.StatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "сервер не ответил вовремя"
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return "сервер недоступен, попробуйте позже"
	}

	return err.Error()
}
