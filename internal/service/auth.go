package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// loginPaths — endpoint выдачи токена для каждой роли.
var loginPaths = map[role.Role]string{
	role.User:   "/account/token",
	role.Worker: "/worker/account/token",
	role.Admin:  "/admin/account/token",
}

// AuthService — вход, регистрация и профиль текущего пользователя.
type AuthService struct {
	client *apiclient.Client
}

// NewAuthService создаёт AuthService.
func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

// Login выполняет вход под ролью r.
// Отказ backend возвращается как *apiclient.AuthenticationError.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials, r role.Role) (*model.LoginResponse, error) {
	path, ok := loginPaths[r]
	if !ok {
		return nil, &ValidationError{Field: "role", Message: fmt.Sprintf("недопустимая роль входа: %q", r)}
	}
	if err := validateStruct(creds); err != nil {
		return nil, err
	}

	resp, err := apiclient.PostPublic[model.LoginResponse](ctx, s.client, path, creds)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			return nil, &apiclient.AuthenticationError{Role: r, Message: apiErr.Message, Err: err}
		}
		return nil, err
	}

	if resp.Token == "" {
		return nil, &apiclient.AuthenticationError{Role: r, Message: "backend не выдал токен"}
	}
	if resp.Role != role.None && resp.Role != r {
		return nil, &apiclient.AuthenticationError{
			Role:    r,
			Message: fmt.Sprintf("учётная запись имеет роль %s", resp.Role),
		}
	}
	resp.Role = r
	return &resp, nil
}

// Register регистрирует клиента. Вход после регистрации выполняется отдельно.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if _, err := apiclient.PostPublic[struct{}](ctx, s.client, "/account/register", req); err != nil {
		return fmt.Errorf("регистрация %s: %w", req.Username, err)
	}
	return nil
}

// UserInfo — профиль клиента (GET /account/info).
func (s *AuthService) UserInfo(ctx context.Context) (*model.User, error) {
	u, err := apiclient.Get[model.User](ctx, s.client, "/account/info", nil)
	if err != nil {
		return nil, fmt.Errorf("профиль клиента: %w", err)
	}
	return &u, nil
}

// WorkerInfo — профиль мастера (GET /worker/account/info).
func (s *AuthService) WorkerInfo(ctx context.Context) (*model.Worker, error) {
	w, err := apiclient.Get[model.Worker](ctx, s.client, "/worker/account/info", nil)
	if err != nil {
		return nil, fmt.Errorf("профиль мастера: %w", err)
	}
	return &w, nil
}
