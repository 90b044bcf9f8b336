package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/guard"
)

func (a *app) loginCommand() *cobra.Command {
	var roleName, username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход под ролью USER, WORKER или ADMIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := role.Parse(roleName)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("RP_PASSWORD")
			}

			ctx := cmd.Context()
			creds := model.Credentials{Username: username, Password: password}
			if err := a.ws.Session.Login(ctx, creds, r); err != nil {
				return err
			}
			a.ws.Session.FetchProfile(ctx)

			fmt.Fprintf(a.out, "Вход выполнен: %s (%s)\n", username, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&roleName, "role", string(role.User), "роль входа")
	cmd.Flags().StringVarP(&username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль (или RP_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выход и удаление сохранённой сессии",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.ws.Session.Logout(cmd.Context())
			fmt.Fprintf(a.out, "Сессия завершена, файл %s удалён\n", a.storage.Path())
		},
	}
}

// whoamiProfile — вывод команды whoami.
type whoamiProfile struct {
	Role        role.Role      `json:"role"`
	UserID      int64          `json:"userId"`
	DisplayName string         `json:"displayName,omitempty"`
	Profile     *model.Profile `json:"profile,omitempty"`
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Текущая сессия и профиль",
		Args:  cobra.NoArgs,
		RunE: a.guarded(guard.Authenticated, func(cmd *cobra.Command, _ []string) error {
			s := a.ws.Session
			s.FetchProfile(cmd.Context())
			if !s.IsAuthenticated() {
				return fmt.Errorf("%w: сессия истекла, выполните repairctl login", ErrAccessDenied)
			}
			return printYAML(a.out, whoamiProfile{
				Role:        s.Role(),
				UserID:      s.UserID(),
				DisplayName: s.Profile().DisplayName(),
				Profile:     s.Profile(),
			})
		}),
	}
}

func (a *app) registerCommand() *cobra.Command {
	var req model.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация клиента",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("RP_PASSWORD")
			}
			req.ConfirmedPassword = req.Password
			if err := a.ws.Session.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Клиент %s зарегистрирован, выполните repairctl login\n", req.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "пароль (или RP_PASSWORD)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "телефон")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
