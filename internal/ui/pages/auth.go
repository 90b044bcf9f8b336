package pages

import (
	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// LoginData — данные страницы входа.
type LoginData struct {
	Chrome
	Username string
	Role     role.Role
}

// Login — форма входа с выбором роли.
func Login(d LoginData) templ.Component {
	selected := string(d.Role)
	if selected == "" {
		selected = string(role.User)
	}
	opts := make([]Option, 0, len(role.All))
	for _, r := range role.All {
		opts = append(opts, Option{Value: string(r), Label: string(r)})
	}
	return Layout(d.Chrome, Group(
		Form("/login", "auth.submit",
			Field{Name: "username", Label: "auth.username", Value: d.Username, Required: true},
			Field{Name: "password", Label: "auth.password", Type: "password", Required: true},
			Field{Name: "role", Label: "auth.role", Type: "select", Value: selected, Options: opts},
		),
		Link("/register", "auth.register_link"),
	))
}

// RegisterData — данные страницы регистрации клиента.
type RegisterData struct {
	Chrome
	Username string
	Phone    string
}

// Register — форма регистрации клиента.
func Register(d RegisterData) templ.Component {
	return Layout(d.Chrome, Group(
		Form("/register", "auth.register",
			Field{Name: "username", Label: "auth.username", Value: d.Username, Required: true},
			Field{Name: "phone", Label: "auth.phone", Value: d.Phone, Required: true},
			Field{Name: "password", Label: "auth.password", Type: "password", Required: true},
			Field{Name: "confirmedPassword", Label: "auth.confirm_password", Type: "password", Required: true},
		),
		Link("/login", "auth.login_link"),
	))
}
