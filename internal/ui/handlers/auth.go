// auth.go — вход, регистрация и выход.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/pages"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// WorkspaceRotator выдаёт браузеру новое рабочее пространство после
// входа. Реализуется *workspace.Registry.
type WorkspaceRotator interface {
	Rotate(w http.ResponseWriter, ws *workspace.Workspace) *workspace.Workspace
}

// AuthHandler — страницы входа и регистрации.
type AuthHandler struct {
	pageBase
	rotator WorkspaceRotator
}

// NewAuthHandler создаёт AuthHandler.
func NewAuthHandler(langs *i18n.Languages, rotator WorkspaceRotator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		pageBase: newPageBase(langs, logger, "ui.auth"),
		rotator:  rotator,
	}
}

// HandleHome обрабатывает GET / — перенаправляет на dashboard роли
// или на страницу входа.
func (h *AuthHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, ws.Session.Role().HomePath(), http.StatusFound)
}

// HandleLoginPage обрабатывает GET /login.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	if ws.Session.IsAuthenticated() {
		http.Redirect(w, r, ws.Session.Role().HomePath(), http.StatusFound)
		return
	}

	c := h.chrome(r, ws, "auth.login_title")
	c.Notice = notice(r)
	h.render(w, r, http.StatusOK, pages.Login(pages.LoginData{Chrome: c}))
}

// HandleLogin обрабатывает POST /login — вход под выбранной ролью.
// После входа браузер получает новое рабочее пространство, загружается
// профиль и выполняется переход на dashboard.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	data := pages.LoginData{
		Chrome:   h.chrome(r, ws, "auth.login_title"),
		Username: username,
	}

	rl, err := role.Parse(r.FormValue("role"))
	if err != nil {
		data.Error = err.Error()
		h.render(w, r, http.StatusBadRequest, pages.Login(data))
		return
	}
	data.Role = rl

	creds := model.Credentials{Username: username, Password: r.FormValue("password")}
	if err := ws.Session.Login(r.Context(), creds, rl); err != nil {
		h.logger.Info("Вход отклонён",
			slog.String("username", username),
			slog.String("role", string(rl)),
			slog.String("error", err.Error()),
		)
		data.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.Login(data))
		return
	}

	ws = h.rotator.Rotate(w, ws)
	ws.Session.FetchProfile(r.Context())
	http.Redirect(w, r, rl.HomePath(), http.StatusSeeOther)
}

// HandleRegisterPage обрабатывает GET /register.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, pages.Register(pages.RegisterData{
		Chrome: h.chrome(r, ws, "auth.register_title"),
	}))
}

// HandleRegister обрабатывает POST /register — регистрация клиента.
// Вход после регистрации выполняется пользователем отдельно.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}

	req := model.RegisterRequest{
		Username:          strings.TrimSpace(r.FormValue("username")),
		Password:          r.FormValue("password"),
		ConfirmedPassword: r.FormValue("confirmedPassword"),
		Phone:             strings.TrimSpace(r.FormValue("phone")),
	}
	if err := ws.Session.Register(r.Context(), req); err != nil {
		data := pages.RegisterData{
			Chrome:   h.chrome(r, ws, "auth.register_title"),
			Username: req.Username,
			Phone:    req.Phone,
		}
		data.Error = apiclient.Message(err)
		h.render(w, r, statusFor(err), pages.Register(data))
		return
	}

	h.logger.Info("Клиент зарегистрирован", slog.String("username", req.Username))
	redirectNotice(w, r, "/login", "notice.registered")
}

// HandleLogout обрабатывает /logout — выход никогда не завершается ошибкой.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceOf(w, r)
	if !ok {
		return
	}
	ws.Session.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
