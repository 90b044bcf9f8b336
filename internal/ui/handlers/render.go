// Пакет handlers — HTTP-обработчики портала: вход и регистрация,
// страницы ролей и их действия, переключение языка, SSE и выгрузка
// расчётов. Обработчик берёт рабочее пространство браузера из
// контекста, вызывает действие хранилища и рендерит страницу из кэша.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/service"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/pages"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// pageBase — общие зависимости обработчиков страниц.
type pageBase struct {
	langs  *i18n.Languages
	logger *slog.Logger
}

func newPageBase(langs *i18n.Languages, logger *slog.Logger, component string) pageBase {
	return pageBase{
		langs:  langs,
		logger: logger.With(slog.String("component", component)),
	}
}

// workspaceOf возвращает рабочее пространство запроса. Без него
// отвечает 500: middleware реестра не подключён.
func (p *pageBase) workspaceOf(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws := workspace.FromContext(r.Context())
	if ws == nil {
		p.logger.Error("Рабочее пространство не найдено в контексте", slog.String("path", r.URL.Path))
		http.Error(w, "Рабочее пространство не инициализировано", http.StatusInternalServerError)
		return nil, false
	}
	return ws, true
}

// chrome собирает общие данные страницы.
func (p *pageBase) chrome(r *http.Request, ws *workspace.Workspace, title string) pages.Chrome {
	c := pages.Chrome{
		Title:     title,
		Path:      r.URL.Path,
		Lang:      i18n.LangFromContext(r.Context()),
		Languages: p.langs.Codes(),
	}
	if ws != nil && ws.Session.IsAuthenticated() {
		c.Authenticated = true
		c.Role = ws.Session.Role()
		c.DisplayName = ws.Session.Profile().DisplayName()
	}
	return c
}

// render пишет страницу с кодом статуса.
func (p *pageBase) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		p.logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// actionFailed обрабатывает ошибку действия формы: истёкшая сессия
// уводит на вход, иначе страница показывается заново с сообщением.
// Возвращает true, если ответ уже записан редиректом.
func (p *pageBase) actionFailed(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, err error) bool {
	p.logger.Debug("Действие не выполнено",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	if !ws.Session.IsAuthenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return true
	}
	return false
}

// expired перенаправляет на вход, если backend завершил сессию во
// время загрузки данных страницы.
func (p *pageBase) expired(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) bool {
	if ws.Session.IsAuthenticated() {
		return false
	}
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}

// statusFor — HTTP-статус страницы с ошибкой действия.
func statusFor(err error) int {
	var authErr *apiclient.AuthenticationError
	var apiErr *apiclient.APIError
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &authErr), errors.Is(err, apiclient.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	default:
		return http.StatusBadGateway
	}
}

// firstMessage — сообщение первой ошибки из нескольких загрузок страницы.
func firstMessage(errs ...error) string {
	for _, err := range errs {
		if err != nil {
			return apiclient.Message(err)
		}
	}
	return ""
}

// redirectNotice перенаправляет на path с ключом сообщения об успехе.
func redirectNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+"?notice="+notice, http.StatusSeeOther)
}

// notice возвращает ключ сообщения из запроса. Принимаются только
// ключи каталога вида "notice.*".
func notice(r *http.Request) string {
	n := r.URL.Query().Get("notice")
	if !strings.HasPrefix(n, "notice.") {
		return ""
	}
	return n
}

// formInt разбирает целое поле формы; пустое поле — 0.
func formInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	return n
}

// formInt64 разбирает целое поле формы (id); пустое поле — 0.
func formInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return n
}

// formFloat разбирает дробное поле формы; пустое поле — 0.
func formFloat(r *http.Request, name string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue(name)), 64)
	return f
}

// pathID разбирает id из сегмента URL.
func pathID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// notFound рендерит страницу 404.
func (p *pageBase) notFound(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	p.render(w, r, http.StatusNotFound, pages.ErrorPage(pages.ErrorData{
		Chrome: p.chrome(r, ws, "error.not_found"),
		Status: http.StatusNotFound,
	}))
}
