// language.go — переключение языка интерфейса.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
)

// LanguageHandler — обработчик GET /lang/{lang}.
type LanguageHandler struct {
	langs *i18n.Languages
}

// NewLanguageHandler создаёт LanguageHandler.
func NewLanguageHandler(langs *i18n.Languages) *LanguageHandler {
	return &LanguageHandler{langs: langs}
}

// HandleSetLanguage запоминает язык в cookie "lang" на год и возвращает
// на предыдущую страницу. Неразрешённый язык игнорируется.
func (h *LanguageHandler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if h.langs.Allowed(lang) {
		http.SetCookie(w, &http.Cookie{
			Name:     i18n.LangCookieName,
			Value:    lang,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			Expires:  time.Now().Add(365 * 24 * time.Hour),
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, backPath(r.Header.Get("Referer")), http.StatusSeeOther)
}

// backPath — путь возврата из Referer. Хост отбрасывается, чтобы
// редирект не уводил на чужой сайт.
func backPath(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return "/"
	}
	back := u.Path
	if u.RawQuery != "" {
		back += "?" + u.RawQuery
	}
	return back
}
