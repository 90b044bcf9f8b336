// middleware.go — HTTP middleware для определения языка пользователя.
package i18n

import (
	"net/http"
)

// LangCookieName — имя cookie для хранения выбранного языка.
const LangCookieName = "lang"

// Middleware определяет язык запроса и помещает его в контекст.
// Приоритет: cookie "lang" → Accept-Language → язык по умолчанию.
func Middleware(langs *Languages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLang(r.Context(), DetectLanguage(r, langs))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DetectLanguage определяет язык из запроса.
func DetectLanguage(r *http.Request, langs *Languages) string {
	// Пользователь явно выбрал язык
	if cookie, err := r.Cookie(LangCookieName); err == nil && langs.Allowed(cookie.Value) {
		return cookie.Value
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return langs.Match(accept)
	}

	return langs.Default()
}
