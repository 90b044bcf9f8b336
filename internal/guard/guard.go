// Пакет guard — проверка доступа к маршрутам по состоянию сессии.
// Решение чистое: без сетевых вызовов и без ожидания.
package guard

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// LoginPath — страница входа, куда ведут все перенаправления.
const LoginPath = "/login"

// Meta — требования маршрута.
type Meta struct {
	// RequiresAuth — маршрут доступен только с сессией.
	RequiresAuth bool
	// Role — требуемая роль (role.None — любая).
	Role role.Role
}

// Public — маршрут без требований.
var Public = Meta{}

// Authenticated — маршрут для любой роли с сессией.
var Authenticated = Meta{RequiresAuth: true}

// ForRole — маршрут только для роли r.
func ForRole(r role.Role) Meta {
	return Meta{RequiresAuth: true, Role: r}
}

// Viewer — состояние сессии, по которому принимается решение.
// Реализуется *session.Session.
type Viewer interface {
	IsAuthenticated() bool
	Role() role.Role
}

// Decision — результат проверки.
type Decision struct {
	// Allow — переход разрешён.
	Allow bool
	// Redirect — куда перенаправить, если переход запрещён.
	Redirect string
}

// Check применяет два предиката по порядку: нет сессии при RequiresAuth,
// затем несовпадение роли. Любое нарушение ведёт на LoginPath.
func Check(meta Meta, v Viewer) Decision {
	authenticated := v != nil && v.IsAuthenticated()
	if meta.RequiresAuth && !authenticated {
		return Decision{Redirect: LoginPath}
	}
	if meta.Role != role.None && (!authenticated || v.Role() != meta.Role) {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Allow: true}
}

// Table — таблица маршрутов: точные пути и префиксы (оканчиваются на /).
type Table struct {
	exact    map[string]Meta
	prefixes []prefixMeta
}

type prefixMeta struct {
	prefix string
	meta   Meta
}

// NewTable строит таблицу из отображения путь → требования.
func NewTable(routes map[string]Meta) *Table {
	t := &Table{exact: make(map[string]Meta, len(routes))}
	for p, m := range routes {
		if strings.HasSuffix(p, "/") && p != "/" {
			t.prefixes = append(t.prefixes, prefixMeta{prefix: p, meta: m})
			continue
		}
		t.exact[p] = m
	}
	// Длинные префиксы проверяются первыми
	sort.Slice(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})
	return t
}

// Resolve возвращает требования для пути: точное совпадение, затем
// самый длинный префикс. Неизвестный путь публичен (его обработает 404).
func (t *Table) Resolve(path string) Meta {
	if m, ok := t.exact[path]; ok {
		return m
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(path, p.prefix) || path+"/" == p.prefix {
			return p.meta
		}
	}
	return Public
}

// DefaultRoutes — маршруты портала.
func DefaultRoutes() map[string]Meta {
	return map[string]Meta{
		"/":         Public,
		"/login":    Public,
		"/register": Public,
		"/logout":   Public,
		"/metrics":  Public,
		"/health/":  Public,
		"/lang/":    Public,
		"/static/":  Public,

		"/user/":   ForRole(role.User),
		"/worker/": ForRole(role.Worker),
		"/admin/":  ForRole(role.Admin),

		"/events": Authenticated,
	}
}

// ViewerFunc извлекает состояние сессии из запроса.
type ViewerFunc func(r *http.Request) Viewer

// Middleware проверяет каждый запрос к странице и перенаправляет на
// страницу входа при запрете.
func Middleware(table *Table, viewer ViewerFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "guard"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			meta := table.Resolve(r.URL.Path)
			d := Check(meta, viewer(r))
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}

			logger.Debug("Доступ запрещён, перенаправление",
				slog.String("path", r.URL.Path),
				slog.String("required_role", string(meta.Role)),
				slog.String("redirect", d.Redirect),
			)
			http.Redirect(w, r, d.Redirect, http.StatusFound)
		})
	}
}
