package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
)

// Chrome — общие данные страницы: заголовок, навигация, сообщения.
type Chrome struct {
	// Title — ключ каталога заголовка.
	Title string
	// Path — текущий путь (подсветка пункта меню).
	Path          string
	Role          role.Role
	Authenticated bool
	DisplayName   string
	Lang          string
	Languages     []string
	// Error — текст ошибки последнего действия.
	Error string
	// Notice — ключ каталога сообщения об успехе.
	Notice string
}

type navItem struct {
	href string
	key  string
}

// navigation — пункты меню роли.
var navigation = map[role.Role][]navItem{
	role.User: {
		{"/user/dashboard", "nav.dashboard"},
		{"/user/vehicles", "nav.vehicles"},
		{"/user/orders", "nav.orders"},
		{"/user/logs", "nav.logs"},
	},
	role.Worker: {
		{"/worker/dashboard", "nav.dashboard"},
		{"/worker/orders", "nav.assigned"},
		{"/worker/history", "nav.history"},
		{"/worker/earnings", "nav.earnings"},
	},
	role.Admin: {
		{"/admin/dashboard", "nav.dashboard"},
		{"/admin/users", "nav.users"},
		{"/admin/workers", "nav.workers"},
		{"/admin/orders", "nav.orders"},
		{"/admin/logs", "nav.logs"},
		{"/admin/statistics", "nav.statistics"},
		{"/admin/settlements", "nav.settlements"},
		{"/admin/audit", "nav.audit"},
	},
}

// eventsScript подписывается на SSE пространства: выход из сессии
// уводит на страницу входа, индикатор показывает выполняющиеся действия,
// атрибут body отражает доступность backend.
const eventsScript = `<script>
(function () {
  if (!window.EventSource) { return; }
  var es = new EventSource("/events");
  var busy = document.getElementById("busy");
  es.addEventListener("session", function (e) {
    var ev = JSON.parse(e.data);
    if (ev.session === "logout") { window.location.href = "/login"; }
  });
  es.addEventListener("store", function (e) {
    var ev = JSON.parse(e.data);
    if (busy) { busy.hidden = !ev.store.loading; }
  });
  es.addEventListener("backend", function (e) {
    document.body.dataset.backend = JSON.parse(e.data).status;
  });
})();
</script>`

// Layout — каркас страницы: шапка, меню роли, переключатель языка,
// сообщения и тело.
func Layout(c Chrome, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="`)
		h.text(c.Lang)
		h.raw(`"><head><meta charset="utf-8"><title>`)
		h.text(i18n.T(ctx, c.Title))
		h.raw(` · `)
		h.text(i18n.T(ctx, "app.name"))
		h.raw(`</title><link rel="stylesheet" href="/static/portal.css"></head><body><header><strong>`)
		h.text(i18n.T(ctx, "app.name"))
		h.raw(`</strong>`)

		if c.Authenticated {
			h.raw(`<nav>`)
			for _, it := range navigation[c.Role] {
				h.raw(`<a href="` + it.href + `"`)
				if it.href == c.Path {
					h.raw(` class="active"`)
				}
				h.raw(`>`)
				h.text(i18n.T(ctx, it.key))
				h.raw(`</a>`)
			}
			h.raw(`</nav><span class="who">`)
			if c.DisplayName != "" {
				h.text(c.DisplayName)
				h.raw(` · `)
			}
			h.text(i18n.T(ctx, "role."+string(c.Role)))
			h.raw(`</span><form method="post" action="/logout" class="inline"><button type="submit">`)
			h.text(i18n.T(ctx, "nav.logout"))
			h.raw(`</button></form><span id="busy" hidden>`)
			h.text(i18n.T(ctx, "common.loading"))
			h.raw(`</span>`)
		}

		if len(c.Languages) > 1 {
			h.raw(`<span class="langs">`)
			for _, l := range c.Languages {
				h.raw(`<a href="/lang/`)
				h.text(l)
				h.raw(`"`)
				if l == c.Lang {
					h.raw(` class="active"`)
				}
				h.raw(`>`)
				h.text(i18n.T(ctx, "lang."+l))
				h.raw(`</a>`)
			}
			h.raw(`</span>`)
		}
		h.raw(`</header><main><h1>`)
		h.text(i18n.T(ctx, c.Title))
		h.raw(`</h1>`)

		h.render(ctx, Alert("error", c.Error))
		if c.Notice != "" {
			h.render(ctx, Alert("notice", i18n.T(ctx, c.Notice)))
		}
		h.render(ctx, body)
		h.raw(`</main>`)
		if c.Authenticated {
			h.raw(eventsScript)
		}
		h.raw(`</body></html>`)
	})
}

// ErrorData — данные страницы ошибки.
type ErrorData struct {
	Chrome
	Status int
}

// ErrorPage — страница ошибки с кодом статуса.
func ErrorPage(d ErrorData) templ.Component {
	return Layout(d.Chrome, Group(
		Stats(Stat{Key: "error.status", Value: Int(d.Status)}),
		Link("/", "error.home"),
	))
}
