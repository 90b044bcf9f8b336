// Пакет pages — страницы портала как templ-компоненты.
// Разметка собирается из небольших компонентов этого файла; весь
// пользовательский текст экранируется templ.EscapeString.
package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
)

// htmlWriter накапливает первую ошибку записи.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// component оборачивает функцию записи в templ.Component.
func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Text — экранированный текст.
func Text(s string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) { h.text(s) })
}

// T — переведённая строка по ключу каталога.
func T(key string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) { h.text(i18n.T(ctx, key)) })
}

// Group — последовательность компонентов.
func Group(children ...templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for _, c := range children {
			h.render(ctx, c)
		}
	})
}

// Section — раздел страницы с заголовком.
func Section(titleKey string, children ...templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section><h2>`)
		h.text(i18n.T(ctx, titleKey))
		h.raw(`</h2>`)
		for _, c := range children {
			h.render(ctx, c)
		}
		h.raw(`</section>`)
	})
}

// Link — ссылка с переведённой подписью.
func Link(href, labelKey string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<a href="`)
		h.text(href)
		h.raw(`">`)
		h.text(i18n.T(ctx, labelKey))
		h.raw(`</a>`)
	})
}

// Alert — блок сообщения: kind error или notice.
func Alert(kind, message string) templ.Component {
	if message == "" {
		return templ.NopComponent
	}
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-`)
		h.text(kind)
		h.raw(`" role="alert">`)
		h.text(message)
		h.raw(`</div>`)
	})
}

// Stat — пара «название — значение» для сводок.
type Stat struct {
	Key   string
	Value string
}

// Stats — список показателей.
func Stats(items ...Stat) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<dl class="stats">`)
		for _, it := range items {
			h.raw(`<dt>`)
			h.text(i18n.T(ctx, it.Key))
			h.raw(`</dt><dd>`)
			h.text(it.Value)
			h.raw(`</dd>`)
		}
		h.raw(`</dl>`)
	})
}

// Table — таблица с переведёнными заголовками. Пустая таблица
// показывает строку «нет данных».
func Table(headerKeys []string, rows [][]templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<table><thead><tr>`)
		for _, k := range headerKeys {
			h.raw(`<th>`)
			h.text(i18n.T(ctx, k))
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		if len(rows) == 0 {
			h.raw(`<tr><td colspan="` + strconv.Itoa(len(headerKeys)) + `">`)
			h.text(i18n.T(ctx, "common.empty"))
			h.raw(`</td></tr>`)
		}
		for _, row := range rows {
			h.raw(`<tr>`)
			for _, cell := range row {
				h.raw(`<td>`)
				h.render(ctx, cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
	})
}

// Option — вариант выбора в поле select.
type Option struct {
	Value string
	Label string
}

// Field — поле формы. Label — ключ каталога.
type Field struct {
	Name     string
	Label    string
	Type     string // text, password, number, hidden, textarea, select, checkbox
	Value    string
	Options  []Option
	Required bool
}

// Form — форма POST с полями и кнопкой отправки.
func Form(action, submitKey string, fields ...Field) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="post" action="`)
		h.text(action)
		h.raw(`">`)
		for _, f := range fields {
			writeField(ctx, h, f)
		}
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, submitKey))
		h.raw(`</button></form>`)
	})
}

// FilterForm — форма GET для фильтров отчётов и списков.
func FilterForm(action, submitKey string, fields ...Field) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="get" class="filters" action="`)
		h.text(action)
		h.raw(`">`)
		for _, f := range fields {
			writeField(ctx, h, f)
		}
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, submitKey))
		h.raw(`</button></form>`)
	})
}

// FormWithID — форма POST с атрибутом id: поля могут находиться вне
// её разметки (атрибут form у input), например флажки в строках таблицы.
func FormWithID(id, action, submitKey string, fields ...Field) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="post" id="`)
		h.text(id)
		h.raw(`" action="`)
		h.text(action)
		h.raw(`">`)
		for _, f := range fields {
			writeField(ctx, h, f)
		}
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, submitKey))
		h.raw(`</button></form>`)
	})
}

// Checkbox — флажок, относящийся к форме formID.
func Checkbox(formID, name, value string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<input type="checkbox" form="`)
		h.text(formID)
		h.raw(`" name="`)
		h.text(name)
		h.raw(`" value="`)
		h.text(value)
		h.raw(`">`)
	})
}

// ActionButton — форма из одной кнопки для действия над записью.
func ActionButton(action, labelKey string, hidden ...Field) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="post" class="inline" action="`)
		h.text(action)
		h.raw(`">`)
		for _, f := range hidden {
			f.Type = "hidden"
			writeField(ctx, h, f)
		}
		h.raw(`<button type="submit">`)
		h.text(i18n.T(ctx, labelKey))
		h.raw(`</button></form>`)
	})
}

func writeField(ctx context.Context, h *htmlWriter, f Field) {
	req := ""
	if f.Required {
		req = " required"
	}
	if f.Type == "hidden" {
		h.raw(`<input type="hidden" name="`)
		h.text(f.Name)
		h.raw(`" value="`)
		h.text(f.Value)
		h.raw(`">`)
		return
	}

	h.raw(`<label>`)
	h.text(i18n.T(ctx, f.Label))
	h.raw(` `)
	switch f.Type {
	case "textarea":
		h.raw(`<textarea name="`)
		h.text(f.Name)
		h.raw(`"` + req + `>`)
		h.text(f.Value)
		h.raw(`</textarea>`)
	case "select":
		h.raw(`<select name="`)
		h.text(f.Name)
		h.raw(`"` + req + `>`)
		for _, o := range f.Options {
			h.raw(`<option value="`)
			h.text(o.Value)
			h.raw(`"`)
			if o.Value == f.Value {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(o.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
	case "checkbox":
		h.raw(`<input type="checkbox" name="`)
		h.text(f.Name)
		h.raw(`" value="true"`)
		if f.Value == "true" {
			h.raw(` checked`)
		}
		h.raw(`>`)
	default:
		typ := f.Type
		if typ == "" {
			typ = "text"
		}
		h.raw(`<input type="` + typ + `" name="`)
		h.text(f.Name)
		h.raw(`" value="`)
		h.text(f.Value)
		h.raw(`"` + req)
		if typ == "number" {
			h.raw(` step="any"`)
		}
		h.raw(`>`)
	}
	h.raw(`</label>`)
}

// --- Форматирование ---

// Int форматирует целое число.
func Int[N ~int | ~int64](n N) string {
	return strconv.FormatInt(int64(n), 10)
}

// Money форматирует денежную сумму.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Percent форматирует долю (0..1) в процентах.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Dash заменяет пустую строку прочерком.
func Dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
