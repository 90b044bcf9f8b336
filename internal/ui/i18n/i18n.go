// Пакет i18n — интернационализация портала.
// Предоставляет функции T(ctx, key) и Tf(ctx, key, args...) для получения
// переведённых строк из контекста HTTP-запроса.
// Поддерживаемые языки: English (en), Русский (ru), 中文 (zh). Набор
// разрешённых языков задаётся конфигурацией (RP_LANGUAGES).
// Язык определяется middleware: cookie "lang" → Accept-Language → первый разрешённый.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// knownTags — все языки, для которых есть каталоги.
var knownTags = map[string]language.Tag{
	"en": language.English,
	"ru": language.Russian,
	"zh": language.Chinese,
}

// contextKey — тип ключа для контекста (избегаем коллизий).
type contextKey string

const (
	// contextKeyLang — текущий язык в контексте запроса.
	contextKeyLang contextKey = "i18n_lang"
)

// Languages — разрешённые языки интерфейса. Первый язык списка — язык
// по умолчанию.
type Languages struct {
	codes   []string
	matcher language.Matcher
}

// NewLanguages проверяет коды языков и строит matcher для Accept-Language.
func NewLanguages(codes []string) (*Languages, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("i18n: список языков пуст")
	}
	tags := make([]language.Tag, 0, len(codes))
	seen := make([]string, 0, len(codes))
	for _, c := range codes {
		tag, ok := knownTags[c]
		if !ok {
			return nil, fmt.Errorf("i18n: неподдерживаемый язык %q, допустимые: en, ru, zh", c)
		}
		if slices.Contains(seen, c) {
			continue
		}
		seen = append(seen, c)
		tags = append(tags, tag)
	}
	return &Languages{codes: seen, matcher: language.NewMatcher(tags)}, nil
}

// Codes возвращает коды разрешённых языков.
func (l *Languages) Codes() []string {
	return slices.Clone(l.codes)
}

// Default возвращает язык по умолчанию.
func (l *Languages) Default() string {
	return l.codes[0]
}

// Allowed проверяет, разрешён ли язык.
func (l *Languages) Allowed(code string) bool {
	return slices.Contains(l.codes, code)
}

// Match определяет лучший разрешённый язык из заголовка Accept-Language.
func (l *Languages) Match(acceptLanguage string) string {
	tag, _ := language.MatchStrings(l.matcher, acceptLanguage)
	base, _ := tag.Base()
	if lang := base.String(); l.Allowed(lang) {
		return lang
	}
	return l.Default()
}

// Bundle — хранилище переводов для всех языков.
// Загружается один раз при старте приложения.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string // lang → key → translation
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger,
	}
}

// LoadMessages загружает JSON-каталог переводов для указанного языка.
// JSON формат: {"key": "translation", ...} (плоский).
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает перевод по ключу для указанного языка.
// Если ключ не найден — возвращает ключ как есть.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if catalog, ok := b.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}

	// Fallback на английский
	if lang != "en" {
		if catalog, ok := b.catalogs["en"]; ok {
			if msg, ok := catalog[key]; ok {
				return msg
			}
		}
	}

	return key
}

// Translatef возвращает перевод по ключу с подстановкой аргументов (fmt.Sprintf).
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	template := b.Translate(lang, key)
	if len(args) == 0 {
		return template
	}
	return formatFunc(template, args...)
}

// --- Глобальный Bundle (singleton) ---

var (
	globalBundle *Bundle
	globalOnce   sync.Once
)

// Init инициализирует глобальный Bundle. Вызывается один раз при старте.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		globalBundle = NewBundle(logger)
	})
	return globalBundle
}

// --- Функции для страниц ---

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. Default: "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return "en"
}

// T возвращает перевод по ключу, используя язык из контекста.
func T(ctx context.Context, key string) string {
	if globalBundle == nil {
		return key
	}
	return globalBundle.Translate(LangFromContext(ctx), key)
}

// Tf возвращает перевод по ключу с аргументами (fmt.Sprintf).
func Tf(ctx context.Context, key string, args ...any) string {
	if globalBundle == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return globalBundle.Translatef(LangFromContext(ctx), key, args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят из
// JSON-каталогов, и printf-анализатор go vet их проверить не может.
//
//nolint:govet // формат-строка известна только во время выполнения
var formatFunc = fmt.Sprintf
