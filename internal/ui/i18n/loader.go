// loader.go — загрузка каталогов переводов из embed.FS.
package i18n

import (
	"fmt"
	"log/slog"
)

// LoadFromEmbedFS загружает каталоги переводов разрешённых языков из
// встроенной файловой системы (locales/<lang>.json). Английский каталог
// загружается всегда: он служит fallback.
func LoadFromEmbedFS(bundle *Bundle, langs *Languages, logger *slog.Logger) error {
	codes := langs.Codes()
	if !langs.Allowed("en") {
		codes = append(codes, "en")
	}

	for _, lang := range codes {
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := LocaleFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}

		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	logger.Info("i18n каталоги загружены", slog.Any("languages", codes))
	return nil
}
