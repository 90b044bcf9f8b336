// Пакет static — встроенные статические ресурсы портала (CSS).
// Файлы встраиваются в бинарник через //go:embed и раздаются через HTTP.
package static

import (
	"embed"
	"net/http"
)

// content — встроенная файловая система статических ресурсов.
//
//go:embed portal.css
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
func FileSystem() http.FileSystem {
	return http.FS(content)
}
