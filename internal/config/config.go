// Пакет config — загрузка и валидация конфигурации Repair Portal
// из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Repair Portal.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера портала
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Backend ---

	// Базовый URL REST backend ремонтной мастерской (без trailing slash)
	BackendURL string
	// Таймаут HTTP-транспорта при обращении к backend
	BackendTimeout time.Duration
	// Путь health endpoint backend для topologymetrics
	BackendHealthPath string

	// --- Сессии и рабочие пространства ---

	// Ключ шифрования cookie сессии (пустой — случайный ключ при старте)
	SessionKey string
	// Secure flag для cookie (true за HTTPS)
	SessionSecure bool
	// Максимальное число рабочих пространств браузеров в памяти
	WorkspaceCacheSize int
	// Время жизни неактивного рабочего пространства
	WorkspaceTTL time.Duration
	// Интервал heartbeat для SSE
	SSEInterval time.Duration

	// --- topologymetrics ---

	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Имя группы в метриках dephealth
	DephealthGroup string

	// --- UI ---

	// Языки интерфейса, которые разрешено выбирать
	Languages []string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// LoadDotEnv загружает переменные из .env файлов, если они существуют.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("загрузка %s: %w", f, err)
		}
	}
	return nil
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// RP_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("RP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("RP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("RP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// RP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RP_LOG_LEVEL: %w", err)
	}

	// RP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("RP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Backend ---

	// RP_BACKEND_URL — обязательный
	cfg.BackendURL, err = getEnvRequired("RP_BACKEND_URL")
	if err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if u, perr := url.Parse(cfg.BackendURL); perr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("RP_BACKEND_URL: некорректный URL %q", cfg.BackendURL)
	}

	// RP_BACKEND_TIMEOUT — таймаут транспорта (по умолчанию 30s)
	cfg.BackendTimeout, err = getEnvDuration("RP_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RP_BACKEND_TIMEOUT: %w", err)
	}

	// RP_BACKEND_HEALTH_PATH — health endpoint backend (по умолчанию /actuator/health)
	cfg.BackendHealthPath = getEnvDefault("RP_BACKEND_HEALTH_PATH", "/actuator/health")
	if !strings.HasPrefix(cfg.BackendHealthPath, "/") {
		return nil, fmt.Errorf("RP_BACKEND_HEALTH_PATH: путь должен начинаться с /: %q", cfg.BackendHealthPath)
	}

	// --- Сессии ---

	// RP_SESSION_KEY — ключ шифрования cookie (опционально)
	cfg.SessionKey = getEnvDefault("RP_SESSION_KEY", "")

	// RP_SESSION_SECURE — Secure flag (по умолчанию false)
	cfg.SessionSecure, err = getEnvBool("RP_SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("RP_SESSION_SECURE: %w", err)
	}

	// RP_WORKSPACE_CACHE_SIZE — размер LRU рабочих пространств (по умолчанию 1000)
	cfg.WorkspaceCacheSize, err = getEnvInt("RP_WORKSPACE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("RP_WORKSPACE_CACHE_SIZE: %w", err)
	}
	if cfg.WorkspaceCacheSize < 1 {
		return nil, fmt.Errorf("RP_WORKSPACE_CACHE_SIZE: значение %d должно быть положительным", cfg.WorkspaceCacheSize)
	}

	// RP_WORKSPACE_TTL — время жизни рабочего пространства (по умолчанию 24h)
	cfg.WorkspaceTTL, err = getEnvDuration("RP_WORKSPACE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RP_WORKSPACE_TTL: %w", err)
	}

	// RP_SSE_INTERVAL — heartbeat SSE (по умолчанию 15s)
	cfg.SSEInterval, err = getEnvDuration("RP_SSE_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RP_SSE_INTERVAL: %w", err)
	}

	// --- topologymetrics ---

	// RP_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("RP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// RP_DEPHEALTH_GROUP — группа в метриках (по умолчанию repairshop)
	cfg.DephealthGroup = getEnvDefault("RP_DEPHEALTH_GROUP", "repairshop")

	// --- UI ---

	// RP_LANGUAGES — доступные языки (по умолчанию en,ru,zh)
	cfg.Languages = parseCSV(getEnvDefault("RP_LANGUAGES", "en,ru,zh"))
	if len(cfg.Languages) == 0 {
		return nil, errors.New("RP_LANGUAGES: список языков пуст")
	}

	// --- Graceful shutdown ---

	// RP_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("RP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	return NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NewLogger создаёт slog-логгер заданного уровня и формата и делает его
// логгером по умолчанию. Используется также CLI, у которого нет Config.
func NewLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLogLevel — экспортируемая обёртка над parseLogLevel для CLI-флагов.
func ParseLogLevel(level string) (slog.Level, error) {
	return parseLogLevel(level)
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
