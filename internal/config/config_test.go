package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"RP_BACKEND_URL": "http://backend.repair.lan:8080/",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	// trailing slash убирается
	if cfg.BackendURL != "http://backend.repair.lan:8080" {
		t.Errorf("BackendURL = %q, ожидается без trailing slash", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("BackendTimeout = %v, ожидается 30s", cfg.BackendTimeout)
	}
	if cfg.BackendHealthPath != "/actuator/health" {
		t.Errorf("BackendHealthPath = %q, ожидается /actuator/health", cfg.BackendHealthPath)
	}
	if cfg.SessionSecure {
		t.Error("SessionSecure по умолчанию должен быть false")
	}
	if cfg.WorkspaceCacheSize != 1000 {
		t.Errorf("WorkspaceCacheSize = %d, ожидается 1000", cfg.WorkspaceCacheSize)
	}
	if cfg.WorkspaceTTL != 24*time.Hour {
		t.Errorf("WorkspaceTTL = %v, ожидается 24h", cfg.WorkspaceTTL)
	}
	if cfg.DephealthGroup != "repairshop" {
		t.Errorf("DephealthGroup = %q, ожидается repairshop", cfg.DephealthGroup)
	}
	if len(cfg.Languages) != 3 {
		t.Errorf("Languages = %v, ожидается en,ru,zh", cfg.Languages)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["RP_PORT"] = "9090"
	envs["RP_LOG_LEVEL"] = "debug"
	envs["RP_LOG_FORMAT"] = "text"
	envs["RP_SESSION_SECURE"] = "true"
	envs["RP_WORKSPACE_TTL"] = "2h"
	envs["RP_LANGUAGES"] = " en , ru "
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if !cfg.SessionSecure {
		t.Error("SessionSecure должен быть true")
	}
	if cfg.WorkspaceTTL != 2*time.Hour {
		t.Errorf("WorkspaceTTL = %v, ожидается 2h", cfg.WorkspaceTTL)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "en" || cfg.Languages[1] != "ru" {
		t.Errorf("Languages = %v, ожидается [en ru]", cfg.Languages)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
	}{
		{"без RP_BACKEND_URL", map[string]string{}},
		{"URL без схемы", map[string]string{"RP_BACKEND_URL": "backend.lan"}},
		{"некорректный порт", map[string]string{"RP_BACKEND_URL": "http://b", "RP_PORT": "abc"}},
		{"порт вне диапазона", map[string]string{"RP_BACKEND_URL": "http://b", "RP_PORT": "70000"}},
		{"неизвестный уровень логов", map[string]string{"RP_BACKEND_URL": "http://b", "RP_LOG_LEVEL": "trace"}},
		{"неизвестный формат логов", map[string]string{"RP_BACKEND_URL": "http://b", "RP_LOG_FORMAT": "xml"}},
		{"некорректный таймаут", map[string]string{"RP_BACKEND_URL": "http://b", "RP_BACKEND_TIMEOUT": "10"}},
		{"health path без слэша", map[string]string{"RP_BACKEND_URL": "http://b", "RP_BACKEND_HEALTH_PATH": "health"}},
		{"некорректный bool", map[string]string{"RP_BACKEND_URL": "http://b", "RP_SESSION_SECURE": "yes-please"}},
		{"нулевой размер кэша", map[string]string{"RP_BACKEND_URL": "http://b", "RP_WORKSPACE_CACHE_SIZE": "0"}},
		{"пустой список языков", map[string]string{"RP_BACKEND_URL": "http://b", "RP_LANGUAGES": " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RP_BACKEND_URL", "")
			setEnvs(t, tt.envs)

			if _, err := Load(); err == nil {
				t.Error("ожидалась ошибка, получен nil")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("RP_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RP_DOTENV_PROBE", "")
	os.Unsetenv("RP_DOTENV_PROBE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv вернул ошибку: %v", err)
	}
	if got := os.Getenv("RP_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("RP_DOTENV_PROBE = %q, ожидается from-file", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"fatal", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ошибка = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("уровень = %v, ожидается %v", got, tt.want)
			}
		})
	}
}
