// Точка входа Repair Portal — веб-портала ремонтной мастерской.
// Загружает конфигурацию, каталоги переводов, создаёт хранилище сессий
// и реестр рабочих пространств браузеров, запускает мониторинг backend
// (topologymetrics) и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	apihandlers "github.com/bigkaa/repairshop-portal/internal/api/handlers"
	"github.com/bigkaa/repairshop-portal/internal/config"
	"github.com/bigkaa/repairshop-portal/internal/guard"
	"github.com/bigkaa/repairshop-portal/internal/monitor"
	"github.com/bigkaa/repairshop-portal/internal/server"
	"github.com/bigkaa/repairshop-portal/internal/session"
	"github.com/bigkaa/repairshop-portal/internal/ui/handlers"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

func main() {
	// 1. Переменные из .env (если файл есть)
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("Ошибка загрузки .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Repair Portal запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("backend", cfg.BackendURL),
	)

	// 4. Языки интерфейса и каталоги переводов
	langs, err := i18n.NewLanguages(cfg.Languages)
	if err != nil {
		logger.Error("Ошибка списка языков", slog.String("error", err.Error()))
		os.Exit(1)
	}
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, langs, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Хранилище сессий в зашифрованной cookie
	if cfg.SessionKey == "" {
		logger.Warn("RP_SESSION_KEY не задан, сессии не переживут перезапуск портала")
	}
	storage, err := session.NewCookieStorage(cfg.SessionKey, cfg.SessionSecure)
	if err != nil {
		logger.Error("Ошибка создания хранилища сессий", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Реестр рабочих пространств браузеров
	httpClient := &http.Client{Timeout: cfg.BackendTimeout}
	build := workspace.NewBuilder(cfg.BackendURL, httpClient, storage, logger)
	registry := workspace.NewRegistry(cfg.WorkspaceCacheSize, cfg.WorkspaceTTL, build, cfg.SessionSecure, logger)

	// 7. topologymetrics — мониторинг backend
	ctx := context.Background()
	var backendHealth apihandlers.HealthReporter
	var running *monitor.Monitor
	mon, err := monitor.New(monitor.Options{
		Group:         cfg.DephealthGroup,
		BackendURL:    cfg.BackendURL,
		HealthPath:    cfg.BackendHealthPath,
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга backend",
			slog.String("error", err.Error()),
		)
	} else if err := mon.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
	} else {
		running = mon
		backendHealth = mon
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 8. Маршрутизатор и обработчики
	router := server.NewRouter(server.Deps{
		Languages: langs,
		Registry:  registry,
		Guard:     guard.NewTable(guard.DefaultRoutes()),
		Health:    apihandlers.NewHealthHandler(backendHealth),
		Auth:      handlers.NewAuthHandler(langs, registry, logger),
		User:      handlers.NewUserHandler(langs, logger),
		Worker:    handlers.NewWorkerHandler(langs, logger),
		Admin:     handlers.NewAdminHandler(langs, logger),
		Language:  handlers.NewLanguageHandler(langs),
		Events:    handlers.NewEventsHandler(backendHealth, cfg.SSEInterval, logger),
	}, logger)

	// 9. Запуск сервера (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		stopMonitor(running)
		os.Exit(1)
	}

	// 10. Остановка фоновых задач
	stopMonitor(running)
	logger.Info("Repair Portal остановлен")
}

// stopMonitor останавливает мониторинг backend, если он запущен.
func stopMonitor(mon *monitor.Monitor) {
	if mon != nil {
		mon.Stop()
	}
}
