// Пакет server — HTTP-сервер портала с graceful shutdown.
// Без TLS: TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/repairshop-portal/internal/api/errors"
	apihandlers "github.com/bigkaa/repairshop-portal/internal/api/handlers"
	"github.com/bigkaa/repairshop-portal/internal/api/middleware"
	"github.com/bigkaa/repairshop-portal/internal/config"
	"github.com/bigkaa/repairshop-portal/internal/guard"
	"github.com/bigkaa/repairshop-portal/internal/ui/handlers"
	"github.com/bigkaa/repairshop-portal/internal/ui/i18n"
	"github.com/bigkaa/repairshop-portal/internal/ui/static"
	"github.com/bigkaa/repairshop-portal/internal/ui/workspace"
)

// Deps — зависимости маршрутизатора.
type Deps struct {
	Languages *i18n.Languages
	Registry  *workspace.Registry
	Guard     *guard.Table

	Health   *apihandlers.HealthHandler
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Worker   *handlers.WorkerHandler
	Admin    *handlers.AdminHandler
	Language *handlers.LanguageHandler
	Events   *handlers.EventsHandler
}

// NewRouter собирает маршруты портала.
// Служебные endpoints (/health/*, /metrics, /static/*) обслуживаются без
// рабочего пространства браузера; страницы проходят через определение
// языка, реестр пространств и проверку доступа.
func NewRouter(d Deps, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.NotFound(w, "страница не найдена: "+r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.MethodNotAllowed(w, "метод "+r.Method+" не поддерживается для "+r.URL.Path)
	})

	router.Get("/health/live", d.Health.HealthLive)
	router.Get("/health/ready", d.Health.HealthReady)
	router.Get("/metrics", d.Health.GetMetrics)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	viewer := func(r *http.Request) guard.Viewer {
		if ws := workspace.FromContext(r.Context()); ws != nil {
			return ws.Session
		}
		return nil
	}

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(d.Languages))
		r.Use(d.Registry.Middleware())
		r.Use(guard.Middleware(d.Guard, viewer, logger))

		r.Get("/", d.Auth.HandleHome)
		r.Get("/login", d.Auth.HandleLoginPage)
		r.Post("/login", d.Auth.HandleLogin)
		r.Get("/register", d.Auth.HandleRegisterPage)
		r.Post("/register", d.Auth.HandleRegister)
		r.Post("/logout", d.Auth.HandleLogout)
		r.Get("/lang/{lang}", d.Language.HandleSetLanguage)
		r.Get("/events", d.Events.HandleEvents)

		r.Route("/user", func(r chi.Router) {
			r.Get("/dashboard", d.User.HandleDashboard)
			r.Get("/vehicles", d.User.HandleVehicles)
			r.Post("/vehicles", d.User.HandleAddVehicle)
			r.Get("/orders", d.User.HandleOrders)
			r.Post("/orders", d.User.HandleSubmitRepair)
			r.Post("/orders/{id}/feedback", d.User.HandleFeedback)
			r.Get("/logs", d.User.HandleLogs)
		})

		r.Route("/worker", func(r chi.Router) {
			r.Get("/dashboard", d.Worker.HandleDashboard)
			r.Get("/orders", d.Worker.HandleOrders)
			r.Get("/orders/{id}", d.Worker.HandleOrder)
			r.Post("/orders/{id}/accept", d.Worker.HandleAccept)
			r.Post("/orders/{id}/reject", d.Worker.HandleReject)
			r.Post("/orders/{id}/start", d.Worker.HandleStart)
			r.Post("/orders/{id}/complete", d.Worker.HandleComplete)
			r.Post("/orders/{id}/materials", d.Worker.HandleAddMaterial)
			r.Get("/history", d.Worker.HandleHistory)
			r.Get("/earnings", d.Worker.HandleEarnings)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", d.Admin.HandleDashboard)
			r.Get("/users", d.Admin.HandleUsers)
			r.Get("/workers", d.Admin.HandleWorkers)
			r.Get("/orders", d.Admin.HandleOrders)
			r.Post("/orders/batch-delete", d.Admin.HandleBatchDelete)
			r.Post("/orders/batch-submit", d.Admin.HandleBatchSubmit)
			r.Post("/orders/{id}/assign", d.Admin.HandleAssign)
			r.Post("/orders/{id}/rollback", d.Admin.HandleRollback)
			r.Get("/orders/{id}/proof", d.Admin.HandleProof)
			r.Get("/logs", d.Admin.HandleLogs)
			r.Get("/statistics", d.Admin.HandleStatistics)
			r.Get("/settlements", d.Admin.HandleSettlements)
			r.Post("/settlements", d.Admin.HandleRunSettlement)
			r.Get("/settlements/export", d.Admin.HandleExportSettlements)
			r.Get("/audit", d.Admin.HandleAudit)
		})
	})

	return router
}

// Server — HTTP-сервер портала.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер. WriteTimeout не задан: SSE-поток /events
// живёт дольше любого разумного таймаута записи.
func New(cfg *config.Config, logger *slog.Logger, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
