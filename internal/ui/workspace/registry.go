package workspace

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/repairshop-portal/internal/session"
)

// CookieName — cookie с идентификатором рабочего пространства.
const CookieName = "rp_sid"

// Prometheus-метрики реестра.
var (
	workspaceHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rp_workspace_cache_hits_total",
		Help: "Количество запросов, нашедших рабочее пространство в реестре.",
	})
	workspaceMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rp_workspace_cache_misses_total",
		Help: "Количество запросов, для которых рабочее пространство создано заново.",
	})
)

// contextKey — тип ключа для контекста (избегаем коллизий).
type contextKey string

const contextKeyWorkspace contextKey = "workspace"

// Registry — LRU-реестр рабочих пространств с TTL.
// Вытесненное пространство закрывается; при следующем запросе браузера
// создаётся новое и восстанавливает сессию из cookie.
type Registry struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Workspace]
	build  Builder
	secure bool
	logger *slog.Logger
}

// NewRegistry создаёт реестр.
// size — максимальное число пространств, ttl — время жизни после
// последнего обращения, secure — Secure flag cookie.
func NewRegistry(size int, ttl time.Duration, build Builder, secure bool, logger *slog.Logger) *Registry {
	r := &Registry{
		build:  build,
		secure: secure,
		logger: logger.With(slog.String("component", "workspace_registry")),
	}
	r.cache = expirable.NewLRU[string, *Workspace](size, func(id string, ws *Workspace) {
		r.logger.Debug("Рабочее пространство вытеснено", slog.String("workspace", id))
		ws.Close()
	}, ttl)
	return r
}

// Len возвращает число живых пространств.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Get возвращает пространство по id.
func (r *Registry) Get(id string) (*Workspace, bool) {
	return r.cache.Get(id)
}

// Middleware находит или создаёт рабочее пространство браузера и
// помещает его в контекст. Контекст также получает пару
// запрос/ответ для cookie-хранилища сессии.
func (r *Registry) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := session.WithHTTP(req.Context(), w, req)
			ws := r.acquire(ctx, w, req)
			next.ServeHTTP(w, req.WithContext(WithWorkspace(ctx, ws)))
		})
	}
}

// acquire возвращает пространство по cookie или создаёт новое.
// Новое пространство всегда получает id, выданный сервером: id из cookie,
// которого нет в реестре, не используется.
func (r *Registry) acquire(ctx context.Context, w http.ResponseWriter, req *http.Request) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, err := req.Cookie(CookieName); err == nil {
		if ws, ok := r.cache.Get(c.Value); ok {
			workspaceHitsTotal.Inc()
			// Продлеваем TTL при каждом обращении
			r.cache.Add(c.Value, ws)
			return ws
		}
	}
	workspaceMissesTotal.Inc()

	id := uuid.NewString()
	ws := r.build(id)
	restored := ws.Session.Restore(ctx)
	r.cache.Add(id, ws)
	r.setCookie(w, id)

	r.logger.Debug("Рабочее пространство создано",
		slog.String("workspace", id),
		slog.Bool("session_restored", restored),
	)
	return ws
}

// Rotate заменяет пространство ws новым под свежим id: сессия
// переносится, старое пространство удаляется из реестра и закрывается,
// браузер получает новую cookie. Вызывается после успешного входа.
func (r *Registry) Rotate(w http.ResponseWriter, ws *Workspace) *Workspace {
	id := uuid.NewString()
	fresh := r.build(id)
	ws.Session.MoveTo(fresh.Session)

	r.mu.Lock()
	r.cache.Remove(ws.ID)
	r.cache.Add(id, fresh)
	r.mu.Unlock()
	r.setCookie(w, id)

	r.logger.Debug("Рабочее пространство заменено после входа",
		slog.String("old", ws.ID),
		slog.String("workspace", id),
	)
	return fresh
}

func (r *Registry) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithWorkspace помещает рабочее пространство в контекст.
func WithWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, contextKeyWorkspace, ws)
}

// FromContext извлекает рабочее пространство из контекста.
// Возвращает nil, если middleware реестра не применён.
func FromContext(ctx context.Context) *Workspace {
	ws, _ := ctx.Value(contextKeyWorkspace).(*Workspace)
	return ws
}
