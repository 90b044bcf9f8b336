// Пакет workspace — рабочее пространство браузера: сессия и хранилища
// данных ролей, связанные с одним HTTP-клиентом backend. Пространства
// живут в LRU-реестре с TTL и находятся по cookie браузера.
package workspace

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/service"
	"github.com/bigkaa/repairshop-portal/internal/session"
	"github.com/bigkaa/repairshop-portal/internal/store"
)

// listenerBuffer — ёмкость канала слушателя событий. Медленный
// слушатель теряет события сверх неё.
const listenerBuffer = 32

// Типы событий рабочего пространства.
const (
	EventStore   = "store"
	EventSession = "session"
)

// Event — событие для открытой страницы (SSE).
type Event struct {
	Type    string        `json:"type"`
	Store   *store.Event  `json:"store,omitempty"`
	Session session.Event `json:"session,omitempty"`
}

// Workspace — сессия и хранилища одного браузера.
type Workspace struct {
	ID      string
	Session *session.Session
	User    *store.UserStore
	Worker  *store.WorkerStore
	Admin   *store.AdminStore

	logger *slog.Logger
	unsubs []func()

	mu        sync.Mutex
	listeners map[int]chan Event
	nextID    int
	closed    bool
}

// Builder создаёт рабочее пространство с заданным id.
type Builder func(id string) *Workspace

// NewBuilder возвращает Builder, собирающий пространство над backend
// baseURL. Все пространства делят транспорт httpClient и хранилище
// снимков сессии storage.
func NewBuilder(baseURL string, httpClient *http.Client, storage session.Storage, logger *slog.Logger) Builder {
	base := apiclient.New(baseURL, httpClient, logger)
	return func(id string) *Workspace {
		wsLogger := logger.With(slog.String("workspace", id))

		sess := session.New(storage, wsLogger)
		client := base.WithSession(sess.Token, sess.Expire)
		sess.SetAuthenticator(service.NewAuthService(client))

		return newWorkspace(id, sess,
			store.NewUserStore(service.NewUserService(client), wsLogger),
			store.NewWorkerStore(service.NewWorkerService(client), wsLogger),
			store.NewAdminStore(service.NewAdminService(client), wsLogger),
			wsLogger,
		)
	}
}

// newWorkspace связывает сессию и хранилища: вход и выход сбрасывают
// кэши, события обоих источников пересылаются слушателям.
func newWorkspace(
	id string,
	sess *session.Session,
	user *store.UserStore,
	worker *store.WorkerStore,
	admin *store.AdminStore,
	logger *slog.Logger,
) *Workspace {
	ws := &Workspace{
		ID:        id,
		Session:   sess,
		User:      user,
		Worker:    worker,
		Admin:     admin,
		logger:    logger.With(slog.String("component", "workspace")),
		listeners: make(map[int]chan Event),
	}

	ws.unsubs = append(ws.unsubs, sess.Subscribe(func(ev session.Event, _ session.State) {
		switch ev {
		case session.EventLogin, session.EventLogout:
			ws.resetStores()
		}
		ws.publish(Event{Type: EventSession, Session: ev})
	}))

	forward := func(ev store.Event) {
		ws.publish(Event{Type: EventStore, Store: &ev})
	}
	ws.unsubs = append(ws.unsubs,
		user.Subscribe(forward),
		worker.Subscribe(forward),
		admin.Subscribe(forward),
	)
	return ws
}

// resetStores очищает кэши всех ролей.
func (ws *Workspace) resetStores() {
	ws.User.Reset()
	ws.Worker.Reset()
	ws.Admin.Reset()
}

// Listen подписывает слушателя на события пространства. Канал
// закрывается функцией отмены или при закрытии пространства.
func (ws *Workspace) Listen() (<-chan Event, func()) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ch := make(chan Event, listenerBuffer)
	if ws.closed {
		close(ch)
		return ch, func() {}
	}

	id := ws.nextID
	ws.nextID++
	ws.listeners[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			ws.mu.Lock()
			defer ws.mu.Unlock()
			if l, ok := ws.listeners[id]; ok {
				delete(ws.listeners, id)
				close(l)
			}
		})
	}
}

// publish рассылает событие слушателям, не блокируясь на заполненных каналах.
func (ws *Workspace) publish(ev Event) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, ch := range ws.listeners {
		select {
		case ch <- ev:
		default:
			ws.logger.Debug("Событие пропущено, слушатель не успевает",
				slog.String("type", ev.Type),
			)
		}
	}
}

// Close отписывается от сессии и хранилищ и закрывает каналы слушателей.
// Вызывается реестром при вытеснении.
func (ws *Workspace) Close() {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return
	}
	ws.closed = true
	for id, ch := range ws.listeners {
		delete(ws.listeners, id)
		close(ch)
	}
	ws.mu.Unlock()

	for _, unsub := range ws.unsubs {
		unsub()
	}
}
