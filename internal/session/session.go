// Пакет session — сессия текущего пользователя портала: токен, роль,
// id и профиль. Вход, выход, загрузка профиля, восстановление из
// долговременного хранилища и уведомление наблюдателей.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// Authenticator — операции backend, нужные сессии.
// Реализуется *service.AuthService.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials, r role.Role) (*model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) error
	UserInfo(ctx context.Context) (*model.User, error)
	WorkerInfo(ctx context.Context) (*model.Worker, error)
}

// Event — тип изменения сессии.
type Event string

const (
	EventLogin   Event = "login"
	EventLogout  Event = "logout"
	EventRestore Event = "restore"
	EventProfile Event = "profile"
)

// State — состояние сессии. Token и Role либо оба заданы, либо оба пусты.
type State struct {
	Token   string
	Role    role.Role
	UserID  int64
	Profile *model.Profile
}

// Observer получает уведомление после каждого изменения сессии.
type Observer func(ev Event, st State)

// Session — сессия одного клиента (вкладки браузера или CLI).
// Безопасна для конкурентного использования.
type Session struct {
	mu    sync.RWMutex
	state State

	auth    Authenticator
	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// New создаёт пустую сессию над хранилищем storage.
// Authenticator подключается отдельно через SetAuthenticator: его
// HTTP-клиент сам получает токен из этой сессии.
func New(storage Storage, logger *slog.Logger) *Session {
	return &Session{
		storage:   storage,
		logger:    logger.With(slog.String("component", "session")),
		now:       time.Now,
		observers: make(map[int]Observer),
	}
}

// SetAuthenticator подключает сервис аутентификации.
func (s *Session) SetAuthenticator(auth Authenticator) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
}

// Restore восстанавливает сессию из хранилища. Неполная запись
// (токен без роли, неизвестная роль) или просроченный токен считаются
// отсутствующими, запись удаляется. Возвращает true, если сессия
// восстановлена.
func (s *Session) Restore(ctx context.Context) bool {
	snap, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать сохранённую сессию", slog.String("error", err.Error()))
		return false
	}
	if snap.IsZero() {
		return false
	}

	if !snap.IsComplete() || tokenExpired(snap.Token, s.now()) {
		s.logger.Info("Сохранённая сессия отброшена",
			slog.String("role", string(snap.Role)),
			slog.Bool("has_token", snap.Token != ""),
		)
		if err := s.storage.Clear(ctx); err != nil {
			s.logger.Warn("Ошибка очистки хранилища сессии", slog.String("error", err.Error()))
		}
		return false
	}

	s.mu.Lock()
	s.state = State{Token: snap.Token, Role: snap.Role, UserID: snap.UserID}
	st := s.state
	s.mu.Unlock()

	s.logger.Debug("Сессия восстановлена",
		slog.String("role", string(st.Role)),
		slog.Int64("user_id", st.UserID),
	)
	s.notify(EventRestore, st)
	return true
}

// Login выполняет вход под ролью r и сохраняет сессию.
// Ошибка backend возвращается без изменений, сессия не затрагивается.
func (s *Session) Login(ctx context.Context, creds model.Credentials, r role.Role) error {
	auth := s.authenticator()
	resp, err := auth.Login(ctx, creds, r)
	if err != nil {
		return err
	}

	st := State{Token: resp.Token, Role: r, UserID: resp.ID}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	snap := Snapshot{Token: st.Token, Role: st.Role, UserID: st.UserID}
	if err := s.storage.Save(ctx, snap); err != nil {
		s.logger.Warn("Сессия не сохранена в хранилище", slog.String("error", err.Error()))
	}

	s.logger.Info("Вход выполнен",
		slog.String("role", string(st.Role)),
		slog.Int64("user_id", st.UserID),
	)
	s.notify(EventLogin, st)
	return nil
}

// Register регистрирует клиента. Вход не выполняется.
func (s *Session) Register(ctx context.Context, req model.RegisterRequest) error {
	return s.authenticator().Register(ctx, req)
}

// Logout очищает сессию в памяти и в хранилище. Никогда не завершается
// ошибкой: сбой хранилища только логируется.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	was := s.state
	s.state = State{}
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Warn("Ошибка очистки хранилища сессии", slog.String("error", err.Error()))
	}

	if was.Token != "" {
		s.logger.Info("Выход выполнен",
			slog.String("role", string(was.Role)),
			slog.Int64("user_id", was.UserID),
		)
	}
	s.notify(EventLogout, State{})
}

// MoveTo переносит состояние сессии в dst без обращения к хранилищу.
// dst получает событие restore, s очищается без уведомлений.
func (s *Session) MoveTo(dst *Session) {
	s.mu.Lock()
	st := s.state
	s.state = State{}
	s.mu.Unlock()

	dst.mu.Lock()
	dst.state = st
	dst.mu.Unlock()
	dst.notify(EventRestore, st)
}

// Expire завершает сессию, отклонённую backend (HTTP 401).
// Подключается к apiclient как UnauthorizedHandler.
func (s *Session) Expire(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	s.logger.Info("Backend отклонил токен, сессия завершена")
	s.Logout(ctx)
}

// FetchProfile загружает профиль текущего пользователя: USER и WORKER
// имеют профиль, ADMIN нет. Ошибки логируются и не возвращаются.
func (s *Session) FetchProfile(ctx context.Context) {
	st := s.State()
	if st.Token == "" {
		return
	}

	auth := s.authenticator()
	var profile model.Profile
	switch st.Role {
	case role.User:
		u, err := auth.UserInfo(ctx)
		if err != nil {
			s.logger.Warn("Ошибка загрузки профиля клиента", slog.String("error", err.Error()))
			return
		}
		profile.User = u
	case role.Worker:
		w, err := auth.WorkerInfo(ctx)
		if err != nil {
			s.logger.Warn("Ошибка загрузки профиля мастера", slog.String("error", err.Error()))
			return
		}
		profile.Worker = w
	default:
		return
	}

	s.mu.Lock()
	// Сессия могла смениться, пока шёл запрос
	if s.state.Token != st.Token {
		s.mu.Unlock()
		return
	}
	s.state.Profile = &profile
	updated := s.state
	s.mu.Unlock()

	s.notify(EventProfile, updated)
}

// Token возвращает токен сессии. Подключается к apiclient как TokenProvider.
func (s *Session) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token, nil
}

// State возвращает копию текущего состояния.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Role возвращает роль сессии (role.None без входа).
func (s *Session) Role() role.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role
}

// UserID возвращает id пользователя сессии.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserID
}

// Profile возвращает профиль или nil.
func (s *Session) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile
}

// IsAuthenticated возвращает true при наличии токена.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != ""
}

func (s *Session) IsUser() bool   { return s.is(role.User) }
func (s *Session) IsWorker() bool { return s.is(role.Worker) }
func (s *Session) IsAdmin() bool  { return s.is(role.Admin) }

func (s *Session) is(r role.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != "" && s.state.Role == r
}

// Subscribe регистрирует наблюдателя. Возвращает функцию отписки.
func (s *Session) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// notify вызывает наблюдателей вне блокировки состояния.
func (s *Session) notify(ev Event, st State) {
	s.obsMu.Lock()
	fns := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev, st)
	}
}

func (s *Session) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		panic("session: authenticator не подключён")
	}
	return s.auth
}
