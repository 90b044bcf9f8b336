// Пакет store — кэш доменных данных по ролям поверх сервисов backend.
// Каждое действие: loading, очистка ошибки, вызов сервиса, обновление
// кэша и уведомление наблюдателей. Мутации заказов сначала применяются
// локально по машине состояний, затем коллекция перечитывается целиком.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/repairshop-portal/internal/apiclient"
	"github.com/bigkaa/repairshop-portal/internal/domain/model"
	"github.com/bigkaa/repairshop-portal/internal/domain/order"
	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// storeActionsTotal — счётчик действий хранилищ по результату.
var storeActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rp_store_actions_total",
		Help: "Количество действий хранилищ портала",
	},
	[]string{"store", "action", "result"},
)

// Фазы события хранилища.
const (
	PhaseStart      = "start"
	PhaseOptimistic = "optimistic"
	PhaseDone       = "done"
	PhaseFailed     = "failed"
	PhaseReset      = "reset"
)

// Event — уведомление об изменении состояния хранилища.
type Event struct {
	// Store — имя хранилища (user, worker, admin).
	Store string `json:"store"`
	// Action — имя действия (fetchVehicles, acceptOrder, ...).
	Action string `json:"action"`
	// Phase — фаза: start, optimistic, done, failed, reset.
	Phase string `json:"phase"`
	// Loading — выполняется ли хотя бы одно действие.
	Loading bool `json:"loading"`
	// Error — текст ошибки хранилища (пусто без ошибки).
	Error string `json:"error,omitempty"`
}

// Observer получает события хранилища.
type Observer func(Event)

// base — общая часть хранилищ: счётчик выполняющихся действий,
// слот ошибки и наблюдатели. mu защищает также данные конкретного
// хранилища.
type base struct {
	name   string
	logger *slog.Logger

	mu       sync.RWMutex
	inflight int
	errMsg   string

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

func (b *base) init(name string, logger *slog.Logger) {
	b.name = name
	b.logger = logger.With(slog.String("component", "store"), slog.String("store", name))
	b.observers = make(map[int]Observer)
}

// Loading возвращает true, пока выполняется хотя бы одно действие.
func (b *base) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inflight > 0
}

// Err возвращает текст последней ошибки или пустую строку.
func (b *base) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errMsg
}

// Subscribe регистрирует наблюдателя. Возвращает функцию отписки.
func (b *base) Subscribe(fn Observer) (unsubscribe func()) {
	b.obsMu.Lock()
	id := b.nextObsID
	b.nextObsID++
	b.observers[id] = fn
	b.obsMu.Unlock()

	return func() {
		b.obsMu.Lock()
		delete(b.observers, id)
		b.obsMu.Unlock()
	}
}

// run выполняет действие: loading on, ошибка очищена, fn, затем в
// отложенном шаге loading off. Ошибка fn сохраняется в слот и
// возвращается. Вызовы сервиса не отменяются вместе с ctx вызывающего.
func (b *base) run(ctx context.Context, action string, fn func(ctx context.Context) error) (err error) {
	b.mu.Lock()
	b.inflight++
	b.errMsg = ""
	b.mu.Unlock()
	b.emit(action, PhaseStart)

	defer func() {
		b.mu.Lock()
		b.inflight--
		if err != nil {
			b.errMsg = apiclient.Message(err)
		}
		b.mu.Unlock()

		if err != nil {
			storeActionsTotal.WithLabelValues(b.name, action, "error").Inc()
			b.logger.Warn("Действие завершилось ошибкой",
				slog.String("action", action),
				slog.String("error", err.Error()),
			)
			b.emit(action, PhaseFailed)
			return
		}
		storeActionsTotal.WithLabelValues(b.name, action, "success").Inc()
		b.emit(action, PhaseDone)
	}()

	return fn(context.WithoutCancel(ctx))
}

// reconcile перечитывает коллекцию после успешной мутации. Ошибка
// перечитывания попадает в слот ошибки, но не отменяет успех мутации.
func (b *base) reconcile(ctx context.Context, action string, fetch func(ctx context.Context) error) {
	if err := fetch(ctx); err != nil {
		b.mu.Lock()
		b.errMsg = apiclient.Message(err)
		b.mu.Unlock()
		storeActionsTotal.WithLabelValues(b.name, action+"_reconcile", "error").Inc()
		b.logger.Warn("Не удалось перечитать данные после изменения",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

// patchStatus применяет к заказу id статус, вычисленный next из
// текущего. Недопустимый локальный переход только логируется: итог
// определит перечитывание. Вызывается под b.mu.
func (b *base) patchStatus(orders []model.RepairOrder, id int64, action order.Action, next func(order.Status) (order.Status, error)) bool {
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		to, err := next(orders[i].Status)
		if err != nil {
			b.logger.Warn("Локальный переход недопустим, ждём ответа backend",
				slog.String("action", string(action)),
				slog.Int64("order_id", id),
				slog.String("error", err.Error()),
			)
			return false
		}
		orders[i].Status = to
		return true
	}
	return false
}

// transitionTo — next для patchStatus по обычному действию.
func transitionTo(action order.Action, actor role.Role) func(order.Status) (order.Status, error) {
	return func(from order.Status) (order.Status, error) {
		return order.Transition(from, action, actor)
	}
}

// emit уведомляет наблюдателей вне блокировки данных.
func (b *base) emit(action, phase string) {
	b.mu.RLock()
	ev := Event{Store: b.name, Action: action, Phase: phase, Loading: b.inflight > 0, Error: b.errMsg}
	b.mu.RUnlock()

	b.obsMu.Lock()
	fns := make([]Observer, 0, len(b.observers))
	for _, fn := range b.observers {
		fns = append(fns, fn)
	}
	b.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// upsertOrder заменяет заказ с тем же id или добавляет его в конец.
func upsertOrder(orders []model.RepairOrder, o model.RepairOrder) []model.RepairOrder {
	for i := range orders {
		if orders[i].ID == o.ID {
			orders[i] = o
			return orders
		}
	}
	return append(orders, o)
}
