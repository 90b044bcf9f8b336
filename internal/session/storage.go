package session

import (
	"context"
	"sync"

	"github.com/bigkaa/repairshop-portal/internal/domain/role"
)

// Snapshot — долговременная часть сессии. Ключи сериализации
// фиксированы: token, userRole, id.
type Snapshot struct {
	Token  string    `json:"token" yaml:"token"`
	Role   role.Role `json:"userRole" yaml:"userRole"`
	UserID int64     `json:"id" yaml:"id"`
}

// IsZero возвращает true, если в снимке нет ни токена, ни роли.
func (s Snapshot) IsZero() bool {
	return s.Token == "" && s.Role == role.None
}

// IsComplete возвращает true, если снимок пригоден для восстановления:
// токен и допустимая роль присутствуют одновременно.
func (s Snapshot) IsComplete() bool {
	return s.Token != "" && s.Role.IsValid()
}

// Storage — долговременное хранилище сессии на стороне клиента.
// Реализации получают контекст вызова: веб-хранилище берёт из него
// пару запрос/ответ.
type Storage interface {
	// Load возвращает сохранённый снимок. Отсутствие записи — нулевой
	// Snapshot без ошибки.
	Load(ctx context.Context) (Snapshot, error)
	// Save сохраняет снимок целиком.
	Save(ctx context.Context, s Snapshot) error
	// Clear удаляет запись полностью.
	Clear(ctx context.Context) error
}

// MemoryStorage — хранилище в памяти процесса.
type MemoryStorage struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemoryStorage создаёт пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *MemoryStorage) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	return nil
}
