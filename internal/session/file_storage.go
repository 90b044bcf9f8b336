package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStorage хранит сессию в YAML-файле (используется CLI).
// Файл создаётся с правами 0600, каталог — 0700.
type FileStorage struct {
	path string
}

// NewFileStorage создаёт хранилище в файле path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path возвращает путь к файлу сессии.
func (f *FileStorage) Path() string {
	return f.path
}

// Load читает снимок. Отсутствующий файл — пустая сессия.
func (f *FileStorage) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("чтение файла сессии %s: %w", f.path, err)
	}

	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("разбор файла сессии %s: %w", f.path, err)
	}
	return s, nil
}

// Save записывает снимок атомарно: временный файл + rename.
func (f *FileStorage) Save(_ context.Context, s Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("сериализация сессии: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("создание каталога %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("создание временного файла сессии: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись файла сессии: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("права файла сессии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("закрытие файла сессии: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("сохранение файла сессии %s: %w", f.path, err)
	}
	return nil
}

// Clear удаляет файл сессии.
func (f *FileStorage) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("удаление файла сессии %s: %w", f.path, err)
	}
	return nil
}
