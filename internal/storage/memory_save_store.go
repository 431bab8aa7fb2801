package storage

import (
	"context"
	"sync"
)

// MemorySaveStore реализует SaveStore в памяти.
// Используется по умолчанию и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemorySaveStore struct {
	mu     sync.RWMutex
	data   map[string][]byte // слот -> блоб
	closed bool
}

// NewMemorySaveStore создает новое хранилище сохранений в памяти
func NewMemorySaveStore() *MemorySaveStore {
	return &MemorySaveStore{
		data: make(map[string][]byte),
	}
}

// Save сохраняет копию блоба в памяти
func (s *MemorySaveStore) Save(ctx context.Context, slot string, data []byte) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.data[slot] = append([]byte(nil), data...)
	return nil
}

// Load возвращает копию сохранённого блоба
func (s *MemorySaveStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	data, ok := s.data[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete удаляет слот из памяти
func (s *MemorySaveStore) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.data[slot]; !ok {
		return ErrNotFound
	}
	delete(s.data, slot)
	return nil
}

// Close помечает хранилище закрытым
func (s *MemorySaveStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Count возвращает количество занятых слотов (для отладки)
func (s *MemorySaveStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
