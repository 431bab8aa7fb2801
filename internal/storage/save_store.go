package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound возвращается, когда в слоте нет сохранения
var ErrNotFound = errors.New("сохранение не найдено")

// ErrClosed возвращается при обращении к закрытому хранилищу
var ErrClosed = errors.New("хранилище закрыто")

// SaveStore определяет интерфейс хранилища сохранений игры.
// Сохранение представляет собой непрозрачный JSON-блоб, привязанный к имени слота.
type SaveStore interface {
	// Save записывает блоб в слот, заменяя предыдущее сохранение.
	// Параметры:
	//   ctx - контекст для отмены операции
	//   slot - имя слота (латиница, цифры, '-', '_')
	//   data - сериализованное состояние игры
	// Возвращает:
	//   error - ошибка при сохранении
	Save(ctx context.Context, slot string, data []byte) error

	// Load читает блоб из слота.
	// Возвращает ErrNotFound, если слот пуст.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Delete очищает слот. Удаление пустого слота возвращает ErrNotFound.
	Delete(ctx context.Context, slot string) error

	// Close освобождает ресурсы хранилища
	Close() error
}

// MaxSlotLength ограничивает длину имени слота
const MaxSlotLength = 64

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateSlot проверяет имя слота
func ValidateSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("недействительный слот: пустое имя")
	}
	if len(slot) > MaxSlotLength {
		return fmt.Errorf("недействительный слот: длина %d больше %d", len(slot), MaxSlotLength)
	}
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("недействительный слот: %q", slot)
	}
	return nil
}

// checkContext проверяет контекст на отмену
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Options задаёт параметры создания хранилища из конфигурации
type Options struct {
	Backend   string // memory | badger | redis
	Path      string // каталог BadgerDB
	RedisAddr string
	RedisDB   int
	Compress  bool // сжимать блобы zstd
}

// Open создаёт хранилище по имени бэкенда
func Open(opts Options) (SaveStore, error) {
	var (
		store SaveStore
		err   error
	)

	switch opts.Backend {
	case "", "memory":
		store = NewMemorySaveStore()
	case "badger":
		store, err = NewBadgerSaveStore(opts.Path)
	case "redis":
		cfg := DefaultRedisConfig()
		if opts.RedisAddr != "" {
			cfg.Addr = opts.RedisAddr
		}
		cfg.DB = opts.RedisDB
		store, err = NewRedisSaveStore(cfg)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.Compress {
		return NewCompressedStore(store)
	}
	return store, nil
}
