package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/echoes-hidden/internal/logging"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr        string        // Адрес Redis сервера
	Password    string        // Пароль (пустой если не требуется)
	DB          int           // Номер базы данных
	KeyPrefix   string        // Префикс для ключей
	TTL         time.Duration // Время жизни сохранений, 0 означает бессрочно
	DialTimeout time.Duration // Таймаут проверки подключения
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:        "localhost:6379",
		KeyPrefix:   "echoes:save:",
		DialTimeout: 5 * time.Second,
	}
}

// RedisSaveStore хранит сохранения в Redis
type RedisSaveStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSaveStore подключается к Redis и проверяет соединение
func NewRedisSaveStore(config *RedisConfig) (*RedisSaveStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return NewRedisSaveStoreWithClient(client, config.KeyPrefix, config.TTL), nil
}

// NewRedisSaveStoreWithClient оборачивает уже созданный клиент (кластер, sentinel)
func NewRedisSaveStoreWithClient(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisSaveStore {
	return &RedisSaveStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Save записывает блоб в слот
func (s *RedisSaveStore) Save(ctx context.Context, slot string, data []byte) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.keyPrefix+slot, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}
	return nil
}

// Load читает блоб из слота
func (s *RedisSaveStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.keyPrefix+slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}
	return data, nil
}

// Delete удаляет слот
func (s *RedisSaveStore) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	n, err := s.client.Del(ctx, s.keyPrefix+slot).Result()
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", slot, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close закрывает клиент Redis
func (s *RedisSaveStore) Close() error {
	return s.client.Close()
}
