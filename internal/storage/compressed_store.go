package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic хранит заголовок кадра zstd; блобы без него читаются как есть
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CompressedStore сжимает блобы zstd перед записью в нижележащее хранилище.
// Несжатые блобы, записанные ранее, читаются без изменений.
type CompressedStore struct {
	inner   SaveStore
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressedStore оборачивает хранилище сжатием
func NewCompressedStore(inner SaveStore) (*CompressedStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}
	return &CompressedStore{inner: inner, encoder: enc, decoder: dec}, nil
}

// Save сжимает и записывает блоб
func (s *CompressedStore) Save(ctx context.Context, slot string, data []byte) error {
	return s.inner.Save(ctx, slot, s.encoder.EncodeAll(data, nil))
}

// Load читает и распаковывает блоб
func (s *CompressedStore) Load(ctx context.Context, slot string) ([]byte, error) {
	raw, err := s.inner.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}

	data, err := s.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки сохранения %s: %w", slot, err)
	}
	return data, nil
}

// Delete удаляет слот
func (s *CompressedStore) Delete(ctx context.Context, slot string) error {
	return s.inner.Delete(ctx, slot)
}

// Close закрывает кодеки и нижележащее хранилище
func (s *CompressedStore) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return s.inner.Close()
}
