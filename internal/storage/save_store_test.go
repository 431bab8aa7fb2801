package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore проверяет общий контракт SaveStore
func exerciseStore(t *testing.T, store SaveStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("пустой слот", func(t *testing.T) {
		_, err := store.Load(ctx, "empty")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "empty"), ErrNotFound)
	})

	t.Run("сохранение и загрузка", func(t *testing.T) {
		blob := []byte(`{"player":{"x":200,"y":200},"savedAt":1700000000000}`)
		require.NoError(t, store.Save(ctx, "slot-1", blob))

		got, err := store.Load(ctx, "slot-1")
		require.NoError(t, err)
		assert.Equal(t, blob, got)
	})

	t.Run("перезапись", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "slot-2", []byte(`{"v":1}`)))
		require.NoError(t, store.Save(ctx, "slot-2", []byte(`{"v":2}`)))

		got, err := store.Load(ctx, "slot-2")
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(got))
	})

	t.Run("удаление", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "slot-3", []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, "slot-3"))

		_, err := store.Load(ctx, "slot-3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("недействительный слот", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, "", []byte(`{}`)))
		assert.Error(t, store.Save(ctx, "../etc", []byte(`{}`)))
		_, err := store.Load(ctx, strings.Repeat("a", MaxSlotLength+1))
		assert.Error(t, err)
	})
}

func TestMemorySaveStore(t *testing.T) {
	store := NewMemorySaveStore()
	exerciseStore(t, store)

	t.Run("копия блоба", func(t *testing.T) {
		blob := []byte(`{"a":1}`)
		require.NoError(t, store.Save(context.Background(), "copy", blob))
		blob[0] = 'X'

		got, err := store.Load(context.Background(), "copy")
		require.NoError(t, err)
		assert.Equal(t, byte('{'), got[0], "Хранилище не должно разделять буфер с вызывающим")
	})

	t.Run("отменённый контекст", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, store.Save(ctx, "slot", nil), context.Canceled)
	})

	require.NoError(t, store.Close())
	_, err := store.Load(context.Background(), "slot-1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBadgerSaveStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerSaveStore(dir)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "Повторное закрытие безопасно")

	_, err = store.Load(context.Background(), "slot-1")
	assert.ErrorIs(t, err, ErrClosed)

	// Данные переживают переоткрытие базы
	reopened, err := NewBadgerSaveStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"savedAt":1700000000000`)
}

func TestNewBadgerSaveStore_EmptyPath(t *testing.T) {
	_, err := NewBadgerSaveStore("")
	assert.Error(t, err)
}

func TestCompressedStore(t *testing.T) {
	inner := NewMemorySaveStore()
	store, err := NewCompressedStore(inner)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	t.Run("блоб сжат в нижележащем хранилище", func(t *testing.T) {
		blob := bytes.Repeat([]byte(`{"guard":"PATROL"},`), 200)
		require.NoError(t, store.Save(context.Background(), "big", blob))

		raw, err := inner.Load(context.Background(), "big")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, zstdMagic))
		assert.Less(t, len(raw), len(blob))

		got, err := store.Load(context.Background(), "big")
		require.NoError(t, err)
		assert.Equal(t, blob, got)
	})

	t.Run("несжатый блоб читается как есть", func(t *testing.T) {
		require.NoError(t, inner.Save(context.Background(), "legacy", []byte(`{"player":{}}`)))
		got, err := store.Load(context.Background(), "legacy")
		require.NoError(t, err)
		assert.Equal(t, `{"player":{}}`, string(got))
	})
}

func TestOpen(t *testing.T) {
	store, err := Open(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemorySaveStore{}, store)

	store, err = Open(Options{Backend: "badger", Path: t.TempDir(), Compress: true})
	require.NoError(t, err)
	assert.IsType(t, &CompressedStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(Options{Backend: "mongo"})
	assert.Error(t, err)
}
