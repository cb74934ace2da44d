package repositories

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStores(t *testing.T) {
	stores := map[string]func(t *testing.T) KVStore{
		"badger": func(t *testing.T) KVStore { return newBadger(t) },
		"sqlite": func(t *testing.T) KVStore { return newSQLite(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			t.Run("missing key", func(t *testing.T) {
				_, err := store.Get(ctx, "nope")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("put and get", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "k", []byte("one")))
				got, err := store.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, []byte("one"), got)
			})

			t.Run("put overwrites", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "k", []byte("two")))
				got, err := store.Get(ctx, "k")
				require.NoError(t, err)
				assert.Equal(t, []byte("two"), got)
			})

			t.Run("delete", func(t *testing.T) {
				require.NoError(t, store.Delete(ctx, "k"))
				_, err := store.Get(ctx, "k")
				assert.ErrorIs(t, err, ErrNotFound)
				assert.NoError(t, store.Delete(ctx, "k"))
			})

			t.Run("json helpers", func(t *testing.T) {
				in := map[string]int{"a": 1}
				require.NoError(t, PutJSON(ctx, store, "j", in))
				var out map[string]int
				require.NoError(t, GetJSON(ctx, store, "j", &out))
				assert.Equal(t, in, out)
			})
		})
	}
}

func TestBadgerStoreCanceledContext(t *testing.T) {
	store := newBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Put(ctx, "k", nil), context.Canceled)
}

func TestBadgerBackupRestore(t *testing.T) {
	ctx := context.Background()
	src, err := NewBadgerStore(filepath.Join(t.TempDir(), "src"), zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Put(ctx, BlogDataKey, []byte(`{"posts":[]}`)))
	require.NoError(t, src.Put(ctx, SessionKey, []byte(`{}`)))

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))

	dst, err := NewBadgerStore(filepath.Join(t.TempDir(), "dst"), zerolog.Nop())
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, dst.Restore(&buf))
	got, err := dst.Get(ctx, BlogDataKey)
	require.NoError(t, err)
	assert.Equal(t, `{"posts":[]}`, string(got))

	require.NoError(t, dst.Clear())
	_, err = dst.Get(ctx, SessionKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "inkwell.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
