package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvContract runs the shared behavior every backend must satisfy.
func kvContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "vv_cart", []byte(`[{"id":"P1"}]`)))
	value, err := kv.Get(ctx, "vv_cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"P1"}]`), value)

	require.NoError(t, kv.Set(ctx, "vv_cart", []byte(`[]`)))
	value, err = kv.Get(ctx, "vv_cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value, "set overwrites")

	require.NoError(t, kv.Delete(ctx, "vv_cart"))
	_, err = kv.Get(ctx, "vv_cart")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete(ctx, "vv_cart"), "deleting an absent key is fine")
}

func TestMemory_Contract(t *testing.T) {
	kvContract(t, NewMemory())
}

func TestMemory_StoredBytesAreIsolated(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", original))
	original[0] = 'x'

	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)

	value[0] = 'y'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLite_Contract(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kvContract(t, db)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "vv_cart", []byte(`[{"id":"P1"}]`)))
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, err := reopened.Get(ctx, "vv_cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"P1"}]`), value)
}

func TestSQLite_EmptyPathRejected(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "vv"), mr
}

func TestRedis_Contract(t *testing.T) {
	kv, _ := setupTestRedis(t)
	kvContract(t, kv)
}

func TestRedis_KeysAreNamespaced(t *testing.T) {
	kv, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "vv_cart", []byte("[]")))

	got, err := mr.Get("vv:vv_cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestRedis_ServerGoneReportsError(t *testing.T) {
	kv, mr := setupTestRedis(t)
	mr.Close()

	_, err := kv.Get(context.Background(), "vv_cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
