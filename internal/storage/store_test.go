package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	v, _, _ = s.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_GetReturnsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte("abc")))

	v, _, _ := s.Get(ctx, "k")
	v[0] = 'x'

	v2, _, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v2)
}

func TestMemoryStore_SubscribeSeesWritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var keys []string
	cancel := s.Subscribe(func(key string) { keys = append(keys, key) })

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, []string{"a", "a"}, keys)

	cancel()
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	assert.Len(t, keys, 2)
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	require.NoError(t, s.Set(ctx, "k", []byte("v2"))) // upsert
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.sqlite")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("durable")))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("durable"), v)
}

func TestRebind_PostgresPlaceholders(t *testing.T) {
	s := &SQLStore{dialect: DialectPostgres}
	got := s.rebind("INSERT INTO records(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = ?")
	assert.Equal(t, "INSERT INTO records(key, value) VALUES($1, $2) ON CONFLICT(key) DO UPDATE SET value = $3", got)

	sq := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", sq.rebind("SELECT ?"))
}
