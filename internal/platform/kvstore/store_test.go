package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SlpAus/board-site/internal/platform/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	s, err := NewSQLStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// 所有后端都必须满足的行为
func TestStoreContract(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := build(t)

			require.NoError(t, s.Ping(ctx))

			_, found, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Set(ctx, "k", "A"))
			require.NoError(t, s.Set(ctx, "k", "B"))

			val, found, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "B", val)

			require.NoError(t, s.Set(ctx, "other", "こんにちは"))
			val, _, err = s.Get(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, "こんにちは", val)

			val, _, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "B", val)
		})
	}
}

func TestRedisStore_NoExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, s.Set(context.Background(), "board:current_message", "hi"))

	v, err := mr.Get("board:current_message")
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
	assert.Zero(t, mr.TTL("board:current_message"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "k", "v"))
	assert.Error(t, s.Ping(context.Background()))
}

func TestSQLStore_SingleRowPerKey(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	for _, v := range []string{"one", "two", "three"} {
		require.NoError(t, s.Set(ctx, "current_message", v))
	}

	var count int64
	require.NoError(t, s.db.Model(&Entry{}).Where("key = ?", "current_message").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
