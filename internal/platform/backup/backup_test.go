package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/SlpAus/board-site/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const key = "board:current_message"

func get(t *testing.T, s kvstore.Store, k string) (string, bool) {
	t.Helper()
	v, found, err := s.Get(context.Background(), k)
	require.NoError(t, err)
	return v, found
}

func TestSnapshotAndRestore(t *testing.T) {
	ctx := context.Background()
	primary, mirror := kvstore.NewMemoryStore(), kvstore.NewMemoryStore()
	s := NewSnapshotter(primary, mirror, []string{key}, time.Minute, nil)

	// 主存储为空时快照不写入
	require.NoError(t, s.Snapshot(ctx))
	_, found := get(t, mirror, key)
	assert.False(t, found)

	require.NoError(t, primary.Set(ctx, key, "hello"))
	require.NoError(t, s.Snapshot(ctx))
	v, _ := get(t, mirror, key)
	assert.Equal(t, "hello", v)

	// 模拟主存储丢失数据
	fresh := kvstore.NewMemoryStore()
	s.primary = fresh
	n, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	v, _ = get(t, fresh, key)
	assert.Equal(t, "hello", v)
}

func TestRestore_DoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	primary, mirror := kvstore.NewMemoryStore(), kvstore.NewMemoryStore()
	require.NoError(t, primary.Set(ctx, key, "newer"))
	require.NoError(t, mirror.Set(ctx, key, "older"))

	n, err := NewSnapshotter(primary, mirror, []string{key}, 0, nil).Restore(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	v, _ := get(t, primary, key)
	assert.Equal(t, "newer", v)
}

type brokenStore struct{ kvstore.Store }

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}

func TestSnapshot_PrimaryError(t *testing.T) {
	s := NewSnapshotter(brokenStore{kvstore.NewMemoryStore()}, kvstore.NewMemoryStore(), []string{key}, 0, nil)
	assert.Error(t, s.Snapshot(context.Background()))
	_, err := s.Restore(context.Background())
	assert.Error(t, err)
}

func TestRun_SnapshotsUntilShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	primary, mirror := kvstore.NewMemoryStore(), kvstore.NewMemoryStore()
	require.NoError(t, primary.Set(ctx, key, "periodic"))
	s := NewSnapshotter(primary, mirror, []string{key}, 5*time.Millisecond, nil)

	graceful, forceful := lifecycle.NewManager(nil), lifecycle.NewManager(nil)
	gh, err := graceful.NewServiceHandle("backup")
	require.NoError(t, err)
	fh, err := forceful.NewServiceHandle("backup")
	require.NoError(t, err)
	go s.Run(gh, fh)

	require.Eventually(t, func() bool {
		v, _, _ := mirror.Get(ctx, key)
		return v == "periodic"
	}, time.Second, 5*time.Millisecond)

	// 优雅停机即可让循环退出，两个句柄都被释放
	graceful.Shutdown()
	assert.Empty(t, graceful.WaitWithTimeout(time.Second))
	assert.Empty(t, forceful.WaitWithTimeout(time.Second))
}

// blockingStore 的 Set 一直阻塞到上下文取消
type blockingStore struct {
	kvstore.Store
	entered chan struct{}
}

func (b blockingStore) Set(ctx context.Context, _, _ string) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRun_ForcefulShutdownCancelsInFlightSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	primary := kvstore.NewMemoryStore()
	require.NoError(t, primary.Set(ctx, key, "slow"))
	mirror := blockingStore{Store: kvstore.NewMemoryStore(), entered: make(chan struct{}, 1)}
	s := NewSnapshotter(primary, mirror, []string{key}, time.Millisecond, nil)

	graceful, forceful := lifecycle.NewManager(nil), lifecycle.NewManager(nil)
	gh, err := graceful.NewServiceHandle("backup")
	require.NoError(t, err)
	fh, err := forceful.NewServiceHandle("backup")
	require.NoError(t, err)
	go s.Run(gh, fh)

	select {
	case <-mirror.entered:
	case <-time.After(time.Second):
		t.Fatal("snapshot never reached the mirror")
	}

	// 快照卡在写入时，优雅停机等不到它退出
	graceful.Shutdown()
	assert.Equal(t, []string{"backup"}, graceful.WaitWithTimeout(20*time.Millisecond))

	forceful.Shutdown()
	assert.Empty(t, forceful.WaitWithTimeout(time.Second))
	assert.Empty(t, graceful.WaitWithTimeout(time.Second))
}

func TestOpen_SQLiteMirrorSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.db")
	primary := kvstore.NewMemoryStore()
	require.NoError(t, primary.Set(ctx, key, "durable"))

	s, err := Open(config.BackupConfig{Path: path}, primary, []string{key}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Snapshot(ctx))
	require.NoError(t, s.Close())

	fresh := kvstore.NewMemoryStore()
	s, err = Open(config.BackupConfig{Path: path}, fresh, []string{key}, nil)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	v, _ := get(t, fresh, key)
	assert.Equal(t, "durable", v)
}
