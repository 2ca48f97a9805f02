// Package backup 把主存储中的关键键定期镜像到一个持久的备份存储，
// 并在主存储恢复（例如Redis重启后数据丢失）时把值写回。
package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/database"
	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/SlpAus/board-site/pkg/lifecycle"
	"go.uber.org/zap"
)

const defaultInterval = 10 * time.Minute // 定时备份频率

// Snapshotter 在主存储和备份存储之间复制一组固定的键
type Snapshotter struct {
	primary  kvstore.Store
	mirror   kvstore.Store
	keys     []string
	interval time.Duration
	logger   *zap.Logger

	mu sync.Mutex // 快照与恢复互斥
}

func NewSnapshotter(primary, mirror kvstore.Store, keys []string, interval time.Duration, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Snapshotter{
		primary:  primary,
		mirror:   mirror,
		keys:     keys,
		interval: interval,
		logger:   logger,
	}
}

// Snapshot 把主存储中存在的键写入备份存储，不存在的键保持备份中的旧值
func (s *Snapshotter) Snapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.keys {
		val, found, err := s.primary.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("快照读取 %s 失败: %w", key, err)
		}
		if !found {
			continue
		}
		if err := s.mirror.Set(ctx, key, val); err != nil {
			return fmt.Errorf("快照写入 %s 失败: %w", key, err)
		}
	}
	return nil
}

// Restore 只补回主存储中缺失的键，已有的值不会被覆盖。
// 返回实际写回的键数量。
func (s *Snapshotter) Restore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, key := range s.keys {
		_, found, err := s.primary.Get(ctx, key)
		if err != nil {
			return restored, fmt.Errorf("恢复时读取主存储 %s 失败: %w", key, err)
		}
		if found {
			continue
		}
		val, found, err := s.mirror.Get(ctx, key)
		if err != nil {
			return restored, fmt.Errorf("恢复时读取备份 %s 失败: %w", key, err)
		}
		if !found {
			continue
		}
		if err := s.primary.Set(ctx, key, val); err != nil {
			return restored, fmt.Errorf("恢复 %s 失败: %w", key, err)
		}
		restored++
	}
	if restored > 0 {
		s.logger.Info("已从备份恢复数据", zap.Int("keys", restored))
	}
	return restored, nil
}

// Run 启动定时备份循环。优雅停机信号停止调度新的快照，
// 强制停机信号中断正在进行的快照。
func (s *Snapshotter) Run(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close() // 确保在退出时通知管理器
	defer forcefulHandle.Close()
	s.logger.Info("备份调度器已启动。", zap.Duration("interval", s.interval))

	for {
		// 可中断的休眠，收到停机信号时立刻退出
		if err := gracefulHandle.Sleep(s.interval); err != nil {
			s.logger.Info("备份调度器: 收到优雅停机信号，正在关闭...")
			return
		}

		if err := s.Snapshot(forcefulHandle.Ctx()); err != nil {
			// 强制停机导致的错误静默处理
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				s.logger.Error("备份调度器: 执行快照失败", zap.Error(err))
			} else {
				s.logger.Info("备份调度器: 快照被强制停机中断。")
			}
		} else {
			s.logger.Debug("备份调度器: 快照成功。")
		}
	}
}

// Close 关闭备份存储，主存储由调用方管理
func (s *Snapshotter) Close() error {
	return s.mirror.Close()
}

// Open 按配置在SQLite文件上创建备份存储
func Open(cfg config.BackupConfig, primary kvstore.Store, keys []string, logger *zap.Logger) (*Snapshotter, error) {
	db, err := database.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, err
	}
	mirror, err := kvstore.NewSQLStore(db)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	return NewSnapshotter(primary, mirror, keys, interval, logger), nil
}
