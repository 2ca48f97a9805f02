package kvstore

import (
	"context"
	"fmt"

	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/database"
	"go.uber.org/zap"
)

// Open 按配置构建存储后端。
// 返回 (nil, nil) 表示没有可用的存储：driver 为 none，或 Redis 在启动时不可达。
// 这种情况下留言板以降级模式运行，而不是让整个进程退出。
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverRedis:
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis不可用，留言板将在无存储模式下运行", zap.Error(err))
			return nil, nil
		}
		logger.Info("Redis 连接成功！", zap.String("address", cfg.Redis.Address))
		return NewRedisStore(rdb), nil

	case DriverSqlite:
		db, err := database.OpenSQLite(cfg.Sqlite.Path)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(db)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite 连接成功！", zap.String("path", cfg.Sqlite.Path))
		return store, nil

	case DriverPostgres:
		db, err := database.OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(db)
		if err != nil {
			return nil, err
		}
		logger.Info("Postgres 连接成功！")
		return store, nil

	case DriverMemory, "":
		logger.Info("使用进程内存储，重启后留言会丢失")
		return NewMemoryStore(), nil

	case DriverNone:
		logger.Warn("未配置存储，留言板将在无存储模式下运行")
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
