package database

import (
	"context"
	"fmt"

	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// NewRedis 创建Redis客户端并用Ping验证连接。
// 连接失败时关闭客户端并返回错误，由调用方决定是否降级运行。
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到Redis %s: %w", cfg.Address, err)
	}
	return rdb, nil
}
