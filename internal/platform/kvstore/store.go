// Package kvstore 提供留言板使用的键值存储抽象及其后端实现。
package kvstore

import (
	"context"
	"errors"
)

// 支持的后端
const (
	DriverRedis    = "redis"
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverNone     = "none"
)

// ErrUnknownDriver 表示配置了不支持的后端
var ErrUnknownDriver = errors.New("kvstore: unknown driver")

// Store 是按键读写文本值的持久化存储。
// Set 覆盖旧值（last-write-wins），Get 在键不存在时返回 found=false。
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}
