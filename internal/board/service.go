package board

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"go.uber.org/zap"
)

// Service 负责读取和更新唯一的留言。
// 它不缓存任何值，每次读取都会访问存储。
type Service struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService 创建服务。store 为 nil 表示存储不可用。
func NewService(store kvstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Available 报告是否有可用的存储
func (s *Service) Available() bool {
	return s.store != nil
}

// Current 返回当前留言，从未写入过时返回 DefaultMessage
func (s *Service) Current(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("读取留言失败: 存储不可用")
	}
	val, found, err := s.store.Get(ctx, MessageKey)
	if err != nil {
		return "", fmt.Errorf("读取留言失败: %w", err)
	}
	if !found {
		return DefaultMessage, nil
	}
	return val, nil
}

// Update 去掉首尾空白后写入留言。
// 去空白后为空时不写入，也不视为错误，written 为 false。
func (s *Service) Update(ctx context.Context, raw string) (written bool, err error) {
	if s.store == nil {
		return false, fmt.Errorf("写入留言失败: 存储不可用")
	}

	msg := trimMessage(raw)
	if msg == "" {
		s.logger.Info("/board - 收到空的 txt 参数，跳过更新", zap.Time("at", s.now()))
		return false, nil
	}

	if err := s.store.Set(ctx, MessageKey, msg); err != nil {
		return false, fmt.Errorf("写入留言失败: %w", err)
	}
	s.logger.Info("/board - 留言已更新", zap.Time("at", s.now()), zap.String("message", msg))
	return true, nil
}

// trimMessage 去掉首尾的 WhiteSpace 与 LineTerminator（ECMAScript 的定义）：
// 包括 U+FEFF，但不包括 U+0085。
func trimMessage(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return unicode.IsSpace(r) && r != '\u0085'
}
