package shutdown

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/board-site/pkg/lifecycle"
	"go.uber.org/zap"
)

// 各阶段的等待上限
var (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
	forcefulTimeout = 1 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程。
// 它接收外部创建的生命周期管理器，并使用它们来协调停机。
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
	// Finalizers 在后台服务退出后、关闭资源前执行，例如最终快照
	Finalizers []func(ctx context.Context) error
	// Closers 最后依次关闭，例如存储连接
	Closers []io.Closer

	logger *zap.Logger
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, logger *zap.Logger, closers ...io.Closer) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		Closers:         closers,
		logger:          logger,
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM，然后执行停机流程。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	c.logger.Info("收到关闭信号，开始优雅停机...", zap.String("signal", sig.String()))
	c.Shutdown(server)
}

// Shutdown 依次关闭HTTP服务器、后台服务和存储连接。
func (c *Coordinator) Shutdown(server *http.Server) {
	// 关闭HTTP服务器，允许正在进行的请求完成
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		c.logger.Error("HTTP服务器关闭错误", zap.Error(err))
	} else {
		c.logger.Info("HTTP服务器已关闭。")
	}

	// --- 阶段一: 优雅停机 ---
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout)
	if len(remaining) == 0 {
		c.logger.Info("所有服务已在第一阶段优雅关闭。")
	} else {
		// --- 阶段二: 强制停机 ---
		c.logger.Warn("第一阶段超时，发送第二停机信号", zap.Strings("remaining", remaining))
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	// --- 最终步骤 ---
	finalCtx, finalCancel := context.WithTimeout(context.Background(), httpTimeout)
	defer finalCancel()
	for _, fn := range c.Finalizers {
		if err := fn(finalCtx); err != nil {
			c.logger.Error("停机收尾步骤失败", zap.Error(err))
		}
	}

	for _, closer := range c.Closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("关闭资源失败", zap.Error(err))
		}
	}
	c.logger.Info("优雅停机完成。")
}
