package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/SlpAus/board-site/api"
	"github.com/SlpAus/board-site/internal/board"
	"github.com/SlpAus/board-site/internal/platform/backup"
	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/health"
	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/SlpAus/board-site/internal/platform/logging"
	"github.com/SlpAus/board-site/internal/platform/shutdown"
	"github.com/SlpAus/board-site/internal/site"
	"github.com/SlpAus/board-site/pkg/lifecycle"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// 1. 打开存储。Redis不可达时 store 为 nil，留言板降级运行
	openCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := kvstore.Open(openCtx, cfg.Store, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("打开存储失败: %w", err)
	}

	// 2. 组装处理器
	boardHandler := board.NewHandler(board.NewService(store, logger), logger)
	checker := health.NewChecker(store,
		time.Duration(cfg.Health.IntervalSeconds)*time.Second,
		time.Duration(cfg.Health.TimeoutSeconds)*time.Second,
		logger)
	renderer, err := site.NewRenderer(site.PagesFromConfig(cfg.Site), logger)
	if err != nil {
		return err
	}

	// 3. 后台服务
	gracefulMgr := lifecycle.NewManager(logger)
	forcefulMgr := lifecycle.NewManager(logger)

	var closers []io.Closer
	var finalizers []func(ctx context.Context) error
	if store != nil && cfg.Store.Backup.Enabled {
		snap, err := startBackup(cfg.Store.Backup, store, checker, gracefulMgr, forcefulMgr, logger)
		if err != nil {
			return err
		}
		finalizers = append(finalizers, snap.Snapshot)
		closers = append(closers, snap)
	}

	healthHandle, err := gracefulMgr.NewServiceHandle("store-health")
	if err != nil {
		return err
	}
	go checker.Run(healthHandle)

	// 4. HTTP服务器
	engine := api.NewEngine(cfg.Server, api.Routes(boardHandler, checker), renderer.Handle, logger)
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("服务器已准备就绪，开始监听", zap.String("addr", server.Addr), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务器异常退出", zap.Error(err))
		}
	}()

	if store != nil {
		closers = append(closers, store)
	}
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, logger, closers...)
	coordinator.Finalizers = finalizers
	coordinator.ListenForSignalsAndShutdown(server)
	return nil
}

// startBackup 打开备份存储，启动时补回主存储丢失的留言，
// 并在存储恢复时再次补回，然后启动定时快照。
func startBackup(cfg config.BackupConfig, store kvstore.Store, checker *health.Checker, gracefulMgr, forcefulMgr *lifecycle.Manager, logger *zap.Logger) (*backup.Snapshotter, error) {
	snap, err := backup.Open(cfg, store, []string{board.MessageKey}, logger)
	if err != nil {
		return nil, fmt.Errorf("打开备份失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := snap.Restore(ctx); err != nil {
		logger.Warn("启动时从备份恢复失败", zap.Error(err))
	}

	checker.OnRecover(func(ctx context.Context) error {
		_, err := snap.Restore(ctx)
		return err
	})

	// 定时快照同时响应两个停机阶段
	gracefulHandle, err := gracefulMgr.NewServiceHandle("backup")
	if err != nil {
		return nil, err
	}
	forcefulHandle, err := forcefulMgr.NewServiceHandle("backup")
	if err != nil {
		gracefulHandle.Close()
		return nil, err
	}
	go snap.Run(gracefulHandle, forcefulHandle)
	return snap, nil
}
