package health

import (
	"context"
	"net/http"
	"time"

	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/SlpAus/board-site/pkg/lifecycle"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 2 * time.Second
)

// Checker 定期Ping存储并维护健康状态
type Checker struct {
	store    kvstore.Store
	interval time.Duration
	timeout  time.Duration
	status   *statusManager
	logger   *zap.Logger

	// onRecover 在存储从降级恢复后调用，例如从备份补回丢失的数据
	onRecover func(ctx context.Context) error
}

// NewChecker 创建检查器。store 为 nil 时状态固定为 StateUnavailable。
func NewChecker(store kvstore.Store, interval, timeout time.Duration, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	state := StateHealthy
	if store == nil {
		state = StateUnavailable
	}
	return &Checker{
		store:    store,
		interval: interval,
		timeout:  timeout,
		status:   &statusManager{currentState: state, logger: logger},
		logger:   logger,
	}
}

// OnRecover 注册恢复回调，需在 Run 之前调用
func (c *Checker) OnRecover(fn func(ctx context.Context) error) {
	c.onRecover = fn
}

// State 返回当前健康状态
func (c *Checker) State() State {
	return c.status.get()
}

// PerformCheck 执行一次检查并返回检查后的状态
func (c *Checker) PerformCheck(ctx context.Context) State {
	if c.store == nil {
		return StateUnavailable
	}
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.store.Ping(pingCtx)
	state, recovered := c.status.assess(err == nil, err)

	if recovered && c.onRecover != nil {
		if err := c.onRecover(ctx); err != nil {
			c.logger.Error("健康检查: 恢复回调执行失败", zap.Error(err))
		}
	}
	return state
}

// Run 阻塞式地循环检查，直到生命周期句柄被取消
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	if c.store == nil {
		return
	}
	c.logger.Info("存储健康检查器已启动。", zap.Duration("interval", c.interval))

	for {
		// 可中断的休眠，停机时立刻退出
		if err := handle.Sleep(c.interval); err != nil {
			c.logger.Info("健康检查器: 休眠被中断，正在关闭...")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}

// Handle 是 /healthz 的处理器
func (c *Checker) Handle(ctx *gin.Context) {
	state := c.State()
	code := http.StatusOK
	if state == StateDegraded {
		code = http.StatusServiceUnavailable
	}
	status := "ok"
	if state != StateHealthy {
		status = "degraded"
	}
	ctx.JSON(code, gin.H{"status": status, "store": state.String()})
}
