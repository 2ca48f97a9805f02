package lifecycle

import (
	"context"
	"time"
)

// Handle 是 Manager 分发给每个后台服务的生命周期句柄。
type Handle struct {
	ctx context.Context
	// Close 通知Manager该服务已经退出，应在服务Goroutine中 defer 调用。
	Close func()
}

// Ctx 返回随停机信号取消的上下文，可直接传给存储调用
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在停机信号发出时关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 暂停指定的时长，停机时提前返回上下文的错误。
// 后台循环应使用它代替 time.Sleep。
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
