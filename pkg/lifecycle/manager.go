// Package lifecycle 给后台服务分发可取消的句柄，并在停机时等待它们退出。
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager 代表一个停机阶段：Shutdown 取消该阶段下所有句柄的上下文，
// WaitWithTimeout 等待持有句柄的服务逐个退出。
type Manager struct {
	mu      sync.Mutex
	running map[string]chan struct{} // 服务名 -> 退出时关闭的信号
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建一个新的生命周期管理器。
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		running: make(map[string]chan struct{}),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewServiceHandle 登记一个名为 name 的服务并返回它的句柄。
// 同名服务在退出之前不能再次登记。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.running[name]; busy {
		return nil, fmt.Errorf("生命周期管理器: 服务 '%s' 已被注册", name)
	}
	exited := make(chan struct{})
	m.running[name] = exited
	m.logger.Debug("生命周期管理器: 服务已注册", zap.String("service", name))

	var once sync.Once
	return &Handle{
		ctx: m.ctx,
		Close: func() {
			once.Do(func() {
				m.mu.Lock()
				delete(m.running, name)
				m.mu.Unlock()
				close(exited)
				m.logger.Debug("生命周期管理器: 服务已退出", zap.String("service", name))
			})
		},
	}, nil
}

// Shutdown 广播停机信号，可重复调用
func (m *Manager) Shutdown() {
	m.mu.Lock()
	n := len(m.running)
	m.mu.Unlock()
	m.logger.Info("生命周期管理器: 广播停机信号...", zap.Int("services", n))
	m.cancel()
}

// WaitWithTimeout 等待调用时仍在运行的服务全部退出，最多等待 timeout。
// 返回超时时仍未退出的服务名（已排序），全部退出时返回 nil。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	m.mu.Lock()
	pending := make(map[string]chan struct{}, len(m.running))
	for name, exited := range m.running {
		pending[name] = exited
	}
	m.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for name, exited := range pending {
		select {
		case <-exited:
			delete(pending, name)
		case <-deadline.C:
			return stillRunning(pending)
		}
	}
	return nil
}

func stillRunning(pending map[string]chan struct{}) []string {
	var names []string
	for name, exited := range pending {
		select {
		case <-exited:
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
