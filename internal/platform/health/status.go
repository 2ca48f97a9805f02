package health

import (
	"sync"

	"go.uber.org/zap"
)

// State 定义了存储健康状态的枚举类型
type State int

const (
	StateHealthy State = iota
	StateDegraded
	// StateUnavailable 表示启动时就没有存储，检查器不会运行
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// statusManager 负责线程安全地管理和提供存储的健康状态。
type statusManager struct {
	mu           sync.RWMutex
	currentState State
	logger       *zap.Logger
}

func (sm *statusManager) get() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// assess 根据一次检查结果推进状态，只在状态变化时打印日志。
// recovered 表示本次检查让状态从降级回到了健康。
func (sm *statusManager) assess(connected bool, err error) (state State, recovered bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			sm.logger.Warn("健康检查: 存储连接丢失，系统状态 -> [降级]", zap.Error(err))
		}
	case StateDegraded:
		if connected {
			sm.currentState = StateHealthy
			recovered = true
			sm.logger.Info("健康检查: 存储连接已恢复，系统状态 -> [健康]")
		}
	}
	return sm.currentState, recovered
}
