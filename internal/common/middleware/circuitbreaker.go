package middleware

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen 熔断打开期间的快速失败错误。
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState 熔断器状态。
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 正常
	BreakerOpen                         // 熔断中
	BreakerHalfOpen                     // 试探恢复
)

// CircuitBreaker 连续失败达到阈值后打开，冷却时间过后进入半开试探。
// 用在司机分配通知这类尽力而为的外调上，避免下游故障时无谓重试。
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu            sync.Mutex
	state         BreakerState
	failures      int
	halfOpenCalls int
	openedAt      time.Time
}

func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  3,
		state:        BreakerClosed,
	}
}

// Call 执行 fn 并根据结果推进熔断状态。熔断打开时直接返回 ErrBreakerOpen。
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn()
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen {
		if time.Since(cb.openedAt) < cb.resetTimeout {
			return ErrBreakerOpen
		}
		cb.state = BreakerHalfOpen
		cb.halfOpenCalls = 0
	}
	if cb.state == BreakerHalfOpen {
		if cb.halfOpenCalls >= cb.halfOpenMax {
			return ErrBreakerOpen
		}
		cb.halfOpenCalls++
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		if cb.state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = BreakerOpen
			cb.openedAt = time.Now()
			cb.halfOpenCalls = 0
		}
		return
	}

	cb.state = BreakerClosed
	cb.failures = 0
	cb.halfOpenCalls = 0
}

// State 当前状态（测试与监控用）。
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
