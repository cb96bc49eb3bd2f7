package middleware

import (
	"sync"
	"time"
)

// RateLimiter 限流器接口。
type RateLimiter interface {
	Allow() bool
}

// TokenBucket 令牌桶限流器：burst 为桶容量，perSecond 为补充速率。
// 用于遥测入口这类允许突发、限制均值的场景。
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	perSecond  float64
	lastRefill time.Time
}

func NewTokenBucket(burst, perSecond int) *TokenBucket {
	if burst <= 0 {
		burst = 1
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return &TokenBucket{
		capacity:   float64(burst),
		tokens:     float64(burst),
		perSecond:  float64(perSecond),
		lastRefill: time.Now(),
	}
}

// Allow 取一个令牌；桶空返回 false。
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.perSecond
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// SlidingWindow 滑动窗口限流器：窗口内最多 maxRequests 个请求。
// 用于后台 API 这类需要硬上限的场景。
type SlidingWindow struct {
	mu          sync.Mutex
	window      time.Duration
	maxRequests int
	requests    []time.Time
}

func NewSlidingWindow(window time.Duration, maxRequests int) *SlidingWindow {
	if window <= 0 {
		window = time.Second
	}
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &SlidingWindow{
		window:      window,
		maxRequests: maxRequests,
	}
}

func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-sw.window)

	// 丢掉窗口外的记录
	i := 0
	for ; i < len(sw.requests); i++ {
		if sw.requests[i].After(cutoff) {
			break
		}
	}
	sw.requests = sw.requests[i:]

	if len(sw.requests) >= sw.maxRequests {
		return false
	}
	sw.requests = append(sw.requests, now)
	return true
}
