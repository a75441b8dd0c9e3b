package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter gives every identifier its own token bucket refilled at
// MaxAttempts per WindowSize, with bursts up to MaxAttempts.
type TokenBucketLimiter struct {
	config   *Config
	mu       sync.Mutex
	buckets  map[string]*bucket
	stopOnce sync.Once
	stopCh   chan struct{}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*TokenBucketLimiter)(nil)

func NewTokenBucketLimiter(config *Config) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go l.cleanupLoop()
	}
	return l
}

func (l *TokenBucketLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	l.mu.Lock()
	b, ok := l.buckets[identifier]
	if !ok {
		every := l.config.WindowSize / time.Duration(l.config.MaxAttempts)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), l.config.MaxAttempts)}
		l.buckets[identifier] = b
	}
	now := time.Now()
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, &RateLimitInfo{
			Limit:      l.config.MaxAttempts,
			ResetTime:  now.Add(delay),
			RetryAfter: delay,
		}
	}

	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return true, &RateLimitInfo{
		Allowed:   true,
		Limit:     l.config.MaxAttempts,
		Remaining: remaining,
		ResetTime: now.Add(l.config.WindowSize),
	}
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for id, b := range l.buckets {
				if time.Since(b.lastSeen) > l.config.CleanupPeriod {
					delete(l.buckets, id)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

func (l *TokenBucketLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
