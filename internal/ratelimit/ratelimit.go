// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether a caller identified by a key may proceed.
type Limiter interface {
	Allow(identifier string) (bool, *RateLimitInfo)
	Close()
}

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum requests per window
	CleanupPeriod time.Duration // How often to clean up old entries
	BanDuration   time.Duration // Lockout after exceeding the limit; zero waits for the window to end
}

// DefaultChatConfig allows maxRequests chat requests per window with no
// extra lockout.
func DefaultChatConfig(maxRequests int, window time.Duration) *Config {
	return &Config{
		WindowSize:    window,
		MaxAttempts:   maxRequests,
		CleanupPeriod: 10 * window,
	}
}

// DefaultAdminConfig is stricter and bans repeated offenders.
func DefaultAdminConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   20,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   15 * time.Minute,
	}
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// attemptRecord tracks requests for an IP/identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
	BannedAt  *time.Time
}

// MemoryRateLimiter implements in-memory fixed window rate limiting
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
	now      func() time.Time
}

var _ Limiter = (*MemoryRateLimiter)(nil)

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	if config.CleanupPeriod > 0 {
		go limiter.cleanupLoop()
	}

	return limiter
}

// Allow checks if a request should be allowed
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.attempts[identifier]

	if !exists || rl.windowReset(record, now) {
		rl.attempts[identifier] = &attemptRecord{Count: 1, FirstSeen: now}
		return true, &RateLimitInfo{
			Allowed:   true,
			Limit:     rl.config.MaxAttempts,
			Remaining: rl.config.MaxAttempts - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}
	}

	// Check if currently banned
	if record.BannedAt != nil {
		until := record.BannedAt.Add(rl.config.BanDuration)
		return false, &RateLimitInfo{
			Limit:      rl.config.MaxAttempts,
			ResetTime:  until,
			RetryAfter: until.Sub(now),
			Banned:     true,
		}
	}

	record.Count++

	if record.Count > rl.config.MaxAttempts {
		if rl.config.BanDuration > 0 {
			banTime := now
			record.BannedAt = &banTime
			return false, &RateLimitInfo{
				Limit:      rl.config.MaxAttempts,
				ResetTime:  now.Add(rl.config.BanDuration),
				RetryAfter: rl.config.BanDuration,
				Banned:     true,
			}
		}
		reset := record.FirstSeen.Add(rl.config.WindowSize)
		return false, &RateLimitInfo{
			Limit:      rl.config.MaxAttempts,
			ResetTime:  reset,
			RetryAfter: reset.Sub(now),
		}
	}

	return true, &RateLimitInfo{
		Allowed:   true,
		Limit:     rl.config.MaxAttempts,
		Remaining: rl.config.MaxAttempts - record.Count,
		ResetTime: record.FirstSeen.Add(rl.config.WindowSize),
	}
}

// windowReset reports whether the record's window (or ban) is over.
func (rl *MemoryRateLimiter) windowReset(record *attemptRecord, now time.Time) bool {
	if record.BannedAt != nil {
		return now.Sub(*record.BannedAt) >= rl.config.BanDuration
	}
	return now.Sub(record.FirstSeen) >= rl.config.WindowSize
}

// Reset forgets an identifier.
func (rl *MemoryRateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
}

// cleanupLoop periodically removes old records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes expired records
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		if rl.windowReset(record, now) {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Check for forwarded IP (behind proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	ips := strings.Split(forwarded, ",")
	return strings.TrimSpace(ips[0])
}
