package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client token bucket to sensitive routes
// (registration, login, blockchain writes). Buckets are keyed by client IP
// and evicted after a period of inactivity.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	limit    rate.Limit
	burst    int
	logger   *zap.Logger
	lastSeen time.Duration
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute sustained
// requests with the given burst per client.
func NewRateLimiter(requestsPerMinute, burst int, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*clientBucket),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
		logger:   logger,
		lastSeen: 10 * time.Minute,
	}
	go rl.evictLoop()
	return rl
}

// Limit wraps a handler, rejecting clients that exceed their bucket with 429.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "Too many requests, slow down",
			})
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = bucket
	}
	bucket.seen = time.Now()
	return bucket.limiter.Allow()
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-rl.lastSeen)
		rl.mu.Lock()
		for key, bucket := range rl.clients {
			if bucket.seen.Before(cutoff) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
