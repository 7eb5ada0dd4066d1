package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

// Per-client rate limiting

type RateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
		done:    make(chan struct{}),
	}
	rl.cleanup()
	return rl
}

// Stop ends the cleanup goroutine. Safe to call once per limiter.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			// Create bucket: 50 tokens per second, max 500 tokens
			bucket = ratelimit.NewBucketWithRate(50, 500)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// Clean up old clients periodically until Stop is called
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(30 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.mu.Lock()
				// Remove clients with full buckets
				for ip, bucket := range rl.clients {
					if bucket.Available() == bucket.Capacity() {
						delete(rl.clients, ip)
					}
				}
				rl.mu.Unlock()
			case <-rl.done:
				return
			}
		}
	}()
}

// getTokenCost maps routes to their token cost. The long-running /compute
// endpoint is the most expensive; scrapes stay cheap so monitoring is never
// starved by other traffic.
func getTokenCost(r *http.Request) int64 {
	switch r.URL.Path {
	case "/metrics":
		return 1
	case "/":
		return 1
	case "/user":
		return 2
	case "/cpu":
		return 2
	case "/compute":
		return 25
	}

	return 5 // Default cost for unknown endpoints
}

// RateLimitHandler applies per-client token bucket rate limiting
func RateLimitHandler(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := rl.getBucket(r.RemoteAddr)

			tokenCost := getTokenCost(r)

			// Add rate limit headers before consuming tokens
			w.Header().Set("X-RateLimit-Limit", "500")
			w.Header().Set("X-RateLimit-Rate", "50")

			if bucket.TakeAvailable(tokenCost) < tokenCost {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "10")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
