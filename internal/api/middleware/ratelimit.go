package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/forte-savings/backend/internal/metrics"
)

// CounterStore is a fixed-window counter keyed by client identity. The
// Redis implementation shares state across server instances; the memory
// implementation is the single-instance fallback.
type CounterStore interface {
	// Incr bumps the counter for key in the current window and returns the
	// new count. The window TTL is set when the counter is created.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounterStore counts in Redis with a TTL per window.
type RedisCounterStore struct {
	Client *redis.Client
}

func NewRedisCounterStore(addr, password string) (*RedisCounterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisCounterStore{Client: client}, nil
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounterStore is the in-process fallback when no Redis is
// configured. Counters reset on restart and are not shared between
// instances. Expired counters are swept periodically so the maps do not
// grow with every distinct client seen.
type MemoryCounterStore struct {
	mu        sync.Mutex
	counts    map[string]int64
	expires   map[string]time.Time
	lastSweep time.Time
}

const memorySweepInterval = time.Minute

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counts:    make(map[string]int64),
		expires:   make(map[string]time.Time),
		lastSweep: time.Now(),
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweep(now)
	}
	if exp, ok := s.expires[key]; !ok || now.After(exp) {
		s.counts[key] = 0
		s.expires[key] = now.Add(window)
	}
	s.counts[key]++
	return s.counts[key], nil
}

// sweep drops expired counters. Caller holds the lock.
func (s *MemoryCounterStore) sweep(now time.Time) {
	for key, exp := range s.expires {
		if now.After(exp) {
			delete(s.counts, key)
			delete(s.expires, key)
		}
	}
	s.lastSweep = now
}

// RateLimit rejects callers exceeding limit requests per minute, keyed by
// client IP. Store errors fail open so a Redis outage cannot take the API
// down with it.
func RateLimit(store CounterStore, limit int) gin.HandlerFunc {
	window := time.Minute
	return func(c *gin.Context) {
		if store == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP()
		count, err := store.Incr(c.Request.Context(), key, window)
		if err != nil {
			GetRequestLogger(c).WithError(err).Warn("rate limit store unavailable")
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			metrics.IncRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
