package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(store CounterStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(store, limit))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestRateLimit_MemoryStore(t *testing.T) {
	r := rateLimitedRouter(NewMemoryCounterStore(), 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "request %d within limit", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRateLimit_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := &RedisCounterStore{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	r := rateLimitedRouter(store, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// window expiry resets the counter
	mr.FastForward(2 * time.Minute)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	store := &RedisCounterStore{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	mr.Close()

	r := rateLimitedRouter(store, 1)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code, "store outage must not block requests")
	}
}

func TestRateLimit_DisabledWithoutStore(t *testing.T) {
	r := rateLimitedRouter(nil, 1)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestMemoryCounterStore_WindowReset(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	n, err := store.Incr(ctx, "key", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = store.Incr(ctx, "key", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	time.Sleep(5 * time.Millisecond)
	n, err = store.Incr(ctx, "key", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "expired window starts a fresh count")
}

func TestMemoryCounterStore_SweepEvictsExpiredKeys(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := store.Incr(ctx, key, time.Millisecond)
		require.NoError(t, err)
	}
	time.Sleep(5 * time.Millisecond)

	// force the next Incr past the sweep interval
	store.mu.Lock()
	store.lastSweep = time.Now().Add(-2 * memorySweepInterval)
	store.mu.Unlock()

	_, err := store.Incr(ctx, "d", time.Minute)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.counts, 1, "expired counters must be evicted")
	assert.Len(t, store.expires, 1)
	assert.Contains(t, store.counts, "d")
}
