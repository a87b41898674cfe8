package ratelimiter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, 15*time.Minute)
	l.now = clock.now
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
		clock.t = clock.t.Add(time.Minute)
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 12*time.Minute, d.RetryAfter)

	other, _ := l.Allow(ctx, "5.6.7.8")
	assert.True(t, other.Allowed, "keys are independent")

	// first hit leaves the window
	clock.t = clock.t.Add(12*time.Minute + time.Second)
	d, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_Prune(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	l := NewMemoryLimiter(1, time.Minute)
	l.now = clock.now

	_, _ = l.Allow(context.Background(), "a")
	clock.t = clock.t.Add(2 * time.Minute)
	l.Prune()

	assert.Empty(t, l.hits)
}

func TestRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRedisLimiter(rdb, 2, 15*time.Minute)
	l.now = clock.now
	ctx := context.Background()

	d, err := l.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	clock.t = clock.t.Add(5 * time.Minute)
	d, err = l.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = l.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 10*time.Minute, d.RetryAfter)

	assert.True(t, mr.Exists(redisKeyPrefix+"9.9.9.9"))

	clock.t = clock.t.Add(10*time.Minute + time.Millisecond)
	d, err = l.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "oldest entry expired from the window")
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err = NewRedisLimiter(rdb, 1, time.Minute).Allow(context.Background(), "x")
	assert.Error(t, err)
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("boom")
}

func newRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(l, 15*time.Minute))
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMiddleware(t *testing.T) {
	r := newRouter(NewMemoryLimiter(2, 15*time.Minute))

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests from this IP, please try again after 15 minutes", body["message"])
}

func TestMiddleware_FailsOpen(t *testing.T) {
	r := newRouter(errLimiter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestThrottle_Wait(t *testing.T) {
	th := NewThrottle(2, 100*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, th.Wait(ctx))
	require.NoError(t, th.Wait(ctx))
	assert.Less(t, time.Since(start), 40*time.Millisecond, "burst within quota does not block")

	require.NoError(t, th.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestThrottle_WaitCanceled(t *testing.T) {
	th := NewThrottle(1, time.Hour)
	require.NoError(t, th.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, th.Wait(ctx))
}

func TestThrottle_QueuedWaiterHonoursDeadline(t *testing.T) {
	th := NewThrottle(1, 2*time.Second)
	require.NoError(t, th.Wait(context.Background()))

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- th.Wait(bgCtx)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := th.Wait(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "a waiter behind another one must not outlive its deadline")

	bgCancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("background waiter ignored cancellation")
	}
}
