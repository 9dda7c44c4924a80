package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = Policy{Attempts: 3, Window: time.Hour, Block: 30 * time.Minute}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory(t *testing.T, maxEntries int) (*Memory, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(policy, maxEntries, 0)
	m.now = c.now
	t.Cleanup(func() { _ = m.Close() })
	return m, c
}

func TestMemoryBlocksAfterAllowance(t *testing.T) {
	m, c := newTestMemory(t, 100)
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := m.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
	}

	res, _ := m.Allow(ctx, "1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Minute, res.RetryAfter)

	// other clients are unaffected
	res, _ = m.Allow(ctx, "5.6.7.8")
	assert.True(t, res.Allowed)

	c.advance(10 * time.Minute)
	res, _ = m.Allow(ctx, "1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 20*time.Minute, res.RetryAfter)

	c.advance(21 * time.Minute)
	res, _ = m.Allow(ctx, "1.2.3.4")
	assert.True(t, res.Allowed)
}

func TestMemoryIsBounded(t *testing.T) {
	m, c := newTestMemory(t, 2)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		_, err := m.Allow(ctx, k)
		require.NoError(t, err)
		c.advance(time.Second)
	}
	assert.Equal(t, 2, m.Len())

	// "a" was the least recently seen and was evicted, so it starts fresh
	res, _ := m.Allow(ctx, "a")
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, 2, m.Len())
}

func TestSweepDropsIdleKeysButKeepsBlocked(t *testing.T) {
	m, c := newTestMemory(t, 100)
	ctx := context.Background()
	_, _ = m.Allow(ctx, "idle")
	for i := 0; i < 4; i++ {
		_, _ = m.Allow(ctx, "abuser")
	}

	c.advance(20 * time.Minute)
	assert.Equal(t, 0, m.Sweep())

	c.advance(time.Hour)
	// both idle for over a window; the block has also run out
	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestBlockedKeySurvivesSweep(t *testing.T) {
	m, c := newTestMemory(t, 100)
	m.policy.Block = 2 * time.Hour
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, _ = m.Allow(ctx, "abuser")
	}
	c.advance(90 * time.Minute)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestCloseStopsSweeper(t *testing.T) {
	m := NewMemory(policy, 10, time.Millisecond)
	_, _ = m.Allow(context.Background(), "x")
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestClientIP(t *testing.T) {
	cases := map[string]struct {
		headers map[string]string
		remote  string
		want    string
	}{
		"cloudflare wins":  {map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "1.1.1.1"}, "10.0.0.1:5000", "9.9.9.9"},
		"first forwarded":  {map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.2"}, "10.0.0.1:5000", "1.1.1.1"},
		"real ip":          {map[string]string{"X-Real-IP": "2.2.2.2"}, "10.0.0.1:5000", "2.2.2.2"},
		"remote addr":      {nil, "10.0.0.1:5000", "10.0.0.1"},
		"nothing to go on": {nil, "", "unknown"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(r))
		})
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	m, _ := newTestMemory(t, 100)
	h := Middleware(m, "contact")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.Header.Set("X-Forwarded-For", "3.3.3.3")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, send().Code)
	}
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1800", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	l := NewRedis(client, Policy{Attempts: 2, Window: time.Minute, Block: 2 * time.Second}, "test:"+uuid.NewString()+":")
	for want := 1; want >= 0; want-- {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
	}
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.LessOrEqual(t, res.RetryAfter, 2*time.Second)
}
