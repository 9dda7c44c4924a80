// Package ratelimit throttles abuse-prone public endpoints per client.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Result is the outcome of one attempt.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts attempts per key. A key that exceeds the allowance is
// blocked for the configured block duration.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Policy is the allowance shared by every backend.
type Policy struct {
	Attempts int
	Window   time.Duration
	Block    time.Duration
}

// ClientIP returns the caller's address as seen through Cloudflare or a
// reverse proxy, falling back to the connection's remote address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
