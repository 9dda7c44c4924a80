package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// Middleware rejects callers over the allowance with 429. Keys are the
// client IP under the given scope, so separate endpoints get separate
// allowances. If the limiter itself fails the request is let through.
func Middleware(l Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			res, err := l.Allow(r.Context(), scope+":"+ip)
			if err != nil {
				logrus.WithError(err).WithField("scope", scope).Error("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logrus.WithFields(logrus.Fields{"scope": scope, "client_ip": ip}).Warn("rate limit exceeded")
				utils.WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}
