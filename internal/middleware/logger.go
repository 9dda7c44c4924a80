package middleware

import (
	"net/http"
	"time"

	"github.com/funnytourism/tourism-api/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger writes one access log entry per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
			"client_ip":  ratelimit.ClientIP(r),
			"user_agent": r.UserAgent(),
		})

		if rec.status >= 500 {
			entry.Error("request failed")
		} else if rec.status >= 400 {
			entry.Warn("request rejected")
		} else {
			entry.Info("request processed")
		}
	})
}
