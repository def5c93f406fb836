package middleware

import (
	"net/http"

	"github.com/eventstaff/attendance/internal/transport"
	"golang.org/x/time/rate"
)

// RateLimit applies one shared token bucket to every request it wraps.
// A non-positive rate disables limiting.
func RateLimit(perSecond float64, burst int, base *transport.BaseHandler) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				base.WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
