package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/ratelimiter"
)

// RateLimit corta con 429 cuando la IP del cliente agotó su cupo.
// Con limiter nil no limita nada.
func RateLimit(l *ratelimiter.KeyLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				httpresp.Fail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP asume que chimw.RealIP ya reescribió RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
