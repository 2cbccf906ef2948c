package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/ulule/limiter/v3"

	"github.com/segyhp/chama-engine/pkg/response"
)

// RateLimitMiddleware rejects clients that exceeded the limiter's rate for
// their IP address.
func RateLimitMiddleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			logger := response.LoggerFromContext(r.Context())

			limit, err := l.Get(r.Context(), ip)
			if err != nil {
				// Fail open; the limiter store is not a dependency of the API.
				logger.Error("Failed to get rate limit context", slog.String("ip", ip), slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if limit.Reached {
				logger.Warn("Rate limit exceeded",
					slog.String("ip", ip),
					slog.Int64("limit", limit.Limit),
					slog.Int64("remaining_requests", limit.Remaining),
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
