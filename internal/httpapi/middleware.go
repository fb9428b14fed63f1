package httpapi

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/personal-calendar/internal/logging"
)

// RequestLogger attaches a per-request logger to the context and records the
// start and completion of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// RequireBasicAuth rejects requests whose basic-auth credentials do not match
// the configured username and argon2id password hash.
func RequireBasicAuth(username, passwordHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="calendar"`)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "authentication required"})
				return
			}

			userMatches := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			if err := VerifyPassword(passwordHash, password); err != nil || !userMatches {
				w.Header().Set("WWW-Authenticate", `Basic realm="calendar"`)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
