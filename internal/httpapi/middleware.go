// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lumachat/lumachat/internal/identity"
)

type contextKey int

const userContextKey contextKey = iota

// userFrom returns the authenticated user stored by requireSession.
func userFrom(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(userContextKey).(*identity.User)
	return user, ok
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe logs each request and records it in the request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.metrics.RecordRequest(r.URL.Path, r.Method, rec.status)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// requireSession authenticates the request via its bearer token and stores
// the resolved user in the request context. All failures produce the same
// 401 response so callers cannot distinguish missing, malformed, and
// unknown tokens.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		session, err := s.identity.VerifySession(r.Context(), token)
		if err != nil {
			status, msg := mapError(err)
			writeError(w, status, msg)
			return
		}

		user, err := s.identity.UserByID(r.Context(), session.UserID)
		if err != nil {
			// The session row exists but the user does not; treat it
			// the same as an invalid token.
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
