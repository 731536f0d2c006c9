// ABOUTME: HTTP middleware for the development API
// ABOUTME: Request logging, bearer authentication, role checks and JSON error responses

package devapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markalston/inventory-requests/internal/session"
)

type middleware func(http.HandlerFunc) http.HandlerFunc

// chain applies middleware in order; the first is the outermost
func chain(h http.HandlerFunc, middlewares ...middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRequest logs requests with timing, echoing the caller's X-Request-ID when present.
func logRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)

		slog.Info("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

type contextKey string

const userKey contextKey = "user"

// requireAuth rejects requests without a valid bearer token for a known user.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			slog.Debug("Auth rejected: no bearer token", "path", r.URL.Path)
			writeJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := s.tokens.verify(token)
		if err != nil {
			slog.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err)
			writeJSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		u, ok := s.store.userByName(claims.Subject)
		if !ok {
			slog.Debug("Auth rejected: unknown user", "path", r.URL.Path, "user", claims.Subject)
			writeJSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		identity := u.Identity
		ctx := context.WithValue(r.Context(), userKey, &identity)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin returns 403 unless the authenticated caller is an admin.
// Must run after requireAuth.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := currentUser(r)
		if !caller.IsAdmin() {
			slog.Warn("RBAC authorization denied",
				"path", r.URL.Path,
				"method", r.Method,
				"required_role", session.RoleAdmin,
				"username", caller.Username,
			)
			writeJSONError(w, "Insufficient permissions", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// currentUser returns the authenticated caller, or an empty identity
func currentUser(r *http.Request) *session.Identity {
	if u, ok := r.Context().Value(userKey).(*session.Identity); ok {
		return u
	}
	return &session.Identity{}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{
		Error: message,
		Code:  code,
	})
}
