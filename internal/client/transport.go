// ABOUTME: HTTP round trippers applied to every outgoing API call
// ABOUTME: Attaches the session bearer token and a request ID, and logs each call

package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token; "" means anonymous
type TokenSource interface {
	CurrentToken() string
}

// BearerTransport attaches "Authorization: Bearer <token>" when a token is present.
// Requests without a token are forwarded unmodified; rejecting them is the backend's job.
type BearerTransport struct {
	Tokens TokenSource
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Tokens != nil {
		if token := t.Tokens.CurrentToken(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return base(t.Base).RoundTrip(req)
}

// loggingTransport tags requests with X-Request-ID and logs their outcome at debug level
type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := base(t.base).RoundTrip(req)
	if err != nil {
		slog.Debug("API request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, err
	}

	slog.Debug("API request completed",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func base(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
