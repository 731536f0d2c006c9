// ABOUTME: Tests for the bearer and request-ID round trippers
// ABOUTME: Verifies header attachment and that caller requests are never mutated

package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordingTransport struct {
	last *http.Request
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.last = req
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

type mutableTokens struct {
	mu    sync.Mutex
	token string
}

func (m *mutableTokens) CurrentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *mutableTokens) set(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func TestBearerTransport(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"with token", "abc", "Bearer abc"},
		{"anonymous", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingTransport{}
			rt := &BearerTransport{Tokens: staticTokens(tt.token), Base: rec}

			req := httptest.NewRequest(http.MethodGet, "http://example.test/api/items", nil)
			resp, err := rt.RoundTrip(req)
			if err != nil {
				t.Fatalf("RoundTrip() error: %v", err)
			}
			resp.Body.Close()

			if got := rec.last.Header.Get("Authorization"); got != tt.want {
				t.Errorf("Authorization = %q, want %q", got, tt.want)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("caller's request must not be mutated")
			}
		})
	}
}

func TestBearerTransport_ReadsTokenPerRequest(t *testing.T) {
	rec := &recordingTransport{}
	tokens := &mutableTokens{token: "first"}
	rt := &BearerTransport{Tokens: tokens, Base: rec}

	rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	if got := rec.last.Header.Get("Authorization"); got != "Bearer first" {
		t.Errorf("expected first token, got %q", got)
	}

	tokens.set("")
	rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	if got := rec.last.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no header after logout, got %q", got)
	}

	tokens.set("second")
	rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	if got := rec.last.Header.Get("Authorization"); got != "Bearer second" {
		t.Errorf("expected second token, got %q", got)
	}
}

func TestBearerTransport_NilSource(t *testing.T) {
	rec := &recordingTransport{}
	rt := &BearerTransport{Base: rec}

	rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
	if got := rec.last.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no header, got %q", got)
	}
}

func TestLoggingTransport_AddsRequestID(t *testing.T) {
	rec := &recordingTransport{}
	rt := &loggingTransport{base: rec}

	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	rt.RoundTrip(req)
	first := rec.last.Header.Get("X-Request-ID")
	rt.RoundTrip(req)
	second := rec.last.Header.Get("X-Request-ID")

	if first == "" || second == "" {
		t.Fatal("expected X-Request-ID on every request")
	}
	if first == second {
		t.Error("expected unique request IDs")
	}
	if req.Header.Get("X-Request-ID") != "" {
		t.Error("caller's request must not be mutated")
	}
}
