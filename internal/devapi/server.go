// ABOUTME: Development API server mirroring the inventory-request backend
// ABOUTME: Wires the in-memory store, token issuer and route table into an http.Server

package devapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Options configures a Server
type Options struct {
	Secret     string        // HS256 key; empty generates one
	TokenTTL   time.Duration // default 24h
	BcryptCost int           // default bcrypt.DefaultCost
}

// Server is an in-memory implementation of the backend API
type Server struct {
	store  *store
	tokens *tokenIssuer
}

// New creates a server seeded with demo users and items
func New(opts Options) (*Server, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	st, err := newStore(opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := newTokenIssuer(opts.Secret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Server{store: st, tokens: tokens}, nil
}

// Handler returns the API with every route registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.Routes() {
		h := route.Handler
		switch route.access {
		case authenticated:
			h = chain(h, s.requireAuth)
		case adminOnly:
			h = chain(h, s.requireAuth, requireAdmin)
		}
		mux.HandleFunc(route.Method+" "+route.Path, chain(h, logRequest))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("Shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
