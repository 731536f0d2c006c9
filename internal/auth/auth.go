// ABOUTME: Login, logout and identity refresh on top of the session store
// ABOUTME: The only writer that turns backend login responses into session state

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/session"
)

// ErrInvalidCredentials is returned when the backend rejects a login
var ErrInvalidCredentials = client.ErrInvalidCredentials

// ErrSuperseded is returned when a newer login or logout happened while this login was in flight
var ErrSuperseded = errors.New("login superseded by a newer session change")

// Backend is the subset of the API client the auth flow needs
type Backend interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	Me(ctx context.Context) (*session.Identity, error)
}

// Client authenticates against the backend and feeds the session store
type Client struct {
	store   *session.Store
	backend Backend
}

// New creates an auth client writing to store
func New(store *session.Store, backend Backend) *Client {
	return &Client{store: store, backend: backend}
}

// Store returns the session store this client writes to
func (c *Client) Store() *session.Store {
	return c.store
}

// Login sends credentials to the backend and, on success, replaces the session.
// On any failure the store is left exactly as it was.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Identity, error) {
	ticket := c.store.Begin()

	resp, err := c.backend.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrInvalidCredentials) {
			slog.Info("Login rejected", "username", username)
		} else {
			slog.Warn("Login failed", "username", username, "error", err)
		}
		return nil, err
	}

	// An abandoned login must not write even if the response arrived
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("login abandoned: %w", err)
	}

	if resp.User == nil || !resp.User.Role.Valid() {
		slog.Warn("Login returned no usable identity", "username", username)
		return nil, fmt.Errorf("invalid response from backend: login returned no user with a known role")
	}

	if err := c.store.CommitSession(ticket, resp.User, resp.Token); err != nil {
		slog.Debug("Discarding stale login response", "username", username)
		return nil, ErrSuperseded
	}

	slog.Info("Logged in", "username", resp.User.Username, "role", resp.User.Role)
	return c.store.CurrentIdentity(), nil
}

// Logout clears the session locally. There is no backend call.
func (c *Client) Logout() {
	c.store.ClearSession()
	slog.Info("Logged out")
}

// Refresh re-validates the cached session with GET /api/auth/me.
// A rejected token or a changed role clears the session and returns client.ErrUnauthenticated.
func (c *Client) Refresh(ctx context.Context) (*session.Identity, error) {
	snap := c.store.Snapshot()
	if !snap.Authenticated() {
		return nil, client.ErrUnauthenticated
	}
	ticket := c.store.Mark()

	user, err := c.backend.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			if c.store.CommitClear(ticket) == nil {
				slog.Info("Cached session rejected by backend", "username", snap.Identity.Username)
			}
		}
		return nil, err
	}

	if user.ID != snap.Identity.ID || user.Role != snap.Identity.Role {
		if c.store.CommitClear(ticket) == nil {
			slog.Warn("Identity changed since login; signing out",
				"username", snap.Identity.Username,
				"cached_role", snap.Identity.Role,
				"current_role", user.Role,
			)
		}
		return nil, fmt.Errorf("%w: identity changed, log in again", client.ErrUnauthenticated)
	}

	return snap.Identity, nil
}

// HandleError logs out when err shows the backend rejected the session token.
// sent is the store's Mark taken when the failed call was issued; a rejection
// of a session that has since been replaced is ignored. Returns true when it logged out.
func (c *Client) HandleError(err error, sent session.Ticket) bool {
	if !errors.Is(err, client.ErrUnauthenticated) || !c.store.IsAuthenticated() {
		return false
	}
	if c.store.CommitClear(sent) != nil {
		slog.Debug("Ignoring rejection of a replaced session")
		return false
	}
	slog.Info("Session rejected by backend; signing out")
	return true
}
