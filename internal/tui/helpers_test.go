// ABOUTME: Test helpers for the TUI app
// ABOUTME: Wires an App to an in-process dev API and a memory session store

package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/inventory-requests/internal/auth"
	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/devapi"
	"github.com/markalston/inventory-requests/internal/guard"
	"github.com/markalston/inventory-requests/internal/session"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app   *App
	store *session.Store
	api   *client.Client
	auth  *auth.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv, err := devapi.New(devapi.Options{Secret: strings.Repeat("t", 32), BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("devapi.New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := session.NewStore(nil)
	api := client.New(ts.URL, client.WithTokenSource(store))
	authClient := auth.New(store, api)
	app := New(store, api, authClient, guard.NewRouter(store))
	t.Cleanup(app.close)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &testEnv{app: app, store: store, api: api, auth: authClient}
}

// nextSnapshot waits for the app's subscription to publish
func (e *testEnv) nextSnapshot(t *testing.T) session.Snapshot {
	t.Helper()
	select {
	case snap := <-e.app.sub.C():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session snapshot")
		return session.Snapshot{}
	}
}

// signIn logs in behind the app's back and delivers the resulting snapshot,
// then runs the dashboard load it triggers
func (e *testEnv) signIn(t *testing.T, username, password string) {
	t.Helper()
	if _, err := e.auth.Login(context.Background(), username, password); err != nil {
		t.Fatalf("Login(%s) error: %v", username, err)
	}
	cmd := e.app.applySession(e.nextSnapshot(t))
	e.runCmd(t, cmd)
}

// runCmd runs a command that is known not to block and feeds its message back
func (e *testEnv) runCmd(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := e.app.Update(cmd())
	return next
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
