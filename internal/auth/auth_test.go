// ABOUTME: Tests for login, logout and refresh against the session store
// ABOUTME: Covers rejected logins, out-of-order responses and trust-until-rejected refresh

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/session"
)

var (
	admin    = &session.Identity{ID: 1, Username: "admin", DisplayName: "Admin", Role: session.RoleAdmin}
	employee = &session.Identity{ID: 2, Username: "john", DisplayName: "John", Role: session.RoleEmployee}
)

// fakeBackend answers logins from a table and can hold responses until released
type fakeBackend struct {
	users   map[string]*client.LoginResponse
	gates   map[string]chan struct{}
	me      *session.Identity
	meErr   error
	started chan string
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*client.LoginResponse, error) {
	if f.started != nil {
		f.started <- username
	}
	if gate, ok := f.gates[username]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	resp, ok := f.users[username+":"+password]
	if !ok {
		return nil, client.ErrInvalidCredentials
	}
	return resp, nil
}

func (f *fakeBackend) Me(ctx context.Context) (*session.Identity, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.me, nil
}

func newFake() *fakeBackend {
	return &fakeBackend{
		users: map[string]*client.LoginResponse{
			"admin:admin123": {Success: true, Token: "abc", User: admin},
			"john:john123":   {Success: true, Token: "xyz", User: employee},
		},
		gates: map[string]chan struct{}{},
	}
}

func TestLogin_AdminSuccess(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)
	c := New(store, newFake())

	identity, err := c.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if identity.Username != "admin" {
		t.Errorf("expected admin identity, got %+v", identity)
	}
	if store.CurrentToken() != "abc" {
		t.Errorf("expected token abc, got %q", store.CurrentToken())
	}
	if !store.IsAdmin() {
		t.Error("expected admin session")
	}
	if v, ok, _ := storage.Get(session.TokenKey); !ok || v != "abc" {
		t.Errorf("expected persisted token abc, got %q (found=%v)", v, ok)
	}
}

func TestLogin_InvalidCredentialsLeavesSessionUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		prior *session.Identity
		token string
	}{
		{"anonymous", nil, ""},
		{"existing session", admin, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := session.NewMemoryStorage()
			store := session.NewStore(storage)
			store.SetSession(tt.prior, tt.token)
			before := store.Snapshot()

			c := New(store, newFake())
			_, err := c.Login(context.Background(), "john", "wrong")
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}

			after := store.Snapshot()
			if after.Authenticated() != before.Authenticated() || after.Token != before.Token {
				t.Errorf("session changed: before %+v after %+v", before, after)
			}
			if v, _, _ := storage.Get(session.TokenKey); v != tt.token {
				t.Errorf("persisted token changed to %q", v)
			}
		})
	}
}

func TestLogout_RemovesPersistedSession(t *testing.T) {
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage)
	c := New(store, newFake())

	if _, err := c.Login(context.Background(), "john", "john123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	c.Logout()

	if store.IsAuthenticated() {
		t.Error("expected anonymous after logout")
	}
	for _, key := range []string{session.TokenKey, session.IdentityKey} {
		if _, found, _ := storage.Get(key); found {
			t.Errorf("expected %s removed", key)
		}
	}
}

func TestLogin_LastInvokedWinsWhenResponsesArriveOutOfOrder(t *testing.T) {
	store := session.NewStore(nil)
	fake := newFake()
	fake.gates["admin"] = make(chan struct{})
	fake.gates["john"] = make(chan struct{})
	fake.started = make(chan string, 2)
	c := New(store, fake)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "admin", "admin123")
		firstErr <- err
	}()
	<-fake.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "john", "john123")
		secondErr <- err
	}()
	<-fake.started

	// Second invocation resolves first
	close(fake.gates["john"])
	if err := <-secondErr; err != nil {
		t.Fatalf("second login error: %v", err)
	}
	close(fake.gates["admin"])
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected first login superseded, got %v", err)
	}

	if store.CurrentToken() != "xyz" || store.IsAdmin() {
		t.Errorf("expected john's session to win, got %+v", store.Snapshot())
	}
}

func TestLogin_LogoutDuringLoginWins(t *testing.T) {
	store := session.NewStore(nil)
	fake := newFake()
	fake.gates["admin"] = make(chan struct{})
	fake.started = make(chan string, 1)
	c := New(store, fake)

	done := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "admin", "admin123")
		done <- err
	}()
	<-fake.started

	c.Logout()
	close(fake.gates["admin"])

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("logout invoked after login must win")
	}
}

func TestLogin_AbandonedDoesNotCommit(t *testing.T) {
	store := session.NewStore(nil)
	fake := newFake()
	fake.gates["admin"] = make(chan struct{})
	fake.started = make(chan string, 1)
	c := New(store, fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Login(ctx, "admin", "admin123")
		done <- err
	}()
	<-fake.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("login did not return after cancel")
	}
	if store.IsAuthenticated() {
		t.Error("abandoned login must not mutate the session")
	}
}

func TestRefresh(t *testing.T) {
	changedRole := *employee
	changedRole.Role = session.RoleAdmin

	tests := []struct {
		name        string
		me          *session.Identity
		meErr       error
		wantErr     error
		wantCleared bool
	}{
		{"still valid", employee, nil, nil, false},
		{"token rejected", nil, &client.APIError{StatusCode: http.StatusUnauthorized}, client.ErrUnauthenticated, true},
		{"role changed", &changedRole, nil, client.ErrUnauthenticated, true},
		{"backend down", nil, errors.New("cannot connect to backend"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore(nil)
			store.SetSession(employee, "xyz")
			fake := newFake()
			fake.me, fake.meErr = tt.me, tt.meErr

			_, err := New(store, fake).Refresh(context.Background())
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && tt.meErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if store.IsAuthenticated() == tt.wantCleared {
				t.Errorf("cleared = %v, want %v", !store.IsAuthenticated(), tt.wantCleared)
			}
		})
	}
}

func TestRefresh_Anonymous(t *testing.T) {
	c := New(session.NewStore(nil), newFake())
	if _, err := c.Refresh(context.Background()); !errors.Is(err, client.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestHandleError(t *testing.T) {
	store := session.NewStore(nil)
	store.SetSession(employee, "xyz")
	c := New(store, newFake())

	sent := store.Mark()
	if c.HandleError(&client.APIError{StatusCode: http.StatusForbidden}, sent) {
		t.Error("403 must not sign out")
	}
	if c.HandleError(errors.New("boom"), sent) {
		t.Error("unrelated errors must not sign out")
	}
	if !store.IsAuthenticated() {
		t.Fatal("session should survive non-401 errors")
	}

	if !c.HandleError(&client.APIError{StatusCode: http.StatusUnauthorized}, sent) {
		t.Error("expected 401 to sign out")
	}
	if store.IsAuthenticated() {
		t.Error("expected anonymous after 401")
	}
}

func TestHandleError_IgnoresRejectionOfReplacedSession(t *testing.T) {
	store := session.NewStore(nil)
	store.SetSession(employee, "old-token")
	c := New(store, newFake())

	sent := store.Mark()
	if _, err := c.Login(context.Background(), "john", "john123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if c.HandleError(&client.APIError{StatusCode: http.StatusUnauthorized}, sent) {
		t.Error("a 401 for the old token must not sign out the new session")
	}
	if store.CurrentToken() != "xyz" {
		t.Errorf("expected new session kept, got %+v", store.Snapshot())
	}
}

func TestLogin_FailedNewerLoginDoesNotSupersedeOlder(t *testing.T) {
	store := session.NewStore(nil)
	fake := newFake()
	fake.gates["admin"] = make(chan struct{})
	fake.started = make(chan string, 2)
	c := New(store, fake)

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "admin", "admin123")
		firstErr <- err
	}()
	<-fake.started

	if _, err := c.Login(context.Background(), "john", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	<-fake.started

	close(fake.gates["admin"])
	if err := <-firstErr; err != nil {
		t.Fatalf("expected first login to commit, got %v", err)
	}
	if !store.IsAdmin() || store.CurrentToken() != "abc" {
		t.Errorf("expected admin session, got %+v", store.Snapshot())
	}
}

func TestLogin_UnknownRoleLeavesSessionUnchanged(t *testing.T) {
	store := session.NewStore(nil)
	store.SetSession(employee, "xyz")
	fake := newFake()
	fake.users["ghost:ghost123"] = &client.LoginResponse{
		Success: true,
		Token:   "ghost-token",
		User:    &session.Identity{ID: 9, Username: "ghost", Role: "admin"},
	}
	c := New(store, fake)

	if _, err := c.Login(context.Background(), "ghost", "ghost123"); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
	if store.CurrentToken() != "xyz" {
		t.Errorf("expected previous session kept, got %+v", store.Snapshot())
	}
}

func TestLogin_OverHTTPWithBearerOnFollowUpCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("expected anonymous login, got %q", got)
			}
			json.NewEncoder(w).Encode(client.LoginResponse{Success: true, Token: "abc", User: admin})
		case "/api/auth/me":
			if got := r.Header.Get("Authorization"); got != "Bearer abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(admin)
		}
	}))
	defer server.Close()

	store := session.NewStore(nil)
	api := client.New(server.URL, client.WithTokenSource(store))
	c := New(store, api)

	if _, err := c.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if !store.IsAdmin() {
		t.Error("expected admin session after refresh")
	}
}
