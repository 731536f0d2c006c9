package devapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, err := New(Options{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/auth/login", "application/json", nil)
	if err != nil {
		t.Fatalf("request to running server: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty login, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNew_RandomSecretPerServer(t *testing.T) {
	a, err := New(Options{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(Options{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatal(err)
	}

	u, _ := a.store.userByName("admin")
	token, err := a.tokens.issue(&u.Identity)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.tokens.verify(token); err != nil {
		t.Errorf("own token rejected: %v", err)
	}
	if _, err := b.tokens.verify(token); err == nil {
		t.Error("expected another server's token to be rejected")
	}
}
