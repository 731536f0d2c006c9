// ABOUTME: Test helpers for command tests
// ABOUTME: Starts an in-process dev API and points global flags at it

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/inventory-requests/internal/devapi"
	"golang.org/x/crypto/bcrypt"
)

// withDevAPI starts a dev API, points --api-url and --config-dir at test
// locations, and restores the globals when the test ends.
func withDevAPI(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := devapi.New(devapi.Options{Secret: strings.Repeat("t", 32), BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("devapi.New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())

	apiURL = ts.URL
	configDir = t.TempDir()
	t.Cleanup(func() {
		ts.Close()
		apiURL = ""
		configDir = ""
		jsonOutput = false
	})
	return ts
}

// mustEnv opens a fresh environment the way each CLI invocation does
func mustEnv(t *testing.T) *env {
	t.Helper()
	e, err := openEnv()
	if err != nil {
		t.Fatalf("openEnv() error: %v", err)
	}
	return e
}

// loginAs logs in through a throwaway environment so the session is saved to disk
func loginAs(t *testing.T, username, password string) {
	t.Helper()
	var buf bytes.Buffer
	if code := runLogin(context.Background(), mustEnv(t), &buf, username, password); code != 0 {
		t.Fatalf("login %s: exit %d: %s", username, code, buf.String())
	}
}
