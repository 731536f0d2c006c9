// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/session"
)

func TestGetAPIURL_Default(t *testing.T) {
	os.Unsetenv("INVENTORY_API_URL")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "http://localhost:8080" {
		t.Errorf("expected default URL http://localhost:8080, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "http://backend.example.com")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "http://backend.example.com")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	url := GetAPIURL()
	if url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("INVENTORY_CONFIG_DIR", "/from/env")
	configDir = ""
	if got := GetConfigDir(); got != "/from/env" {
		t.Errorf("expected env config dir, got %s", got)
	}

	configDir = "/from/flag"
	defer func() { configDir = "" }()
	if got := GetConfigDir(); got != "/from/flag" {
		t.Errorf("expected flag config dir, got %s", got)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestOpenEnv_RestoresSavedSession(t *testing.T) {
	configDir = t.TempDir()
	defer func() { configDir = "" }()

	first := mustEnv(t)
	first.store.SetSession(&session.Identity{ID: 2, Username: "john", DisplayName: "John Doe", Role: session.RoleEmployee}, "xyz")

	second := mustEnv(t)
	if second.store.CurrentToken() != "xyz" {
		t.Errorf("expected saved session restored, got %+v", second.store.Snapshot())
	}
	if _, err := os.Stat(filepath.Join(configDir, "session.json")); err != nil {
		t.Errorf("expected session file: %v", err)
	}
}

func TestOpenEnv_NoPersist(t *testing.T) {
	configDir = t.TempDir()
	noPersist = true
	defer func() {
		configDir = ""
		noPersist = false
	}()

	e := mustEnv(t)
	e.store.SetSession(&session.Identity{ID: 1, Username: "admin", Role: session.RoleAdmin}, "abc")

	if _, err := os.Stat(filepath.Join(configDir, "session.json")); !os.IsNotExist(err) {
		t.Errorf("expected no session file with --no-persist, got %v", err)
	}
}

func TestFail_ExitCodes(t *testing.T) {
	configDir = t.TempDir()
	defer func() { configDir = "" }()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", &client.APIError{StatusCode: 401}, 1},
		{"forbidden", &client.APIError{StatusCode: 403}, 1},
		{"invalid credentials", client.ErrInvalidCredentials, 1},
		{"not found", &client.APIError{StatusCode: 404}, 2},
		{"other", errors.New("boom"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := mustEnv(t).fail(&buf, tt.err); got != tt.want {
				t.Errorf("fail() = %d, want %d", got, tt.want)
			}
			if !strings.HasPrefix(buf.String(), "Error: ") {
				t.Errorf("expected error message, got %q", buf.String())
			}
		})
	}
}

func TestFail_UnauthenticatedClearsSavedSession(t *testing.T) {
	configDir = t.TempDir()
	defer func() { configDir = "" }()

	mustEnv(t).store.SetSession(&session.Identity{ID: 2, Username: "john", Role: session.RoleEmployee}, "expired")

	var buf bytes.Buffer
	mustEnv(t).fail(&buf, &client.APIError{StatusCode: 401})

	if !strings.Contains(buf.String(), "inventory login") {
		t.Errorf("expected login hint, got %q", buf.String())
	}
	if mustEnv(t).store.IsAuthenticated() {
		t.Error("expected saved session removed after 401")
	}
}

func TestFail_KeepsSessionSavedAfterCommandStarted(t *testing.T) {
	configDir = t.TempDir()
	defer func() { configDir = "" }()

	mustEnv(t).store.SetSession(&session.Identity{ID: 2, Username: "john", Role: session.RoleEmployee}, "expired")
	e := mustEnv(t)

	// Another login replaces the session while the command's call is in flight
	e.store.SetSession(&session.Identity{ID: 2, Username: "john", Role: session.RoleEmployee}, "fresh")

	var buf bytes.Buffer
	if code := e.fail(&buf, &client.APIError{StatusCode: 401}); code != 1 {
		t.Errorf("fail() = %d, want 1", code)
	}
	if strings.Contains(buf.String(), "inventory login") {
		t.Errorf("did not expect login hint, got %q", buf.String())
	}
	if got := mustEnv(t).store.CurrentToken(); got != "fresh" {
		t.Errorf("expected fresh session kept, got %q", got)
	}
}
