// ABOUTME: Login, logout and whoami commands for the inventory CLI
// ABOUTME: Manage the saved session that every other command authenticates with

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/golang-jwt/jwt/v5"
	"github.com/markalston/inventory-requests/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername string
	loginPassword string
	whoamiVerify  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Log in to the inventory backend. The session is saved in the config directory
and reused by later commands until you log out or the backend rejects it.

Prompts for missing credentials when run in a terminal.

Example:
  inventory login -u john
  INVENTORY_PASSWORD=john123 inventory login -u john`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		username, password := loginUsername, loginPassword
		if password == "" {
			password = os.Getenv("INVENTORY_PASSWORD")
		}
		if (username == "" || password == "") && term.IsTerminal(int(os.Stdin.Fd())) {
			if err := promptCredentials(&username, &password); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(2)
			}
		}

		e, err := openEnv()
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}
		if code := runLogin(ctx, e, os.Stdout, username, password); code != 0 {
			os.Exit(code)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		e, err := openEnv()
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}
		if code := runLogout(e, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Long: `Show the user of the saved session and when its token expires.

With --verify the session is checked against the backend; a rejected token logs you out.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		e, err := openEnv()
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}
		if code := runWhoami(ctx, e, os.Stdout, whoamiVerify); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prefer INVENTORY_PASSWORD or the prompt)")
	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Check the session with the backend")
}

// promptCredentials asks for whichever of username and password is missing
func promptCredentials(username, password *string) error {
	var fields []huh.Field
	if *username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(username).
			Validate(required("username")))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(password).
		Validate(required("password")))

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// sessionView is the JSON shape of login and whoami output
type sessionView struct {
	User      *session.Identity `json:"user"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
}

// runLogin authenticates and returns exit code
func runLogin(ctx context.Context, e *env, w io.Writer, username, password string) int {
	identity, err := e.auth.Login(ctx, username, password)
	if err != nil {
		return e.fail(w, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(sessionView{User: identity, ExpiresAt: tokenExpiry(e.store.CurrentToken())}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Logged in as %s (%s, %s)\n", identity.DisplayName, identity.Username, identity.Role)
	}

	if err := e.store.LastPersistError(); err != nil {
		fmt.Fprintf(w, "Warning: session not saved, later commands will need a new login: %v\n", err)
	}
	return 0
}

// runLogout clears the session and returns exit code
func runLogout(e *env, w io.Writer) int {
	wasLoggedIn := e.store.IsAuthenticated()
	e.auth.Logout()

	if err := e.store.LastPersistError(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if wasLoggedIn {
		fmt.Fprintln(w, "Logged out")
	} else {
		fmt.Fprintln(w, "Not logged in")
	}
	return 0
}

// runWhoami shows the current session and returns exit code
func runWhoami(ctx context.Context, e *env, w io.Writer, verify bool) int {
	if !e.store.IsAuthenticated() {
		fmt.Fprintln(w, "Not logged in")
		return 1
	}

	if verify {
		if _, err := e.auth.Refresh(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return 2
			}
			return e.fail(w, err)
		}
	}

	snap := e.store.Snapshot()
	expiry := tokenExpiry(snap.Token)

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(sessionView{User: snap.Identity, ExpiresAt: expiry}, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}
	fmt.Fprintln(w, formatWhoami(snap.Identity, expiry, time.Now()))
	return 0
}

func formatWhoami(u *session.Identity, expiry *time.Time, now time.Time) string {
	out := fmt.Sprintf(`User:     %s
Username: %s
Role:     %s`, u.DisplayName, u.Username, u.Role)

	if expiry != nil {
		remaining := expiry.Sub(now).Round(time.Minute)
		if remaining > 0 {
			out += fmt.Sprintf("\nExpires:  %s (in %s)", expiry.Local().Format(time.RFC1123), remaining)
		} else {
			out += fmt.Sprintf("\nExpires:  %s (expired)", expiry.Local().Format(time.RFC1123))
		}
	}
	return out
}

// tokenExpiry reads the exp claim without verifying the signature.
// The client never holds the signing key; the backend remains the authority.
func tokenExpiry(token string) *time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}
