// ABOUTME: Root command for the inventory CLI
// ABOUTME: Handles global flags, configuration and the shared session environment

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/markalston/inventory-requests/internal/auth"
	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/config"
	"github.com/markalston/inventory-requests/internal/guard"
	"github.com/markalston/inventory-requests/internal/logger"
	"github.com/markalston/inventory-requests/internal/session"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
	noPersist  bool

	cfg *config.Config
)

const defaultAPIURL = "http://localhost:8080"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "CLI for the inventory request system",
	Long: `inventory is a command-line and terminal UI client for the inventory request system.

Employees request items from stock; admins approve or reject requests and manage items.
Your session is saved in the config directory and reused until the backend rejects it.

Environment Variables:
  INVENTORY_API_URL       Backend API URL (default: http://localhost:8080)
  INVENTORY_CONFIG_DIR    Session and log directory (default: ~/.config/inventory)
  INVENTORY_HTTP_TIMEOUT  Request timeout in seconds (default: 30)
  LOG_LEVEL               debug, info, warn, error (default: info)
  LOG_FORMAT              text, json (default: text)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		// The TUI redirects logging to a file once it knows the config dir
		logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides INVENTORY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the saved session (overrides INVENTORY_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "Keep the session in memory only")
}

// GetAPIURL returns the API URL from flag, config/env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if cfg != nil {
		return cfg.APIURL
	}
	if envURL := os.Getenv("INVENTORY_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// GetConfigDir returns the config directory from flag, config/env, or the XDG default
func GetConfigDir() string {
	if configDir != "" {
		return configDir
	}
	if cfg != nil {
		return cfg.ConfigDir
	}
	if envDir := os.Getenv("INVENTORY_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	return config.DefaultConfigDir()
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// env bundles the session store and everything that reads or writes it
type env struct {
	store  *session.Store
	api    *client.Client
	auth   *auth.Client
	router *guard.Router
	// restored marks the session the command's calls are sent with
	restored session.Ticket
}

// openEnv restores the saved session and wires an API client that sends its token
func openEnv() (*env, error) {
	var storage session.Storage
	if !noPersist {
		storage = session.NewFileStorage(GetConfigDir())
	}
	store := session.NewStore(storage)
	if _, err := store.Restore(); err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithTokenSource(store)}
	if cfg != nil {
		opts = append(opts, client.WithTimeout(cfg.Timeout()))
	}
	api := client.New(GetAPIURL(), opts...)

	return &env{
		store:    store,
		api:      api,
		auth:     auth.New(store, api),
		router:   guard.NewRouter(store),
		restored: store.Mark(),
	}, nil
}

// authorize runs the route guards for route and explains a denial on w
func (e *env) authorize(route guard.Route, w io.Writer) bool {
	d := e.router.Check(route)
	if d.Allowed {
		return true
	}
	if d.Redirect == guard.Login {
		fmt.Fprintln(w, "Error: not logged in; run 'inventory login' first")
	} else {
		fmt.Fprintln(w, "Error: this command requires the ADMIN role")
	}
	return false
}

// fail reports err on w and maps it to an exit code.
// A rejected token also clears the saved session.
func (e *env) fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	switch {
	case errors.Is(err, client.ErrUnauthenticated):
		if e.auth.HandleError(err, e.restored) {
			fmt.Fprintln(w, "Your session is no longer valid; run 'inventory login' again")
		}
		return 1
	case errors.Is(err, client.ErrForbidden), errors.Is(err, client.ErrInvalidCredentials):
		return 1
	}
	return 2
}
