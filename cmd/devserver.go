// ABOUTME: Dev-server command running the in-memory inventory API
// ABOUTME: Lets the CLI and TUI be exercised locally without the production backend

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markalston/inventory-requests/internal/devapi"
	"github.com/spf13/cobra"
)

var devAddr string

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory development API",
	Long: `Run an in-memory implementation of the inventory API for local development.

Seeded accounts: admin/admin123 (ADMIN), john/john123 and jane/jane123 (EMPLOYEE).
Data is lost when the server stops.

Environment Variables:
  INVENTORY_DEV_ADDR       Listen address (default: :8080)
  INVENTORY_DEV_SECRET     Token signing key, 32+ characters (default: random per run)
  INVENTORY_DEV_TOKEN_TTL  Token lifetime in hours (default: 24)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		addr := devAddr
		opts := devapi.Options{}
		if cfg != nil {
			if addr == "" {
				addr = cfg.DevAddr
			}
			opts.Secret = cfg.DevSecret
			opts.TokenTTL = cfg.TokenTTL()
		}
		if addr == "" {
			addr = ":8080"
		}
		return runDevServer(ctx, addr, opts)
	},
}

func init() {
	rootCmd.AddCommand(devServerCmd)
	devServerCmd.Flags().StringVar(&devAddr, "addr", "", "Listen address (overrides INVENTORY_DEV_ADDR)")
}

func runDevServer(ctx context.Context, addr string, opts devapi.Options) error {
	srv, err := devapi.New(opts)
	if err != nil {
		return err
	}
	if opts.Secret == "" {
		fmt.Fprintln(os.Stderr, "Using a random signing key; tokens will not survive a restart")
	}
	start := time.Now()
	err = srv.ListenAndServe(ctx, addr)
	fmt.Fprintf(os.Stderr, "Dev server stopped after %s\n", time.Since(start).Round(time.Second))
	return err
}
