// ABOUTME: TUI command launching the interactive terminal dashboard
// ABOUTME: Shares the saved session with the CLI and logs to a file while running

package cmd

import (
	"fmt"
	"os"

	"github.com/markalston/inventory-requests/internal/logger"
	"github.com/markalston/inventory-requests/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

Employees browse items and manage their own requests; admins manage items and
approve or reject requests. Log messages go to debug.log in the config directory
so they do not disturb the screen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("the dashboard needs an interactive terminal")
		}

		level, format := "info", "text"
		if cfg != nil {
			level, format = cfg.LogLevel, cfg.LogFormat
		}
		logFile, err := logger.InitFile(GetConfigDir(), level, format)
		if err != nil {
			return err
		}
		defer logFile.Close()

		e, err := openEnv()
		if err != nil {
			return err
		}
		return tui.Run(e.store, e.api, e.auth, e.router)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
