// ABOUTME: Entry point for the inventory CLI
// ABOUTME: Command-line and terminal UI client for the inventory request system

package main

import (
	"fmt"
	"os"

	"github.com/markalston/inventory-requests/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
