// ABOUTME: Item commands for the inventory CLI
// ABOUTME: List and show stock for any user; add, update and delete for admins

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/guard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	itemName        string
	itemDescription string
	itemQuantity    int
	itemDeleteYes   bool
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List and manage stock items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all items",
	Run: func(cmd *cobra.Command, args []string) {
		runWithEnv(func(ctx context.Context, e *env) int {
			return runItemsList(ctx, e, os.Stdout)
		})
	},
}

var itemsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one item",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		runWithEnv(func(ctx context.Context, e *env) int {
			return runItemsGet(ctx, e, os.Stdout, id)
		})
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item (admin)",
	Long: `Add a new stock item. Requires the ADMIN role.

Example:
  inventory items add --name Webcam --description "1080p webcam" --quantity 8`,
	Run: func(cmd *cobra.Command, args []string) {
		item := &client.Item{Name: itemName, Description: itemDescription, Quantity: itemQuantity}
		runWithEnv(func(ctx context.Context, e *env) int {
			return runItemsAdd(ctx, e, os.Stdout, item)
		})
	},
}

var itemsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an item (admin)",
	Long: `Update an existing item. Only the flags you pass are changed. Requires the ADMIN role.

Example:
  inventory items update 3 --quantity 40`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		changes := itemChanges{}
		if cmd.Flags().Changed("name") {
			changes.name = &itemName
		}
		if cmd.Flags().Changed("description") {
			changes.description = &itemDescription
		}
		if cmd.Flags().Changed("quantity") {
			changes.quantity = &itemQuantity
		}
		runWithEnv(func(ctx context.Context, e *env) int {
			return runItemsUpdate(ctx, e, os.Stdout, id, changes)
		})
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an item (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		if !itemDeleteYes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprintln(os.Stdout, "Error: refusing to delete without --yes")
				os.Exit(2)
			}
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Delete item %d?", id)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil || !confirmed {
				fmt.Fprintln(os.Stdout, "Cancelled")
				return
			}
		}
		runWithEnv(func(ctx context.Context, e *env) int {
			return runItemsDelete(ctx, e, os.Stdout, id)
		})
	},
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd, itemsGetCmd, itemsAddCmd, itemsUpdateCmd, itemsDeleteCmd)

	for _, c := range []*cobra.Command{itemsAddCmd, itemsUpdateCmd} {
		c.Flags().StringVar(&itemName, "name", "", "Item name")
		c.Flags().StringVar(&itemDescription, "description", "", "Item description")
		c.Flags().IntVar(&itemQuantity, "quantity", 0, "Quantity in stock")
	}
	itemsAddCmd.MarkFlagRequired("name")
	itemsDeleteCmd.Flags().BoolVarP(&itemDeleteYes, "yes", "y", false, "Skip confirmation")
}

// runWithEnv wires signal handling and the session environment around run
func runWithEnv(run func(ctx context.Context, e *env) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(2)
	}
	if code := run(ctx, e); code != 0 {
		cancel()
		os.Exit(code)
	}
}

func mustID(arg string) int64 {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(2)
	}
	return id
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func runItemsList(ctx context.Context, e *env, w io.Writer) int {
	if !e.authorize(guard.EmployeeDashboard, w) {
		return 1
	}
	items, err := e.api.ListItems(ctx)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, items)
	} else {
		fmt.Fprintln(w, formatItemsTable(items))
	}
	return 0
}

func runItemsGet(ctx context.Context, e *env, w io.Writer, id int64) int {
	if !e.authorize(guard.EmployeeDashboard, w) {
		return 1
	}
	item, err := e.api.GetItem(ctx, id)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, item)
	} else {
		fmt.Fprintln(w, formatItem(item))
	}
	return 0
}

func runItemsAdd(ctx context.Context, e *env, w io.Writer, item *client.Item) int {
	if !e.authorize(guard.AdminDashboard, w) {
		return 1
	}
	created, err := e.api.CreateItem(ctx, item)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, created)
	} else {
		fmt.Fprintf(w, "Added item %d: %s (%d in stock)\n", created.ID, created.Name, created.Quantity)
	}
	return 0
}

// itemChanges holds only the fields the user asked to change
type itemChanges struct {
	name        *string
	description *string
	quantity    *int
}

func (c itemChanges) apply(it *client.Item) {
	if c.name != nil {
		it.Name = *c.name
	}
	if c.description != nil {
		it.Description = *c.description
	}
	if c.quantity != nil {
		it.Quantity = *c.quantity
	}
}

func runItemsUpdate(ctx context.Context, e *env, w io.Writer, id int64, changes itemChanges) int {
	if !e.authorize(guard.AdminDashboard, w) {
		return 1
	}
	current, err := e.api.GetItem(ctx, id)
	if err != nil {
		return e.fail(w, err)
	}
	changes.apply(current)

	updated, err := e.api.UpdateItem(ctx, id, current)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, updated)
	} else {
		fmt.Fprintf(w, "Updated item %d: %s (%d in stock)\n", updated.ID, updated.Name, updated.Quantity)
	}
	return 0
}

func runItemsDelete(ctx context.Context, e *env, w io.Writer, id int64) int {
	if !e.authorize(guard.AdminDashboard, w) {
		return 1
	}
	if err := e.api.DeleteItem(ctx, id); err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, map[string]any{"deleted": id})
	} else {
		fmt.Fprintf(w, "Deleted item %d\n", id)
	}
	return 0
}
