// ABOUTME: Request workflow commands for the inventory CLI
// ABOUTME: Employees create and cancel their requests; admins list, approve and reject

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/guard"
	"github.com/spf13/cobra"
)

var (
	requestsStatus   string
	requestItemID    int64
	requestQuantity  int
	requestReason    string
	decisionComments string
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Create and manage item requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every request (admin)",
	Run: func(cmd *cobra.Command, args []string) {
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsList(ctx, e, os.Stdout, requestsStatus)
		})
	},
}

var requestsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own requests",
	Run: func(cmd *cobra.Command, args []string) {
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsMine(ctx, e, os.Stdout, requestsStatus)
		})
	},
}

var requestsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request an item",
	Long: `Request an item from stock.

Example:
  inventory requests create --item 2 --quantity 1 --reason "keyboard stopped working"`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsCreate(ctx, e, os.Stdout, requestItemID, requestQuantity, requestReason)
		})
	},
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve ID",
	Short: "Approve a pending request (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsDecide(ctx, e, os.Stdout, id, true, decisionComments)
		})
	},
}

var requestsRejectCmd = &cobra.Command{
	Use:   "reject ID",
	Short: "Reject a pending request (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsDecide(ctx, e, os.Stdout, id, false, decisionComments)
		})
	},
}

var requestsCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel one of your pending requests",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustID(args[0])
		runWithEnv(func(ctx context.Context, e *env) int {
			return runRequestsCancel(ctx, e, os.Stdout, id)
		})
	},
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(requestsListCmd, requestsMineCmd, requestsCreateCmd,
		requestsApproveCmd, requestsRejectCmd, requestsCancelCmd)

	for _, c := range []*cobra.Command{requestsListCmd, requestsMineCmd} {
		c.Flags().StringVar(&requestsStatus, "status", "", "Only show requests with this status (pending, approved, rejected, cancelled)")
	}

	requestsCreateCmd.Flags().Int64Var(&requestItemID, "item", 0, "Item ID")
	requestsCreateCmd.Flags().IntVar(&requestQuantity, "quantity", 1, "Quantity")
	requestsCreateCmd.Flags().StringVar(&requestReason, "reason", "", "Why you need it")
	requestsCreateCmd.MarkFlagRequired("item")
	requestsCreateCmd.MarkFlagRequired("reason")

	requestsApproveCmd.Flags().StringVar(&decisionComments, "comment", "", "Optional note for the employee")
	requestsRejectCmd.Flags().StringVar(&decisionComments, "reason", "", "Why the request is rejected (required)")
}

// filterStatus keeps requests whose status matches; empty keeps all
func filterStatus(requests []client.Request, status string) ([]client.Request, error) {
	if status == "" {
		return requests, nil
	}
	want := client.Status(strings.ToUpper(status))
	switch want {
	case client.StatusPending, client.StatusApproved, client.StatusRejected, client.StatusCancelled:
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}
	out := make([]client.Request, 0, len(requests))
	for _, r := range requests {
		if r.Status == want {
			out = append(out, r)
		}
	}
	return out, nil
}

func runRequestsList(ctx context.Context, e *env, w io.Writer, status string) int {
	if !e.authorize(guard.AdminDashboard, w) {
		return 1
	}
	requests, err := e.api.ListRequests(ctx)
	if err != nil {
		return e.fail(w, err)
	}
	return printRequests(w, requests, status, true)
}

func runRequestsMine(ctx context.Context, e *env, w io.Writer, status string) int {
	if !e.authorize(guard.EmployeeDashboard, w) {
		return 1
	}
	requests, err := e.api.ListUserRequests(ctx, e.store.CurrentIdentity().ID)
	if err != nil {
		return e.fail(w, err)
	}
	return printRequests(w, requests, status, false)
}

func printRequests(w io.Writer, requests []client.Request, status string, withUser bool) int {
	requests, err := filterStatus(requests, status)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if IsJSONOutput() {
		writeJSON(w, requests)
	} else {
		fmt.Fprintln(w, formatRequestsTable(requests, withUser))
	}
	return 0
}

func runRequestsCreate(ctx context.Context, e *env, w io.Writer, itemID int64, quantity int, reason string) int {
	if !e.authorize(guard.EmployeeDashboard, w) {
		return 1
	}
	created, err := e.api.CreateRequest(ctx, &client.NewRequest{
		UserID:   e.store.CurrentIdentity().ID,
		ItemID:   itemID,
		Quantity: quantity,
		Reason:   strings.TrimSpace(reason),
	})
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, created)
	} else {
		fmt.Fprintln(w, formatRequest(created))
	}
	return 0
}

func runRequestsDecide(ctx context.Context, e *env, w io.Writer, id int64, approve bool, comments string) int {
	if !e.authorize(guard.AdminDashboard, w) {
		return 1
	}

	var (
		updated *client.Request
		err     error
	)
	if approve {
		updated, err = e.api.ApproveRequest(ctx, id, comments)
	} else {
		updated, err = e.api.RejectRequest(ctx, id, comments)
	}
	if err != nil {
		return e.fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, updated)
	} else {
		fmt.Fprintln(w, formatRequest(updated))
	}
	return 0
}

func runRequestsCancel(ctx context.Context, e *env, w io.Writer, id int64) int {
	if !e.authorize(guard.EmployeeDashboard, w) {
		return 1
	}
	updated, err := e.api.CancelRequest(ctx, id)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		writeJSON(w, updated)
	} else {
		fmt.Fprintln(w, formatRequest(updated))
	}
	return 0
}
