// ABOUTME: Shared human and JSON output helpers for CLI commands
// ABOUTME: Renders items and requests as bordered tables or indented JSON

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/markalston/inventory-requests/internal/client"
)

const dateLayout = "2006-01-02 15:04"

func writeJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func formatItemsTable(items []client.Item) string {
	if len(items) == 0 {
		return "No items."
	}
	t := newTable("ID", "NAME", "DESCRIPTION", "QTY")
	for _, it := range items {
		t.Row(strconv.FormatInt(it.ID, 10), it.Name, it.Description, strconv.Itoa(it.Quantity))
	}
	return t.String()
}

func formatItem(it *client.Item) string {
	return fmt.Sprintf(`ID:          %d
Name:        %s
Description: %s
Quantity:    %d`, it.ID, it.Name, it.Description, it.Quantity)
}

// formatRequestsTable renders requests; withUser adds the requesting employee
func formatRequestsTable(requests []client.Request, withUser bool) string {
	if len(requests) == 0 {
		return "No requests."
	}
	headers := []string{"ID", "ITEM", "QTY", "REASON", "STATUS", "REQUESTED", "COMMENTS"}
	if withUser {
		headers = append([]string{headers[0], "EMPLOYEE"}, headers[1:]...)
	}
	t := newTable(headers...)
	for _, r := range requests {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Item.Name,
			strconv.Itoa(r.Quantity),
			r.Reason,
			string(r.Status),
			r.RequestDate.Format(dateLayout),
			r.AdminComments,
		}
		if withUser {
			row = append([]string{row[0], r.User.DisplayName}, row[1:]...)
		}
		t.Row(row...)
	}
	return t.String()
}

func formatRequest(r *client.Request) string {
	out := fmt.Sprintf(`Request:  #%d
Item:     %s x%d
Reason:   %s
Status:   %s
Created:  %s`, r.ID, r.Item.Name, r.Quantity, r.Reason, r.Status, r.RequestDate.Format(dateLayout))
	if r.ResponseDate != nil {
		out += "\nDecided:  " + r.ResponseDate.Format(dateLayout)
	}
	if r.AdminComments != "" {
		out += "\nComments: " + r.AdminComments
	}
	return out
}
