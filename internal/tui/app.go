// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows the session store, routes to login or a dashboard, and drives API calls

package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/inventory-requests/internal/auth"
	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/guard"
	"github.com/markalston/inventory-requests/internal/session"
	"github.com/markalston/inventory-requests/internal/tui/forms"
	"github.com/markalston/inventory-requests/internal/tui/icons"
	"github.com/markalston/inventory-requests/internal/tui/styles"
	"github.com/markalston/inventory-requests/internal/tui/widgets"
	"golang.org/x/sync/errgroup"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenEmployee
	ScreenAdmin
)

// Tab selects the table shown on a dashboard
type Tab int

const (
	TabItems Tab = iota
	TabRequests
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	dateLayout       = "2006-01-02 15:04"
)

// API is the part of the backend client the TUI calls
type API interface {
	ListItems(ctx context.Context) ([]client.Item, error)
	CreateItem(ctx context.Context, item *client.Item) (*client.Item, error)
	UpdateItem(ctx context.Context, id int64, item *client.Item) (*client.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ListRequests(ctx context.Context) ([]client.Request, error)
	ListUserRequests(ctx context.Context, userID int64) ([]client.Request, error)
	CreateRequest(ctx context.Context, input *client.NewRequest) (*client.Request, error)
	ApproveRequest(ctx context.Context, id int64, comments string) (*client.Request, error)
	RejectRequest(ctx context.Context, id int64, comments string) (*client.Request, error)
	CancelRequest(ctx context.Context, id int64) (*client.Request, error)
}

// sessionChangedMsg carries a snapshot published by the session store
type sessionChangedMsg struct {
	snap session.Snapshot
}

// sessionClosedMsg is sent once the subscription is closed
type sessionClosedMsg struct{}

// loginDoneMsg is sent when a login attempt finishes
type loginDoneMsg struct {
	err error
}

// dataLoadedMsg is sent when dashboard data is loaded for userID
type dataLoadedMsg struct {
	userID   int64
	sent     session.Ticket
	items    []client.Item
	requests []client.Request
	err      error
}

// actionDoneMsg is sent when a mutating call made on behalf of userID finishes
type actionDoneMsg struct {
	userID int64
	sent   session.Ticket
	status string
	err    error
}

var (
	errSessionExpired = errors.New("your session expired, sign in again")
	errInvalidLogin   = errors.New("invalid username or password")
	errForbidden      = errors.New("you do not have permission to do that")
)

// App is the root model for the TUI
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	api    API
	auth   *auth.Client
	router *guard.Router
	sub    *session.Subscription

	screen    Screen
	route     guard.Route
	user      *session.Identity
	tab       Tab
	width     int
	height    int
	signingIn bool
	loading   bool
	status    string
	err       error

	lastUpdate time.Time
	items      []client.Item
	requests   []client.Request

	// Child models
	form          *forms.Form
	itemsTable    table.Model
	requestsTable table.Model
	keys          keyMap
	help          help.Model
}

// New creates a new TUI application over an existing session store
func New(store *session.Store, api API, authClient *auth.Client, router *guard.Router) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ctx:           ctx,
		cancel:        cancel,
		api:           api,
		auth:          authClient,
		router:        router,
		sub:           store.Subscribe(),
		screen:        ScreenLogin,
		route:         guard.Login,
		form:          forms.Login(),
		itemsTable:    newTable(),
		requestsTable: newTable(),
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.form.Init(), a.waitForSession())
}

// waitForSession delivers the next session snapshot as a message
func (a *App) waitForSession() tea.Cmd {
	sub := a.sub
	return func() tea.Msg {
		snap, ok := <-sub.C()
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionChangedMsg{snap: snap}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layoutTables()
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, a.quit()
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if a.screen == ScreenLogin {
			if key.Matches(msg, a.keys.Quit) {
				return a, a.quit()
			}
			return a, nil
		}
		return a.updateDashboard(msg)

	case sessionChangedMsg:
		return a, tea.Batch(a.applySession(msg.snap), a.waitForSession())

	case sessionClosedMsg:
		return a, nil

	case loginDoneMsg:
		a.signingIn = false
		if msg.err == nil || errors.Is(msg.err, auth.ErrSuperseded) {
			// The store publishes the winning session; sessionChangedMsg routes it
			return a, nil
		}
		if errors.Is(msg.err, auth.ErrInvalidCredentials) {
			a.err = errInvalidLogin
		} else {
			a.err = msg.err
		}
		if a.screen == ScreenLogin {
			a.form = forms.Login()
			return a, a.form.Init()
		}
		return a, nil

	case dataLoadedMsg:
		if !a.current(msg.userID) {
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			return a, a.handleError(msg.err, msg.sent)
		}
		a.items = msg.items
		a.requests = msg.requests
		a.lastUpdate = time.Now()
		a.layoutTables()
		return a, nil

	case actionDoneMsg:
		if !a.current(msg.userID) {
			return a, nil
		}
		if msg.err != nil {
			return a, a.handleError(msg.err, msg.sent)
		}
		a.status = msg.status
		a.err = nil
		return a, a.load()

	case forms.SubmittedMsg:
		return a.handleSubmitted(msg.Form)

	case forms.CancelledMsg:
		if msg.Kind == forms.KindLogin {
			return a, a.quit()
		}
		a.form = nil
		return a, nil

	default:
		// Forward unknown messages to the active form (needed for huh form internals)
		if a.form != nil {
			return a.updateForm(msg)
		}
	}

	return a, nil
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.form.Update(msg)
	a.form = model.(*forms.Form)
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, a.quit()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.Tab):
		if a.tab == TabItems {
			a.tab = TabRequests
		} else {
			a.tab = TabItems
		}
		a.status = ""
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		a.status = ""
		return a, a.load()
	case key.Matches(msg, a.keys.Logout):
		a.err = nil
		a.status = ""
		a.auth.Logout()
		return a, nil
	}

	if cmd, handled := a.handleAction(msg); handled {
		return a, cmd
	}

	// Everything else moves the cursor of the visible table
	var cmd tea.Cmd
	if a.tab == TabItems {
		a.itemsTable, cmd = a.itemsTable.Update(msg)
	} else {
		a.requestsTable, cmd = a.requestsTable.Update(msg)
	}
	return a, cmd
}

// handleAction opens the form or runs the call bound to msg on the current screen and tab
func (a *App) handleAction(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch a.screen {
	case ScreenEmployee:
		switch {
		case key.Matches(msg, a.keys.NewRequest):
			return a.openNewRequest(), true
		case a.tab == TabRequests && key.Matches(msg, a.keys.Cancel):
			req := a.selectedRequest()
			if req == nil {
				return nil, true
			}
			if !req.Pending() {
				a.status = fmt.Sprintf("Request #%d is %s and can no longer be cancelled", req.ID, req.Status)
				return nil, true
			}
			id := req.ID
			return a.run(func(ctx context.Context) (string, error) {
				if _, err := a.api.CancelRequest(ctx, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Request #%d cancelled", id), nil
			}), true
		}

	case ScreenAdmin:
		if a.tab == TabItems {
			return a.handleItemAction(msg)
		}
		if key.Matches(msg, a.keys.Approve) || key.Matches(msg, a.keys.Reject) {
			req := a.selectedRequest()
			if req == nil {
				return nil, true
			}
			if !req.Pending() {
				a.status = fmt.Sprintf("Request #%d was already %s", req.ID, strings.ToLower(string(req.Status)))
				return nil, true
			}
			if key.Matches(msg, a.keys.Approve) {
				return a.openForm(forms.Approve(*req)), true
			}
			return a.openForm(forms.Reject(*req)), true
		}
	}
	return nil, false
}

// handleItemAction covers the admin item keys
func (a *App) handleItemAction(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Add):
		return a.openForm(forms.AddItem()), true
	case key.Matches(msg, a.keys.Edit):
		if item := a.selectedItem(); item != nil {
			return a.openForm(forms.EditItem(*item)), true
		}
		return nil, true
	case key.Matches(msg, a.keys.Delete):
		if item := a.selectedItem(); item != nil {
			return a.openForm(forms.DeleteItem(*item)), true
		}
		return nil, true
	}
	return nil, false
}

func (a *App) openNewRequest() tea.Cmd {
	if len(a.items) == 0 {
		a.status = "No items available to request"
		return nil
	}
	var selected int64
	if a.tab == TabItems {
		if item := a.selectedItem(); item != nil {
			selected = item.ID
		}
	}
	return a.openForm(forms.NewRequest(a.items, selected))
}

func (a *App) openForm(f *forms.Form) tea.Cmd {
	a.form = f
	a.status = ""
	a.err = nil
	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	return tea.Batch(f.Init(), func() tea.Msg { return size })
}

// handleSubmitted runs the call a completed form asked for
func (a *App) handleSubmitted(f *forms.Form) (tea.Model, tea.Cmd) {
	a.form = nil

	if f.Kind() == forms.KindLogin {
		username, password := f.Credentials()
		a.signingIn = true
		a.err = nil
		return a, a.login(username, password)
	}
	if a.user == nil {
		return a, nil
	}

	id := f.Target()
	switch f.Kind() {
	case forms.KindNewRequest:
		input := f.RequestInput(a.user.ID)
		return a, a.run(func(ctx context.Context) (string, error) {
			created, err := a.api.CreateRequest(ctx, input)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Request #%d submitted for %s", created.ID, created.Item.Name), nil
		})

	case forms.KindAddItem:
		item := f.Item()
		return a, a.run(func(ctx context.Context) (string, error) {
			created, err := a.api.CreateItem(ctx, item)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added %s", created.Name), nil
		})

	case forms.KindEditItem:
		item := f.Item()
		return a, a.run(func(ctx context.Context) (string, error) {
			updated, err := a.api.UpdateItem(ctx, id, item)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Updated %s", updated.Name), nil
		})

	case forms.KindDeleteItem:
		if !f.Confirmed() {
			return a, nil
		}
		return a, a.run(func(ctx context.Context) (string, error) {
			if err := a.api.DeleteItem(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("Deleted item %d", id), nil
		})

	case forms.KindApprove:
		comments := f.Comments()
		return a, a.run(func(ctx context.Context) (string, error) {
			if _, err := a.api.ApproveRequest(ctx, id, comments); err != nil {
				return "", err
			}
			return fmt.Sprintf("Request #%d approved", id), nil
		})

	case forms.KindReject:
		comments := f.Comments()
		return a, a.run(func(ctx context.Context) (string, error) {
			if _, err := a.api.RejectRequest(ctx, id, comments); err != nil {
				return "", err
			}
			return fmt.Sprintf("Request #%d rejected", id), nil
		})
	}
	return a, nil
}

// applySession moves to the route the snapshot allows.
// A different user always starts from their landing dashboard.
func (a *App) applySession(snap session.Snapshot) tea.Cmd {
	prev := a.user
	a.user = snap.Identity
	switched := !sameUser(prev, snap.Identity)

	target := a.route
	if switched {
		target = guard.Landing(snap)
	}
	route, err := a.router.Resolve(target)
	if err != nil {
		a.err = err
		route = guard.Login
	}
	return a.enter(route, switched)
}

// enter shows route; reset discards everything loaded for the previous user
func (a *App) enter(route guard.Route, reset bool) tea.Cmd {
	changed := route != a.route
	a.route = route
	a.screen = screenFor(route)

	if reset || changed {
		a.items = nil
		a.requests = nil
		a.tab = TabItems
		a.status = ""
		a.loading = false
		a.lastUpdate = time.Time{}
		a.layoutTables()
	}

	if a.screen == ScreenLogin {
		if a.form == nil || a.form.Kind() != forms.KindLogin {
			a.form = forms.Login()
			return a.form.Init()
		}
		return nil
	}

	if !reset && !changed {
		return nil
	}
	a.form = nil
	a.err = nil
	return a.load()
}

func screenFor(route guard.Route) Screen {
	switch route {
	case guard.AdminDashboard:
		return ScreenAdmin
	case guard.EmployeeDashboard:
		return ScreenEmployee
	default:
		return ScreenLogin
	}
}

func sameUser(a, b *session.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Role == b.Role
}

// current reports whether a result produced for userID still applies
func (a *App) current(userID int64) bool {
	return a.user != nil && a.user.ID == userID
}

// handleError shows err; a rejected token signs the user out unless
// the session changed after the failed call was sent
func (a *App) handleError(err error, sent session.Ticket) tea.Cmd {
	a.loading = false
	a.status = ""
	switch {
	case a.auth.HandleError(err, sent):
		// The cleared snapshot arrives through the subscription
		a.err = errSessionExpired
	case errors.Is(err, client.ErrForbidden):
		a.err = errForbidden
	default:
		a.err = err
	}
	return nil
}

// login authenticates in the background
func (a *App) login(username, password string) tea.Cmd {
	ctx, authClient := a.ctx, a.auth
	return func() tea.Msg {
		_, err := authClient.Login(ctx, username, password)
		return loginDoneMsg{err: err}
	}
}

// load fetches items and requests for the dashboard concurrently
func (a *App) load() tea.Cmd {
	if a.user == nil || a.screen == ScreenLogin {
		return nil
	}
	a.loading = true

	ctx, api := a.ctx, a.api
	userID := a.user.ID
	allRequests := a.screen == ScreenAdmin
	sent := a.auth.Store().Mark()

	return func() tea.Msg {
		msg := dataLoadedMsg{userID: userID, sent: sent}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			items, err := api.ListItems(gctx)
			msg.items = items
			return err
		})
		g.Go(func() error {
			var (
				requests []client.Request
				err      error
			)
			if allRequests {
				requests, err = api.ListRequests(gctx)
			} else {
				requests, err = api.ListUserRequests(gctx, userID)
			}
			msg.requests = requests
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// run performs a mutating call in the background
func (a *App) run(action func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := a.ctx
	userID := a.user.ID
	sent := a.auth.Store().Mark()
	return func() tea.Msg {
		status, err := action(ctx)
		return actionDoneMsg{userID: userID, sent: sent, status: status, err: err}
	}
}

// quit abandons in-flight calls and stops following the session
func (a *App) quit() tea.Cmd {
	a.close()
	return tea.Quit
}

func (a *App) close() {
	a.cancel()
	a.sub.Close()
}

func (a *App) selectedItem() *client.Item {
	i := a.itemsTable.Cursor()
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return &a.items[i]
}

func (a *App) selectedRequest() *client.Request {
	i := a.requestsTable.Cursor()
	if i < 0 || i >= len(a.requests) {
		return nil
	}
	return &a.requests[i]
}

func newTable() table.Model {
	t := table.New(table.WithFocused(true), table.WithHeight(10))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Foreground(styles.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)
	return t
}

// layoutTables sizes both tables to the window and reloads their rows.
// Rows are cleared first so a column change never sees rows of the old shape.
func (a *App) layoutTables() {
	width := a.tablesWidth() - panelPadding
	height := max(3, a.contentHeight()-4)

	itemsCursor := a.itemsTable.Cursor()
	a.itemsTable.SetRows(nil)
	a.itemsTable.SetColumns(itemColumns(width))
	a.itemsTable.SetWidth(width)
	a.itemsTable.SetHeight(height)
	a.itemsTable.SetRows(itemRows(a.items))
	a.itemsTable.SetCursor(itemsCursor)

	withUser := a.screen == ScreenAdmin
	requestsCursor := a.requestsTable.Cursor()
	a.requestsTable.SetRows(nil)
	a.requestsTable.SetColumns(requestColumns(width, withUser))
	a.requestsTable.SetWidth(width)
	a.requestsTable.SetHeight(height)
	a.requestsTable.SetRows(requestRows(a.requests, withUser))
	a.requestsTable.SetCursor(requestsCursor)
}

func itemColumns(width int) []table.Column {
	fixed := 5 + 16 + 6
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 16},
		{Title: "Description", Width: max(10, width-fixed-8)},
		{Title: "Qty", Width: 6},
	}
}

func itemRows(items []client.Item) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			strconv.FormatInt(it.ID, 10),
			it.Name,
			it.Description,
			strconv.Itoa(it.Quantity),
		})
	}
	return rows
}

func requestColumns(width int, withUser bool) []table.Column {
	cols := []table.Column{{Title: "ID", Width: 5}}
	fixed := 5 + 14 + 5 + 10 + 16
	if withUser {
		cols = append(cols, table.Column{Title: "Employee", Width: 14})
		fixed += 14
	}
	cols = append(cols,
		table.Column{Title: "Item", Width: 14},
		table.Column{Title: "Qty", Width: 5},
		table.Column{Title: "Status", Width: 10},
		table.Column{Title: "Requested", Width: 16},
		table.Column{Title: "Reason", Width: max(10, width-fixed-len(cols)*2-4)},
	)
	return cols
}

func requestRows(requests []client.Request, withUser bool) []table.Row {
	rows := make([]table.Row, 0, len(requests))
	for _, r := range requests {
		row := table.Row{strconv.FormatInt(r.ID, 10)}
		if withUser {
			row = append(row, r.User.DisplayName)
		}
		row = append(row,
			r.Item.Name,
			strconv.Itoa(r.Quantity),
			string(r.Status),
			r.RequestDate.Local().Format(dateLayout),
			r.Reason,
		)
		rows = append(rows, row)
	}
	return rows
}

// bindings lists the keys that do something on the current screen and tab
func (a *App) bindings() []key.Binding {
	switch a.screen {
	case ScreenEmployee:
		b := []key.Binding{a.keys.Tab, a.keys.NewRequest}
		if a.tab == TabRequests {
			b = append(b, a.keys.Cancel)
		}
		return append(b, a.keys.Refresh, a.keys.Logout, a.keys.Quit)
	case ScreenAdmin:
		b := []key.Binding{a.keys.Tab}
		if a.tab == TabItems {
			b = append(b, a.keys.Add, a.keys.Edit, a.keys.Delete)
		} else {
			b = append(b, a.keys.Approve, a.keys.Reject)
		}
		return append(b, a.keys.Refresh, a.keys.Logout, a.keys.Quit)
	default:
		return nil
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch {
	case a.screen == ScreenLogin:
		content = a.viewLogin()
	case a.form != nil:
		content = styles.ActivePanel.Width(a.frameWidth() - panelPadding).Render(a.form.View())
	default:
		content = a.viewDashboard()
	}

	return a.wrapWithFrame(content)
}

// viewLogin renders the sign-in form
func (a *App) viewLogin() string {
	var body string
	switch {
	case a.signingIn:
		body = styles.Subtitle.Render("Signing in...")
	case a.form != nil:
		body = a.form.View()
	}
	switch {
	case errors.Is(a.err, errSessionExpired):
		body += "\n" + styles.StatusWarning.Render(icons.Logout.String()+" "+a.err.Error())
	case a.err != nil:
		body += "\n" + styles.StatusCritical.Render(icons.Warning.String()+" Error: "+a.err.Error())
	}
	return styles.ActivePanel.Width(min(60, a.frameWidth()-panelPadding)).Render(body)
}

// viewDashboard renders the tables with a details pane
func (a *App) viewDashboard() string {
	var left strings.Builder
	left.WriteString(a.renderTabs())
	left.WriteString("\n\n")
	switch {
	case a.loading && a.lastUpdate.IsZero():
		left.WriteString(lipgloss.NewStyle().Foreground(styles.Info).Render(icons.Refresh.String() + " Loading..."))
	case a.tab == TabItems:
		left.WriteString(a.itemsTable.View())
	default:
		left.WriteString(a.requestsTable.View())
	}
	leftPane := styles.ActivePanel.Width(a.tablesWidth()).Render(left.String())

	right := a.renderDetails() + "\n\n" + a.help.View(contextKeys(a.bindings()))
	rightPane := styles.Panel.Width(a.detailsWidth()).Render(right)

	var panes string
	if a.width < minTerminalWidth {
		panes = lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	} else {
		panes = lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	}

	switch {
	case a.err != nil:
		panes += "\n" + styles.StatusCritical.Render(" "+icons.Warning.String()+" Error: "+a.err.Error())
	case a.status != "":
		panes += "\n" + styles.StatusOK.Render(" "+a.status)
	}
	return panes
}

func (a *App) renderTabs() string {
	requestsLabel := "My Requests"
	if a.screen == ScreenAdmin {
		requestsLabel = "All Requests"
	}
	labels := []string{
		icons.Item.String() + " Items",
		icons.Request.String() + " " + requestsLabel,
	}

	rendered := make([]string, len(labels))
	for i, label := range labels {
		if Tab(i) == a.tab {
			rendered[i] = styles.ActiveTab.Render(label)
		} else {
			rendered[i] = styles.InactiveTab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered[0], " ", rendered[1])
}

// renderDetails describes the selected row
func (a *App) renderDetails() string {
	label := func(s string) string { return styles.Label.Render(fmt.Sprintf("%-10s", s)) }

	if a.tab == TabItems {
		item := a.selectedItem()
		if item == nil {
			return styles.Subtitle.Render("No items.")
		}
		return strings.Join([]string{
			styles.Title.Render(icons.Item.String() + " " + item.Name),
			item.Description,
			"",
			label("Stock") + widgets.StatusText(fmt.Sprintf("%d available", item.Quantity), widgets.StockLevel(item.Quantity)),
		}, "\n")
	}

	req := a.selectedRequest()
	if req == nil {
		return styles.Subtitle.Render("No requests.")
	}
	lines := []string{
		styles.Title.Render(fmt.Sprintf("%s Request #%d", icons.Request.String(), req.ID)),
		label("Status") + widgets.RequestBadge(req.Status),
	}
	if a.screen == ScreenAdmin {
		lines = append(lines, label("Employee")+styles.ValueStyle.Render(req.User.DisplayName))
	}
	lines = append(lines,
		label("Item")+fmt.Sprintf("%s x%d", req.Item.Name, req.Quantity),
		label("Reason")+req.Reason,
		label("Requested")+a.formatTimeSince(req.RequestDate.Time),
	)
	if req.ResponseDate != nil {
		lines = append(lines, label("Decided")+a.formatTimeSince(req.ResponseDate.Time))
	}
	if req.AdminComments != "" {
		lines = append(lines, label("Comments")+req.AdminComments)
	}
	return strings.Join(lines, "\n")
}

// frameWidth is the header and footer width; one column short of the terminal
// to prevent wrapping, never narrower than minTerminalWidth
func (a *App) frameWidth() int {
	return max(minTerminalWidth, a.width-1)
}

// tablesWidth calculates the width for the table pane
func (a *App) tablesWidth() int {
	if a.width < minTerminalWidth {
		return max(minTerminalWidth, a.width) - panelPadding
	}
	return (a.width - panelPadding) * 2 / 3
}

// detailsWidth calculates the width for the details pane
func (a *App) detailsWidth() int {
	if a.width < minTerminalWidth {
		return a.tablesWidth()
	}
	return a.width - a.tablesWidth() - 4
}

// contentHeight calculates the height available for table content
func (a *App) contentHeight() int {
	// Total overhead:
	// - Header: 1 line
	// - Newline after header: 1 line
	// - ActivePanel border+padding: 4 lines
	// - Status line and newline before footer: 2 lines
	// - Footer: 1 line
	return a.height - 9
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("Inventory Requests"))

	rightText := ""
	if a.user != nil && a.screen != ScreenLogin {
		icon := icons.User
		if a.user.IsAdmin() {
			icon = icons.Admin
		}
		rightText = contextStyle.Render(fmt.Sprintf("%s %s (%s)", icon.String(), a.user.DisplayName, a.user.Role)) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts [][2]string
	switch {
	case a.form != nil:
		shortcuts = [][2]string{{"Tab", "Next"}, {"Enter", "Confirm"}, {"Esc", "Cancel"}}
	case a.screen == ScreenLogin:
		shortcuts = [][2]string{{"Enter", "Sign in"}, {"Esc", "Quit"}}
	default:
		for _, b := range a.bindings() {
			h := b.Help()
			shortcuts = append(shortcuts, [2]string{h.Key, h.Desc})
		}
		shortcuts = append(shortcuts, [2]string{a.keys.Help.Help().Key, a.keys.Help.Help().Desc})
	}

	var styled, plain []string
	for _, s := range shortcuts {
		styled = append(styled, keyStyle.Render(s[0])+" "+labelStyle.Render(s[1]))
		plain = append(plain, s[0]+" "+s[1])
	}
	leftText := " " + strings.Join(styled, "  ")
	leftPlainText := " " + strings.Join(plain, "  ")

	// Right side status (last update time)
	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen != ScreenLogin && a.form == nil {
		elapsed := a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	if width-4-leftWidth-rightWidth < 0 {
		// Shortcuts win over the update time on narrow terminals
		rightText, rightWidth = "", 0
	}
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	}

	if d < 48*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	}

	return t.Local().Format(dateLayout)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(store *session.Store, api API, authClient *auth.Client, router *guard.Router) error {
	app := New(store, api, authClient, router)
	defer app.close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
