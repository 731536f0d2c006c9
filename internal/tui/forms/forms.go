// ABOUTME: Modal huh forms for signing in, requesting items and admin decisions
// ABOUTME: Each form is a bubbletea model that reports completion through messages

package forms

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/inventory-requests/internal/client"
	"github.com/markalston/inventory-requests/internal/tui/icons"
	"github.com/markalston/inventory-requests/internal/tui/styles"
)

// Kind identifies what a form collects
type Kind int

const (
	KindLogin Kind = iota
	KindNewRequest
	KindAddItem
	KindEditItem
	KindDeleteItem
	KindApprove
	KindReject
)

// SubmittedMsg is sent when a form completes
type SubmittedMsg struct {
	Form *Form
}

// CancelledMsg is sent when a form is dismissed with Esc
type CancelledMsg struct {
	Kind Kind
}

// Form wraps a huh form as a bubbletea model
type Form struct {
	kind   Kind
	title  string
	form   *huh.Form
	target int64

	// Field values (strings for huh inputs)
	username    string
	password    string
	itemID      int64
	name        string
	description string
	quantity    string
	reason      string
	comments    string
	confirmed   bool
}

// theme returns the huh theme shared by every form
func theme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")      // Cyan-500 - primary
	cyanLight := lipgloss.Color("#22D3EE") // Cyan-400 - accents
	blue := lipgloss.Color("#3B82F6")      // Blue-500 - buttons
	gray := lipgloss.Color("#9CA3AF")      // Gray-400 - muted
	grayLight := lipgloss.Color("#E5E7EB") // Gray-200 - text
	red := lipgloss.Color("#F87171")       // Red-400 - errors
	slate := lipgloss.Color("#334155")     // Slate-700 - borders

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(cyan).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// Login asks for username and password
func Login() *Form {
	f := &Form{kind: KindLogin, title: "Sign in"}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&f.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(required("password")),
		).Description("Use your inventory account. Press Enter to continue."),
	).WithTheme(theme())
	return f
}

// NewRequest asks which item to request, how many and why.
// selected preselects an item; 0 picks the first.
func NewRequest(items []client.Item, selected int64) *Form {
	f := &Form{kind: KindNewRequest, title: "New request", itemID: selected, quantity: "1"}
	if f.itemID == 0 && len(items) > 0 {
		f.itemID = items[0].ID
	}

	options := make([]huh.Option[int64], 0, len(items))
	for _, it := range items {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d in stock)", it.Name, it.Quantity), it.ID))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Item").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(options...).
				Value(&f.itemID),
			huh.NewInput().
				Title("Quantity").
				CharLimit(5).
				Value(&f.quantity).
				Validate(validatePositiveInt),
			huh.NewText().
				Title("Reason").
				Description("Why do you need it?").
				CharLimit(500).
				Value(&f.reason).
				Validate(required("reason")),
		),
	).WithTheme(theme())
	return f
}

// AddItem collects a new stock item
func AddItem() *Form {
	f := &Form{kind: KindAddItem, title: "Add item", quantity: "0"}
	f.form = f.itemForm()
	return f
}

// EditItem edits an existing item, prefilled with its current values
func EditItem(item client.Item) *Form {
	f := &Form{
		kind:        KindEditItem,
		title:       fmt.Sprintf("Edit %s", item.Name),
		target:      item.ID,
		name:        item.Name,
		description: item.Description,
		quantity:    strconv.Itoa(item.Quantity),
	}
	f.form = f.itemForm()
	return f
}

func (f *Form) itemForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(required("name")),
			huh.NewInput().
				Title("Description").
				Value(&f.description),
			huh.NewInput().
				Title("Quantity").
				Description("Units in stock").
				CharLimit(6).
				Value(&f.quantity).
				Validate(validateNonNegativeInt),
		),
	).WithTheme(theme())
}

// DeleteItem confirms removing an item
func DeleteItem(item client.Item) *Form {
	f := &Form{kind: KindDeleteItem, title: "Delete item", target: item.ID}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", item.Name)).
				Description("This cannot be undone").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&f.confirmed),
		),
	).WithTheme(theme())
	return f
}

// Approve collects optional comments for approving req
func Approve(req client.Request) *Form {
	f := &Form{kind: KindApprove, title: fmt.Sprintf("Approve request #%d", req.ID), target: req.ID}
	f.form = f.decisionForm(req, "Comments", "Optional note for the employee", nil)
	return f
}

// Reject collects the mandatory reason for rejecting req
func Reject(req client.Request) *Form {
	f := &Form{kind: KindReject, title: fmt.Sprintf("Reject request #%d", req.ID), target: req.ID}
	f.form = f.decisionForm(req, "Reason", "Tell the employee why", required("reason"))
	return f
}

func (f *Form) decisionForm(req client.Request, title, description string, validate func(string) error) *huh.Form {
	comments := huh.NewText().
		Title(title).
		Description(description).
		CharLimit(500).
		Value(&f.comments)
	if validate != nil {
		comments = comments.Validate(validate)
	}

	return huh.NewForm(
		huh.NewGroup(comments).
			Description(fmt.Sprintf("%s x%d for %s: %s", req.Item.Name, req.Quantity, req.User.DisplayName, req.Reason)),
	).WithTheme(theme())
}

// Kind reports what the form collects
func (f *Form) Kind() Kind {
	return f.kind
}

// Target is the item or request ID the form acts on; 0 for none
func (f *Form) Target() int64 {
	return f.target
}

// Credentials returns the entered username (trimmed) and password
func (f *Form) Credentials() (username, password string) {
	return strings.TrimSpace(f.username), f.password
}

// RequestInput builds the create-request payload for userID
func (f *Form) RequestInput(userID int64) *client.NewRequest {
	qty, _ := strconv.Atoi(strings.TrimSpace(f.quantity))
	return &client.NewRequest{
		UserID:   userID,
		ItemID:   f.itemID,
		Quantity: qty,
		Reason:   strings.TrimSpace(f.reason),
	}
}

// Item returns the added or edited item
func (f *Form) Item() *client.Item {
	qty, _ := strconv.Atoi(strings.TrimSpace(f.quantity))
	return &client.Item{
		ID:          f.target,
		Name:        strings.TrimSpace(f.name),
		Description: strings.TrimSpace(f.description),
		Quantity:    qty,
	}
}

// Comments returns the approve or reject comments
func (f *Form) Comments() string {
	return strings.TrimSpace(f.comments)
}

// Confirmed reports whether a delete was confirmed
func (f *Form) Confirmed() bool {
	return f.confirmed
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return f, f.cancelled()
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f, func() tea.Msg { return SubmittedMsg{Form: f} }
	case huh.StateAborted:
		return f, f.cancelled()
	}
	return f, cmd
}

func (f *Form) cancelled() tea.Cmd {
	kind := f.kind
	return func() tea.Msg { return CancelledMsg{Kind: kind} }
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(f.icon().String() + " " + f.title))
	sb.WriteString("\n")
	sb.WriteString(f.form.View())
	return sb.String()
}

func (f *Form) icon() icons.Icon {
	switch f.kind {
	case KindLogin:
		return icons.User
	case KindNewRequest:
		return icons.Request
	case KindAddItem:
		return icons.Add
	case KindEditItem:
		return icons.Edit
	case KindDeleteItem:
		return icons.Delete
	case KindApprove:
		return icons.CheckOK
	default:
		return icons.Critical
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("must be zero or more")
	}
	return nil
}
