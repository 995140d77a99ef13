package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/audit"
	"github.com/smileynet/rolodex/internal/batch"
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/phonebook"
)

// chromeHeight is the number of lines reserved around the contact table:
// title, status line, help bar, and table borders.
const chromeHeight = 6

// Saver persists the book after each mutation. Implemented by store.FileStore.
type Saver interface {
	Save(contacts []contact.Contact) error
}

// Options configures the menu model.
type Options struct {
	Book    *phonebook.Book
	Saver   Saver
	Batch   *batch.Runner
	Log     *audit.Logger
	DataDir string
}

// Model is the root Bubble Tea model for the interactive menu.
type Model struct {
	book    *phonebook.Book
	saver   Saver
	batch   *batch.Runner
	log     *audit.Logger
	dataDir string

	mode       Mode
	table      table.Model
	form       contactForm
	prompt     textinput.Model
	promptFor  promptKind
	confirming string // Full name pending delete confirmation.
	viewport   viewport.Model
	viewTitle  string
	help       help.Model
	browseKeys browseKeys
	viewKeys   viewKeys

	status    string
	statusErr bool
	width     int
	height    int
}

// NewModel creates the menu model in browse mode.
func NewModel(opts Options) Model {
	tbl := table.New(
		table.WithColumns(contactColumns(76)),
		table.WithFocused(true),
	)

	m := Model{
		book:       opts.Book,
		saver:      opts.Saver,
		batch:      opts.Batch,
		log:        opts.Log,
		dataDir:    opts.DataDir,
		mode:       ModeBrowse,
		table:      tbl,
		viewport:   viewport.New(0, 0),
		help:       help.New(),
		browseKeys: newBrowseKeys(),
		viewKeys:   newViewKeys(),
	}
	m.refreshRows()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(contactColumns(msg.Width - 4))
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		m.viewport.Width = max(msg.Width-2, 0)
		m.viewport.Height = max(msg.Height-4, 3)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeForm:
			return m.updateForm(msg)
		case ModePrompt:
			return m.updatePrompt(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeView:
			return m.updateView(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.browseKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.browseKeys.Add):
		m.form = newContactForm("", contact.Fields{})
		m.mode = ModeForm
		return m, textinput.Blink

	case key.Matches(msg, m.browseKeys.Edit):
		c, ok := m.selected()
		if !ok {
			return m.fail("no contact selected"), nil
		}
		m.form = newContactForm(c.FullName(), contact.Fields{})
		m.mode = ModeForm
		return m, textinput.Blink

	case key.Matches(msg, m.browseKeys.Delete):
		c, ok := m.selected()
		if !ok {
			return m.fail("no contact selected"), nil
		}
		m.confirming = c.FullName()
		m.mode = ModeConfirm
		return m, nil

	case key.Matches(msg, m.browseKeys.Search):
		return m.openPrompt(promptSearch), textinput.Blink
	case key.Matches(msg, m.browseKeys.Import):
		return m.openPrompt(promptImport), textinput.Blink
	case key.Matches(msg, m.browseKeys.Remove):
		return m.openPrompt(promptBatchDelete), textinput.Blink
	case key.Matches(msg, m.browseKeys.Export):
		return m.openPrompt(promptExport), textinput.Blink

	case key.Matches(msg, m.browseKeys.Sort):
		return m.runSort(phonebook.SortAlphabetical), nil
	case key.Matches(msg, m.browseKeys.Group):
		return m.runSort(phonebook.SortGroup), nil

	case key.Matches(msg, m.browseKeys.History):
		c, ok := m.selected()
		if !ok {
			return m.fail("no contact selected"), nil
		}
		return m.openView("Update history for "+c.FullName(), renderHistory(c)), nil

	case key.Matches(msg, m.browseKeys.Log):
		lines, err := m.log.Read()
		if err != nil {
			return m.fail(err.Error()), nil
		}
		body := "No operations recorded yet."
		if len(lines) > 0 {
			body = strings.Join(lines, "\n")
		}
		return m.openView("Audit log ("+m.log.Path()+")", body), nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = ModeBrowse
		return m.ok("cancelled"), nil
	}

	form, cmd, submitted := m.form.Update(msg)
	m.form = form
	if !submitted {
		return m, cmd
	}

	fields := m.form.fields()
	if m.form.editing() {
		if err := m.book.Update(m.form.target, fields); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
	} else {
		c, err := contact.New(fields.FirstName, fields.LastName, fields.Phone, fields.Email, fields.Address)
		if err == nil {
			err = m.book.Add(c)
		}
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
	}

	m.mode = ModeBrowse
	m.refreshRows()
	return m.saveAnd("contact saved"), nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeBrowse
		return m.ok("cancelled"), nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		if value == "" {
			return m, nil
		}
		m.mode = ModeBrowse
		return m.runPrompt(m.promptFor, value), nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		name := m.confirming
		m.confirming = ""
		m.mode = ModeBrowse
		if err := m.book.Delete(name); err != nil {
			return m.fail(err.Error()), nil
		}
		m.refreshRows()
		return m.saveAnd("deleted " + name), nil
	case "n", "esc":
		m.confirming = ""
		m.mode = ModeBrowse
		return m.ok("cancelled"), nil
	}
	return m, nil
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.viewKeys.Back) {
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// runPrompt dispatches a confirmed prompt value.
func (m Model) runPrompt(kind promptKind, value string) Model {
	switch kind {
	case promptSearch:
		matches, err := m.book.Search(phonebook.FieldAny, value)
		if err != nil {
			return m.fail(err.Error())
		}
		title := fmt.Sprintf("Search %q: %d match(es)", value, len(matches))
		return m.openView(title, renderContacts(matches))

	case promptImport:
		result, err := m.batch.ImportAdd(m.book, m.dataPath(value))
		if err != nil {
			return m.fail(err.Error())
		}
		m.refreshRows()
		m = m.saveAnd(fmt.Sprintf("imported %d contact(s), %d failure(s)", result.Succeeded, result.Failed()))
		if result.Failed() > 0 {
			return m.openView("Import failures", renderFailures(result))
		}
		return m

	case promptBatchDelete:
		result, err := m.batch.ImportDelete(m.book, m.dataPath(value))
		if err != nil {
			return m.fail(err.Error())
		}
		m.refreshRows()
		m = m.saveAnd(fmt.Sprintf("deleted %d contact(s), %d failure(s)", result.Succeeded, result.Failed()))
		if result.Failed() > 0 {
			return m.openView("Batch delete failures", renderFailures(result))
		}
		return m

	default: // promptExport
		path := m.dataPath(value)
		if err := m.batch.Export(m.book, path); err != nil {
			return m.fail(err.Error())
		}
		return m.ok("exported " + fmt.Sprint(m.book.Len()) + " contact(s) to " + path)
	}
}

func (m Model) runSort(mode string) Model {
	if err := m.book.Sort(mode); err != nil {
		return m.fail(err.Error())
	}
	m.refreshRows()
	return m.saveAnd("sorted: " + mode)
}

// saveAnd persists the book and sets the status line: the given success
// message, or the save error.
func (m Model) saveAnd(okMsg string) Model {
	if err := m.saver.Save(m.book.List()); err != nil {
		return m.fail(err.Error())
	}
	return m.ok(okMsg)
}

func (m Model) openPrompt(kind promptKind) Model {
	in := textinput.New()
	in.CharLimit = 200
	in.Focus()
	m.prompt = in
	m.promptFor = kind
	m.mode = ModePrompt
	return m
}

func (m Model) openView(title, body string) Model {
	m.viewTitle = title
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
	m.mode = ModeView
	return m
}

func (m Model) ok(msg string) Model {
	m.status, m.statusErr = msg, false
	return m
}

func (m Model) fail(msg string) Model {
	m.status, m.statusErr = msg, true
	return m
}

// dataPath resolves a bare file name against the data directory.
// Absolute paths and paths with separators are taken as-is.
func (m Model) dataPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(m.dataDir, name)
}

// selected returns the contact under the table cursor.
func (m Model) selected() (contact.Contact, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return contact.Contact{}, false
	}
	return m.book.Get(row[0])
}

// refreshRows rebuilds the table rows from the book's current order.
func (m *Model) refreshRows() {
	contacts := m.book.List()
	rows := make([]table.Row, len(contacts))
	for i, c := range contacts {
		rows[i] = table.Row{c.FullName(), c.Phone, c.Email, c.Address}
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func contactColumns(width int) []table.Column {
	name, phone, email, address := columnWidths(width)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Phone", Width: phone},
		{Title: "Email", Width: email},
		{Title: "Address", Width: address},
	}
}

// View renders the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return m.form.View()
	case ModePrompt:
		return fmt.Sprintf("%s\n\n  %s\n\n  [Enter] confirm   [Esc] cancel",
			titleStyle.Render(m.promptFor.label()), m.prompt.View())
	case ModeConfirm:
		return fmt.Sprintf("%s\n\n  [y/Enter] delete   [n/Esc] cancel",
			titleStyle.Render("Delete "+m.confirming+"?"))
	case ModeView:
		return fmt.Sprintf("%s\n%s\n%s",
			titleStyle.Render(m.viewTitle), m.viewport.View(), m.help.View(m.viewKeys))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("rolodex: %d contact(s)", m.book.Len())))
	b.WriteString("\n")
	b.WriteString(tableBorderStyle.Render(m.table.View()))
	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(statusErrStyle.Render("Error: " + m.status))
		} else {
			b.WriteString(statusOKStyle.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.browseKeys))
	return b.String()
}

// renderContacts formats contacts for the viewer pane.
func renderContacts(contacts []contact.Contact) string {
	if len(contacts) == 0 {
		return "No contacts found matching the search criteria."
	}
	var b strings.Builder
	for i, c := range contacts {
		fmt.Fprintf(&b, "%d. %s | Phone: %s | Email: %s | Address: %s\n",
			i+1, c.FullName(), orNA(c.Phone), orNA(c.Email), orNA(c.Address))
	}
	return b.String()
}

// renderHistory formats a contact's update history for the viewer pane.
func renderHistory(c contact.Contact) string {
	if len(c.History) == 0 {
		return "No updates made to this contact."
	}
	var b strings.Builder
	for _, rev := range c.History {
		fmt.Fprintf(&b, "Updated on %s:\n", rev.Time.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "  Old: %s\n", formatFields(rev.Old))
		fmt.Fprintf(&b, "  New: %s\n", formatFields(rev.New))
	}
	return b.String()
}

// renderFailures formats a batch result's row failures for the viewer pane.
func renderFailures(result batch.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation %s: %d succeeded, %d failed\n\n", result.ID, result.Succeeded, result.Failed())
	for _, f := range result.Failures {
		fmt.Fprintf(&b, "line %d: %s\n", f.Line, f.Reason)
	}
	return b.String()
}

func formatFields(f contact.Fields) string {
	return fmt.Sprintf("%s %s | %s | %s | %s",
		f.FirstName, f.LastName, orNA(f.Phone), orNA(f.Email), orNA(f.Address))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

