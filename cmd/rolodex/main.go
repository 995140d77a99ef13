package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/rolodex/internal/audit"
	"github.com/smileynet/rolodex/internal/batch"
	"github.com/smileynet/rolodex/internal/config"
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/phonebook"
	"github.com/smileynet/rolodex/internal/store"
	"github.com/smileynet/rolodex/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes: 0 success, 1 operation error, 2 setup error.
const (
	exitSuccess   = 0
	exitOperation = 1
	exitSetup     = 2
)

// CLI is the top-level command structure for rolodex.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`

	Add         AddCmd         `cmd:"" help:"Add a contact."`
	List        ListCmd        `cmd:"" help:"List all contacts."`
	Search      SearchCmd      `cmd:"" help:"Search contacts by substring."`
	Update      UpdateCmd      `cmd:"" help:"Update a contact's fields."`
	Delete      DeleteCmd      `cmd:"" help:"Delete a contact by full name."`
	History     HistoryCmd     `cmd:"" help:"Show a contact's update history."`
	Import      ImportCmd      `cmd:"" help:"Batch-add contacts from a CSV file."`
	BatchDelete BatchDeleteCmd `cmd:"" name:"batch-delete" help:"Batch-delete contacts listed in a CSV file."`
	Export      ExportCmd      `cmd:"" help:"Export all contacts to a CSV file."`
	Sort        SortCmd        `cmd:"" help:"Reorder contacts: alphabetical or group."`
	Log         LogCmd         `cmd:"" help:"Show or clear the audit log."`
	Menu        MenuCmd        `cmd:"" help:"Open the interactive menu."`
}

// app bundles the wired components every command needs: config, the
// loaded phonebook, its snapshot store, the audit logger, and the batch
// runner.
type app struct {
	cfg    *config.Config
	book   *phonebook.Book
	store  *store.FileStore
	logger *audit.Logger
	batch  *batch.Runner
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/rolodex/config.yaml"),
		".rolodex/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp wires the components and loads the persisted phonebook.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := audit.NewLogger(cfg.Paths.AuditLog)
	book := phonebook.New(logger, phonebook.WithCaseSensitive(cfg.Search.CaseSensitive))

	fs := store.NewFileStore(cfg.Paths.Contacts)
	contacts, err := fs.Load()
	if err != nil {
		return nil, err
	}
	if err := book.Load(contacts); err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		book:   book,
		store:  fs,
		logger: logger,
		batch:  batch.NewRunner(logger),
	}, nil
}

// save persists the book to the snapshot store.
func (a *app) save() error {
	return a.store.Save(a.book.List())
}

// dataPath resolves a bare file name against the configured data
// directory. Absolute paths and paths with separators are taken as-is.
func (a *app) dataPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(a.cfg.Paths.DataDir, name)
}

// AddCmd adds a single contact.
type AddCmd struct {
	First   string `arg:"" help:"First name."`
	Last    string `arg:"" optional:"" help:"Last name."`
	Phone   string `help:"Phone number." short:"p"`
	Email   string `help:"Email address." short:"e"`
	Address string `help:"Postal address." short:"a"`
}

// Run executes the add command.
func (c *AddCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *AddCmd) run(w io.Writer, a *app) error {
	ct, err := contact.New(c.First, c.Last, c.Phone, c.Email, c.Address)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if err := a.book.Add(ct); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Added %s\n", ct.FullName())
	return nil
}

// ListCmd prints all contacts in their current order.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *ListCmd) run(w io.Writer, a *app) error {
	contacts := a.book.List()
	if len(contacts) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts in the phonebook.")
		return nil
	}
	printContacts(w, contacts)
	_, _ = fmt.Fprintf(w, "Total contacts: %d\n", len(contacts))
	return nil
}

// SearchCmd searches contacts by substring.
type SearchCmd struct {
	Query string `arg:"" help:"Substring to search for."`
	Field string `help:"Field to match: any, name, phone, email, or address." default:"any" enum:"any,name,phone,email,address"`
}

// Run executes the search command.
func (c *SearchCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *SearchCmd) run(w io.Writer, a *app) error {
	matches, err := a.book.Search(c.Field, c.Query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(matches) == 0 {
		_, _ = fmt.Fprintf(w, "No contacts found matching %q.\n", c.Query)
		return nil
	}
	printContacts(w, matches)
	return nil
}

// UpdateCmd overwrites a contact's fields. Omitted flags keep current values.
type UpdateCmd struct {
	Name    string `arg:"" help:"Full name of the contact to update."`
	First   string `help:"New first name."`
	Last    string `help:"New last name."`
	Phone   string `help:"New phone number." short:"p"`
	Email   string `help:"New email address." short:"e"`
	Address string `help:"New postal address." short:"a"`
}

// Run executes the update command.
func (c *UpdateCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *UpdateCmd) run(w io.Writer, a *app) error {
	fields := contact.Fields{
		FirstName: c.First,
		LastName:  c.Last,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
	}
	if fields == (contact.Fields{}) {
		return errors.New("update: no fields given (use --first, --last, --phone, --email, or --address)")
	}
	if err := a.book.Update(c.Name, fields); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Updated %s\n", c.Name)
	return nil
}

// DeleteCmd removes a contact by full name.
type DeleteCmd struct {
	Name string `arg:"" help:"Full name of the contact to delete."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *DeleteCmd) run(w io.Writer, a *app) error {
	if err := a.book.Delete(c.Name); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Deleted %s\n", c.Name)
	return nil
}

// HistoryCmd prints a contact's update history.
type HistoryCmd struct {
	Name string `arg:"" help:"Full name of the contact."`
}

// Run executes the history command.
func (c *HistoryCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *HistoryCmd) run(w io.Writer, a *app) error {
	ct, ok := a.book.Get(c.Name)
	if !ok {
		return fmt.Errorf("history: %w: %q", phonebook.ErrNotFound, c.Name)
	}
	if len(ct.History) == 0 {
		_, _ = fmt.Fprintf(w, "No updates made to %s.\n", ct.FullName())
		return nil
	}
	for _, rev := range ct.History {
		_, _ = fmt.Fprintf(w, "Updated on %s:\n", rev.Time.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "  Old: %s\n", formatFields(rev.Old))
		_, _ = fmt.Fprintf(w, "  New: %s\n", formatFields(rev.New))
	}
	return nil
}

// ImportCmd batch-adds contacts from a CSV file in the data directory.
type ImportCmd struct {
	File string `arg:"" help:"CSV file (bare names resolve inside the data directory)."`
}

// Run executes the import command.
func (c *ImportCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *ImportCmd) run(w io.Writer, a *app) error {
	result, err := a.batch.ImportAdd(a.book, a.dataPath(c.File))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	printBatchResult(w, "Imported", result)
	return nil
}

// BatchDeleteCmd batch-deletes the contacts listed in a CSV file.
type BatchDeleteCmd struct {
	File string `arg:"" help:"CSV file (bare names resolve inside the data directory)."`
}

// Run executes the batch-delete command.
func (c *BatchDeleteCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("batch-delete: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *BatchDeleteCmd) run(w io.Writer, a *app) error {
	result, err := a.batch.ImportDelete(a.book, a.dataPath(c.File))
	if err != nil {
		return fmt.Errorf("batch-delete: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("batch-delete: %w", err)
	}
	printBatchResult(w, "Deleted", result)
	return nil
}

// ExportCmd writes all contacts to a CSV file.
type ExportCmd struct {
	File string `arg:"" help:"Destination CSV file (bare names resolve inside the data directory)."`
}

// Run executes the export command.
func (c *ExportCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *ExportCmd) run(w io.Writer, a *app) error {
	path := a.dataPath(c.File)
	if err := a.batch.Export(a.book, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d contact(s) to %s\n", a.book.Len(), path)
	return nil
}

// SortCmd reorders the phonebook.
type SortCmd struct {
	Mode string `arg:"" help:"Sort mode: alphabetical (by last name) or group (by last-name initial)." enum:"alphabetical,group"`
}

// Run executes the sort command.
func (c *SortCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *SortCmd) run(w io.Writer, a *app) error {
	if err := a.book.Sort(c.Mode); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Sorted contacts: %s\n", c.Mode)
	return nil
}

// LogCmd prints or clears the audit log.
type LogCmd struct {
	Tail  int  `help:"Show only the last N entries." default:"0"`
	Clear bool `help:"Clear the audit log instead of printing it."`
}

// Run executes the log command.
func (c *LogCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return c.run(os.Stdout, a)
}

func (c *LogCmd) run(w io.Writer, a *app) error {
	if c.Clear {
		if err := a.logger.Clear(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
		_, _ = fmt.Fprintln(w, "Audit log cleared.")
		return nil
	}

	lines, err := a.logger.Read()
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if len(lines) == 0 {
		_, _ = fmt.Fprintln(w, "No operations recorded yet.")
		return nil
	}
	if c.Tail > 0 && len(lines) > c.Tail {
		lines = lines[len(lines)-c.Tail:]
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
	return nil
}

// MenuCmd opens the interactive menu TUI.
type MenuCmd struct{}

// Run executes the menu command.
func (c *MenuCmd) Run() error {
	a, err := openApp()
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("menu: stdout is not a terminal (use the rolodex subcommands instead)")
	}

	model := tui.NewModel(tui.Options{
		Book:    a.book,
		Saver:   a.store,
		Batch:   a.batch,
		Log:     a.logger,
		DataDir: a.cfg.Paths.DataDir,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	return nil
}

// printContacts writes one numbered line per contact.
func printContacts(w io.Writer, contacts []contact.Contact) {
	for i, c := range contacts {
		_, _ = fmt.Fprintf(w, "%d. %s | Phone: %s | Email: %s | Address: %s\n",
			i+1, c.FullName(), orNA(c.Phone), orNA(c.Email), orNA(c.Address))
	}
}

// printBatchResult writes the batch summary and per-row failure reasons.
func printBatchResult(w io.Writer, verb string, result batch.Result) {
	_, _ = fmt.Fprintf(w, "%s %d contact(s), %d failure(s)\n", verb, result.Succeeded, result.Failed())
	for _, f := range result.Failures {
		_, _ = fmt.Fprintf(w, "  line %d: %s\n", f.Line, f.Reason)
	}
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

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case errors.Is(err, phonebook.ErrDuplicateName),
		errors.Is(err, phonebook.ErrNotFound),
		errors.Is(err, phonebook.ErrInvalidQuery),
		errors.Is(err, contact.ErrValidation),
		errors.Is(err, contact.ErrParse),
		errors.Is(err, batch.ErrMissingHeader):
		return exitOperation
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Vars{"version": version + " " + commit + " " + date})
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
