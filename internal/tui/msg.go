// Package tui implements the interactive phonebook menu as a Bubble Tea
// program: a contact table with mode-routed forms, prompts, and viewers.
package tui

// Mode represents the current view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Contact table with status bar.
	ModeForm                // Add or update form.
	ModePrompt              // Single-line input (search query, file names).
	ModeConfirm             // Delete confirmation.
	ModeView                // Scrollable viewer (audit log, history, results).
)

// promptKind identifies what a ModePrompt input is for.
type promptKind int

const (
	promptSearch promptKind = iota
	promptImport
	promptBatchDelete
	promptExport
)

// label returns the prompt's input label.
func (k promptKind) label() string {
	switch k {
	case promptSearch:
		return "Search (name, phone, email, or address)"
	case promptImport:
		return "CSV file to import"
	case promptBatchDelete:
		return "CSV file of contacts to delete"
	default:
		return "Export file"
	}
}
