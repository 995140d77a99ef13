package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	statusErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	tableBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
)

// columnWidths splits the usable table width across the four contact
// columns: name gets the largest share, address the remainder.
func columnWidths(total int) (name, phone, email, address int) {
	if total <= 0 {
		return 0, 0, 0, 0
	}
	name = total * 3 / 10
	phone = total * 2 / 10
	email = total * 25 / 100
	address = total - name - phone - email
	if address < 0 {
		address = 0
	}
	return name, phone, email, address
}
