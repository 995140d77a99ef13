package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/contact"
)

// Form field indexes, in display order.
const (
	fieldFirst = iota
	fieldLast
	fieldPhone
	fieldEmail
	fieldAddress
	fieldCount
)

var fieldLabels = [fieldCount]string{"First name", "Last name", "Phone", "Email", "Address"}

// contactForm is the add/update form: five text inputs with focus cycling.
// target is empty for an add, or the full name of the contact being updated.
type contactForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	target string
	err    string
}

// newContactForm creates a form prefilled with initial. For an add, pass
// empty fields and an empty target.
func newContactForm(target string, initial contact.Fields) contactForm {
	f := contactForm{target: target}

	values := [fieldCount]string{
		initial.FirstName, initial.LastName, initial.Phone, initial.Email, initial.Address,
	}
	placeholders := [fieldCount]string{"required", "", "(555) 123-4567", "user@domain.com", ""}

	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.SetValue(values[i])
		in.CharLimit = 120
		f.inputs[i] = in
	}
	f.inputs[fieldFirst].Focus()
	return f
}

// editing reports whether the form updates an existing contact.
func (f contactForm) editing() bool { return f.target != "" }

// fields returns the form's current values.
func (f contactForm) fields() contact.Fields {
	return contact.Fields{
		FirstName: f.inputs[fieldFirst].Value(),
		LastName:  f.inputs[fieldLast].Value(),
		Phone:     f.inputs[fieldPhone].Value(),
		Email:     f.inputs[fieldEmail].Value(),
		Address:   f.inputs[fieldAddress].Value(),
	}
}

// validate checks interactive input rules: first name required on add,
// phone must match (###) ###-#### when set, email must look like an
// address when set. Returns a message for the form's error line, or "".
func (f contactForm) validate() string {
	fields := f.fields()
	if !f.editing() && strings.TrimSpace(fields.FirstName) == "" {
		return "first name cannot be empty"
	}
	if fields.Phone != "" && !contact.ValidPhone(fields.Phone) {
		return "phone must be (###) ###-####"
	}
	if !contact.ValidEmail(fields.Email) {
		return "email must be user@domain.com"
	}
	return ""
}

// Update handles key messages. It returns the updated form, a command,
// and submitted=true once the user confirms a valid form with enter on
// the last field.
func (f contactForm) Update(msg tea.Msg) (contactForm, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	switch keyMsg.String() {
	case "tab", "down":
		f.setFocus((f.focus + 1) % fieldCount)
		return f, nil, false
	case "shift+tab", "up":
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return f, nil, false
	case "enter":
		if f.focus < fieldCount-1 {
			f.setFocus(f.focus + 1)
			return f, nil, false
		}
		if verr := f.validate(); verr != "" {
			f.err = verr
			return f, nil, false
		}
		return f, nil, true
	}

	return f.updateFocused(msg)
}

func (f contactForm) updateFocused(msg tea.Msg) (contactForm, tea.Cmd, bool) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, cmd, false
}

func (f *contactForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// View renders the form with labels, inputs, and the error line.
func (f contactForm) View() string {
	var b strings.Builder

	title := "Add contact"
	if f.editing() {
		title = "Update " + f.target + " (empty fields keep current values)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for i, in := range f.inputs {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(fieldLabels[i] + ":"))
		b.WriteString(" ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n  ")
		b.WriteString(statusErrStyle.Render("Error: " + f.err))
	}
	b.WriteString("\n\n  [Enter] next/confirm   [Tab] move   [Esc] cancel")
	return b.String()
}
