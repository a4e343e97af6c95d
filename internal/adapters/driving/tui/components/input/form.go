// Package input provides the search form component for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

const (
	fieldCharLimit = 256
	minInputWidth  = 20
)

// Form is a column of labelled text inputs, one per search field.
type Form struct {
	names   []string
	inputs  []textinput.Model
	focus   int
	focused bool
	styles  *styles.Styles
	width   int
}

// NewForm creates a form with one input per field name. The first
// field is focused.
func NewForm(names []string, s *styles.Styles) *Form {
	if s == nil {
		s = styles.DefaultStyles()
	}

	f := &Form{
		names:  append([]string(nil), names...),
		inputs: make([]textinput.Model, len(names)),
		styles: s,
		width:  50,
	}
	for i, name := range names {
		ti := textinput.New()
		ti.Placeholder = name
		ti.CharLimit = fieldCharLimit
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	f.SetWidth(f.width)
	f.Focus()
	return f
}

// Init starts the cursor blinking.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the focused input.
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if !f.focused || len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders one labelled line per field.
func (f *Form) View() string {
	lines := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		label := f.styles.Label
		if f.focused && i == f.focus {
			label = f.styles.FocusedLabel
		}
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, label.Render(f.names[i]), in.View())
	}
	return strings.Join(lines, "\n")
}

// Fields returns the form submission in field order.
func (f *Form) Fields() domain.FormFields {
	fields := make(domain.FormFields, len(f.inputs))
	for i, in := range f.inputs {
		fields[i] = domain.FormField{Name: f.names[i], Value: strings.TrimSpace(in.Value())}
	}
	return fields
}

// SetValues fills the form from a request. Fields absent from req are
// cleared.
func (f *Form) SetValues(req domain.SearchRequest) {
	for i, name := range f.names {
		f.inputs[i].SetValue(req.Get(name))
	}
}

// Value returns the value of one field.
func (f *Form) Value(name string) string {
	for i, n := range f.names {
		if n == name {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// Next moves focus to the following field, wrapping around.
func (f *Form) Next() tea.Cmd {
	return f.move(1)
}

// Prev moves focus to the preceding field, wrapping around.
func (f *Form) Prev() tea.Cmd {
	return f.move(-1)
}

func (f *Form) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	if !f.focused {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

// FocusIndex returns the index of the focused field.
func (f *Form) FocusIndex() int {
	return f.focus
}

// Focus gives the form keyboard focus.
func (f *Form) Focus() tea.Cmd {
	f.focused = true
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

// Blur removes keyboard focus from the form.
func (f *Form) Blur() {
	f.focused = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// Focused returns whether the form has keyboard focus.
func (f *Form) Focused() bool {
	return f.focused
}

// SetWidth sets the width available to the form.
func (f *Form) SetWidth(width int) {
	f.width = width
	inputWidth := width - f.styles.Label.GetWidth() - 2
	if inputWidth < minInputWidth {
		inputWidth = minInputWidth
	}
	for i := range f.inputs {
		f.inputs[i].Width = inputWidth
	}
}

// Reset clears every field and focuses the first.
func (f *Form) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	if len(f.inputs) > 0 && f.focus != 0 {
		f.inputs[f.focus].Blur()
		f.focus = 0
		if f.focused {
			f.inputs[0].Focus()
		}
	}
}
