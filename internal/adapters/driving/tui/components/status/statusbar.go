// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/keymap"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// Bar shows the controller state on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	state   domain.SearchState
	summary string
	message string
	notice  string
	results bool
	width   int
}

// NewBar creates an Idle status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   domain.StateIdle,
		width:   80,
	}
}

// Init starts the spinner.
func (s *Bar) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update advances the spinner.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	if s.notice != "" && s.state != domain.StateLoading {
		return s.styles.Success.Render(s.notice)
	}
	switch s.state {
	case domain.StateLoading:
		return s.spinner.View() + " " + s.styles.Muted.Render(s.state.Description())
	case domain.StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render(s.state.Description())
	case domain.StateSuccess:
		if s.summary != "" {
			return s.styles.Normal.Render(s.summary)
		}
		return s.styles.Normal.Render(s.state.Description())
	case domain.StateEmpty:
		return s.styles.Warning.Render(s.state.Description())
	default:
		return s.styles.Muted.Render(s.state.Description())
	}
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.FormHelp()
	if s.results {
		bindings = s.keymap.ResultsHelp()
	}
	bindings = append(bindings, s.keymap.Help)

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetSnapshot shows the state of a controller snapshot. A new search
// clears any notice.
func SetSnapshot[T any](s *Bar, snap domain.Snapshot[T]) {
	if snap.State == domain.StateLoading {
		s.notice = ""
	}
	s.state = snap.State
	s.summary = snap.Summary
	s.message = snap.ErrorMessage
}

// State returns the displayed controller state.
func (s *Bar) State() domain.SearchState {
	return s.state
}

// Summary returns the displayed results summary.
func (s *Bar) Summary() string {
	return s.summary
}

// SetMessage sets the error message shown in the Error state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the error message.
func (s *Bar) Message() string {
	return s.message
}

// SetNotice shows a one-off message until the next search.
func (s *Bar) SetNotice(notice string) {
	s.notice = notice
}

// Notice returns the current notice.
func (s *Bar) Notice() string {
	return s.notice
}

// SetResultsFocused switches the key hints between form and results.
func (s *Bar) SetResultsFocused(focused bool) {
	s.results = focused
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear returns the bar to Idle.
func (s *Bar) Clear() {
	s.state = domain.StateIdle
	s.summary = ""
	s.message = ""
	s.notice = ""
}
