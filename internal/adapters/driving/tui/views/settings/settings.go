// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/messages"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// Item identifies an editable setting.
type Item int

const (
	ItemEndpoint Item = iota
	ItemToken
	ItemDownloadDir
	ItemPersistHistory
	ItemWatchLocation
	itemCount
)

// Key constants for key handling.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// View lists the settings and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	in := textinput.New()
	in.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           in,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		v.ready = true
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	case keyUp, "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < int(itemCount)-1 {
			v.selected++
		}
	case keyEnter, "e", " ":
		if v.settings == nil {
			return v, nil
		}
		return v.edit(Item(v.selected))
	}
	return v, nil
}

// edit toggles boolean settings and opens the input for text ones.
func (v *View) edit(item Item) (*View, tea.Cmd) {
	switch item {
	case ItemPersistHistory:
		return v, v.save(func(s *domain.AppSettings) { s.History.Persist = !s.History.Persist })
	case ItemWatchLocation:
		return v, v.save(func(s *domain.AppSettings) { s.History.WatchLocation = !s.History.WatchLocation })
	}

	v.editing = true
	v.input.EchoMode = textinput.EchoNormal
	switch item {
	case ItemEndpoint:
		v.input.SetValue(v.settings.API.Endpoint)
		v.input.Placeholder = domain.DefaultEndpoint
	case ItemToken:
		v.input.SetValue("")
		v.input.Placeholder = "empty removes the token"
		v.input.EchoMode = textinput.EchoPassword
	case ItemDownloadDir:
		v.input.SetValue(v.settings.Download.Dir)
		v.input.Placeholder = "default"
	}
	v.input.CursorEnd()
	return v, v.input.Focus()
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.stopEditing()
		return v, nil
	case keyEnter:
		value := strings.TrimSpace(v.input.Value())
		item := Item(v.selected)
		v.stopEditing()
		return v, v.apply(item, value)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) stopEditing() {
	v.editing = false
	v.input.Blur()
	v.input.Reset()
}

// apply saves the edited value of item.
func (v *View) apply(item Item, value string) tea.Cmd {
	switch item {
	case ItemEndpoint:
		svc := v.settingsService
		return func() tea.Msg {
			return messages.SettingsSaved{Err: svc.SetEndpoint(value)}
		}
	case ItemToken:
		return v.save(func(s *domain.AppSettings) { s.API.Token = value })
	case ItemDownloadDir:
		return v.save(func(s *domain.AppSettings) { s.Download.Dir = value })
	default:
		return nil
	}
}

// save reads the current settings, applies change and writes them back.
func (v *View) save(change func(*domain.AppSettings)) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		current, err := svc.Get()
		if err != nil {
			return messages.SettingsSaved{Err: err}
		}
		change(current)
		return messages.SettingsSaved{Err: svc.Save(current)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	b.WriteString(v.renderItems())
	b.WriteString("\n")
	b.WriteString(v.renderSearches())
	b.WriteString("\n")

	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Muted.Render("Changes apply the next time lis-search starts."))
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderItems() string {
	var b strings.Builder
	for i := 0; i < int(itemCount); i++ {
		label, value := v.item(Item(i))
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}
		if v.editing && i == v.selected {
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%s%s: ", indicator, label)))
			b.WriteString(v.input.View())
			b.WriteString("\n")
			continue
		}
		line := fmt.Sprintf("%s%s: %s", indicator, label, value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) item(item Item) (label, value string) {
	s := v.settings
	switch item {
	case ItemEndpoint:
		return "Endpoint", s.API.Endpoint
	case ItemToken:
		if s.API.Token == "" {
			return "Token", "not set"
		}
		return "Token", "set"
	case ItemDownloadDir:
		if s.Download.Dir == "" {
			return "Download directory", "default"
		}
		return "Download directory", s.Download.Dir
	case ItemPersistHistory:
		return "Persist history", onOff(s.History.Persist)
	case ItemWatchLocation:
		return "Watch location file", onOff(s.History.WatchLocation)
	default:
		return "", ""
	}
}

// renderSearches shows the per-kind configuration, which is edited
// with the settings command.
func (v *View) renderSearches() string {
	var b strings.Builder
	for _, kind := range domain.SearchKinds() {
		ss := v.settings.Search(kind)
		b.WriteString(v.styles.Subtitle.Render(kind.Description()))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Required: %s", formatGroups(ss.Required))))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Columns:  %s", strings.Join(ss.Table.Headers(), ", "))))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Page size: %d", ss.PageSize)))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderHelp() string {
	if v.editing {
		return v.styles.Help.Render("enter: save | esc: cancel")
	}
	return v.styles.Help.Render("↑/↓: select | enter: edit or toggle | esc: back")
}

func formatGroups(groups domain.RequiredGroups) string {
	if len(groups) == 0 {
		return "none"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		sorted := append([]string(nil), g...)
		sort.Strings(sorted)
		parts[i] = strings.Join(sorted, "+")
	}
	return strings.Join(parts, " | ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-30, 20)
}

// Selected returns the selected item.
func (v *View) Selected() Item {
	return Item(v.selected)
}

// Editing returns whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last load or save error.
func (v *View) Err() error {
	return v.err
}

// Reset returns to the top of the list and reloads.
func (v *View) Reset() tea.Cmd {
	v.selected = 0
	v.stopEditing()
	return v.loadSettings()
}
