package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/keymap"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/messages"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/views/search"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/views/settings"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// headerHeight is the tab line plus a blank line.
const headerHeight = 2

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	genesView    *search.View[domain.Gene]
	traitsView   *search.View[domain.Trait]
	settingsView *settings.View

	// kinds lists the available searches in tab order.
	kinds []domain.SearchKind
	kind  domain.SearchKind

	currentView messages.ViewType
	showHelp    bool
	stops       []func()

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a TUI application for ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	cfg, err := ports.settings()
	if err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         h,
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewSearch,
	}
	if ports.Genes != nil {
		kind := domain.SearchKindGenes
		a.genesView = search.NewView(kind, ports.Genes, cfg.Search(kind).Table, ports.Locations[kind], s, km)
		a.kinds = append(a.kinds, kind)
	}
	if ports.Traits != nil {
		kind := domain.SearchKindTraits
		a.traitsView = search.NewView(kind, ports.Traits, cfg.Search(kind).Table, ports.Locations[kind], s, km)
		a.kinds = append(a.kinds, kind)
	}
	a.kind = a.kinds[0]
	return a, nil
}

// WithContext sets the context controller operations run with.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	if a.genesView != nil {
		a.genesView.WithContext(ctx)
	}
	if a.traitsView != nil {
		a.traitsView.WithContext(ctx)
	}
	return a
}

// Init starts following navigation and searches each kind from its
// query string.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("LIS search"),
		a.settingsView.Init(),
	}
	if a.genesView != nil {
		a.stops = append(a.stops, a.ports.Genes.Listen(a.ctx))
		cmds = append(cmds, a.genesView.Init())
	}
	if a.traitsView != nil {
		a.stops = append(a.stops, a.ports.Traits.Listen(a.ctx))
		cmds = append(cmds, a.traitsView.Init())
	}
	return tea.Batch(cmds...)
}

// Close stops following navigation and unsubscribes the views.
func (a *App) Close() {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.genesView != nil {
		a.genesView.Close()
	}
	if a.traitsView != nil {
		a.traitsView.Close()
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.KindChanged:
		a.selectKind(msg.Kind)
		return a, nil

	case messages.StateChanged:
		return a, a.updateKind(msg.Kind, msg)

	case messages.ActionDone:
		return a, a.updateKind(msg.Kind, msg)

	case spinner.TickMsg:
		// Each status bar ignores ticks of other spinners.
		return a, tea.Batch(a.updateKind(domain.SearchKindGenes, msg), a.updateKind(domain.SearchKindTraits, msg))

	case messages.SettingsLoaded, messages.SettingsSaved:
		var cmd tea.Cmd
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	}

	return a, a.updateActive(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case a.showHelp && key.Matches(msg, a.keymap.Back):
		a.showHelp = false
		return a, nil

	case key.Matches(msg, a.keymap.SwitchKind):
		a.selectKind(a.nextKind())
		return a, nil

	case key.Matches(msg, a.keymap.Settings):
		a.currentView = messages.ViewSettings
		return a, a.settingsView.Reset()
	}

	return a, a.updateActive(msg)
}

func (a *App) nextKind() domain.SearchKind {
	for i, k := range a.kinds {
		if k == a.kind {
			return a.kinds[(i+1)%len(a.kinds)]
		}
	}
	return a.kinds[0]
}

func (a *App) selectKind(kind domain.SearchKind) {
	for _, k := range a.kinds {
		if k == kind {
			a.kind = kind
			a.currentView = messages.ViewSearch
			return
		}
	}
}

// updateKind forwards msg to the view of kind.
func (a *App) updateKind(kind domain.SearchKind, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch kind {
	case domain.SearchKindGenes:
		if a.genesView != nil {
			a.genesView, cmd = a.genesView.Update(msg)
		}
	case domain.SearchKindTraits:
		if a.traitsView != nil {
			a.traitsView, cmd = a.traitsView.Update(msg)
		}
	}
	return cmd
}

// updateActive forwards msg to the visible view.
func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	if a.currentView == messages.ViewSettings {
		var cmd tea.Cmd
		a.settingsView, cmd = a.settingsView.Update(msg)
		return cmd
	}
	return a.updateKind(a.kind, msg)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch {
	case a.showHelp:
		body = a.styles.Subtitle.Render("Keys") + "\n\n" + a.help.View(a.keymap)
	case a.currentView == messages.ViewSettings:
		body = a.settingsView.View()
	case a.kind == domain.SearchKindTraits && a.traitsView != nil:
		body = a.traitsView.View()
	case a.genesView != nil:
		body = a.genesView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(), "", body)
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(a.kinds)+2)
	tabs = append(tabs, a.styles.Title.Render("LIS"))
	for _, k := range a.kinds {
		style := a.styles.Tab
		if k == a.kind && a.currentView == messages.ViewSearch {
			style = a.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(strings.TrimSuffix(k.Description(), " search")))
	}
	style := a.styles.Tab
	if a.currentView == messages.ViewSettings {
		style = a.styles.ActiveTab
	}
	tabs = append(tabs, style.Render("Settings"))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// SetDimensions sets the terminal size and lays out every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width

	body := tea.WindowSizeMsg{Width: width, Height: height - headerHeight}
	a.updateKind(domain.SearchKindGenes, body)
	a.updateKind(domain.SearchKindTraits, body)
	a.settingsView.Update(body)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Kind returns the active search kind.
func (a *App) Kind() domain.SearchKind {
	return a.kind
}

// Kinds returns the available search kinds.
func (a *App) Kinds() []domain.SearchKind {
	return a.kinds
}

// HelpVisible returns whether the full help is shown.
func (a *App) HelpVisible() bool {
	return a.showHelp
}

// Ready returns whether the app has received its size.
func (a *App) Ready() bool {
	return a.ready
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}
