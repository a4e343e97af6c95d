// Package search provides the search form and results view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/components/input"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/components/pager"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/components/results"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/components/status"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/keymap"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/messages"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// View is the form, result table, pager and status bar of one search
// kind. It renders the snapshots of a paginated controller and runs
// controller operations as commands.
type View[T any] struct {
	kind      domain.SearchKind
	ctrl      driving.PaginatedSearchController[T]
	location  driving.Location
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	form      *input.Form
	table     *results.Table
	pager     *pager.Pager
	statusbar *status.Bar

	ctx         context.Context
	changes     chan struct{}
	unsubscribe func()

	snap        domain.Snapshot[T]
	formRequest string
	width       int
	height      int
	ready       bool
	err         error
}

// NewView creates a view for kind and subscribes to ctrl. location may
// be nil, in which case history keys are ignored.
func NewView[T any](
	kind domain.SearchKind,
	ctrl driving.PaginatedSearchController[T],
	table domain.TableConfig,
	location driving.Location,
	s *styles.Styles,
	km *keymap.KeyMap,
) *View[T] {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View[T]{
		kind:        kind,
		ctrl:        ctrl,
		location:    location,
		styles:      s,
		keymap:      km,
		form:        input.NewForm(kind.FormFields(), s),
		table:       results.NewTable(table, s),
		pager:       pager.New(s),
		statusbar:   status.NewBar(s, km),
		ctx:         context.Background(),
		changes:     make(chan struct{}, 1),
		unsubscribe: func() {},
		width:       80,
		height:      24,
	}
	if ctrl != nil {
		v.unsubscribe = ctrl.Subscribe(func(domain.StateChange[T]) {
			// Coalesce: the view reads the latest snapshot anyway.
			select {
			case v.changes <- struct{}{}:
			default:
			}
		})
		v.snap = ctrl.Snapshot()
	}
	return v
}

// WithContext sets the context controller operations run with.
func (v *View[T]) WithContext(ctx context.Context) *View[T] {
	v.ctx = ctx
	return v
}

// Init starts listening for state changes and searches from the query
// string.
func (v *View[T]) Init() tea.Cmd {
	return tea.Batch(
		v.form.Init(),
		v.statusbar.Init(),
		v.waitForChange(),
		v.run(messages.OpAuto, func(ctx context.Context) error {
			return v.ctrl.AutoSubmit(ctx)
		}),
	)
}

// Close stops listening to the controller.
func (v *View[T]) Close() {
	v.unsubscribe()
}

// waitForChange blocks until the controller reports a change.
func (v *View[T]) waitForChange() tea.Cmd {
	ctx, kind, changes := v.ctx, v.kind, v.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return messages.StateChanged{Kind: kind}
		case <-ctx.Done():
			return nil
		}
	}
}

// run returns a command calling fn and reporting its error.
func (v *View[T]) run(op messages.Op, fn func(ctx context.Context) error) tea.Cmd {
	ctx, kind := v.ctx, v.kind
	if v.ctrl == nil {
		return func() tea.Msg {
			return messages.ActionDone{Kind: kind, Op: op, Err: ErrNoController}
		}
	}
	return func() tea.Msg {
		return messages.ActionDone{Kind: kind, Op: op, Err: fn(ctx)}
	}
}

// Update handles messages for the search view.
func (v *View[T]) Update(msg tea.Msg) (*View[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		v.ready = true
		return v, nil

	case messages.StateChanged:
		if msg.Kind != v.kind {
			return v, nil
		}
		v.refresh()
		return v, v.waitForChange()

	case messages.ActionDone:
		if msg.Kind != v.kind {
			return v, nil
		}
		v.handleActionDone(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

// refresh renders the controller's latest snapshot.
func (v *View[T]) refresh() {
	if v.ctrl == nil {
		return
	}
	snap := v.ctrl.Snapshot()
	v.snap = snap
	status.SetSnapshot(v.statusbar, snap)
	if snap.Page != nil {
		v.pager.SetState(*snap.Page)
	}

	switch snap.State {
	case domain.StateSuccess:
		if err := results.SetResults(v.table, snap.Results); err != nil {
			v.err = err
		}
	case domain.StateLoading:
		// Keep the previous page visible.
	default:
		v.table.Clear()
		if !v.form.Focused() {
			v.focusForm()
		}
	}

	// Follow navigation: show the request the results belong to.
	if len(snap.Request) > 0 {
		encoded := snap.Request.WithoutPage().NonEmpty().Encode()
		if encoded != v.formRequest {
			v.form.SetValues(snap.Request)
			v.formRequest = encoded
		}
	}
}

func (v *View[T]) handleActionDone(msg messages.ActionDone) {
	if msg.Err != nil {
		var transport *domain.TransportError
		switch {
		case errors.As(msg.Err, &transport):
			// Already surfaced through the snapshot.
		case errors.Is(msg.Err, domain.ErrNoRequest):
			v.statusbar.SetNotice("Submit a search first.")
		default:
			v.err = msg.Err
		}
		return
	}

	switch msg.Op {
	case messages.OpDownload:
		if path := v.ctrl.LastDownload().Path; path != "" {
			v.statusbar.SetNotice("Downloaded to " + path)
		}
	case messages.OpSubmit:
		if v.ctrl.Snapshot().State == domain.StateSuccess {
			v.focusResults()
		}
	}
}

// handleKeyMsg processes keyboard input.
func (v *View[T]) handleKeyMsg(msg tea.KeyMsg) (*View[T], tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Reset):
		v.err = nil
		v.form.Reset()
		v.formRequest = ""
		v.focusForm()
		if v.ctrl != nil {
			v.ctrl.Reset()
		}
		return v, nil

	case key.Matches(msg, v.keymap.Download):
		v.err = nil
		fields := v.form.Fields()
		return v, v.run(messages.OpDownload, func(ctx context.Context) error {
			return v.ctrl.Download(ctx, fields)
		})
	}

	if v.form.Focused() {
		return v.handleFormKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View[T]) handleFormKey(msg tea.KeyMsg) (*View[T], tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Search):
		v.err = nil
		fields := v.form.Fields()
		v.formRequest = domain.SearchRequest(formMap(fields)).NonEmpty().Encode()
		return v, v.run(messages.OpSubmit, func(ctx context.Context) error {
			return v.ctrl.Submit(ctx, fields)
		})

	case key.Matches(msg, v.keymap.NextField):
		return v, v.form.Next()

	case key.Matches(msg, v.keymap.PrevField):
		return v, v.form.Prev()

	case key.Matches(msg, v.keymap.Back):
		if v.table.Len() > 0 {
			v.focusResults()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

func (v *View[T]) handleResultsKey(msg tea.KeyMsg) (*View[T], tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, v.focusForm()

	case key.Matches(msg, v.keymap.NextPage):
		return v, v.run(messages.OpPage, func(ctx context.Context) error {
			return v.ctrl.NextPage(ctx)
		})

	case key.Matches(msg, v.keymap.PrevPage):
		return v, v.run(messages.OpPage, func(ctx context.Context) error {
			return v.ctrl.PreviousPage(ctx)
		})

	case key.Matches(msg, v.keymap.HistoryBack):
		v.navigate(driving.Location.Back)
		return v, nil

	case key.Matches(msg, v.keymap.HistoryForward):
		v.navigate(driving.Location.Forward)
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// navigate walks the query string history. The controller follows the
// move through its navigation listener.
func (v *View[T]) navigate(step func(driving.Location) bool) {
	if v.location == nil {
		v.err = ErrNoHistory
		return
	}
	if !step(v.location) {
		v.statusbar.SetNotice("No further history.")
	}
}

func (v *View[T]) focusForm() tea.Cmd {
	v.table.Blur()
	v.statusbar.SetResultsFocused(false)
	return v.form.Focus()
}

func (v *View[T]) focusResults() {
	v.form.Blur()
	v.table.Focus()
	v.statusbar.SetResultsFocused(true)
}

// View renders the search view.
func (v *View[T]) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.form.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch {
	case v.table.Len() > 0:
		sections = append(sections, v.table.View(), v.pager.View())
	case v.snap.State == domain.StateEmpty:
		sections = append(sections, v.styles.Warning.Render("No results found."))
	case v.snap.State == domain.StateError:
		sections = append(sections, v.styles.Error.Render(v.snap.ErrorMessage))
	case v.snap.State == domain.StateIdle:
		sections = append(sections, v.styles.Muted.Render(
			fmt.Sprintf("Fill in the %s form and press enter.", v.kind)))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view size and lays out the components.
func (v *View[T]) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.form.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Form lines, blank lines, pager, status bar.
	used := len(v.kind.FormFields()) + 5
	v.table.SetSize(width, height-used)
}

// Kind returns the search kind of the view.
func (v *View[T]) Kind() domain.SearchKind {
	return v.kind
}

// Snapshot returns the last rendered snapshot.
func (v *View[T]) Snapshot() domain.Snapshot[T] {
	return v.snap
}

// FormFocused returns whether the form has focus rather than the table.
func (v *View[T]) FormFocused() bool {
	return v.form.Focused()
}

// Form returns the form component.
func (v *View[T]) Form() *input.Form {
	return v.form
}

// Rows returns the number of result rows shown.
func (v *View[T]) Rows() int {
	return v.table.Len()
}

// Notice returns the status bar notice.
func (v *View[T]) Notice() string {
	return v.statusbar.Notice()
}

// Err returns the last error not shown through the snapshot.
func (v *View[T]) Err() error {
	return v.err
}

// Ready returns whether the view has received its size.
func (v *View[T]) Ready() bool {
	return v.ready
}

func formMap(fields domain.FormFields) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}
