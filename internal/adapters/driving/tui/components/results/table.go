// Package results provides the result table component for the TUI.
package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

const (
	// truncateClass marks columns kept narrow.
	truncateClass  = "truncate"
	truncateWidth  = 40
	maxColumnWidth = 60
	minColumnWidth = 6
)

// Table lays out search results as configured by a TableConfig.
type Table struct {
	config domain.TableConfig
	model  table.Model
	styles *styles.Styles
	rows   []table.Row
	width  int
	height int
}

// NewTable creates an empty result table.
func NewTable(cfg domain.TableConfig, s *styles.Styles) *Table {
	if s == nil {
		s = styles.DefaultStyles()
	}

	t := &Table{
		config: cfg,
		styles: s,
		width:  80,
		height: 10,
	}
	t.model = table.New(
		table.WithColumns(t.columns()),
		table.WithHeight(t.height),
		table.WithStyles(s.Table()),
	)
	return t
}

// SetResults replaces the rows. Results that cannot be laid out are
// reported and skipped.
func SetResults[T any](t *Table, results []T) error {
	rows := make([]table.Row, 0, len(results))
	var bad []string
	for i, result := range results {
		row, err := t.config.Row(result)
		if err != nil {
			bad = append(bad, fmt.Sprintf("result %d: %v", i+1, err))
			continue
		}
		rows = append(rows, table.Row(row))
	}
	t.rows = rows
	t.model.SetRows(nil)
	t.model.SetColumns(t.columns())
	t.model.SetRows(rows)
	t.model.GotoTop()
	if len(bad) > 0 {
		return fmt.Errorf("%s", strings.Join(bad, "; "))
	}
	return nil
}

// Clear removes every row.
func (t *Table) Clear() {
	t.rows = nil
	t.model.SetRows(nil)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Update forwards navigation keys to the table.
func (t *Table) Update(msg tea.Msg) (*Table, tea.Cmd) {
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

// View renders the table.
func (t *Table) View() string {
	return t.model.View()
}

// Focus gives the table keyboard focus.
func (t *Table) Focus() {
	t.model.Focus()
}

// Blur removes keyboard focus from the table.
func (t *Table) Blur() {
	t.model.Blur()
}

// Focused returns whether the table has keyboard focus.
func (t *Table) Focused() bool {
	return t.model.Focused()
}

// Cursor returns the selected row index.
func (t *Table) Cursor() int {
	return t.model.Cursor()
}

// SelectedRow returns the cells of the selected row, or nil.
func (t *Table) SelectedRow() []string {
	return t.model.SelectedRow()
}

// SetSize sets the space available to the table.
func (t *Table) SetSize(width, height int) {
	t.width = width
	t.height = max(height, 3)
	t.model.SetWidth(width)
	t.model.SetHeight(t.height)
	t.model.SetColumns(t.columns())
}

// columns sizes each configured column to its widest cell, then
// narrows the widest columns until the table fits.
func (t *Table) columns() []table.Column {
	cols := make([]table.Column, len(t.config.Attributes))
	for i, attr := range t.config.Attributes {
		title := t.config.HeaderFor(attr)
		width := ansi.StringWidth(title)
		for _, row := range t.rows {
			width = max(width, ansi.StringWidth(row[i]))
		}
		limit := maxColumnWidth
		if hasClass(t.config.ClassFor(attr), truncateClass) {
			limit = truncateWidth
		}
		cols[i] = table.Column{Title: title, Width: min(width, limit)}
	}
	fit(cols, t.width)
	return cols
}

// fit shrinks the widest column until the total, including cell
// padding, is within width or every column is at its minimum.
func fit(cols []table.Column, width int) {
	if width <= 0 {
		return
	}
	total := func() int {
		sum := 0
		for _, c := range cols {
			sum += c.Width + 2
		}
		return sum
	}
	for total() > width {
		widest := -1
		for i, c := range cols {
			if c.Width > minColumnWidth && (widest < 0 || c.Width > cols[widest].Width) {
				widest = i
			}
		}
		if widest < 0 {
			return
		}
		cols[widest].Width--
	}
}

func hasClass(classes, class string) bool {
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}
