package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

const (
	// truncateClass marks columns whose cells are shortened.
	truncateClass = "truncate"
	truncateWidth = 40
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// terminalWidth returns the width of w if it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}
	return width, true
}

// tableRows lays out results with cfg, shortening truncate columns.
func tableRows[T any](cfg domain.TableConfig, results []T) ([][]string, error) {
	rows := make([][]string, 0, len(results))
	for i, result := range results {
		row, err := cfg.Row(result)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i+1, err)
		}
		for col, attr := range cfg.Attributes {
			if hasClass(cfg.ClassFor(attr), truncateClass) {
				row[col] = ansi.Truncate(row[col], truncateWidth, "…")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasClass(classes, class string) bool {
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// writeTable prints rows as a bordered table on terminals and as
// tab-separated lines elsewhere.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	width, tty := terminalWidth(w)
	if !tty {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	fmt.Fprintln(w, t.String())
}

type snapshotJSON[T any] struct {
	State   domain.SearchState `json:"state"`
	Summary string             `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
	Query   string             `json:"query,omitempty"`
	Page    *domain.PageState  `json:"page,omitempty"`
	Results []T                `json:"results"`
}

// printSnapshot renders a finished search. A snapshot in the Error
// state is returned as an error after printing nothing.
func printSnapshot[T any](cmd *cobra.Command, snap domain.Snapshot[T], cfg domain.TableConfig, asJSON bool) error {
	if snap.State == domain.StateError {
		return fmt.Errorf("search failed: %s", snap.ErrorMessage)
	}

	if asJSON {
		out := snapshotJSON[T]{
			State:   snap.State,
			Summary: snap.Summary,
			Query:   snap.Request.Encode(),
			Page:    snap.Page,
			Results: snap.Results,
		}
		if out.Results == nil {
			out.Results = []T{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	switch snap.State {
	case domain.StateIdle:
		cmd.Println("No search: the query string has no required field group.")
		return nil
	case domain.StateEmpty:
		cmd.Println("No results found.")
		return nil
	}

	rows, err := tableRows(cfg, snap.Results)
	if err != nil {
		return err
	}
	cmd.Println(snap.Summary)
	writeTable(cmd.OutOrStdout(), cfg.Headers(), rows)
	if snap.Page != nil {
		cmd.Println(pageLine(*snap.Page))
	}
	return nil
}

func pageLine(p domain.PageState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d", p.Page)
	if p.NumPages != nil {
		fmt.Fprintf(&b, " of %d", *p.NumPages)
	}
	switch {
	case p.HasNext && p.HasPrevious():
		b.WriteString(" (more before and after)")
	case p.HasNext:
		b.WriteString(" (more after)")
	case p.HasPrevious():
		b.WriteString(" (more before)")
	}
	return b.String()
}
