package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui"
	"github.com/legumeinfo/lis-search/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Each search kind has a form, a result table and a pager. The TUI starts
from the saved query string of each kind and follows it when another
lis-search process changes it.

Controls:
  Enter        - Search
  Tab          - Next form field
  Esc          - Switch between form and results
  n/p          - Next / previous page
  [ / ]        - Query string history back / forward
  Ctrl+T       - Switch search kind
  Ctrl+D       - Download all pages
  Ctrl+R       - Reset
  Ctrl+S       - Settings
  F1           - Toggle help
  Ctrl+C       - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the wired services.
func tuiPorts(s *Services) *tui.Ports {
	return &tui.Ports{
		Genes:     s.Genes,
		Traits:    s.Traits,
		Locations: s.Locations,
		Settings:  s.Settings,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	s, err := requireServices()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Follow edits of the location files made by other processes.
	if s.Watch != nil {
		go func() {
			if err := s.Watch(ctx); err != nil {
				logger.Warn("location watcher stopped: %v", err)
			}
		}()
	}

	app, err := tui.NewApp(tuiPorts(s))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
