// Package cli provides the lis-search command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
	"github.com/legumeinfo/lis-search/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services holds the ports the commands drive.
type Services struct {
	Settings  driving.SettingsService
	Genes     driving.PaginatedSearchController[domain.Gene]
	Traits    driving.PaginatedSearchController[domain.Trait]
	Locations map[domain.SearchKind]driving.Location
	History   driving.History

	// Metrics serves Prometheus metrics. Optional.
	Metrics http.Handler

	// Watch starts following external edits of every location. Optional.
	Watch func(ctx context.Context) error

	closers []func() error
}

// Close releases the resources opened by Wire.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// active is set by SetServices or built on first use.
var active *Services

// wired is true when active was built by the root command and must be
// closed by it.
var wired bool

var rootCmd = &cobra.Command{
	Use:   "lis-search",
	Short: "Search the Legume Information System",
	Long: `lis-search runs gene and trait searches against the LIS GraphQL API.

Searches are paginated; the query string of each search kind is kept in
~/.lis-search and recorded in a local history, so a running TUI follows
searches made from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.lis-search)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the ports used by every command.
func SetServices(s *Services) {
	active = s
	wired = false
}

// Execute runs the root command and releases wired services.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardown())
}

// commands that never touch services.
var standalone = map[string]bool{"version": true, "help": true, "completion": true}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if active != nil || standalone[cmd.Name()] {
		return nil
	}

	logger.Debug("wiring services from %q", configDir)
	s, err := Wire(configDir)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	active = s
	wired = true
	return nil
}

func teardown() error {
	if !wired || active == nil {
		return nil
	}
	err := active.Close()
	active = nil
	wired = false
	return err
}

// requireServices returns the injected services or an error.
func requireServices() (*Services, error) {
	if active == nil {
		return nil, errors.New("services not configured")
	}
	return active, nil
}

// parseKind validates a --kind flag value.
func parseKind(value string) (domain.SearchKind, error) {
	kind := domain.SearchKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: search kind %q (want one of %v)", domain.ErrUnsupportedType, value, domain.SearchKinds())
	}
	return kind, nil
}
