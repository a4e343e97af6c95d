// Package tui provides an interactive terminal user interface for the
// LIS searches. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Genes and Traits run the bundled searches. Either may be nil.
	Genes  driving.PaginatedSearchController[domain.Gene]
	Traits driving.PaginatedSearchController[domain.Trait]

	// Locations are the navigable query strings, by kind. Optional.
	Locations map[domain.SearchKind]driving.Location

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// Validate ensures at least one search is available.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Genes == nil && p.Traits == nil {
		return ErrMissingSearchController
	}
	return nil
}

// settings returns the configured settings, or the defaults.
func (p *Ports) settings() (domain.AppSettings, error) {
	if p.Settings == nil {
		return domain.DefaultAppSettings(), nil
	}
	s, err := p.Settings.Get()
	if err != nil {
		return domain.AppSettings{}, err
	}
	return *s, nil
}
