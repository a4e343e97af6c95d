package mcp

import (
	"net/http"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Genes runs gene searches.
	Genes driving.PaginatedSearchController[domain.Gene]

	// Traits runs trait searches.
	Traits driving.PaginatedSearchController[domain.Trait]

	// History lists recorded query strings. Optional.
	History driving.History

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures a search controller is set.
func (p *Ports) Validate() error {
	if p.Genes == nil && p.Traits == nil {
		return ErrMissingSearchController
	}
	return nil
}
