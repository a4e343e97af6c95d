package driven

import (
	"context"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// NavigationEvent describes an externally initiated query string change.
type NavigationEvent struct {
	// Params is the query string after navigation.
	Params domain.SearchRequest

	// Cause names the navigation: "back", "forward", "navigate" or "external".
	Cause string
}

// NavigationListener receives navigation events.
type NavigationListener func(NavigationEvent)

// QueryStringStore reads and writes the named parameters of the current
// location.
type QueryStringStore interface {
	// GetParameter returns a parameter value, or def if absent.
	GetParameter(name, def string) string

	// Parameters returns a copy of all current parameters.
	Parameters() domain.SearchRequest

	// SetParameters replaces the full query string and pushes a history
	// entry. Listeners are NOT notified of changes made this way.
	SetParameters(ctx context.Context, params domain.SearchRequest) error

	// Subscribe registers a listener for external navigation.
	// Listeners run in registration order. The returned function unsubscribes.
	Subscribe(listener NavigationListener) func()
}

// HistoryStore persists query string history.
type HistoryStore interface {
	// Append stores a new entry.
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// List returns the most recent entries of a kind, newest first.
	// An empty kind lists every kind.
	List(ctx context.Context, kind domain.SearchKind, limit int) ([]domain.HistoryEntry, error)

	// Latest returns the newest entry of a kind, or domain.ErrNotFound.
	Latest(ctx context.Context, kind domain.SearchKind) (*domain.HistoryEntry, error)

	// Clear removes every entry of a kind. An empty kind clears all.
	Clear(ctx context.Context, kind domain.SearchKind) error
}
