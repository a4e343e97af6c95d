package driving

import (
	"context"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// Location is the navigable query string of one search kind.
type Location interface {
	// RawQuery returns the encoded current query string.
	RawQuery() string

	// Navigate moves to rawQuery as external navigation.
	Navigate(rawQuery string) error

	// Back moves one step back. It returns false at the oldest entry.
	Back() bool

	// Forward moves one step forward. It returns false at the newest entry.
	Forward() bool

	CanGoBack() bool
	CanGoForward() bool
}

// History lists persisted query strings.
type History interface {
	// List returns the most recent entries of a kind, newest first.
	// An empty kind lists every kind.
	List(ctx context.Context, kind domain.SearchKind, limit int) ([]domain.HistoryEntry, error)

	// Clear removes every entry of a kind. An empty kind clears all.
	Clear(ctx context.Context, kind domain.SearchKind) error
}
