package driving

import (
	"context"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// StateListener receives controller state changes.
type StateListener[T any] func(domain.StateChange[T])

// SearchController runs one search form's lifecycle.
type SearchController[T any] interface {
	// Submit parses a form submission and searches with it.
	Submit(ctx context.Context, fields domain.FormFields) error

	// Download runs the download function with a form submission.
	Download(ctx context.Context, fields domain.FormFields) error

	// LastDownload returns the result of the most recent download that
	// was not superseded.
	LastDownload() domain.DownloadResult

	// Reset returns to Idle, clearing results and the held request.
	Reset()

	// Snapshot returns the current state.
	Snapshot() domain.Snapshot[T]

	// Subscribe registers a state change listener.
	// The returned function unsubscribes.
	Subscribe(listener StateListener[T]) func()
}

// PaginatedSearchController adds page tracking to a SearchController.
type PaginatedSearchController[T any] interface {
	SearchController[T]

	// ChangePage re-issues the last accepted request for another page.
	ChangePage(ctx context.Context, page int) error

	// NextPage moves one page forward.
	NextPage(ctx context.Context) error

	// PreviousPage moves one page back.
	PreviousPage(ctx context.Context) error

	// AutoSubmit searches from the query string if any required field
	// group is present, and resets otherwise.
	AutoSubmit(ctx context.Context) error

	// PageState returns the current page state.
	PageState() domain.PageState

	// Listen runs AutoSubmit on every external navigation until the
	// returned function is called.
	Listen(ctx context.Context) func()
}
