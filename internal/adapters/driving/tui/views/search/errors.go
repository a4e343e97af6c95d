package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoController indicates that no search controller was provided.
	ErrNoController = errors.New("search controller is required")

	// ErrNoHistory indicates the view has no navigable query string.
	ErrNoHistory = errors.New("query string history is not available")
)
