package domain

// SearchState is the lifecycle state of a search controller.
type SearchState string

// Controller states.
const (
	StateIdle    SearchState = "idle"
	StateLoading SearchState = "loading"
	StateSuccess SearchState = "success"
	StateEmpty   SearchState = "empty"
	StateError   SearchState = "error"
)

// IsValid returns true if the state is recognised.
func (s SearchState) IsValid() bool {
	switch s {
	case StateIdle, StateLoading, StateSuccess, StateEmpty, StateError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SearchState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s SearchState) Description() string {
	switch s {
	case StateIdle:
		return "Ready"
	case StateLoading:
		return "Searching..."
	case StateSuccess:
		return "Results"
	case StateEmpty:
		return "No results"
	case StateError:
		return "Error"
	default:
		return unknownDescription
	}
}

// PageState tracks pagination independently of the data source.
type PageState struct {
	// Page is the current page, always >= 1.
	Page int `json:"page"`

	// HasNext reports whether a following page exists.
	HasNext bool `json:"hasNext"`

	// NumPages is the total page count, when the source reports it.
	NumPages *int `json:"numPages,omitempty"`
}

// HasPrevious reports whether a preceding page exists.
func (p PageState) HasPrevious() bool {
	return p.Page > 1
}

// Snapshot is an immutable view of a controller for renderers.
type Snapshot[T any] struct {
	State        SearchState
	Results      []T
	Summary      string
	ErrorMessage string

	// Request is the last accepted search request.
	Request SearchRequest

	// Page is set by paginated controllers only.
	Page *PageState

	// Generation identifies the request the snapshot reflects.
	Generation uint64
}

// StateChange is emitted after every controller state mutation.
type StateChange[T any] struct {
	Previous SearchState
	Snapshot Snapshot[T]
}

// Outcome classifies how a search or download request ended.
type Outcome string

// Request outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeEmpty     Outcome = "empty"
	OutcomeDataError Outcome = "data_error"
	OutcomeError     Outcome = "error"
	OutcomeAborted   Outcome = "aborted"
)
