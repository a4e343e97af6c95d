package services

import (
	"slices"
	"sync"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// SearchResultState holds the outcome of the latest search.
// It is not safe for concurrent use; the owning controller guards it.
type SearchResultState[T any] struct {
	state        domain.SearchState
	results      []T
	summary      string
	errorMessage string
}

// NewSearchResultState creates an Idle state.
func NewSearchResultState[T any]() *SearchResultState[T] {
	return &SearchResultState[T]{state: domain.StateIdle}
}

// State returns the lifecycle state.
func (s *SearchResultState[T]) State() domain.SearchState { return s.state }

// Results returns the held results.
func (s *SearchResultState[T]) Results() []T { return s.results }

// Summary returns the result-count summary.
func (s *SearchResultState[T]) Summary() string { return s.summary }

// ErrorMessage returns the message of the last failure.
func (s *SearchResultState[T]) ErrorMessage() string { return s.errorMessage }

// SetLoading marks a request in flight. Results stay until replaced.
func (s *SearchResultState[T]) SetLoading() {
	s.state = domain.StateLoading
	s.errorMessage = ""
}

// SetSuccess stores a non-empty result set.
func (s *SearchResultState[T]) SetSuccess(results []T, summary string) {
	s.state = domain.StateSuccess
	s.results = results
	s.summary = summary
	s.errorMessage = ""
}

// SetEmpty records a search that matched nothing.
func (s *SearchResultState[T]) SetEmpty() {
	s.state = domain.StateEmpty
	s.results = nil
	s.summary = ""
	s.errorMessage = ""
}

// SetError records a failure. Results are kept.
func (s *SearchResultState[T]) SetError(message string) {
	s.state = domain.StateError
	s.errorMessage = message
}

// SetDone marks a download finished without touching results.
func (s *SearchResultState[T]) SetDone() {
	s.state = domain.StateSuccess
	s.errorMessage = ""
}

// Reset returns to Idle and drops results.
func (s *SearchResultState[T]) Reset() {
	s.state = domain.StateIdle
	s.results = nil
	s.summary = ""
	s.errorMessage = ""
}

// IsReset reports whether the state is Idle with nothing held.
func (s *SearchResultState[T]) IsReset() bool {
	return s.state == domain.StateIdle && s.results == nil && s.summary == "" && s.errorMessage == ""
}

func (s *SearchResultState[T]) fill(snap *domain.Snapshot[T]) {
	snap.State = s.state
	snap.Results = slices.Clone(s.results)
	snap.Summary = s.summary
	snap.ErrorMessage = s.errorMessage
}

// PaginationState tracks the current page independently of the data source.
type PaginationState struct {
	mu       sync.Mutex
	page     int
	hasNext  bool
	numPages *int
}

// NewPaginationState starts at page 1 with no next page.
func NewPaginationState() *PaginationState {
	return &PaginationState{page: 1}
}

// SetPage moves to page, clamped to 1.
func (p *PaginationState) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = max(page, 1)
}

// Update records what the source reported about the current page.
func (p *PaginationState) Update(hasNext bool, numPages *int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasNext = hasNext
	p.numPages = numPages
}

// Reset returns to page 1 with no next page.
func (p *PaginationState) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = 1
	p.hasNext = false
	p.numPages = nil
}

// Get returns a copy of the page state.
func (p *PaginationState) Get() domain.PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	ps := domain.PageState{Page: p.page, HasNext: p.hasNext}
	if p.numPages != nil {
		ps.NumPages = domain.IntPtr(*p.numPages)
	}
	return ps
}
