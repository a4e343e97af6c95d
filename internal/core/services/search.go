package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
	"github.com/legumeinfo/lis-search/internal/logger"
)

// Ensure SearchController implements the interface.
var _ driving.SearchController[domain.Gene] = (*SearchController[domain.Gene])(nil)

// FormToObject maps a raw form submission to a search request.
type FormToObject func(fields domain.FormFields) domain.SearchRequest

// DefaultFormToObject maps each field name to its value.
// When a name repeats, the last value wins.
func DefaultFormToObject(fields domain.FormFields) domain.SearchRequest {
	req := make(domain.SearchRequest, len(fields))
	for _, f := range fields {
		req[f.Name] = f.Value
	}
	return req
}

// pendingSearch is a search that has been started but not yet applied.
type pendingSearch struct {
	gen   Generation
	req   domain.SearchRequest
	start time.Time
}

// SearchController runs the lifecycle of one search form: it owns the
// result state and the cancel token, and applies only the outcome of
// the newest request.
type SearchController[T any] struct {
	name         string
	searcher     driven.Searcher[T]
	downloader   driven.Downloader
	store        driven.QueryStringStore
	metrics      driven.SearchMetrics
	formToObject FormToObject
	log          *logger.Logger

	mu      sync.Mutex
	state   *SearchResultState[T]
	request domain.SearchRequest
	token   *CancelToken
	seq     uint64
	last    domain.DownloadResult
	events  notifier[T]

	// Hooks for PaginatedSearchController. Called with mu held.
	onResult func(req domain.SearchRequest, result domain.PaginatedSearchResult[T], fresh bool)
	onReset  func() bool
	decorate func(snap *domain.Snapshot[T])
}

// NewSearchController creates a controller in the Idle state.
// The store is optional (can be nil); without it requests are not
// persisted to the query string.
func NewSearchController[T any](
	name string,
	searcher driven.Searcher[T],
	store driven.QueryStringStore,
) *SearchController[T] {
	return &SearchController[T]{
		name:         name,
		searcher:     searcher,
		store:        store,
		formToObject: DefaultFormToObject,
		log:          logger.For("search/" + name),
		state:        NewSearchResultState[T](),
		token:        NewCancelToken(),
	}
}

// SetDownloader sets the optional download function.
func (c *SearchController[T]) SetDownloader(d driven.Downloader) {
	c.downloader = d
}

// SetFormToObject overrides the form mapping. A nil mapping restores the
// default.
func (c *SearchController[T]) SetFormToObject(fn FormToObject) {
	if fn == nil {
		fn = DefaultFormToObject
	}
	c.formToObject = fn
}

// SetMetrics sets the optional metrics recorder.
func (c *SearchController[T]) SetMetrics(m driven.SearchMetrics) {
	c.metrics = m
}

// Name returns the controller name.
func (c *SearchController[T]) Name() string {
	return c.name
}

// Submit parses a form submission and searches with it.
func (c *SearchController[T]) Submit(ctx context.Context, fields domain.FormFields) error {
	return c.Search(ctx, c.formToObject(fields))
}

// Search runs req, superseding any request in flight.
//
// An aborted request returns nil and leaves state as it was when the
// search function was invoked. Data errors are surfaced through the
// snapshot and return nil. Any other failure is surfaced and returned
// as a *domain.TransportError.
func (c *SearchController[T]) Search(ctx context.Context, req domain.SearchRequest) error {
	return c.search(ctx, req, true, true)
}

// search runs req. fresh marks a new form submission; persist is false
// for searches read from the query string, which already holds them.
func (c *SearchController[T]) search(ctx context.Context, req domain.SearchRequest, fresh, persist bool) error {
	call, err := c.begin(ctx, req, persist)
	if err != nil {
		return err
	}
	return c.finish(ctx, call, fresh)
}

// begin cancels the previous generation, enters Loading and, when
// persist is set, writes the request to the query string. It does not
// wait for the search function.
func (c *SearchController[T]) begin(ctx context.Context, req domain.SearchRequest, persist bool) (pendingSearch, error) {
	if c.searcher == nil {
		c.log.Error("%v", domain.ErrNoSearchFunction)
		return pendingSearch{}, domain.ErrNoSearchFunction
	}
	req = req.Clone()

	c.mu.Lock()
	gen := c.token.Cancel()
	previous := c.state.State()
	c.request = req
	c.state.SetLoading()
	seq, change := c.commitLocked(previous)
	c.mu.Unlock()

	c.log.Debug("generation %d: %s", gen.ID(), req.Encode())
	c.events.emit(seq, change)

	if persist && c.store != nil {
		if err := c.store.SetParameters(ctx, req.NonEmpty()); err != nil {
			c.log.Warn("persist query string: %v", err)
		}
	}

	return pendingSearch{gen: gen, req: req, start: time.Now()}, nil
}

// finish invokes the search function for call and applies its outcome
// if call is still the newest generation.
func (c *SearchController[T]) finish(ctx context.Context, call pendingSearch, fresh bool) error {
	result, err := Wrap(ctx, call.gen, func(callCtx context.Context) (domain.PaginatedSearchResult[T], error) {
		return c.searcher.Search(callCtx, call.req)
	})

	c.mu.Lock()
	if c.superseded(ctx, call.gen, err) {
		c.mu.Unlock()
		c.log.Debug("generation %d aborted", call.gen.ID())
		c.observe("search", domain.OutcomeAborted, call.start)
		return nil
	}

	previous := c.state.State()
	var (
		outcome domain.Outcome
		failure error
	)
	switch {
	case err != nil:
		failure = &domain.TransportError{Op: "search", Err: err}
		c.state.SetError(err.Error())
		outcome = domain.OutcomeError
	case len(result.Errors) > 0:
		dataErr := &domain.DataError{Messages: result.Errors}
		c.state.SetError(dataErr.Error())
		outcome = domain.OutcomeDataError
	case len(result.Results) == 0:
		c.state.SetEmpty()
		outcome = domain.OutcomeEmpty
	default:
		summary := domain.FormatResultsSummary(call.req.Page(), len(result.Results), result.PageSize, result.NumResults)
		c.state.SetSuccess(result.Results, summary)
		outcome = domain.OutcomeSuccess
	}
	if (outcome == domain.OutcomeSuccess || outcome == domain.OutcomeEmpty) && c.onResult != nil {
		c.onResult(call.req, result, fresh)
	}
	seq, change := c.commitLocked(previous)
	c.mu.Unlock()

	switch outcome {
	case domain.OutcomeError:
		c.log.Error("generation %d: %v", call.gen.ID(), err)
	case domain.OutcomeDataError:
		c.log.Warn("generation %d: %d data errors", call.gen.ID(), len(result.Errors))
	default:
		c.log.Debug("generation %d: %s, %d results", call.gen.ID(), outcome, len(result.Results))
	}
	c.observe("search", outcome, call.start)
	c.events.emit(seq, change)

	return failure
}

// Download runs the download function with a form submission. It
// follows the search cancellation discipline but never touches results.
func (c *SearchController[T]) Download(ctx context.Context, fields domain.FormFields) error {
	if c.downloader == nil {
		c.log.Error("%v", domain.ErrNoDownloadFunction)
		return domain.ErrNoDownloadFunction
	}
	req := c.formToObject(fields).Clone()

	c.mu.Lock()
	gen := c.token.Cancel()
	previous := c.state.State()
	c.state.SetLoading()
	seq, change := c.commitLocked(previous)
	c.mu.Unlock()
	c.events.emit(seq, change)

	start := time.Now()
	result, err := Wrap(ctx, gen, func(callCtx context.Context) (domain.DownloadResult, error) {
		return c.downloader.Download(callCtx, req)
	})

	c.mu.Lock()
	if c.superseded(ctx, gen, err) {
		c.mu.Unlock()
		c.log.Debug("download generation %d aborted", gen.ID())
		c.observe("download", domain.OutcomeAborted, start)
		return nil
	}

	previous = c.state.State()
	var (
		outcome domain.Outcome
		failure error
	)
	switch {
	case err != nil:
		failure = &domain.TransportError{Op: "download", Err: err}
		c.state.SetError(err.Error())
		outcome = domain.OutcomeError
	case len(result.Errors) > 0:
		c.state.SetError((&domain.DataError{Messages: result.Errors}).Error())
		outcome = domain.OutcomeDataError
	default:
		c.state.SetDone()
		outcome = domain.OutcomeSuccess
	}
	if failure == nil {
		c.last = result
	}
	seq, change = c.commitLocked(previous)
	c.mu.Unlock()

	if failure != nil {
		c.log.Error("download generation %d: %v", gen.ID(), err)
	} else if result.Path != "" {
		c.log.Info("downloaded to %s", result.Path)
	}
	c.observe("download", outcome, start)
	c.events.emit(seq, change)

	return failure
}

// LastDownload returns the result of the most recent download that
// completed and was not superseded.
func (c *SearchController[T]) LastDownload() domain.DownloadResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Reset cancels any request in flight and returns to Idle with no
// results and no held request. A reset with nothing to clear emits no
// change.
func (c *SearchController[T]) Reset() {
	c.mu.Lock()
	gen := c.token.Cancel()
	changed := !c.state.IsReset() || c.request != nil
	if c.onReset != nil && c.onReset() {
		changed = true
	}
	if !changed {
		c.mu.Unlock()
		return
	}
	previous := c.state.State()
	c.state.Reset()
	c.request = nil
	seq, change := c.commitLocked(previous)
	c.mu.Unlock()

	c.log.Debug("reset at generation %d", gen.ID())
	c.events.emit(seq, change)
}

// Request returns the last accepted request, or nil.
func (c *SearchController[T]) Request() domain.SearchRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request.Clone()
}

// Snapshot returns the current state.
func (c *SearchController[T]) Snapshot() domain.Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a listener called synchronously after every state
// change. Listeners must not call Submit, Search or Reset inline.
func (c *SearchController[T]) Subscribe(listener driving.StateListener[T]) func() {
	return c.events.subscribe(listener)
}

func (c *SearchController[T]) snapshotLocked() domain.Snapshot[T] {
	snap := domain.Snapshot[T]{
		Request:    c.request.Clone(),
		Generation: c.token.Current().ID(),
	}
	c.state.fill(&snap)
	if c.decorate != nil {
		c.decorate(&snap)
	}
	return snap
}

func (c *SearchController[T]) commitLocked(previous domain.SearchState) (uint64, domain.StateChange[T]) {
	c.seq++
	return c.seq, domain.StateChange[T]{Previous: previous, Snapshot: c.snapshotLocked()}
}

func (c *SearchController[T]) observe(op string, outcome domain.Outcome, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(c.name, op, outcome, time.Since(start))
	}
}

// superseded reports whether the call of generation gen must be dropped.
// Called with mu held. A newer generation always supersedes it. An abort
// error from the search function supersedes it too, unless the caller's
// own ctx was cancelled: then no newer request exists to leave Loading,
// and the cancellation is recorded as a transport error.
func (c *SearchController[T]) superseded(ctx context.Context, gen Generation, err error) bool {
	if !c.token.IsCurrent(gen) {
		return true
	}
	return isAbort(err) && ctx.Err() == nil
}

// isAbort reports whether err marks an aborted request. A search
// function that stops on its cancelled context reports context.Canceled.
func isAbort(err error) bool {
	return domain.IsAborted(err) || errors.Is(err, context.Canceled)
}
