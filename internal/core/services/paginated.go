package services

import (
	"context"
	"fmt"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
	"github.com/legumeinfo/lis-search/internal/logger"
)

// Ensure PaginatedSearchController implements the interface.
var _ driving.PaginatedSearchController[domain.Gene] = (*PaginatedSearchController[domain.Gene])(nil)

// PaginatedSearchController adds page tracking to a SearchController.
// It owns the page state and delegates everything else.
type PaginatedSearchController[T any] struct {
	inner    *SearchController[T]
	pages    *PaginationState
	store    driven.QueryStringStore
	required domain.RequiredGroups
	log      *logger.Logger
}

// NewPaginatedSearchController creates a paginated controller.
// required lists the field groups that trigger AutoSubmit.
func NewPaginatedSearchController[T any](
	name string,
	searcher driven.Searcher[T],
	store driven.QueryStringStore,
	required domain.RequiredGroups,
) *PaginatedSearchController[T] {
	p := &PaginatedSearchController[T]{
		inner:    NewSearchController(name, searcher, store),
		pages:    NewPaginationState(),
		store:    store,
		required: required,
		log:      logger.For("paginate/" + name),
	}
	p.inner.onResult = p.applyResult
	p.inner.onReset = p.resetPages
	p.inner.decorate = p.decorate
	return p
}

// SetDownloader sets the optional download function.
func (p *PaginatedSearchController[T]) SetDownloader(d driven.Downloader) {
	p.inner.SetDownloader(d)
}

// SetFormToObject overrides the form mapping.
func (p *PaginatedSearchController[T]) SetFormToObject(fn FormToObject) {
	p.inner.SetFormToObject(fn)
}

// SetMetrics sets the optional metrics recorder.
func (p *PaginatedSearchController[T]) SetMetrics(m driven.SearchMetrics) {
	p.inner.SetMetrics(m)
}

// Name returns the controller name.
func (p *PaginatedSearchController[T]) Name() string {
	return p.inner.Name()
}

// Required returns the field groups that trigger AutoSubmit.
func (p *PaginatedSearchController[T]) Required() domain.RequiredGroups {
	return p.required
}

// Submit is a fresh form submission: it always searches page 1. The
// page state moves to 1 only once the search succeeds.
func (p *PaginatedSearchController[T]) Submit(ctx context.Context, fields domain.FormFields) error {
	req := p.inner.formToObject(fields).WithPage(1)
	return p.inner.search(ctx, req, true, true)
}

// ChangePage re-issues the last accepted request for page.
func (p *PaginatedSearchController[T]) ChangePage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("page %d: %w", page, domain.ErrInvalidInput)
	}
	last := p.inner.Request()
	if len(last) == 0 {
		return domain.ErrNoRequest
	}
	p.pages.SetPage(page)
	return p.inner.search(ctx, last.WithPage(page), false, true)
}

// NextPage moves forward one page. It does nothing without a next page.
func (p *PaginatedSearchController[T]) NextPage(ctx context.Context) error {
	ps := p.pages.Get()
	if !ps.HasNext {
		return nil
	}
	return p.ChangePage(ctx, ps.Page+1)
}

// PreviousPage moves back one page. It does nothing on page 1.
func (p *PaginatedSearchController[T]) PreviousPage(ctx context.Context) error {
	ps := p.pages.Get()
	if !ps.HasPrevious() {
		return nil
	}
	return p.ChangePage(ctx, ps.Page-1)
}

// AutoSubmit searches with the query string when any required group is
// fully present, starting at its page parameter. Otherwise it resets.
// The query string is not written back, so a location without a page
// parameter gains no history entry.
func (p *PaginatedSearchController[T]) AutoSubmit(ctx context.Context) error {
	req, ok := p.autoRequest()
	if !ok {
		p.inner.Reset()
		return nil
	}
	p.pages.SetPage(req.Page())
	return p.inner.search(ctx, req, false, false)
}

// Listen runs AutoSubmit on every external navigation of the query
// string. The search is started before the listener returns so that
// navigations are superseded in order; the wait happens in the
// background. The returned function stops listening.
func (p *PaginatedSearchController[T]) Listen(ctx context.Context) func() {
	if p.store == nil {
		return func() {}
	}
	return p.store.Subscribe(func(ev driven.NavigationEvent) {
		p.log.Debug("navigation (%s): %s", ev.Cause, ev.Params.Encode())
		req, ok := p.autoRequest()
		if !ok {
			p.inner.Reset()
			return
		}
		p.pages.SetPage(req.Page())
		call, err := p.inner.begin(ctx, req, false)
		if err != nil {
			p.log.Warn("auto submit: %v", err)
			return
		}
		go func() {
			if err := p.inner.finish(ctx, call, false); err != nil {
				p.log.Warn("auto submit: %v", err)
			}
		}()
	})
}

// autoRequest returns the query string as a request, and whether it
// satisfies a required group.
func (p *PaginatedSearchController[T]) autoRequest() (domain.SearchRequest, bool) {
	if p.store == nil {
		return nil, false
	}
	params := p.store.Parameters()
	if !p.required.SatisfiedBy(params) {
		p.log.Debug("no required group in %q", params.Encode())
		return nil, false
	}
	return params.WithPage(params.Page()), true
}

// Download delegates to the inner controller.
func (p *PaginatedSearchController[T]) Download(ctx context.Context, fields domain.FormFields) error {
	return p.inner.Download(ctx, fields)
}

// LastDownload delegates to the inner controller.
func (p *PaginatedSearchController[T]) LastDownload() domain.DownloadResult {
	return p.inner.LastDownload()
}

// Reset returns to Idle on page 1.
func (p *PaginatedSearchController[T]) Reset() {
	p.inner.Reset()
}

// Snapshot returns the current state including the page.
func (p *PaginatedSearchController[T]) Snapshot() domain.Snapshot[T] {
	return p.inner.Snapshot()
}

// Subscribe registers a state change listener.
func (p *PaginatedSearchController[T]) Subscribe(listener driving.StateListener[T]) func() {
	return p.inner.Subscribe(listener)
}

// PageState returns the current page state.
func (p *PaginatedSearchController[T]) PageState() domain.PageState {
	return p.pages.Get()
}

func (p *PaginatedSearchController[T]) applyResult(
	req domain.SearchRequest, result domain.PaginatedSearchResult[T], fresh bool,
) {
	if fresh {
		p.pages.SetPage(1)
	} else {
		p.pages.SetPage(req.Page())
	}
	p.pages.Update(result.NextPageExists(), result.NumPages)
}

func (p *PaginatedSearchController[T]) resetPages() bool {
	before := p.pages.Get()
	p.pages.Reset()
	return before.Page != 1 || before.HasNext || before.NumPages != nil
}

func (p *PaginatedSearchController[T]) decorate(snap *domain.Snapshot[T]) {
	ps := p.pages.Get()
	snap.Page = &ps
}
