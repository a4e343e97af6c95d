package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

type searchReply struct {
	result domain.PaginatedSearchResult[domain.Gene]
	err    error
}

// searchCall is one invocation of the fake searcher, resolved by the test.
type searchCall struct {
	ctx   context.Context
	req   domain.SearchRequest
	reply chan searchReply
}

func (c *searchCall) resolve(result domain.PaginatedSearchResult[domain.Gene]) {
	c.reply <- searchReply{result: result}
}

func (c *searchCall) fail(err error) {
	c.reply <- searchReply{err: err}
}

// fakeSearcher hands every call to the test and blocks until resolved.
// It ignores its context, like a search function that never honours abort.
type fakeSearcher struct {
	calls  chan *searchCall
	closed chan struct{}
}

func newFakeSearcher(t *testing.T) *fakeSearcher {
	f := &fakeSearcher{
		calls:  make(chan *searchCall, 16),
		closed: make(chan struct{}),
	}
	t.Cleanup(func() { close(f.closed) })
	return f
}

func (f *fakeSearcher) Search(
	ctx context.Context, req domain.SearchRequest,
) (domain.PaginatedSearchResult[domain.Gene], error) {
	call := &searchCall{ctx: ctx, req: req, reply: make(chan searchReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.result, r.err
	case <-f.closed:
		return domain.PaginatedSearchResult[domain.Gene]{}, context.Canceled
	}
}

func (f *fakeSearcher) next(t *testing.T) *searchCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("search function was not called")
		return nil
	}
}

// instantSearcher returns canned results immediately.
func instantSearcher(
	result domain.PaginatedSearchResult[domain.Gene], err error,
) driven.SearcherFunc[domain.Gene] {
	return func(context.Context, domain.SearchRequest) (domain.PaginatedSearchResult[domain.Gene], error) {
		return result, err
	}
}

// recordingSearcher returns canned results and records requests.
type recordingSearcher struct {
	mu       sync.Mutex
	requests []domain.SearchRequest
	result   func(req domain.SearchRequest) domain.PaginatedSearchResult[domain.Gene]
}

func (r *recordingSearcher) Search(
	_ context.Context, req domain.SearchRequest,
) (domain.PaginatedSearchResult[domain.Gene], error) {
	r.mu.Lock()
	r.requests = append(r.requests, req.Clone())
	r.mu.Unlock()
	return r.result(req), nil
}

func (r *recordingSearcher) last() domain.SearchRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}

func (r *recordingSearcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// fakeQueryStringStore is an in-process location with manual navigation.
type fakeQueryStringStore struct {
	mu        sync.Mutex
	params    domain.SearchRequest
	writes    []domain.SearchRequest
	listeners []driven.NavigationListener
}

func newFakeQueryStringStore(params domain.SearchRequest) *fakeQueryStringStore {
	return &fakeQueryStringStore{params: params.Clone()}
}

func (s *fakeQueryStringStore) GetParameter(name, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.params[name]; ok {
		return v
	}
	return def
}

func (s *fakeQueryStringStore) Parameters() domain.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

func (s *fakeQueryStringStore) SetParameters(_ context.Context, params domain.SearchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params.Clone()
	s.writes = append(s.writes, params.Clone())
	return nil
}

func (s *fakeQueryStringStore) Subscribe(l driven.NavigationListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	return func() {}
}

// navigate simulates an external navigation to params.
func (s *fakeQueryStringStore) navigate(params domain.SearchRequest) {
	s.mu.Lock()
	s.params = params.Clone()
	listeners := append([]driven.NavigationListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(driven.NavigationEvent{Params: params.Clone(), Cause: "navigate"})
	}
}

func (s *fakeQueryStringStore) lastWrite() domain.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return nil
	}
	return s.writes[len(s.writes)-1]
}

// stateRecorder collects emitted state changes.
type stateRecorder struct {
	mu      sync.Mutex
	changes []domain.StateChange[domain.Gene]
}

func (r *stateRecorder) listen(change domain.StateChange[domain.Gene]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *stateRecorder) states() []domain.SearchState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SearchState, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Snapshot.State
	}
	return out
}

type metricsCall struct {
	controller string
	op         string
	outcome    domain.Outcome
}

type fakeMetrics struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (m *fakeMetrics) ObserveRequest(controller, op string, outcome domain.Outcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, metricsCall{controller, op, outcome})
}

func genes(ids ...string) []domain.Gene {
	out := make([]domain.Gene, len(ids))
	for i, id := range ids {
		out[i] = domain.Gene{Identifier: id}
	}
	return out
}

func geneResult(ids ...string) domain.PaginatedSearchResult[domain.Gene] {
	return domain.PaginatedSearchResult[domain.Gene]{
		SearchResult: domain.SearchResult[domain.Gene]{Results: genes(ids...)},
	}
}
