package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

func TestDefaultFormToObject_LastDuplicateWins(t *testing.T) {
	fields := domain.FormFields{
		{Name: "genus", Value: "Glycine"},
		{Name: "species", Value: "max"},
		{Name: "genus", Value: "Phaseolus"},
	}

	req := DefaultFormToObject(fields)

	assert.Equal(t, domain.SearchRequest{"genus": "Phaseolus", "species": "max"}, req)
}

func TestSearchController_InitialState(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes", newFakeSearcher(t), nil)

	snap := c.Snapshot()

	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Empty(t, snap.Results)
	assert.Nil(t, snap.Page)
	assert.Equal(t, "genes", c.Name())
}

func TestSearchController_Outcomes(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name          string
		result        domain.PaginatedSearchResult[domain.Gene]
		err           error
		expectedState domain.SearchState
		expectedCount int
		summary       string
		message       string
		returned      bool
	}{
		{
			name:          "results",
			result:        geneResult("glyma.Glyma.01G000100", "glyma.Glyma.01G000200"),
			expectedState: domain.StateSuccess,
			expectedCount: 2,
			summary:       "2 results",
		},
		{
			name:          "single result",
			result:        geneResult("glyma.Glyma.01G000100"),
			expectedState: domain.StateSuccess,
			expectedCount: 1,
			summary:       "1 result",
		},
		{
			name:          "no results",
			result:        geneResult(),
			expectedState: domain.StateEmpty,
		},
		{
			name: "data errors",
			result: domain.PaginatedSearchResult[domain.Gene]{
				SearchResult: domain.SearchResult[domain.Gene]{
					Errors: []string{"unknown genus", "unknown species"},
				},
			},
			expectedState: domain.StateError,
			message:       "unknown genus\nunknown species",
		},
		{
			name:          "transport error",
			err:           boom,
			expectedState: domain.StateError,
			message:       "connection refused",
			returned:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSearchController[domain.Gene]("genes", instantSearcher(tt.result, tt.err), nil)

			err := c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"})

			if tt.returned {
				var te *domain.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, "search", te.Op)
				assert.ErrorIs(t, err, boom)
			} else {
				require.NoError(t, err)
			}

			snap := c.Snapshot()
			assert.Equal(t, tt.expectedState, snap.State)
			assert.Len(t, snap.Results, tt.expectedCount)
			assert.Equal(t, tt.summary, snap.Summary)
			assert.Equal(t, tt.message, snap.ErrorMessage)
		})
	}
}

func TestSearchController_SummaryWithPaging(t *testing.T) {
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = "gene"
	}
	result := geneResult(ids...)
	result.PageSize = domain.IntPtr(10)
	result.NumResults = domain.IntPtr(214)

	c := NewSearchController[domain.Gene]("genes", instantSearcher(result, nil), nil)

	err := c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine", "page": "3"})

	require.NoError(t, err)
	assert.Equal(t, "21-30 of 214 results", c.Snapshot().Summary)
}

func TestSearchController_NoSearchFunction(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes", nil, nil)
	rec := &stateRecorder{}
	c.Subscribe(rec.listen)

	err := c.Submit(context.Background(), domain.FormFields{{Name: "genus", Value: "Glycine"}})

	require.ErrorIs(t, err, domain.ErrNoSearchFunction)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.EqualError(t, err, "no search function provided")
	assert.Equal(t, domain.StateIdle, c.Snapshot().State)
	assert.Empty(t, rec.states())
}

func TestSearchController_PersistsNonEmptyFields(t *testing.T) {
	store := newFakeQueryStringStore(nil)
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), store)

	err := c.Submit(context.Background(), domain.FormFields{
		{Name: "genus", Value: "Glycine"},
		{Name: "species", Value: ""},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{"genus": "Glycine"}, store.lastWrite())
	assert.Equal(t, domain.SearchRequest{"genus": "Glycine", "species": ""}, c.Request())
}

func TestSearchController_EmitsLoadingThenOutcome(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)
	rec := &stateRecorder{}
	unsubscribe := c.Subscribe(rec.listen)

	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))
	assert.Equal(t, []domain.SearchState{domain.StateLoading, domain.StateSuccess}, rec.states())
	assert.Equal(t, domain.StateLoading, rec.changes[1].Previous)

	unsubscribe()
	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))
	assert.Len(t, rec.states(), 2)
}

func TestSearchController_ListenersRunInRegistrationOrder(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)

	var order []string
	c.Subscribe(func(domain.StateChange[domain.Gene]) { order = append(order, "first") })
	c.Subscribe(func(domain.StateChange[domain.Gene]) { order = append(order, "second") })

	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
}

// A slow older search must never overwrite a newer one, whichever
// resolves first.
func TestSearchController_Supersession(t *testing.T) {
	orders := []struct {
		name   string
		aFirst bool
	}{
		{"older resolves first", true},
		{"newer resolves first", false},
	}

	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			searcher := newFakeSearcher(t)
			c := NewSearchController[domain.Gene]("genes", searcher, nil)
			ctx := context.Background()

			errA := make(chan error, 1)
			go func() { errA <- c.Search(ctx, domain.SearchRequest{"name": "A"}) }()
			callA := searcher.next(t)

			errB := make(chan error, 1)
			go func() { errB <- c.Search(ctx, domain.SearchRequest{"name": "B"}) }()
			callB := searcher.next(t)

			if order.aFirst {
				callA.resolve(geneResult("A1", "A2"))
				require.NoError(t, <-errA)
				callB.resolve(geneResult("B1"))
				require.NoError(t, <-errB)
			} else {
				callB.resolve(geneResult("B1"))
				require.NoError(t, <-errB)
				callA.resolve(geneResult("A1", "A2"))
				require.NoError(t, <-errA)
			}

			snap := c.Snapshot()
			assert.Equal(t, domain.StateSuccess, snap.State)
			assert.Equal(t, genes("B1"), snap.Results)
			assert.Equal(t, domain.SearchRequest{"name": "B"}, snap.Request)
		})
	}
}

func TestSearchController_SupersededFailureIsSilent(t *testing.T) {
	searcher := newFakeSearcher(t)
	c := NewSearchController[domain.Gene]("genes", searcher, nil)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Search(ctx, domain.SearchRequest{"name": "A"}) }()
	callA := searcher.next(t)

	errB := make(chan error, 1)
	go func() { errB <- c.Search(ctx, domain.SearchRequest{"name": "B"}) }()
	callB := searcher.next(t)

	assert.Eventually(t, func() bool { return callA.ctx.Err() != nil }, time.Second, time.Millisecond,
		"superseded call context is cancelled")
	callA.fail(errors.New("late failure"))
	require.NoError(t, <-errA)

	callB.resolve(geneResult("B1"))
	require.NoError(t, <-errB)

	snap := c.Snapshot()
	assert.Equal(t, domain.StateSuccess, snap.State)
	assert.Empty(t, snap.ErrorMessage)
}

func TestSearchController_AbortLeavesStateUnchanged(t *testing.T) {
	searcher := &recordingSearcher{result: func(domain.SearchRequest) domain.PaginatedSearchResult[domain.Gene] {
		return geneResult("a")
	}}
	aborting := false
	c := NewSearchController[domain.Gene]("genes", driven.SearcherFunc[domain.Gene](
		func(ctx context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[domain.Gene], error) {
			if aborting {
				return domain.PaginatedSearchResult[domain.Gene]{}, context.Canceled
			}
			return searcher.Search(ctx, req)
		}), nil)
	ctx := context.Background()

	require.NoError(t, c.Search(ctx, domain.SearchRequest{"genus": "Glycine"}))
	before := c.Snapshot()

	rec := &stateRecorder{}
	c.Subscribe(rec.listen)
	aborting = true

	err := c.Search(ctx, domain.SearchRequest{"genus": "Glycine"})

	require.NoError(t, err)
	after := c.Snapshot()
	assert.Equal(t, domain.StateLoading, after.State)
	assert.Equal(t, before.Results, after.Results)
	assert.Equal(t, before.Summary, after.Summary)
	assert.Empty(t, after.ErrorMessage)
	assert.Equal(t, []domain.SearchState{domain.StateLoading}, rec.states())
}

func TestSearchController_AbortedErrorIsSwallowed(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes",
		instantSearcher(domain.PaginatedSearchResult[domain.Gene]{}, domain.ErrAborted), nil)

	err := c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"})

	require.NoError(t, err)
	assert.NotEqual(t, domain.StateError, c.Snapshot().State)
}

func TestSearchController_CallerCancelIsAnError(t *testing.T) {
	searcher := newFakeSearcher(t)
	c := NewSearchController[domain.Gene]("genes", searcher, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- c.Search(ctx, domain.SearchRequest{"genus": "Glycine"}) }()
	searcher.next(t)
	cancel()

	var err error
	select {
	case err = <-errc:
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return after cancel")
	}
	var transport *domain.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, "search", transport.Op)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StateError, c.Snapshot().State)
}

func TestSearchController_Reset(t *testing.T) {
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)
	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))

	rec := &stateRecorder{}
	c.Subscribe(rec.listen)

	c.Reset()
	once := c.Snapshot()
	c.Reset()
	twice := c.Snapshot()

	assert.Equal(t, domain.StateIdle, once.State)
	assert.Empty(t, once.Results)
	assert.Empty(t, once.Summary)
	assert.Empty(t, c.Request())
	assert.Equal(t, once.State, twice.State)
	assert.Equal(t, once.Results, twice.Results)
	assert.Equal(t, once.Request, twice.Request)
	assert.Equal(t, []domain.SearchState{domain.StateIdle}, rec.states(), "second reset emits nothing")
}

func TestSearchController_ResetAbortsInFlight(t *testing.T) {
	searcher := newFakeSearcher(t)
	c := NewSearchController[domain.Gene]("genes", searcher, nil)

	errc := make(chan error, 1)
	go func() { errc <- c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}) }()
	call := searcher.next(t)

	c.Reset()
	call.resolve(geneResult("late"))

	require.NoError(t, <-errc)
	snap := c.Snapshot()
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Empty(t, snap.Results)
}

func TestSearchController_Download(t *testing.T) {
	var got domain.SearchRequest
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a", "b"), nil), nil)
	c.SetDownloader(driven.DownloaderFunc(func(_ context.Context, req domain.SearchRequest) (domain.DownloadResult, error) {
		got = req
		return domain.DownloadResult{Path: "genes.tsv"}, nil
	}))
	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))

	err := c.Download(context.Background(), domain.FormFields{{Name: "genus", Value: "Glycine"}})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{"genus": "Glycine"}, got)
	snap := c.Snapshot()
	assert.Equal(t, domain.StateSuccess, snap.State)
	assert.Equal(t, genes("a", "b"), snap.Results)
	assert.Equal(t, "genes.tsv", c.LastDownload().Path)
}

func TestSearchController_DownloadFailures(t *testing.T) {
	boom := errors.New("disk full")

	t.Run("transport error", func(t *testing.T) {
		c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)
		c.SetDownloader(driven.DownloaderFunc(func(context.Context, domain.SearchRequest) (domain.DownloadResult, error) {
			return domain.DownloadResult{}, boom
		}))
		require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))

		err := c.Download(context.Background(), nil)

		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "download", te.Op)
		snap := c.Snapshot()
		assert.Equal(t, domain.StateError, snap.State)
		assert.Equal(t, genes("a"), snap.Results)
		assert.Empty(t, c.LastDownload().Path)
	})

	t.Run("data errors", func(t *testing.T) {
		c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)
		c.SetDownloader(driven.DownloaderFunc(func(context.Context, domain.SearchRequest) (domain.DownloadResult, error) {
			return domain.DownloadResult{Errors: []string{"too many results"}}, nil
		}))

		require.NoError(t, c.Download(context.Background(), nil))
		assert.Equal(t, "too many results", c.Snapshot().ErrorMessage)
		assert.Equal(t, []string{"too many results"}, c.LastDownload().Errors)
	})

	t.Run("no download function", func(t *testing.T) {
		c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult("a"), nil), nil)

		err := c.Download(context.Background(), nil)

		assert.ErrorIs(t, err, domain.ErrNoDownloadFunction)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestSearchController_CustomFormToObject(t *testing.T) {
	rs := &recordingSearcher{result: func(domain.SearchRequest) domain.PaginatedSearchResult[domain.Gene] {
		return geneResult("a")
	}}
	c := NewSearchController[domain.Gene]("genes", rs, nil)
	c.SetFormToObject(func(fields domain.FormFields) domain.SearchRequest {
		req := domain.SearchRequest{}
		for _, f := range fields {
			if req[f.Name] == "" {
				req[f.Name] = f.Value
			}
		}
		return req
	})

	err := c.Submit(context.Background(), domain.FormFields{
		{Name: "genus", Value: "Glycine"},
		{Name: "genus", Value: "Phaseolus"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{"genus": "Glycine"}, rs.last())

	c.SetFormToObject(nil)
	require.NoError(t, c.Submit(context.Background(), domain.FormFields{
		{Name: "genus", Value: "Glycine"},
		{Name: "genus", Value: "Phaseolus"},
	}))
	assert.Equal(t, domain.SearchRequest{"genus": "Phaseolus"}, rs.last())
}

func TestSearchController_Metrics(t *testing.T) {
	m := &fakeMetrics{}
	c := NewSearchController[domain.Gene]("genes", instantSearcher(geneResult(), nil), nil)
	c.SetMetrics(m)

	require.NoError(t, c.Search(context.Background(), domain.SearchRequest{"genus": "Glycine"}))

	require.Len(t, m.calls, 1)
	assert.Equal(t, metricsCall{"genes", "search", domain.OutcomeEmpty}, m.calls[0])
}
