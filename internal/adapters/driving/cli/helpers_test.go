package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/adapters/driven/querystring"
	"github.com/legumeinfo/lis-search/internal/adapters/driven/storage/memory"
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
	"github.com/legumeinfo/lis-search/internal/core/services"
)

// recorder is a gene searcher that records requests.
type recorder struct {
	mu       sync.Mutex
	requests []domain.SearchRequest
	result   domain.PaginatedSearchResult[domain.Gene]
	err      error
}

func (r *recorder) Search(_ context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[domain.Gene], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.result, r.err
}

func (r *recorder) last() domain.SearchRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func geneResults() domain.PaginatedSearchResult[domain.Gene] {
	hasNext := true
	pageSize := 2
	numResults := 5
	return domain.PaginatedSearchResult[domain.Gene]{
		SearchResult: domain.SearchResult[domain.Gene]{
			Results: []domain.Gene{
				{Identifier: "glyma.Wm82.gnm2.ann1.Glyma.01G000100", Name: "Glyma.01G000100", Genus: "Glycine", Species: "max"},
				{Identifier: "glyma.Wm82.gnm2.ann1.Glyma.01G000200", Name: "Glyma.01G000200", Genus: "Glycine", Species: "max"},
			},
		},
		HasNext:    &hasNext,
		PageSize:   &pageSize,
		NumResults: &numResults,
	}
}

type testEnv struct {
	services *Services
	genes    *recorder
	history  *memory.HistoryStore
	settings *services.SettingsService
}

// setupTestServices injects in-memory services and restores the
// package state afterwards.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	settings := services.NewSettingsService(memory.NewConfigStore())
	history := memory.NewHistoryStore()
	defaults := domain.DefaultAppSettings()

	locations := make(map[domain.SearchKind]driving.Location)
	stores := make(map[domain.SearchKind]*querystring.Store)
	for _, kind := range domain.SearchKinds() {
		store := querystring.NewStore(kind, nil)
		store.SetHistoryStore(history)
		stores[kind] = store
		locations[kind] = store
	}

	genes := &recorder{result: geneResults()}
	geneCtrl := services.NewPaginatedSearchController[domain.Gene](
		"genes", genes, stores[domain.SearchKindGenes], defaults.Search(domain.SearchKindGenes).Required)
	geneCtrl.SetDownloader(driven.DownloaderFunc(func(context.Context, domain.SearchRequest) (domain.DownloadResult, error) {
		return domain.DownloadResult{Path: "/tmp/lis-genes-20260101T000000Z.tsv"}, nil
	}))

	traits := driven.SearcherFunc[domain.Trait](func(context.Context, domain.SearchRequest) (domain.PaginatedSearchResult[domain.Trait], error) {
		return domain.PaginatedSearchResult[domain.Trait]{}, nil
	})
	traitCtrl := services.NewPaginatedSearchController[domain.Trait](
		"traits", traits, stores[domain.SearchKindTraits], defaults.Search(domain.SearchKindTraits).Required)

	s := &Services{
		Settings:  settings,
		Genes:     geneCtrl,
		Traits:    traitCtrl,
		Locations: locations,
		History:   history,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })

	return &testEnv{services: s, genes: genes, history: history, settings: settings}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, nil, args...)
}

func executeWithInput(t *testing.T, in *bytes.Buffer, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if in != nil {
		rootCmd.SetIn(in)
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func requireOutput(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}
