package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/messages"
	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/core/services"
)

// fakeSearcher records requests and answers with a fixed result.
type fakeSearcher struct {
	mu       sync.Mutex
	requests []domain.SearchRequest
	result   domain.PaginatedSearchResult[domain.Gene]
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, req domain.SearchRequest) (domain.PaginatedSearchResult[domain.Gene], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeSearcher) last() domain.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// fakeLocation counts history moves.
type fakeLocation struct {
	back, forward int
	canBack       bool
}

func (l *fakeLocation) RawQuery() string      { return "" }
func (l *fakeLocation) Navigate(string) error { return nil }
func (l *fakeLocation) CanGoBack() bool       { return l.canBack }
func (l *fakeLocation) CanGoForward() bool    { return false }
func (l *fakeLocation) Forward() bool         { l.forward++; return false }
func (l *fakeLocation) Back() bool            { l.back++; return l.canBack }

func twoGenes() domain.PaginatedSearchResult[domain.Gene] {
	hasNext := true
	return domain.PaginatedSearchResult[domain.Gene]{
		SearchResult: domain.SearchResult[domain.Gene]{
			Results: []domain.Gene{
				{Identifier: "glyma.Wm82.gnm2.ann1.Glyma.01G000100", Name: "Glyma.01G000100", Genus: "Glycine"},
				{Identifier: "glyma.Wm82.gnm2.ann1.Glyma.01G000200", Name: "Glyma.01G000200", Genus: "Glycine"},
			},
		},
		HasNext: &hasNext,
	}
}

func newTestView(t *testing.T, searcher *fakeSearcher) (*View[domain.Gene], *services.PaginatedSearchController[domain.Gene]) {
	t.Helper()
	ctrl := services.NewPaginatedSearchController[domain.Gene]("genes", searcher, nil, nil)
	cfg := domain.DefaultSearchSettings(domain.SearchKindGenes).Table
	v := NewView[domain.Gene](domain.SearchKindGenes, ctrl, cfg, nil, nil, nil)
	t.Cleanup(v.Close)
	v.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return v, ctrl
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(v *View[domain.Gene], s string) {
	for _, r := range s {
		v.Update(keyRunes(string(r)))
	}
}

// deliver runs cmd and feeds its message back, then drains the pending
// state change.
func deliver(t *testing.T, v *View[domain.Gene], cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(v.waitForChange()())
	v.Update(msg)
	return msg
}

func TestNewView(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{})

	assert.Equal(t, domain.SearchKindGenes, v.Kind())
	assert.True(t, v.Ready())
	assert.True(t, v.FormFocused())
	assert.Equal(t, domain.StateIdle, v.Snapshot().State)
}

func TestView_NotReadyView(t *testing.T) {
	v := NewView[domain.Gene](domain.SearchKindGenes, nil, domain.TableConfig{}, nil, nil, nil)

	assert.Equal(t, "Initialising...", v.View())
}

func TestView_NilController(t *testing.T) {
	v := NewView[domain.Gene](domain.SearchKindGenes, nil, domain.TableConfig{}, nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd()

	done, ok := msg.(messages.ActionDone)
	require.True(t, ok)
	assert.ErrorIs(t, done.Err, ErrNoController)

	v.Update(done)
	assert.ErrorIs(t, v.Err(), ErrNoController)
}

func TestView_SubmitShowsResults(t *testing.T) {
	searcher := &fakeSearcher{result: twoGenes()}
	v, _ := newTestView(t, searcher)

	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	assert.Equal(t, domain.SearchRequest{
		"genus": "Glycine", "species": "", "strain": "", "identifier": "",
		"name": "", "description": "", "family": "", "page": "1",
	}, searcher.last())
	assert.Equal(t, domain.StateSuccess, v.Snapshot().State)
	assert.Equal(t, 2, v.Rows())
	assert.False(t, v.FormFocused())

	view := v.View()
	assert.Contains(t, view, "Glyma.01G000100")
	assert.Contains(t, view, "Page 1 of many")
}

func TestView_NextPage(t *testing.T) {
	searcher := &fakeSearcher{result: twoGenes()}
	v, _ := newTestView(t, searcher)
	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	_, cmd = v.Update(keyRunes("n"))
	deliver(t, v, cmd)

	assert.Equal(t, "2", searcher.last().Get("page"))
	require.NotNil(t, v.Snapshot().Page)
	assert.Equal(t, 2, v.Snapshot().Page.Page)
	assert.Contains(t, v.View(), "Page 2 of many")
}

func TestView_TransportErrorShownFromSnapshot(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	v, _ := newTestView(t, searcher)

	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := deliver(t, v, cmd)

	var transport *domain.TransportError
	require.ErrorAs(t, msg.(messages.ActionDone).Err, &transport)
	assert.NoError(t, v.Err())
	assert.Equal(t, domain.StateError, v.Snapshot().State)
	assert.True(t, v.FormFocused())
	assert.Contains(t, v.View(), "connection refused")
}

func TestView_EmptyResults(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{})

	typeText(v, "Nope")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	assert.Equal(t, domain.StateEmpty, v.Snapshot().State)
	assert.True(t, v.FormFocused())
	assert.Contains(t, v.View(), "No results found.")
}

func TestView_Reset(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{result: twoGenes()})
	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	v.Update(v.waitForChange()())

	assert.Equal(t, domain.StateIdle, v.Snapshot().State)
	assert.Equal(t, 0, v.Rows())
	assert.True(t, v.FormFocused())
	assert.Equal(t, "", v.Form().Value("genus"))
}

func TestView_Download(t *testing.T) {
	searcher := &fakeSearcher{}
	v, ctrl := newTestView(t, searcher)
	var got domain.SearchRequest
	ctrl.SetDownloader(driven.DownloaderFunc(func(_ context.Context, req domain.SearchRequest) (domain.DownloadResult, error) {
		got = req
		return domain.DownloadResult{Path: "/tmp/lis-genes.tsv"}, nil
	}))

	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	deliver(t, v, cmd)

	assert.Equal(t, "Glycine", got.Get("genus"))
	assert.Equal(t, "Downloaded to /tmp/lis-genes.tsv", v.Notice())
}

func TestView_BackAndForthBetweenFormAndTable(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{result: twoGenes()})
	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)
	require.False(t, v.FormFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.FormFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.FormFocused())
}

func TestView_HistoryKeys(t *testing.T) {
	searcher := &fakeSearcher{result: twoGenes()}
	ctrl := services.NewPaginatedSearchController[domain.Gene]("genes", searcher, nil, nil)
	loc := &fakeLocation{}
	v := NewView[domain.Gene](domain.SearchKindGenes, ctrl, domain.DefaultSearchSettings(domain.SearchKindGenes).Table, loc, nil, nil)
	t.Cleanup(v.Close)
	v.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	v.Update(keyRunes("["))
	v.Update(keyRunes("]"))

	assert.Equal(t, 1, loc.back)
	assert.Equal(t, 1, loc.forward)
	assert.Equal(t, "No further history.", v.Notice())
}

func TestView_HistoryWithoutLocation(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{result: twoGenes()})
	typeText(v, "Glycine")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	deliver(t, v, cmd)

	v.Update(keyRunes("["))

	assert.ErrorIs(t, v.Err(), ErrNoHistory)
}

func TestView_NoRequestNotice(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{})

	v.Update(messages.ActionDone{Kind: domain.SearchKindGenes, Op: messages.OpPage, Err: domain.ErrNoRequest})

	assert.Equal(t, "Submit a search first.", v.Notice())
	assert.NoError(t, v.Err())
}

func TestView_IgnoresOtherKinds(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{})

	_, cmd := v.Update(messages.StateChanged{Kind: domain.SearchKindTraits})
	assert.Nil(t, cmd)

	v.Update(messages.ActionDone{Kind: domain.SearchKindTraits, Err: errors.New("other")})
	assert.NoError(t, v.Err())
}

func TestView_IdleHint(t *testing.T) {
	v, _ := newTestView(t, &fakeSearcher{})

	assert.Contains(t, v.View(), "Fill in the genes form")
}

func TestView_FormFollowsNavigation(t *testing.T) {
	searcher := &fakeSearcher{result: twoGenes()}
	v, ctrl := newTestView(t, searcher)

	require.NoError(t, ctrl.Submit(context.Background(), domain.FormFields{{Name: "species", Value: "max"}}))
	v.Update(v.waitForChange()())

	assert.Equal(t, "max", v.Form().Value("species"))
	assert.Equal(t, "", v.Form().Value("genus"))
}
