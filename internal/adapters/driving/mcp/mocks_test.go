package mcp

import (
	"context"
	"sync"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// mockController is a mock implementation of driving.PaginatedSearchController.
type mockController[T any] struct {
	mu        sync.Mutex
	snap      domain.Snapshot[T]
	err       error
	submitted []domain.FormFields
	pages     []int
	download  domain.DownloadResult

	// onSubmit replaces the snapshot after Submit when set.
	onSubmit func(fields domain.FormFields) domain.Snapshot[T]
}

var _ driving.PaginatedSearchController[domain.Gene] = (*mockController[domain.Gene])(nil)

func (m *mockController[T]) Submit(_ context.Context, fields domain.FormFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, fields)
	if m.onSubmit != nil {
		m.snap = m.onSubmit(fields)
	}
	return m.err
}

func (m *mockController[T]) Download(_ context.Context, _ domain.FormFields) error {
	return m.err
}

func (m *mockController[T]) LastDownload() domain.DownloadResult {
	return m.download
}

func (m *mockController[T]) Reset() {}

func (m *mockController[T]) Snapshot() domain.Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockController[T]) Subscribe(driving.StateListener[T]) func() {
	return func() {}
}

func (m *mockController[T]) ChangePage(_ context.Context, page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, page)
	if m.snap.Page != nil {
		p := *m.snap.Page
		p.Page = page
		m.snap.Page = &p
	}
	return m.err
}

func (m *mockController[T]) NextPage(context.Context) error     { return nil }
func (m *mockController[T]) PreviousPage(context.Context) error { return nil }
func (m *mockController[T]) AutoSubmit(context.Context) error   { return nil }

func (m *mockController[T]) PageState() domain.PageState {
	if m.snap.Page != nil {
		return *m.snap.Page
	}
	return domain.PageState{Page: 1}
}

func (m *mockController[T]) Listen(context.Context) func() {
	return func() {}
}

// mockHistory is a mock implementation of driving.History.
type mockHistory struct {
	entries  []domain.HistoryEntry
	err      error
	lastKind domain.SearchKind
}

func (m *mockHistory) List(_ context.Context, kind domain.SearchKind, _ int) ([]domain.HistoryEntry, error) {
	m.lastKind = kind
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.HistoryEntry
	for _, e := range m.entries {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockHistory) Clear(context.Context, domain.SearchKind) error {
	return m.err
}
