package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append stores a new entry.
func (s *HistoryStore) Append(_ context.Context, entry domain.HistoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("history entry without id: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns the most recent entries of a kind, newest first.
func (s *HistoryStore) List(_ context.Context, kind domain.SearchKind, limit int) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.HistoryEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if kind != "" && s.entries[i].Kind != kind {
			continue
		}
		result = append(result, s.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Latest returns the newest entry of a kind.
func (s *HistoryStore) Latest(ctx context.Context, kind domain.SearchKind) (*domain.HistoryEntry, error) {
	entries, err := s.List(ctx, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}
	return &entries[0], nil
}

// Clear removes every entry of a kind.
func (s *HistoryStore) Clear(_ context.Context, kind domain.SearchKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == "" {
		s.entries = nil
		return nil
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Kind != kind {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}
