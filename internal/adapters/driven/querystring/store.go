package querystring

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
	"github.com/legumeinfo/lis-search/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.QueryStringStore = (*Store)(nil)

// Navigation causes.
const (
	CauseBack     = "back"
	CauseForward  = "forward"
	CauseNavigate = "navigate"
	CauseExternal = "external"
)

type subscription struct {
	id       uint64
	listener driven.NavigationListener
}

// Store is an in-process location for one search kind.
type Store struct {
	kind domain.SearchKind
	log  *logger.Logger

	mu        sync.Mutex
	current   domain.SearchRequest
	back      []domain.SearchRequest
	forward   []domain.SearchRequest
	nextID    uint64
	listeners []subscription

	history driven.HistoryStore
	now     func() time.Time

	locationPath string
	lastWritten  string
	watcher      *locationWatcher
}

// NewStore creates a store whose location starts at initial.
func NewStore(kind domain.SearchKind, initial domain.SearchRequest) *Store {
	return &Store{
		kind:    kind,
		log:     logger.For("location/" + kind.String()),
		current: initial.NonEmpty(),
		now:     time.Now,
	}
}

// SetHistoryStore records every pushed location in h.
func (s *Store) SetHistoryStore(h driven.HistoryStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// GetParameter returns a parameter value, or def if absent.
func (s *Store) GetParameter(name, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.current[name]; ok {
		return v
	}
	return def
}

// Parameters returns a copy of all current parameters.
func (s *Store) Parameters() domain.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// RawQuery returns the current location as an encoded query string.
func (s *Store) RawQuery() string {
	return s.Parameters().Encode()
}

// SetParameters replaces the full query string and pushes a history
// entry. Setting the current parameters again is a no-op. Listeners are
// not notified.
func (s *Store) SetParameters(ctx context.Context, params domain.SearchRequest) error {
	params = params.NonEmpty()

	s.mu.Lock()
	if maps.Equal(params, s.current) {
		s.mu.Unlock()
		return nil
	}
	s.back = append(s.back, s.current)
	s.forward = nil
	s.current = params
	history := s.history
	s.mu.Unlock()

	if err := s.writeLocation(params); err != nil {
		return err
	}

	return s.record(ctx, history, params)
}

// record appends params to the history store, if any.
func (s *Store) record(ctx context.Context, history driven.HistoryStore, params domain.SearchRequest) error {
	if history == nil {
		return nil
	}
	entry := domain.HistoryEntry{
		ID:        uuid.NewString(),
		Kind:      s.kind,
		Query:     params.Encode(),
		CreatedAt: s.now(),
	}
	if err := history.Append(ctx, entry); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Subscribe registers a listener for external navigation.
func (s *Store) Subscribe(listener driven.NavigationListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, listener: listener})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Back moves to the previous location. It reports false when there is
// none.
func (s *Store) Back() bool {
	s.mu.Lock()
	if len(s.back) == 0 {
		s.mu.Unlock()
		return false
	}
	s.forward = append(s.forward, s.current)
	s.current = s.back[len(s.back)-1]
	s.back = s.back[:len(s.back)-1]
	params := s.current.Clone()
	s.mu.Unlock()

	s.moved(params, CauseBack)
	return true
}

// Forward moves to the next location. It reports false when there is
// none.
func (s *Store) Forward() bool {
	s.mu.Lock()
	if len(s.forward) == 0 {
		s.mu.Unlock()
		return false
	}
	s.back = append(s.back, s.current)
	s.current = s.forward[len(s.forward)-1]
	s.forward = s.forward[:len(s.forward)-1]
	params := s.current.Clone()
	s.mu.Unlock()

	s.moved(params, CauseForward)
	return true
}

// Navigate loads rawQuery as a new location, as if typed into an
// address bar. A changed location is recorded in the history store
// before listeners run.
func (s *Store) Navigate(rawQuery string) error {
	params, err := domain.ParseRequest(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return fmt.Errorf("parse location %q: %w", rawQuery, domain.ErrInvalidInput)
	}
	params = params.NonEmpty()
	if s.push(params) {
		s.mu.Lock()
		history := s.history
		s.mu.Unlock()
		if err := s.record(context.Background(), history, params); err != nil {
			s.log.Warn("%v", err)
		}
	}
	s.moved(params, CauseNavigate)
	return nil
}

// CanGoBack reports whether Back would move.
func (s *Store) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.back) > 0
}

// CanGoForward reports whether Forward would move.
func (s *Store) CanGoForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forward) > 0
}

// follow pushes params as an externally initiated location.
func (s *Store) follow(params domain.SearchRequest, cause string) {
	s.push(params)
	s.moved(params, cause)
}

// push makes params the current location, and reports whether it changed.
func (s *Store) push(params domain.SearchRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maps.Equal(params, s.current) {
		return false
	}
	s.back = append(s.back, s.current)
	s.forward = nil
	s.current = params
	return true
}

func (s *Store) moved(params domain.SearchRequest, cause string) {
	if cause != CauseExternal {
		if err := s.writeLocation(params); err != nil {
			s.log.Warn("write location: %v", err)
		}
	}
	s.log.Debug("%s: %s", cause, params.Encode())
	s.notify(driven.NavigationEvent{Params: params, Cause: cause})
}

func (s *Store) notify(ev driven.NavigationEvent) {
	s.mu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.listener(driven.NavigationEvent{Params: ev.Params.Clone(), Cause: ev.Cause})
	}
}

// writeLocation mirrors params to the location file, if attached.
func (s *Store) writeLocation(params domain.SearchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locationPath == "" {
		return nil
	}
	content := params.Encode() + "\n"
	s.lastWritten = content
	if err := os.WriteFile(s.locationPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("write location file: %w", err)
	}
	return nil
}
