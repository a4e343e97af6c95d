package querystring

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// ErrNoLocationFile is returned by Watch before AttachLocation.
var ErrNoLocationFile = errors.New("no location file attached")

// LocationPath returns the location file of a kind under dir.
func LocationPath(dir string, kind domain.SearchKind) string {
	return filepath.Join(dir, "location-"+kind.String())
}

// AttachLocation mirrors the location to the file at path. An existing
// file becomes the current location without notifying listeners;
// otherwise the file is created from the current location.
func (s *Store) AttachLocation(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		params, err := domain.ParseRequest(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("parse location file %s: %w", path, err)
		}
		s.mu.Lock()
		s.locationPath = path
		s.lastWritten = string(data)
		s.current = params.NonEmpty()
		s.mu.Unlock()
		return nil

	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("create location directory: %w", err)
		}
		s.mu.Lock()
		s.locationPath = path
		s.mu.Unlock()
		return s.writeLocation(s.Parameters())

	default:
		return fmt.Errorf("read location file: %w", err)
	}
}

// Watch follows edits to the attached location file until ctx is done
// or Close is called. Edits not made by this Store are external
// navigation.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	path := s.locationPath
	running := s.watcher != nil
	s.mu.Unlock()

	if path == "" {
		return ErrNoLocationFile
	}
	if running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create location watcher: %w", err)
	}
	// Watch the directory so that files replaced by rename are followed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch location directory: %w", err)
	}

	lw := &locationWatcher{
		watcher: watcher,
		name:    filepath.Base(path),
		stop:    make(chan struct{}),
	}
	s.mu.Lock()
	s.watcher = lw
	s.mu.Unlock()

	go lw.run(ctx, s.reload, func(err error) { s.log.Warn("location watcher: %v", err) })
	return nil
}

// Close stops watching the location file.
func (s *Store) Close() error {
	s.mu.Lock()
	lw := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if lw != nil {
		lw.close()
	}
	return nil
}

// reload reads the location file and follows it if another writer
// changed it.
func (s *Store) reload() {
	s.mu.Lock()
	path := s.locationPath
	last := s.lastWritten
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("read location file: %v", err)
		}
		return
	}
	// A truncated file is a write in progress.
	if len(data) == 0 {
		return
	}
	content := string(data)
	if content == last {
		return
	}

	params, err := domain.ParseRequest(strings.TrimSpace(content))
	if err != nil {
		s.log.Warn("ignoring malformed location %q: %v", content, err)
		return
	}
	params = params.NonEmpty()

	s.mu.Lock()
	s.lastWritten = content
	same := maps.Equal(params, s.current)
	s.mu.Unlock()

	if !same {
		s.follow(params, CauseExternal)
	}
}

type locationWatcher struct {
	watcher *fsnotify.Watcher
	name    string
	stop    chan struct{}
	once    sync.Once
}

func (w *locationWatcher) run(ctx context.Context, changed func(), failed func(error)) {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				changed()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			failed(err)
		}
	}
}

func (w *locationWatcher) close() {
	w.once.Do(func() {
		close(w.stop)
		w.watcher.Close()
	})
}
