package services

import (
	"context"
	"sync"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// Generation is one cancellation epoch of a CancelToken.
// Every call wrapped against a generation is aborted together when the
// token moves on.
type Generation struct {
	id  uint64
	ctx context.Context
}

// ID returns the generation number.
func (g Generation) ID() uint64 {
	return g.id
}

// Done is closed when the generation is cancelled.
func (g Generation) Done() <-chan struct{} {
	return g.ctx.Done()
}

// Err returns domain.ErrAborted once the generation is cancelled.
func (g Generation) Err() error {
	if g.ctx.Err() != nil {
		return domain.ErrAborted
	}
	return nil
}

// CancelToken hands out generations; only the newest one is live.
// It is owned by exactly one controller.
type CancelToken struct {
	mu      sync.Mutex
	current Generation
	cancel  context.CancelFunc
}

// NewCancelToken creates a token at generation 0.
func NewCancelToken() *CancelToken {
	ctx, cancel := context.WithCancel(context.Background())
	return &CancelToken{
		current: Generation{id: 0, ctx: ctx},
		cancel:  cancel,
	}
}

// Cancel aborts the live generation and returns its successor.
// With nothing in flight it only bumps the generation number.
func (t *CancelToken) Cancel() Generation {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	t.current = Generation{id: t.current.id + 1, ctx: ctx}
	t.cancel = cancel
	return t.current
}

// Current returns the live generation.
func (t *CancelToken) Current() Generation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// IsCurrent reports whether g is still the live generation.
func (t *CancelToken) IsCurrent(g Generation) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.id == g.id
}

// Wrap runs fn against generation g. It returns fn's outcome unless g is
// cancelled first, in which case it returns domain.ErrAborted at once
// without waiting for fn. The context passed to fn is cancelled with the
// generation so fn can stop its own work, but the result is discarded
// whether or not fn notices.
func Wrap[T any](ctx context.Context, g Generation, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := g.Err(); err != nil {
		return zero, err
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(g.ctx, cancel)
	defer stop()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case <-g.Done():
		return zero, domain.ErrAborted
	case <-ctx.Done():
		return zero, ctx.Err()
	case o := <-done:
		if g.Err() != nil {
			return zero, domain.ErrAborted
		}
		return o.value, o.err
	}
}
