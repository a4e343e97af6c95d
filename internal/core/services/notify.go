package services

import (
	"sync"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

type subscription[T any] struct {
	id       uint64
	listener driving.StateListener[T]
}

// notifier delivers state changes to listeners in registration order.
// Changes carry a sequence number; a change older than one already
// delivered is dropped so listeners never see state go backwards.
type notifier[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription[T]

	deliverMu sync.Mutex
	delivered uint64
}

func (n *notifier[T]) subscribe(l driving.StateListener[T]) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription[T]{id: id, listener: l})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier[T]) emit(seq uint64, change domain.StateChange[T]) {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	if seq <= n.delivered {
		return
	}
	n.delivered = seq

	n.mu.Lock()
	subs := make([]subscription[T], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.listener(change)
	}
}
