package remote

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type subscriber struct {
	owner uuid.UUID
	ch    chan Change
	done  <-chan struct{}
}

// Hub fans out changes to in-process subscribers.
//
// Publish blocks until every subscriber of the owner received the change or
// cancelled its subscription.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// Subscribe registers a subscriber for all changes of the owner.
func (h *Hub) Subscribe(ctx context.Context, owner uuid.UUID) <-chan Change {
	s := &subscriber{
		owner: owner,
		ch:    make(chan Change, 64),
		done:  ctx.Done(),
	}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()

		h.mu.Lock()
		delete(h.subscribers, s)
		close(s.ch)
		h.mu.Unlock()
	}()

	return s.ch
}

// Publish sends a change to all subscribers of its owner.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subscribers {
		if s.owner != c.Document.Owner {
			continue
		}

		select {
		case s.ch <- c:
		case <-s.done:
		}
	}
}
