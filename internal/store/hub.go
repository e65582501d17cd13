package store

import (
	"context"
	"sync"

	"pagos/internal/core"
)

// Hub fans full-collection snapshots out to subscribers. Both store
// backends embed one and call Broadcast after every successful mutation.
//
// Subscriber channels are buffered with depth 1 and latest-wins: a slow
// consumer never blocks a writer, it just skips intermediate snapshots.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []core.Debt
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []core.Debt)}
}

// Subscribe registers a new subscriber and seeds its channel with the
// given current snapshot, so consumers render immediately instead of
// waiting for the first change. The returned cancel func is idempotent
// and also runs when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, initial []core.Debt) (<-chan []core.Debt, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan []core.Debt, 1)
	ch <- initial
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
			h.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

// Broadcast delivers the snapshot to every subscriber, replacing any
// undelivered previous snapshot.
func (h *Hub) Broadcast(snapshot []core.Debt) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot and queue the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
