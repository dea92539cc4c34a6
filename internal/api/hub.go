package api

import (
	"sync"

	"github.com/talgya/mini-kitchen/internal/engine"
)

// subscriberBuffer is how many events a slow stream client may lag behind
// before events are dropped for it.
const subscriberBuffer = 64

// Hub fans simulation events out to stream subscribers. Publish never blocks
// so it can be called from the tick goroutine.
type Hub struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan engine.Event
	dropped uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan engine.Event)}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() (int, <-chan engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan engine.Event, subscriberBuffer)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers e to every subscriber with room for it.
func (h *Hub) Publish(e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.dropped++
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped counts events not delivered to slow subscribers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
