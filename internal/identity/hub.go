package identity

import "sync"

// Hub fans auth status events out to subscribers. It replaces the original
// framework's global publish/subscribe bus with an owned, cancellable,
// channel-based one.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Status
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Status)}
}

// Subscribe registers a new listener. The returned cancel function detaches
// the listener and closes its channel; calling it more than once is safe.
// Channels are buffered so a slow consumer cannot block the publisher, but a
// consumer that never drains may miss events.
func (h *Hub) Subscribe() (<-chan Status, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Status, 8)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the status to every subscriber without blocking.
func (h *Hub) Publish(status Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- status:
		default:
			// subscriber buffer full, drop rather than stall the session
		}
	}
}

// Close terminates every subscription. Further publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
