// pkg/feed/feed.go
package feed

import "sync"

// EventKind labels what a published event carries.
type EventKind string

const (
	KindVisible       EventKind = "visible"
	KindLoading       EventKind = "loading"
	KindProgress      EventKind = "progress"
	KindSortRun       EventKind = "sort_run"
	KindSearchRun     EventKind = "search_run"
	KindCriteria      EventKind = "criteria"
	KindCriteriaError EventKind = "criteria_error"
	KindStoreError    EventKind = "store_error"
)

// Event is one published pipeline state change.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload,omitempty"`
}

const listenerBuffer = 64

// Hub fans pipeline events out to registered listeners. Publishing never
// blocks; a listener whose buffer is full misses that event.
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]chan Event
	closed    bool
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[uint64]chan Event)}
}

// Register adds a listener and returns its id and receive channel. The
// channel is closed by Unregister or Close.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan Event, listenerBuffer)
	if h.closed {
		close(ch)
		return id, ch
	}
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Publish delivers ev to every registered listener.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ListenerCount reports how many listeners are registered.
func (h *Hub) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Close drops every listener and closes their channels. Register after Close
// hands back an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}
