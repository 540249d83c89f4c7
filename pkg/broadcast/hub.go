package broadcast

import "sync"

// Listener receives published values.
type Listener[T any] func(T)

// Hub fans values out to subscribed listeners.
// The zero value is not usable; create hubs with NewHub.
type Hub[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener[T]
	order     []uint64
	last      uint64

	queue      []T
	delivering bool
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{listeners: make(map[uint64]Listener[T])}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is idempotent. A nil fn is ignored.
func (h *Hub[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	h.order = append(h.order, id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners, id)
			for i, v := range h.order {
				if v == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish queues v for every listener in subscription order.
// It returns false and delivers nothing when version is not newer than the
// last accepted version.
func (h *Hub[T]) Publish(version uint64, v T) bool {
	h.mu.Lock()
	if version <= h.last {
		h.mu.Unlock()
		return false
	}
	h.last = version
	h.queue = append(h.queue, v)
	if h.delivering {
		h.mu.Unlock()
		return true
	}
	h.delivering = true
	h.mu.Unlock()

	h.drain()
	return true
}

func (h *Hub[T]) drain() {
	// A panicking listener must not leave the hub stuck in delivering mode.
	finished := false
	defer func() {
		if finished {
			return
		}
		h.mu.Lock()
		h.delivering = false
		h.queue = nil
		h.mu.Unlock()
	}()

	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			// Cleared under the same lock as the check so no publish is stranded.
			h.delivering = false
			h.mu.Unlock()
			finished = true
			return
		}
		next := h.queue[0]
		var zero T
		h.queue[0] = zero
		h.queue = h.queue[1:]
		fns := make([]Listener[T], 0, len(h.order))
		for _, id := range h.order {
			fns = append(fns, h.listeners[id])
		}
		h.mu.Unlock()

		for _, fn := range fns {
			fn(next)
		}
	}
}

// Len returns the number of subscribed listeners.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
