package webhook

import "sync"

// Handler receives decoded events
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Hub fans decoded events out to in-process subscribers
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function that removes it
func (h *Hub) Subscribe(fn Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber synchronously, in subscription order
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		s.fn(evt)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
