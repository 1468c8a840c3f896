package feed

import "sync"

// Subscription is a live handle on one owner's lead events. Close is
// idempotent and releases the handle deterministically; after Close the C
// channel is closed and nothing further is delivered.
type Subscription struct {
	C chan Event

	hub   *Hub
	owner string
	once  sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.drop(s)
	})
}

// Hub fans lead events out to per-owner subscribers. Slow subscribers drop
// events rather than block the publisher; the durable table remains the
// source of truth for anything missed.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(owner string) *Subscription {
	sub := &Subscription{
		C:     make(chan Event, 16),
		hub:   h,
		owner: owner,
	}
	h.mu.Lock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*Subscription]struct{})
	}
	h.subs[owner][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[e.Lead.OwnerEmail] {
		select {
		case sub.C <- e:
		default:
			// drop if slow
		}
	}
}

// SubscriberCount reports live handles for an owner.
func (h *Hub) SubscriberCount(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}

func (h *Hub) drop(s *Subscription) {
	h.mu.Lock()
	if set := h.subs[s.owner]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.owner)
		}
	}
	h.mu.Unlock()
	close(s.C)
}
