package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

// Hub keeps recent notifications for polling clients and fans them out to
// live subscribers.
type Hub struct {
	mu     sync.Mutex
	recent []domain.Notification
	subs   map[chan domain.Notification]struct{}
	limit  int
}

// NewHub keeps at most limit notifications; zero means 50.
func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = 50
	}
	return &Hub{
		subs:  make(map[chan domain.Notification]struct{}),
		limit: limit,
	}
}

// Deliver records n and sends it to every subscriber. Subscribers that
// are not keeping up miss it.
func (h *Hub) Deliver(ctx context.Context, n domain.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, n)
	if over := len(h.recent) - h.limit; over > 0 {
		h.recent = slices.Delete(h.recent, 0, over)
	}

	for ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Active returns the notifications still showing at now, oldest first.
func (h *Hub) Active(now time.Time) []domain.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]domain.Notification, 0, len(h.recent))
	for _, n := range h.recent {
		if now.Before(n.ExpiresAt()) {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss removes a notification. It reports whether it was present.
func (h *Hub) Dismiss(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := slices.IndexFunc(h.recent, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	h.recent = slices.Delete(h.recent, i, i+1)
	return true
}

// Subscribe returns a channel receiving every notification delivered from
// now on, and a function that ends the subscription.
func (h *Hub) Subscribe(buffer int) (<-chan domain.Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.Notification, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
