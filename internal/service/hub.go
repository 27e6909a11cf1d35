package service

import (
	"sync"

	"afrilink/internal/domain"
)

const subscriberBuffer = 16

// Hub fans notification changes out to the subscribers of one user.
// A subscriber whose buffer is full is dropped: its channel is closed and it
// has to resubscribe.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan domain.NotificationChange
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan domain.NotificationChange)}
}

// Subscribe returns the change feed for userID and a func that ends the subscription.
func (h *Hub) Subscribe(userID string) (<-chan domain.NotificationChange, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan domain.NotificationChange, subscriberBuffer)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan domain.NotificationChange)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.remove(userID, id)
		})
	}
}

// caller holds the lock
func (h *Hub) remove(userID string, id int) {
	userSubs := h.subs[userID]
	ch, ok := userSubs[id]
	if !ok {
		return
	}
	delete(userSubs, id)
	close(ch)
	if len(userSubs) == 0 {
		delete(h.subs, userID)
	}
}

// Publish never blocks.
func (h *Hub) Publish(change domain.NotificationChange) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := change.Notification.UserID
	for id, ch := range h.subs[userID] {
		select {
		case ch <- change:
		default:
			h.remove(userID, id)
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
