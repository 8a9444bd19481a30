package changefeed

import (
	"context"
	"errors"
	"sync"
)

// Hub is an in-process Notifier. It only reaches subscribers in the same
// process, so it suits a single instance and tests.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	if ev.UserID == "" {
		return errors.New("changefeed: event has no user id")
	}
	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs[ev.UserID]))
	for s := range h.subs[ev.UserID] {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.offer(ev)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, userID string, onChange func(Event)) (*Subscription, error) {
	if userID == "" {
		return nil, errors.New("changefeed: subscribe needs a user id")
	}
	if onChange == nil {
		return nil, errors.New("changefeed: subscribe needs a callback")
	}

	var sub *Subscription
	h.mu.Lock()
	sub = newSubscription(ctx, onChange, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.drop(userID, sub)
	})
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub, nil
}

// drop removes s; h.mu must be held.
func (h *Hub) drop(userID string, s *Subscription) {
	if set, ok := h.subs[userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
