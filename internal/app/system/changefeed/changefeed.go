// Package changefeed tells a user's open pages that their applications
// changed so they can re-fetch and recompute their statistics.
//
// Events are hints, not data: a subscriber that sees one should reload.
// Delivery is buffered per subscription and a full buffer drops the new
// event, since a pending event already means "reload".
package changefeed

import (
	"context"
	"sync"
	"time"
)

// Event kinds.
const (
	KindCreated = "created"
)

// Event announces that one user's records changed.
type Event struct {
	UserID string    `json:"user_id"`
	Kind   string    `json:"kind"`
	At     time.Time `json:"at"`
}

// Notifier publishes change events and delivers them to subscribers of the
// same user.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, userID string, onChange func(Event)) (*Subscription, error)
}

// bufferSize is the number of undelivered events held per subscription.
const bufferSize = 8

// Subscription is a live registration. Cancel releases it; calling Cancel
// more than once is safe.
type Subscription struct {
	ch       chan Event
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex // held while a callback runs
	release  func()
	finished chan struct{}
}

// newSubscription starts the delivery goroutine for onChange. release is
// called once, on Cancel or when ctx ends.
func newSubscription(ctx context.Context, onChange func(Event), release func()) *Subscription {
	s := &Subscription{
		ch:       make(chan Event, bufferSize),
		done:     make(chan struct{}),
		release:  release,
		finished: make(chan struct{}),
	}
	go s.loop(ctx, onChange)
	return s
}

func (s *Subscription) loop(ctx context.Context, onChange func(Event)) {
	defer close(s.finished)
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.Cancel()
			return
		case ev := <-s.ch:
			s.mu.Lock()
			select {
			case <-s.done:
				s.mu.Unlock()
				return
			default:
			}
			onChange(ev)
			s.mu.Unlock()
		}
	}
}

// offer queues ev without blocking. It reports false when the event was
// dropped because the buffer is full or the subscription is cancelled.
func (s *Subscription) offer(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// Cancel stops delivery and releases the subscription. It waits for a
// callback already in progress, so after Cancel returns onChange is not
// running and will not run again. Cancel must not be called from onChange.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
	s.mu.Lock()
	s.mu.Unlock()
}

// Done is closed once Cancel has been called.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// wait blocks until the delivery goroutine has exited (tests).
func (s *Subscription) wait() { <-s.finished }

// NewEvent stamps an event for userID.
func NewEvent(userID, kind string) Event {
	return Event{UserID: userID, Kind: kind, At: time.Now().UTC()}
}
