package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChannelPrefix is prepended to the user id to form the pub/sub channel.
const ChannelPrefix = "applytrack:changes:"

// Channel returns the pub/sub channel for userID.
func Channel(userID string) string { return ChannelPrefix + userID }

// Redis is a Notifier over Redis pub/sub, so every instance behind a load
// balancer sees every user's events.
type Redis struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedis wraps an already connected client.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, log: logger}
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	if ev.UserID == "" {
		return errors.New("changefeed: event has no user id")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("changefeed: encode event: %w", err)
	}
	if err := r.client.Publish(ctx, Channel(ev.UserID), b).Err(); err != nil {
		return fmt.Errorf("changefeed: publish: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub connection for userID. The receive goroutine ends
// when the subscription is cancelled or ctx ends.
func (r *Redis) Subscribe(ctx context.Context, userID string, onChange func(Event)) (*Subscription, error) {
	if userID == "" {
		return nil, errors.New("changefeed: subscribe needs a user id")
	}
	if onChange == nil {
		return nil, errors.New("changefeed: subscribe needs a callback")
	}

	ps := r.client.Subscribe(ctx, Channel(userID))
	// Wait for the subscription confirmation so events published right after
	// Subscribe returns are not missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("changefeed: subscribe: %w", err)
	}

	sub := newSubscription(ctx, onChange, func() { _ = ps.Close() })

	go func() {
		ch := ps.Channel()
		for {
			select {
			case <-sub.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					sub.Cancel()
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.log.Warn("changefeed: bad payload",
						zap.String("channel", msg.Channel),
						zap.Error(err))
					continue
				}
				sub.offer(ev)
			}
		}
	}()

	return sub, nil
}

// Ping checks the Redis connection (used by /health).
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
