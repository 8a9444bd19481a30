package changefeed

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects delivered events.
type recorder struct {
	mu  sync.Mutex
	evs []Event
	got chan struct{}
}

func newRecorder() *recorder { return &recorder{got: make(chan struct{}, 64)} }

func (r *recorder) on(ev Event) {
	r.mu.Lock()
	r.evs = append(r.evs, ev)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evs)
}

func (r *recorder) waitOne(t *testing.T) {
	t.Helper()
	select {
	case <-r.got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHub_DeliversToSameUser(t *testing.T) {
	h := NewHub()
	ctx := context.Background()
	rec := newRecorder()

	sub, err := h.Subscribe(ctx, "u1", rec.on)
	require.NoError(t, err)
	defer sub.Cancel()

	require.NoError(t, h.Publish(ctx, NewEvent("u1", KindCreated)))
	rec.waitOne(t)

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "u1", rec.evs[0].UserID)
	assert.Equal(t, KindCreated, rec.evs[0].Kind)
}

func TestHub_IsolatesUsers(t *testing.T) {
	h := NewHub()
	ctx := context.Background()
	a, b := newRecorder(), newRecorder()

	subA, err := h.Subscribe(ctx, "a", a.on)
	require.NoError(t, err)
	defer subA.Cancel()
	subB, err := h.Subscribe(ctx, "b", b.on)
	require.NoError(t, err)
	defer subB.Cancel()

	require.NoError(t, h.Publish(ctx, NewEvent("a", KindCreated)))
	a.waitOne(t)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, b.count())
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	h := NewHub()
	rec := newRecorder()
	sub, err := h.Subscribe(context.Background(), "u1", rec.on)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Subscribers("u1"))

	sub.Cancel()
	sub.Cancel()
	sub.wait()

	assert.Equal(t, 0, h.Subscribers("u1"))
}

func TestSubscription_NoDeliveryAfterCancel(t *testing.T) {
	h := NewHub()
	var calls atomic.Int32
	sub, err := h.Subscribe(context.Background(), "u1", func(Event) { calls.Add(1) })
	require.NoError(t, err)

	sub.Cancel()
	require.NoError(t, h.Publish(context.Background(), NewEvent("u1", KindCreated)))
	assert.False(t, sub.offer(NewEvent("u1", KindCreated)))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubscription_ContextCancelReleases(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.Subscribe(ctx, "u1", func(Event) {})
	require.NoError(t, err)

	cancel()
	sub.wait()

	select {
	case <-sub.Done():
	default:
		t.Fatal("subscription should be cancelled with its context")
	}
	assert.Equal(t, 0, h.Subscribers("u1"))
}

func TestSubscription_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	h := NewHub()
	release := make(chan struct{})
	sub, err := h.Subscribe(context.Background(), "u1", func(Event) { <-release })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*4; i++ {
			_ = h.Publish(context.Background(), NewEvent("u1", KindCreated))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	close(release)
	sub.Cancel()
}

func TestHub_RejectsBadInput(t *testing.T) {
	h := NewHub()
	_, err := h.Subscribe(context.Background(), "", func(Event) {})
	assert.Error(t, err)
	_, err = h.Subscribe(context.Background(), "u1", nil)
	assert.Error(t, err)
	assert.Error(t, h.Publish(context.Background(), Event{}))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "applytrack:changes:abc", Channel("abc"))
}

func TestRedis_PublishSubscribe(t *testing.T) {
	addr := os.Getenv("APPLYTRACK_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available (%s): %v", addr, err)
	}
	defer client.Close()

	n := NewRedis(client, nil)
	rec := newRecorder()
	sub, err := n.Subscribe(ctx, "redis-user", rec.on)
	require.NoError(t, err)
	defer sub.Cancel()

	require.NoError(t, n.Publish(ctx, NewEvent("redis-user", KindCreated)))
	rec.waitOne(t)
	assert.Equal(t, "redis-user", rec.evs[0].UserID)
}
