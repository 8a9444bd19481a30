package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTotals struct {
	mu    sync.Mutex
	calls int
	next  []map[string]int64
	err   error
}

func (f *fakeTotals) Totals(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.next[0]
	if len(f.next) > 1 {
		f.next = f.next[1:]
	}
	return out, nil
}

func (f *fakeTotals) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type gauge struct {
	mu   sync.Mutex
	vals map[string]float64
}

func newGauge() *gauge { return &gauge{vals: map[string]float64{}} }

func (g *gauge) set(status string, n float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vals[status] = n
}

func (g *gauge) get(status string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vals[status]
}

func TestStoredTotals_RefreshZeroesVanishedStatus(t *testing.T) {
	src := &fakeTotals{next: []map[string]int64{
		{"Accepted": 2, "Rejected": 1},
		{"Accepted": 3},
	}}
	g := newGauge()
	w := NewStoredTotals(src, g.set, zap.NewNop(), time.Hour)

	w.Refresh()
	assert.Equal(t, 2.0, g.get("Accepted"))
	assert.Equal(t, 1.0, g.get("Rejected"))

	w.Refresh()
	assert.Equal(t, 3.0, g.get("Accepted"))
	assert.Equal(t, 0.0, g.get("Rejected"))
}

func TestStoredTotals_ErrorKeepsValues(t *testing.T) {
	src := &fakeTotals{next: []map[string]int64{{"Accepted": 4}}}
	g := newGauge()
	w := NewStoredTotals(src, g.set, zap.NewNop(), time.Hour)

	w.Refresh()
	src.mu.Lock()
	src.err = errors.New("mongo down")
	src.mu.Unlock()
	w.Refresh()

	assert.Equal(t, 4.0, g.get("Accepted"))
}

func TestStoredTotals_StartRunsImmediatelyAndStops(t *testing.T) {
	src := &fakeTotals{next: []map[string]int64{{"In Progress": 1}}}
	g := newGauge()
	w := NewStoredTotals(src, g.set, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	require.Eventually(t, func() bool { return src.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()
	w.Stop()

	calls := src.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, src.Calls(), "no refresh after Stop")
	assert.Equal(t, 1.0, g.get("In Progress"))
}
