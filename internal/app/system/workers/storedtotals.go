// internal/app/system/workers/storedtotals.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// TotalsSource reports stored application counts per status.
type TotalsSource interface {
	Totals(ctx context.Context) (map[string]int64, error)
}

// GaugeSetter receives one value per status label.
type GaugeSetter func(status string, n float64)

// StoredTotals is a background worker that refreshes the stored-applications
// gauge. It runs once on Start and then every interval.
type StoredTotals struct {
	src      TotalsSource
	set      GaugeSetter
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// labels already published, so a status that disappears drops to zero
	seen map[string]bool
}

// NewStoredTotals creates the worker. interval <= 0 means one minute.
func NewStoredTotals(src TotalsSource, set GaugeSetter, logger *zap.Logger, interval time.Duration) *StoredTotals {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StoredTotals{
		src:      src,
		set:      set,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		seen:     make(map[string]bool),
	}
}

// Start begins the background refresh loop.
func (w *StoredTotals) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("stored totals worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *StoredTotals) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("stored totals worker stopped")
	})
}

func (w *StoredTotals) run() {
	defer w.wg.Done()

	w.Refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}

// Refresh queries the totals once and updates the gauge. Errors are logged;
// the gauge keeps its previous values.
func (w *StoredTotals) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	totals, err := w.src.Totals(ctx)
	if err != nil {
		w.log.Error("failed to refresh stored totals", zap.Error(err))
		return
	}

	for status := range w.seen {
		if _, ok := totals[status]; !ok {
			w.set(status, 0)
		}
	}
	for status, n := range totals {
		w.set(status, float64(n))
		w.seen[status] = true
	}
}
