package notification

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"ovenlog-backend/internal/tracker"
)

// Watcher periodically sweeps the open oven events and dispatches a
// bake-complete notification the first time an event's scheduled bake
// time elapses.
type Watcher struct {
	tracker  *tracker.Tracker
	pool     *WorkerPool
	clock    clockwork.Clock
	interval time.Duration
	notified map[int64]struct{}
}

// NewWatcher creates a watcher sweeping at the given interval. Already-
// notified event ids are remembered in memory only, so a restart may
// re-notify events that completed while the service was down.
func NewWatcher(t *tracker.Tracker, pool *WorkerPool, clock clockwork.Clock, interval time.Duration) *Watcher {
	return &Watcher{
		tracker:  t,
		pool:     pool,
		clock:    clock,
		interval: interval,
		notified: make(map[int64]struct{}),
	}
}

// Run starts the worker pool and sweeps until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	log.Println("Starting bake watcher...")
	w.pool.Start(ctx)

	w.SweepOnce(ctx)

	timer := w.clock.NewTimer(w.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Bake watcher shutting down.")
			return
		case <-timer.Chan():
			w.SweepOnce(ctx)
			timer.Reset(w.interval)
		}
	}
}

// SweepOnce dispatches notifications for open events whose bake time has
// elapsed and drops completed ids from the notified set once they close.
func (w *Watcher) SweepOnce(ctx context.Context) {
	events, err := w.tracker.ListOpen(ctx)
	if err != nil {
		log.Printf("Bake sweep failed to list open events: %v", err)
		return
	}

	now := w.clock.Now()
	open := make(map[int64]struct{}, len(events))
	for i := range events {
		event := &events[i]
		open[event.ID] = struct{}{}
		if event.TimeRemaining(now) > 0 {
			continue
		}
		if _, done := w.notified[event.ID]; done {
			continue
		}
		w.notified[event.ID] = struct{}{}
		w.pool.Dispatch(event.ID)
	}

	// Closed events can no longer fire; forget them.
	for id := range w.notified {
		if _, stillOpen := open[id]; !stillOpen {
			delete(w.notified, id)
		}
	}
}
