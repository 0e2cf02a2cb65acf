package notification

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovenlog-backend/internal/model"
	"ovenlog-backend/internal/store"
	"ovenlog-backend/internal/tracker"
)

func drainJobs(wp *WorkerPool) []int64 {
	var jobs []int64
	for {
		select {
		case job := <-wp.jobs:
			jobs = append(jobs, job)
		default:
			return jobs
		}
	}
}

func TestWatcher_SweepOnce(t *testing.T) {
	gormDB := newTestDB(t)
	s := store.NewGormStore(gormDB)
	ctx := context.Background()

	event := seedBakeEvent(t, gormDB) // 2h bake, checked in 2h ago: due now
	clock := clockwork.NewFakeClockAt(time.Now())
	tr := tracker.NewWithClock(s, clock)
	stillBaking := &model.OvenEvent{TrakID: 99, BoxID: event.BoxID, UserInID: 1,
		TimeIn: time.Now().UTC(), Temperature: 65, BakeHours: 8, Quantity: 1}
	require.NoError(t, gormDB.Create(stillBaking).Error)

	wp := NewWorkerPool(4, gormDB, &webpush.Options{})
	w := NewWatcher(tr, wp, clock, time.Minute)

	w.SweepOnce(ctx)
	assert.Equal(t, []int64{event.ID}, drainJobs(wp), "only the elapsed bake fires")

	// A second sweep never re-notifies an event already dispatched.
	w.SweepOnce(ctx)
	assert.Empty(t, drainJobs(wp))

	// Once the event closes it leaves the notified set, so a future bake in
	// a fresh event can fire again.
	closed, err := tr.CheckOut(ctx, event.ID, 1)
	require.NoError(t, err)
	require.True(t, closed)

	w.SweepOnce(ctx)
	assert.Empty(t, drainJobs(wp))
	assert.Empty(t, w.notified)
}

func TestWatcher_RunSweepsOnTimer(t *testing.T) {
	gormDB := newTestDB(t)
	s := store.NewGormStore(gormDB)

	event := seedBakeEvent(t, gormDB)
	clock := clockwork.NewFakeClockAt(time.Now())
	tr := tracker.NewWithClock(s, clock)
	subscribe(t, gormDB, "https://example.com/push/1", event.BoxID)

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	sent := make(chan struct{}, 1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sent <- struct{}{}
			return okResponse(), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWatcher(tr, wp, clock, time.Minute)
	go w.Run(ctx)

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the initial sweep to notify")
	}
}
