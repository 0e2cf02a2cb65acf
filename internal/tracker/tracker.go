// Package tracker enforces the occupancy lifecycle of traks inside boxes:
// check-in, check-out, warm-up readiness gating, and history queries.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"ovenlog-backend/internal/model"
	"ovenlog-backend/internal/store"
)

// ErrConflict is returned when a check-in targets a trak that already has
// an open oven event.
var ErrConflict = errors.New("tracker: trak already has an open event")

// ErrNotFound is returned when a referenced box, trak, or user does not
// exist.
var ErrNotFound = errors.New("tracker: record not found")

// ValidationError describes a check-in parameter rejected before any store
// write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tracker: invalid %s: %s", e.Field, e.Reason)
}

// CheckInParams carries everything needed to open an oven event.
type CheckInParams struct {
	TrakID        int64
	BoxID         int64
	UserID        int64
	Temperature   float64
	BakeHours     float64
	Quantity      int
	StartTime     time.Time
	ApplicationID *int64
	Note          string
}

// Tracker is the occupancy state machine over the store. It never retries
// store failures; those propagate unchanged.
type Tracker struct {
	store store.Store
	clock clockwork.Clock
}

// New creates a tracker on the given store using the real clock.
func New(s store.Store) *Tracker {
	return NewWithClock(s, clockwork.NewRealClock())
}

// NewWithClock creates a tracker with an injectable clock for tests.
func NewWithClock(s store.Store, clock clockwork.Clock) *Tracker {
	return &Tracker{store: s, clock: clock}
}

// IsAvailable reports whether the trak has no open oven event.
func (t *Tracker) IsAvailable(ctx context.Context, trakID int64) (bool, error) {
	open, err := t.store.FindOpenEventByTrak(ctx, trakID)
	if err != nil {
		return false, err
	}
	return open == nil, nil
}

// IsReady reports whether the box is at operating temperature. Boxes with a
// digital display, or without a configured warm-up, are always ready. A
// non-digital box with a warm-up and no power-on record ever is treated as
// still cold, not as unknown.
func (t *Tracker) IsReady(ctx context.Context, boxID int64) (bool, error) {
	box, err := t.store.FindBoxByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, fmt.Errorf("%w: box %d", ErrNotFound, boxID)
		}
		return false, err
	}
	if !box.RequiresPowerOn() {
		return true, nil
	}

	last, err := t.store.FindLatestOnEvent(ctx, boxID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}
	return !t.clock.Now().Before(last.ReadyAt(*box.WarmUpMinutes)), nil
}

// RecordPowerOn inserts a power-on record stamped with the current time.
// Repeated calls append repeated records; readiness always uses the latest.
func (t *Tracker) RecordPowerOn(ctx context.Context, boxID, userID int64, intendedStart time.Time) (*model.OnEvent, error) {
	if _, err := t.store.FindBoxByID(ctx, boxID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: box %d", ErrNotFound, boxID)
		}
		return nil, err
	}

	event := &model.OnEvent{
		BoxID:              boxID,
		UserID:             userID,
		IntendedStartTime:  intendedStart,
		ActualRecordedTime: t.clock.Now().UTC(),
	}
	if err := t.store.InsertOnEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// CheckIn opens a new oven event for the trak. Parameters are validated
// before any store write; a trak with an open event fails with ErrConflict,
// including when the store's uniqueness index catches a race the
// availability pre-check missed. Equipment readiness is deliberately not
// enforced here; that call belongs to the session layer.
func (t *Tracker) CheckIn(ctx context.Context, p CheckInParams) (*model.OvenEvent, error) {
	if p.Temperature <= 0 {
		return nil, &ValidationError{Field: "temperature", Reason: "must be positive"}
	}
	if p.BakeHours <= 0 {
		return nil, &ValidationError{Field: "bakeHours", Reason: "must be positive"}
	}
	if p.Quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	if _, err := t.store.FindBoxByID(ctx, p.BoxID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: box %d", ErrNotFound, p.BoxID)
		}
		return nil, err
	}
	if _, err := t.store.FindTrakByID(ctx, p.TrakID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: trak %d", ErrNotFound, p.TrakID)
		}
		return nil, err
	}

	available, err := t.IsAvailable(ctx, p.TrakID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: trak %d", ErrConflict, p.TrakID)
	}

	event := &model.OvenEvent{
		TrakID:        p.TrakID,
		BoxID:         p.BoxID,
		UserInID:      p.UserID,
		TimeIn:        p.StartTime,
		Temperature:   p.Temperature,
		BakeHours:     p.BakeHours,
		Quantity:      p.Quantity,
		ApplicationID: p.ApplicationID,
		Note:          p.Note,
	}
	if err := t.store.InsertOvenEvent(ctx, event); err != nil {
		if errors.Is(err, store.ErrDuplicateOpenEvent) {
			return nil, fmt.Errorf("%w: trak %d", ErrConflict, p.TrakID)
		}
		return nil, err
	}
	return t.store.FindEventByID(ctx, event.ID)
}

// CheckOut closes the event, stamping time-out and the removing user.
// Returns false when the event does not exist or is already closed; a
// duplicate scan against a closed event is a benign no-op, never an error.
func (t *Tracker) CheckOut(ctx context.Context, eventID, userID int64) (bool, error) {
	event, err := t.store.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if event.TimeOut != nil {
		return false, nil
	}

	now := t.clock.Now().UTC()
	event.TimeOut = &now
	event.UserOutID = &userID
	if err := t.store.UpdateOvenEvent(ctx, event); err != nil {
		return false, err
	}
	return true, nil
}

// ListOpen returns every open event, oldest time-in first, so the longest
// baking item sorts to the top.
func (t *Tracker) ListOpen(ctx context.Context) ([]model.OvenEvent, error) {
	return t.store.QueryOpenEvents(ctx)
}

// History returns every event for the trak, newest time-in first.
func (t *Tracker) History(ctx context.Context, trakID int64) ([]model.OvenEvent, error) {
	return t.store.QueryEventsByTrak(ctx, trakID)
}

// RecentActivity returns events checked in or out within the window, newest
// time-in first.
func (t *Tracker) RecentActivity(ctx context.Context, windowHours int) ([]model.OvenEvent, error) {
	cutoff := t.clock.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	return t.store.QueryEventsInWindow(ctx, cutoff)
}
