// Package session holds the operator's in-progress selections and decides
// whether an add or remove action is currently valid. It consumes
// classified scan events and sits in front of the occupancy tracker.
package session

import (
	"time"

	"github.com/jonboulle/clockwork"

	"ovenlog-backend/internal/model"
)

// Session is the per-operator selection state. It stores entity ids, never
// private entity copies, so it cannot drift from the store. All mutation
// goes through apply, which broadcasts one change signal per mutation to
// every subscriber, synchronously.
type Session struct {
	clock clockwork.Clock

	userID        *int64
	trakIDs       []int64
	eventIDs      []int64
	boxID         *int64
	applicationID *int64
	temperature   float64
	bakeHours     float64
	quantity      int
	startTime     time.Time
	note          string

	observers []func()
}

// New creates an empty session with defaults: quantity 1, start time now.
func New(clock clockwork.Clock) *Session {
	return &Session{
		clock:     clock,
		quantity:  1,
		startTime: clock.Now(),
	}
}

// Subscribe registers an observer invoked synchronously after every
// mutation.
func (s *Session) Subscribe(fn func()) {
	s.observers = append(s.observers, fn)
}

// apply is the single mutation entry point: run the change, then notify.
func (s *Session) apply(mutate func()) {
	mutate()
	for _, fn := range s.observers {
		fn()
	}
}

// --- Accessors ---

func (s *Session) UserID() *int64        { return s.userID }
func (s *Session) TrakIDs() []int64      { return append([]int64(nil), s.trakIDs...) }
func (s *Session) EventIDs() []int64     { return append([]int64(nil), s.eventIDs...) }
func (s *Session) BoxID() *int64         { return s.boxID }
func (s *Session) ApplicationID() *int64 { return s.applicationID }
func (s *Session) Temperature() float64  { return s.temperature }
func (s *Session) BakeHours() float64    { return s.bakeHours }
func (s *Session) Quantity() int         { return s.quantity }
func (s *Session) StartTime() time.Time  { return s.startTime }
func (s *Session) Note() string          { return s.note }

// --- Mutators ---

// SetUser sets the current operator.
func (s *Session) SetUser(user *model.User) {
	s.apply(func() {
		if user == nil {
			s.userID = nil
			return
		}
		id := user.ID
		s.userID = &id
	})
}

// SelectBox sets the target box and overwrites the temperature with the
// box's default.
func (s *Session) SelectBox(box *model.Box) {
	s.apply(func() {
		if box == nil {
			s.boxID = nil
			return
		}
		id := box.ID
		s.boxID = &id
		s.temperature = box.DefaultTemperature
	})
}

// SelectApplication sets the recipe. Present defaults overwrite bake-hours
// and temperature; absent defaults leave the current values untouched.
func (s *Session) SelectApplication(app *model.Application) {
	s.apply(func() {
		if app == nil {
			s.applicationID = nil
			return
		}
		id := app.ID
		s.applicationID = &id
		if app.DefaultBakeHours != nil {
			s.bakeHours = *app.DefaultBakeHours
		}
		if app.DefaultTemperature != nil {
			s.temperature = *app.DefaultTemperature
		}
	})
}

func (s *Session) SetTemperature(v float64) { s.apply(func() { s.temperature = v }) }
func (s *Session) SetBakeHours(v float64)   { s.apply(func() { s.bakeHours = v }) }
func (s *Session) SetQuantity(v int)        { s.apply(func() { s.quantity = v }) }
func (s *Session) SetStartTime(v time.Time) { s.apply(func() { s.startTime = v }) }
func (s *Session) SetNote(v string)         { s.apply(func() { s.note = v }) }

// AddTrak selects a trak. Adding an already-selected id is a no-op.
func (s *Session) AddTrak(id int64) {
	s.apply(func() {
		if !contains(s.trakIDs, id) {
			s.trakIDs = append(s.trakIDs, id)
		}
	})
}

// RemoveTrak deselects a trak.
func (s *Session) RemoveTrak(id int64) {
	s.apply(func() { s.trakIDs = remove(s.trakIDs, id) })
}

// ToggleTrak flips a trak's selection.
func (s *Session) ToggleTrak(id int64) {
	if contains(s.trakIDs, id) {
		s.RemoveTrak(id)
	} else {
		s.AddTrak(id)
	}
}

// SelectAllTraks replaces the trak selection wholesale.
func (s *Session) SelectAllTraks(ids []int64) {
	s.apply(func() {
		s.trakIDs = s.trakIDs[:0]
		for _, id := range ids {
			if !contains(s.trakIDs, id) {
				s.trakIDs = append(s.trakIDs, id)
			}
		}
	})
}

// DeselectAllTraks clears the trak selection.
func (s *Session) DeselectAllTraks() {
	s.apply(func() { s.trakIDs = s.trakIDs[:0] })
}

// ClearTrakSelection clears the trak selection.
func (s *Session) ClearTrakSelection() { s.DeselectAllTraks() }

// AddEvent selects an open oven event for removal.
func (s *Session) AddEvent(id int64) {
	s.apply(func() {
		if !contains(s.eventIDs, id) {
			s.eventIDs = append(s.eventIDs, id)
		}
	})
}

// RemoveEvent deselects an event.
func (s *Session) RemoveEvent(id int64) {
	s.apply(func() { s.eventIDs = remove(s.eventIDs, id) })
}

// ToggleEvent flips an event's selection.
func (s *Session) ToggleEvent(id int64) {
	if contains(s.eventIDs, id) {
		s.RemoveEvent(id)
	} else {
		s.AddEvent(id)
	}
}

// ClearEventSelection clears the event selection.
func (s *Session) ClearEventSelection() {
	s.apply(func() { s.eventIDs = s.eventIDs[:0] })
}

// Reset clears every selection and parameter back to defaults. The current
// user survives a reset.
func (s *Session) Reset() {
	s.apply(func() {
		s.trakIDs = s.trakIDs[:0]
		s.eventIDs = s.eventIDs[:0]
		s.boxID = nil
		s.applicationID = nil
		s.temperature = 0
		s.bakeHours = 0
		s.quantity = 1
		s.startTime = s.clock.Now()
		s.note = ""
	})
}

// CanAdd reports whether a check-in action is currently valid.
func (s *Session) CanAdd() bool {
	return len(s.trakIDs) > 0 &&
		s.boxID != nil &&
		s.temperature > 0 &&
		s.bakeHours > 0 &&
		s.quantity > 0 &&
		s.userID != nil
}

// CanRemove reports whether a check-out action is currently valid.
func (s *Session) CanRemove() bool {
	return len(s.eventIDs) > 0 && s.userID != nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
