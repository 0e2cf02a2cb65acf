package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"ovenlog-backend/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestSession_Defaults(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)

	assert.Nil(t, s.UserID())
	assert.Nil(t, s.BoxID())
	assert.Empty(t, s.TrakIDs())
	assert.Empty(t, s.EventIDs())
	assert.Equal(t, 1, s.Quantity())
	assert.Equal(t, clock.Now(), s.StartTime())
	assert.False(t, s.CanAdd())
	assert.False(t, s.CanRemove())
}

func TestSession_SelectBoxOverwritesTemperature(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	s.SetTemperature(120)

	s.SelectBox(&model.Box{ID: 7, DefaultTemperature: 65})

	assert.Equal(t, int64(7), *s.BoxID())
	assert.Equal(t, 65.0, s.Temperature())
}

func TestSession_SelectApplicationDefaults(t *testing.T) {
	t.Run("present defaults overwrite", func(t *testing.T) {
		s := New(clockwork.NewFakeClock())
		s.SelectApplication(&model.Application{
			ID:                 3,
			DefaultBakeHours:   ptr(2.0),
			DefaultTemperature: ptr(77.0),
		})

		assert.Equal(t, int64(3), *s.ApplicationID())
		assert.Equal(t, 2.0, s.BakeHours())
		assert.Equal(t, 77.0, s.Temperature())
	})

	t.Run("absent defaults leave current values", func(t *testing.T) {
		s := New(clockwork.NewFakeClock())
		s.SetBakeHours(4)
		s.SetTemperature(100)

		s.SelectApplication(&model.Application{ID: 3})

		assert.Equal(t, 4.0, s.BakeHours())
		assert.Equal(t, 100.0, s.Temperature())
	})

	t.Run("box scanned after application keeps its bake hours", func(t *testing.T) {
		s := New(clockwork.NewFakeClock())
		s.SelectApplication(&model.Application{
			ID:                 3,
			DefaultBakeHours:   ptr(2.0),
			DefaultTemperature: ptr(77.0),
		})
		s.SelectBox(&model.Box{ID: 7, DefaultTemperature: 65})

		assert.Equal(t, 2.0, s.BakeHours())
		assert.Equal(t, 65.0, s.Temperature())
	})
}

func TestSession_TrakSelection(t *testing.T) {
	s := New(clockwork.NewFakeClock())

	s.AddTrak(1)
	s.AddTrak(2)
	s.AddTrak(1) // no-op
	assert.Equal(t, []int64{1, 2}, s.TrakIDs())

	s.ToggleTrak(2)
	assert.Equal(t, []int64{1}, s.TrakIDs())
	s.ToggleTrak(2)
	assert.Equal(t, []int64{1, 2}, s.TrakIDs())

	s.RemoveTrak(1)
	assert.Equal(t, []int64{2}, s.TrakIDs())

	s.SelectAllTraks([]int64{5, 6, 6, 7})
	assert.Equal(t, []int64{5, 6, 7}, s.TrakIDs())

	s.DeselectAllTraks()
	assert.Empty(t, s.TrakIDs())
}

func TestSession_EventSelection(t *testing.T) {
	s := New(clockwork.NewFakeClock())

	s.ToggleEvent(10)
	s.ToggleEvent(11)
	assert.Equal(t, []int64{10, 11}, s.EventIDs())

	s.ToggleEvent(10)
	assert.Equal(t, []int64{11}, s.EventIDs())

	s.ClearEventSelection()
	assert.Empty(t, s.EventIDs())
}

func TestSession_AccessorsReturnCopies(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	s.AddTrak(1)

	ids := s.TrakIDs()
	ids[0] = 99

	assert.Equal(t, []int64{1}, s.TrakIDs())
}

func TestSession_ResetKeepsUser(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	s.SetUser(&model.User{ID: 42})
	s.SelectBox(&model.Box{ID: 7, DefaultTemperature: 65})
	s.AddTrak(1)
	s.AddEvent(10)
	s.SetBakeHours(2)
	s.SetQuantity(5)
	s.SetNote("rework")

	clock.Advance(time.Minute)
	s.Reset()

	assert.Equal(t, int64(42), *s.UserID())
	assert.Nil(t, s.BoxID())
	assert.Nil(t, s.ApplicationID())
	assert.Empty(t, s.TrakIDs())
	assert.Empty(t, s.EventIDs())
	assert.Zero(t, s.Temperature())
	assert.Zero(t, s.BakeHours())
	assert.Equal(t, 1, s.Quantity())
	assert.Equal(t, clock.Now(), s.StartTime())
	assert.Empty(t, s.Note())
}

func TestSession_CanAdd(t *testing.T) {
	complete := func(s *Session) {
		s.SetUser(&model.User{ID: 1})
		s.SelectBox(&model.Box{ID: 7, DefaultTemperature: 65})
		s.AddTrak(1)
		s.SetBakeHours(2)
	}

	testCases := []struct {
		name     string
		mutate   func(s *Session)
		expected bool
	}{
		{"all requirements met", func(s *Session) {}, true},
		{"no user", func(s *Session) { s.SetUser(nil) }, false},
		{"no box", func(s *Session) { s.SelectBox(nil) }, false},
		{"no traks", func(s *Session) { s.DeselectAllTraks() }, false},
		{"zero temperature", func(s *Session) { s.SetTemperature(0) }, false},
		{"zero bake hours", func(s *Session) { s.SetBakeHours(0) }, false},
		{"zero quantity", func(s *Session) { s.SetQuantity(0) }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(clockwork.NewFakeClock())
			complete(s)
			tc.mutate(s)
			assert.Equal(t, tc.expected, s.CanAdd())
		})
	}
}

func TestSession_CanRemove(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	assert.False(t, s.CanRemove())

	s.AddEvent(10)
	assert.False(t, s.CanRemove())

	s.SetUser(&model.User{ID: 1})
	assert.True(t, s.CanRemove())
}

func TestSession_SubscribersNotifiedPerMutation(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	var notified int
	s.Subscribe(func() { notified++ })

	s.SetUser(&model.User{ID: 1})
	s.AddTrak(1)
	s.AddTrak(1) // no-op mutation still broadcasts
	s.Reset()

	assert.Equal(t, 4, notified)
}
