package model

import "time"

// OvenEvent is one occupancy record: a trak's stay inside a box from
// check-in to check-out. An event with no TimeOut is open.
type OvenEvent struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	TrakID        int64      `gorm:"index;not null" json:"trakId"`
	BoxID         int64      `gorm:"index;not null" json:"boxId"`
	UserInID      int64      `gorm:"not null" json:"userInId"`
	TimeIn        time.Time  `gorm:"index;not null" json:"timeIn"`
	UserOutID     *int64     `json:"userOutId,omitempty"`
	TimeOut       *time.Time `gorm:"index" json:"timeOut,omitempty"`
	Temperature   float64    `gorm:"not null" json:"temperature"`
	BakeHours     float64    `gorm:"not null" json:"bakeHours"`
	Quantity      int        `gorm:"not null;default:1" json:"quantity"`
	ApplicationID *int64     `json:"applicationId,omitempty"`
	Note          string     `gorm:"size:512" json:"note,omitempty"`

	// Associations
	Trak        Trak         `json:"trak,omitempty"`
	Box         Box          `json:"box,omitempty"`
	UserIn      User         `json:"userIn,omitempty"`
	UserOut     *User        `json:"userOut,omitempty"`
	Application *Application `json:"application,omitempty"`
}

// IsOpen reports whether the trak is still inside the box.
func (e *OvenEvent) IsOpen() bool {
	return e.TimeOut == nil
}

// BakeEnd is the scheduled end of the bake cycle.
func (e *OvenEvent) BakeEnd() time.Time {
	return e.TimeIn.Add(time.Duration(e.BakeHours * float64(time.Hour)))
}

// TimeRemaining returns the time left in the bake cycle at the given
// instant, clamped at zero. Closed events always report zero.
func (e *OvenEvent) TimeRemaining(now time.Time) time.Duration {
	if e.TimeOut != nil {
		return 0
	}
	remaining := e.BakeEnd().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActualBakeTime is the elapsed time in the box, using now as the end for
// events still open.
func (e *OvenEvent) ActualBakeTime(now time.Time) time.Duration {
	end := now
	if e.TimeOut != nil {
		end = *e.TimeOut
	}
	return end.Sub(e.TimeIn)
}

// OnEvent records a power-on for equipment without a digital display.
// It gates warm-up readiness and is never mutated after creation.
type OnEvent struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	BoxID              int64     `gorm:"index;not null" json:"boxId"`
	UserID             int64     `gorm:"not null" json:"userId"`
	IntendedStartTime  time.Time `gorm:"not null" json:"intendedStartTime"`
	ActualRecordedTime time.Time `gorm:"index;not null" json:"actualRecordedTime"`
}

// ReadyAt is the instant the box reaches operating temperature after this
// power-on, given the box's warm-up in minutes.
func (e *OnEvent) ReadyAt(warmUpMinutes float64) time.Time {
	return e.ActualRecordedTime.Add(time.Duration(warmUpMinutes * float64(time.Minute)))
}
