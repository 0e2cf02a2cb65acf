package model

import "time"

// PushSubscription holds a browser push subscription. Subscribers are
// notified when a bake in one of their boxes completes.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Boxes []*Box `gorm:"many2many:subscription_box_mapping;"`
}
