package model

import "time"

// Box represents one piece of heat-treatment equipment (oven, dry box, freezer, cart).
type Box struct {
	ID                 int64    `gorm:"primaryKey" json:"id"`
	ToolID             string   `gorm:"uniqueIndex;size:64;not null" json:"toolId"`
	DefaultTemperature float64  `gorm:"not null" json:"defaultTemperature"`
	TemperatureScale   string   `gorm:"size:8;not null;default:C" json:"temperatureScale"`
	WarmUpMinutes      *float64 `json:"warmUpMinutes,omitempty"`
	HasDigitalDisplay  bool     `gorm:"not null;default:true" json:"hasDigitalDisplay"`
	LocationID         int64    `gorm:"index;not null" json:"locationId"`
	ModelID            int64    `gorm:"index;not null" json:"modelId"`
	BoxTypeID          int64    `gorm:"index;not null" json:"boxTypeId"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"-"`

	// Associations
	Location Location       `json:"location,omitempty"`
	Model    EquipmentModel `json:"model,omitempty"`
	BoxType  BoxType        `json:"boxType,omitempty"`
}

// RequiresPowerOn reports whether the box must have a recorded power-on
// event before readiness can be evaluated. Digital-display units and units
// without a configured warm-up are always ready.
func (b *Box) RequiresPowerOn() bool {
	return !b.HasDigitalDisplay && b.WarmUpMinutes != nil
}
