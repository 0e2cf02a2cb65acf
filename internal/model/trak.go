package model

import "time"

// Trak represents a trackable work item passed through bake/cure cycles.
type Trak struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	TrakCode     string `gorm:"uniqueIndex;size:64;not null" json:"trakCode"`
	SerialNumber string `gorm:"size:64" json:"serialNumber"`
	WorkOrder    string `gorm:"size:64" json:"workOrder"`
	PartID       *int64 `gorm:"index" json:"partId,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Associations
	Part *Part `json:"part,omitempty"`
}

// Part is a catalog part referenced by traks.
type Part struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	PartNumber  string `gorm:"uniqueIndex;size:64;not null" json:"partNumber"`
	Description string `gorm:"size:256" json:"description"`
}
