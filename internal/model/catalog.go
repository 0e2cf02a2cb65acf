package model

// Application is a process recipe: optional default bake duration and
// temperature limits, plus an optional unique barcode for selection by scan.
type Application struct {
	ID                 int64    `gorm:"primaryKey" json:"id"`
	Name               string   `gorm:"uniqueIndex;size:128;not null" json:"name"`
	DefaultBakeHours   *float64 `json:"defaultBakeHours,omitempty"`
	DefaultTemperature *float64 `json:"defaultTemperature,omitempty"`
	MinTemperature     *float64 `json:"minTemperature,omitempty"`
	MaxTemperature     *float64 `json:"maxTemperature,omitempty"`
	Barcode            *string  `gorm:"uniqueIndex;size:64" json:"barcode,omitempty"`
}

// StandardTime is a named duration with a unique barcode for quick
// bake-duration entry by scan.
type StandardTime struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	Barcode     string  `gorm:"uniqueIndex;size:64;not null" json:"barcode"`
	Description string  `gorm:"size:128" json:"description"`
	Hours       float64 `gorm:"not null" json:"hours"`
}

// BoxType classifies equipment (Oven, Dry Box, Freezer, Cart, ...).
type BoxType struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// Manufacturer of equipment models.
type Manufacturer struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:128;not null" json:"name"`
}

// EquipmentModel is a manufacturer's equipment model.
type EquipmentModel struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:128;not null" json:"name"`
	ManufacturerID int64  `gorm:"index;not null" json:"manufacturerId"`

	// Associations
	Manufacturer Manufacturer `json:"manufacturer,omitempty"`
}

// Location is a floor position equipment lives at.
type Location struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:128;not null" json:"name"`
}
