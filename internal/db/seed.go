package db

import (
	"log"

	"gorm.io/gorm"

	"ovenlog-backend/internal/model"
)

func ptr[T any](v T) *T { return &v }

// Seed loads a starting catalog for a floor with no data. It is a no-op
// once any box type exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.BoxType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	log.Println("Seeding catalog data...")

	boxTypes := []model.BoxType{
		{Name: "Oven"}, {Name: "Dry Box"}, {Name: "Freezer"},
		{Name: "Refrigerator"}, {Name: "Solder Pot"}, {Name: "Cart"},
	}
	if err := db.Create(&boxTypes).Error; err != nil {
		return err
	}

	locations := []model.Location{
		{Name: "F2"}, {Name: "F3"}, {Name: "Lab 1"},
		{Name: "Lab 2"}, {Name: "Production Floor"}, {Name: "Shelf"},
	}
	if err := db.Create(&locations).Error; err != nil {
		return err
	}

	manufacturers := []model.Manufacturer{
		{Name: "Sheldon"}, {Name: "Despatch"}, {Name: "Blue M"},
		{Name: "Precision"}, {Name: "McDry"}, {Name: "Dr. Storage"},
	}
	if err := db.Create(&manufacturers).Error; err != nil {
		return err
	}

	models := []model.EquipmentModel{
		{Name: "FX14-2", ManufacturerID: manufacturers[0].ID},
		{Name: "LFD2-24", ManufacturerID: manufacturers[1].ID},
		{Name: "OV-490A-2", ManufacturerID: manufacturers[2].ID},
		{Name: "LFD1-42", ManufacturerID: manufacturers[1].ID},
		{Name: "29", ManufacturerID: manufacturers[3].ID},
		{Name: "DXU-1002-10", ManufacturerID: manufacturers[4].ID},
		{Name: "X2E-480", ManufacturerID: manufacturers[5].ID},
	}
	if err := db.Create(&models).Error; err != nil {
		return err
	}

	ovenType, dryBoxType := boxTypes[0], boxTypes[1]
	boxes := []model.Box{
		{ToolID: "E02908", ModelID: models[0].ID, BoxTypeID: ovenType.ID, LocationID: locations[0].ID, DefaultTemperature: 80, TemperatureScale: "C", HasDigitalDisplay: true},
		{ToolID: "E03010", ModelID: models[0].ID, BoxTypeID: ovenType.ID, LocationID: locations[0].ID, DefaultTemperature: 105, TemperatureScale: "C", HasDigitalDisplay: true},
		{ToolID: "796296", ModelID: models[1].ID, BoxTypeID: ovenType.ID, LocationID: locations[0].ID, DefaultTemperature: 105, TemperatureScale: "C", HasDigitalDisplay: true},
		{ToolID: "E03416", ModelID: models[2].ID, BoxTypeID: ovenType.ID, LocationID: locations[0].ID, DefaultTemperature: 77, TemperatureScale: "C", HasDigitalDisplay: true},
		// Analog ovens: readiness is gated on a recorded power-on plus warm-up.
		{ToolID: "670252", ModelID: models[3].ID, BoxTypeID: ovenType.ID, LocationID: locations[1].ID, DefaultTemperature: 65, TemperatureScale: "C", WarmUpMinutes: ptr(10.0), HasDigitalDisplay: false},
		{ToolID: "800607", ModelID: models[4].ID, BoxTypeID: ovenType.ID, LocationID: locations[0].ID, DefaultTemperature: 65, TemperatureScale: "C", WarmUpMinutes: ptr(210.0), HasDigitalDisplay: false},
		{ToolID: "702", ModelID: models[5].ID, BoxTypeID: dryBoxType.ID, LocationID: locations[0].ID, DefaultTemperature: 22, TemperatureScale: "C", HasDigitalDisplay: true},
		{ToolID: "E03328", ModelID: models[6].ID, BoxTypeID: dryBoxType.ID, LocationID: locations[1].ID, DefaultTemperature: 22, TemperatureScale: "C", HasDigitalDisplay: true},
	}
	if err := db.Create(&boxes).Error; err != nil {
		return err
	}

	applications := []model.Application{
		{Name: "Moisture Bake", DefaultBakeHours: ptr(24.0), DefaultTemperature: ptr(105.0), Barcode: ptr("APP-MB24")},
		{Name: "Epoxy Cure", DefaultBakeHours: ptr(2.0), DefaultTemperature: ptr(77.0), Barcode: ptr("APP-EC2")},
		{Name: "Conformal Coat Cure", DefaultBakeHours: ptr(1.0), MinTemperature: ptr(60.0), MaxTemperature: ptr(90.0), Barcode: ptr("APP-CC1")},
	}
	if err := db.Create(&applications).Error; err != nil {
		return err
	}

	standardTimes := []model.StandardTime{
		{Barcode: "TIME-1H", Description: "1 hour", Hours: 1},
		{Barcode: "TIME-4H", Description: "4 hours", Hours: 4},
		{Barcode: "TIME-8H", Description: "8 hours", Hours: 8},
		{Barcode: "TIME-24H", Description: "24 hours", Hours: 24},
		{Barcode: "TIME-48H", Description: "48 hours", Hours: 48},
	}
	return db.Create(&standardTimes).Error
}
