package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"ovenlog-backend/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("store: record not found")

// ErrDuplicateOpenEvent is returned when the open-event uniqueness index
// rejects a second open occupancy record for the same trak.
var ErrDuplicateOpenEvent = errors.New("store: trak already has an open event")

// Store defines the persistence operations the tracking core depends on.
// Scanned-code lookups (trak codes, tool IDs, barcodes) collate
// case-insensitively, matching how the framer classifies.
type Store interface {
	DB() *gorm.DB

	// Traks
	FindTrakByID(ctx context.Context, id int64) (*model.Trak, error)
	FindTrakByCode(ctx context.Context, code string) (*model.Trak, error)
	CreateOrGetTrak(ctx context.Context, code, serialNumber, workOrder string, partID *int64) (*model.Trak, error)
	ListAvailableTraks(ctx context.Context) ([]model.Trak, error)

	// Boxes
	FindBoxByID(ctx context.Context, id int64) (*model.Box, error)
	FindBoxByToolID(ctx context.Context, toolID string) (*model.Box, error)
	ListBoxes(ctx context.Context) ([]model.Box, error)
	ListBoxToolIDs(ctx context.Context) ([]string, error)

	// Oven events
	FindEventByID(ctx context.Context, id int64) (*model.OvenEvent, error)
	FindOpenEventByTrak(ctx context.Context, trakID int64) (*model.OvenEvent, error)
	InsertOvenEvent(ctx context.Context, event *model.OvenEvent) error
	UpdateOvenEvent(ctx context.Context, event *model.OvenEvent) error
	QueryOpenEvents(ctx context.Context) ([]model.OvenEvent, error)
	QueryEventsByTrak(ctx context.Context, trakID int64) ([]model.OvenEvent, error)
	QueryEventsInWindow(ctx context.Context, start time.Time) ([]model.OvenEvent, error)
	QueryAllEvents(ctx context.Context) ([]model.OvenEvent, error)

	// Power-on events
	InsertOnEvent(ctx context.Context, event *model.OnEvent) error
	FindLatestOnEvent(ctx context.Context, boxID int64) (*model.OnEvent, error)

	// Users
	FindUserByID(ctx context.Context, id int64) (*model.User, error)
	FindUserByLogin(ctx context.Context, login string) (*model.User, error)
	FindUserByAlias(ctx context.Context, name string) (*model.User, error)
	FindUserByBadge(ctx context.Context, badge string) (*model.User, error)
	ListBoxSelections(ctx context.Context, userID int64) ([]int64, error)
	SaveBoxSelections(ctx context.Context, userID int64, boxIDs []int64) error

	// Recipe and duration barcodes
	FindApplicationByBarcode(ctx context.Context, barcode string) (*model.Application, error)
	FindStandardTimeByBarcode(ctx context.Context, barcode string) (*model.StandardTime, error)
	ListApplicationBarcodes(ctx context.Context) ([]string, error)
	ListStandardTimeBarcodes(ctx context.Context) ([]string, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// translate maps gorm's not-found sentinel onto the store taxonomy and
// leaves everything else untouched.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicate detects a unique-constraint violation. gorm translates these
// on drivers that support it; the substring checks cover the rest.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// --- Traks ---

func (s *gormStore) FindTrakByID(ctx context.Context, id int64) (*model.Trak, error) {
	var trak model.Trak
	if err := s.db.WithContext(ctx).Preload("Part").First(&trak, id).Error; err != nil {
		return nil, translate(err)
	}
	return &trak, nil
}

func (s *gormStore) FindTrakByCode(ctx context.Context, code string) (*model.Trak, error) {
	var trak model.Trak
	if err := s.db.WithContext(ctx).Preload("Part").
		First(&trak, "UPPER(trak_code) = UPPER(?)", code).Error; err != nil {
		return nil, translate(err)
	}
	return &trak, nil
}

func (s *gormStore) CreateOrGetTrak(ctx context.Context, code, serialNumber, workOrder string, partID *int64) (*model.Trak, error) {
	existing, err := s.FindTrakByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	trak := model.Trak{
		TrakCode:     code,
		SerialNumber: serialNumber,
		WorkOrder:    workOrder,
		PartID:       partID,
	}
	if err := s.db.WithContext(ctx).Create(&trak).Error; err != nil {
		if isDuplicate(err) {
			// Lost a race with a concurrent create of the same code.
			return s.FindTrakByCode(ctx, code)
		}
		return nil, err
	}
	return &trak, nil
}

func (s *gormStore) ListAvailableTraks(ctx context.Context) ([]model.Trak, error) {
	var traks []model.Trak
	err := s.db.WithContext(ctx).Preload("Part").
		Where("id NOT IN (?)",
			s.db.Model(&model.OvenEvent{}).Select("trak_id").Where("time_out IS NULL")).
		Find(&traks).Error
	if err != nil {
		return nil, err
	}
	return traks, nil
}

// --- Boxes ---

func (s *gormStore) FindBoxByID(ctx context.Context, id int64) (*model.Box, error) {
	var box model.Box
	if err := s.db.WithContext(ctx).
		Preload("Location").Preload("Model").Preload("Model.Manufacturer").Preload("BoxType").
		First(&box, id).Error; err != nil {
		return nil, translate(err)
	}
	return &box, nil
}

func (s *gormStore) FindBoxByToolID(ctx context.Context, toolID string) (*model.Box, error) {
	var box model.Box
	if err := s.db.WithContext(ctx).
		Preload("Location").Preload("Model").Preload("BoxType").
		First(&box, "UPPER(tool_id) = UPPER(?)", toolID).Error; err != nil {
		return nil, translate(err)
	}
	return &box, nil
}

func (s *gormStore) ListBoxes(ctx context.Context) ([]model.Box, error) {
	var boxes []model.Box
	err := s.db.WithContext(ctx).
		Preload("Location").Preload("Model").Preload("Model.Manufacturer").Preload("BoxType").
		Joins("JOIN box_types ON box_types.id = boxes.box_type_id").
		Order("box_types.name, boxes.tool_id").
		Find(&boxes).Error
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

func (s *gormStore) ListBoxToolIDs(ctx context.Context) ([]string, error) {
	var toolIDs []string
	err := s.db.WithContext(ctx).Model(&model.Box{}).
		Pluck("tool_id", &toolIDs).Error
	if err != nil {
		return nil, err
	}
	return toolIDs, nil
}

// --- Oven events ---

// eventPreloads attaches the references every event consumer needs.
func eventPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Box").Preload("Box.Location").
		Preload("Trak").Preload("Trak.Part").
		Preload("UserIn").Preload("UserOut").Preload("Application")
}

func (s *gormStore) FindEventByID(ctx context.Context, id int64) (*model.OvenEvent, error) {
	var event model.OvenEvent
	if err := eventPreloads(s.db.WithContext(ctx)).First(&event, id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

// FindOpenEventByTrak returns the trak's open event, or (nil, nil) when the
// trak is not inside any box.
func (s *gormStore) FindOpenEventByTrak(ctx context.Context, trakID int64) (*model.OvenEvent, error) {
	var event model.OvenEvent
	err := eventPreloads(s.db.WithContext(ctx)).
		Where("trak_id = ? AND time_out IS NULL", trakID).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *gormStore) InsertOvenEvent(ctx context.Context, event *model.OvenEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		if event.TimeOut == nil && isDuplicate(err) {
			return ErrDuplicateOpenEvent
		}
		return err
	}
	return nil
}

func (s *gormStore) UpdateOvenEvent(ctx context.Context, event *model.OvenEvent) error {
	result := s.db.WithContext(ctx).Model(&model.OvenEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"user_out_id": event.UserOutID,
			"time_out":    event.TimeOut,
			"note":        event.Note,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) QueryOpenEvents(ctx context.Context) ([]model.OvenEvent, error) {
	var events []model.OvenEvent
	err := eventPreloads(s.db.WithContext(ctx)).
		Where("time_out IS NULL").
		Order("time_in ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *gormStore) QueryEventsByTrak(ctx context.Context, trakID int64) ([]model.OvenEvent, error) {
	var events []model.OvenEvent
	err := eventPreloads(s.db.WithContext(ctx)).
		Where("trak_id = ?", trakID).
		Order("time_in DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *gormStore) QueryEventsInWindow(ctx context.Context, start time.Time) ([]model.OvenEvent, error) {
	var events []model.OvenEvent
	err := eventPreloads(s.db.WithContext(ctx)).
		Where("time_in >= ? OR (time_out IS NOT NULL AND time_out >= ?)", start, start).
		Order("time_in DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *gormStore) QueryAllEvents(ctx context.Context) ([]model.OvenEvent, error) {
	var events []model.OvenEvent
	err := eventPreloads(s.db.WithContext(ctx)).
		Order("time_in DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// --- Power-on events ---

func (s *gormStore) InsertOnEvent(ctx context.Context, event *model.OnEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// FindLatestOnEvent returns the most recent power-on for the box, or
// (nil, nil) when none was ever recorded.
func (s *gormStore) FindLatestOnEvent(ctx context.Context, boxID int64) (*model.OnEvent, error) {
	var event model.OnEvent
	err := s.db.WithContext(ctx).
		Where("box_id = ?", boxID).
		Order("actual_recorded_time DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// --- Users ---

func (s *gormStore) FindUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("DedicatedBox").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) FindUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("DedicatedBox").
		First(&user, "login = ?", login).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) FindUserByAlias(ctx context.Context, name string) (*model.User, error) {
	var alias model.UserAlias
	err := s.db.WithContext(ctx).
		Preload("User").Preload("User.DedicatedBox").
		Where("user_name = ? OR alias = ?", name, name).
		First(&alias).Error
	if err != nil {
		return nil, translate(err)
	}
	return &alias.User, nil
}

func (s *gormStore) FindUserByBadge(ctx context.Context, badge string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("DedicatedBox").
		First(&user, "badge = ?", badge).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) ListBoxSelections(ctx context.Context, userID int64) ([]int64, error) {
	var boxIDs []int64
	err := s.db.WithContext(ctx).Model(&model.UserBoxSelection{}).
		Where("user_id = ?", userID).
		Pluck("box_id", &boxIDs).Error
	if err != nil {
		return nil, err
	}
	return boxIDs, nil
}

// SaveBoxSelections replaces the user's box subset wholesale.
func (s *gormStore) SaveBoxSelections(ctx context.Context, userID int64, boxIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&model.UserBoxSelection{}).Error; err != nil {
			return fmt.Errorf("failed to clear box selections for user %d: %w", userID, err)
		}
		if len(boxIDs) == 0 {
			return nil
		}
		selections := make([]model.UserBoxSelection, 0, len(boxIDs))
		for _, boxID := range boxIDs {
			selections = append(selections, model.UserBoxSelection{UserID: userID, BoxID: boxID})
		}
		return tx.Create(&selections).Error
	})
}

// --- Recipe and duration barcodes ---

func (s *gormStore) FindApplicationByBarcode(ctx context.Context, barcode string) (*model.Application, error) {
	var app model.Application
	if err := s.db.WithContext(ctx).
		First(&app, "UPPER(barcode) = UPPER(?)", barcode).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *gormStore) FindStandardTimeByBarcode(ctx context.Context, barcode string) (*model.StandardTime, error) {
	var st model.StandardTime
	if err := s.db.WithContext(ctx).
		First(&st, "UPPER(barcode) = UPPER(?)", barcode).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *gormStore) ListApplicationBarcodes(ctx context.Context) ([]string, error) {
	var barcodes []string
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("barcode IS NOT NULL AND barcode <> ''").
		Pluck("barcode", &barcodes).Error
	if err != nil {
		return nil, err
	}
	return barcodes, nil
}

func (s *gormStore) ListStandardTimeBarcodes(ctx context.Context) ([]string, error) {
	var barcodes []string
	err := s.db.WithContext(ctx).Model(&model.StandardTime{}).
		Where("barcode <> ''").
		Pluck("barcode", &barcodes).Error
	if err != nil {
		return nil, err
	}
	return barcodes, nil
}
