// Package catalog is plain create/read/update/delete over the reference
// data: manufacturers, equipment models, box types, locations, parts,
// applications, standard times, boxes, and users. No derived logic lives
// here.
package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ovenlog-backend/internal/model"
)

// ErrNotFound is returned by update and delete when the record is missing.
var ErrNotFound = errors.New("catalog: record not found")

// Service owns catalog maintenance.
type Service struct {
	db *gorm.DB
}

// New creates the catalog service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

func list[T any](ctx context.Context, db *gorm.DB, order string, preloads ...string) ([]T, error) {
	q := db.WithContext(ctx).Order(order)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func create[T any](ctx context.Context, db *gorm.DB, record *T) error {
	return db.WithContext(ctx).Create(record).Error
}

func update[T any](ctx context.Context, db *gorm.DB, id int64, apply func(*T)) error {
	var record T
	if err := db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	apply(&record)
	return db.WithContext(ctx).Save(&record).Error
}

func remove[T any](ctx context.Context, db *gorm.DB, id int64) error {
	result := db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Manufacturers ---

func (s *Service) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	return list[model.Manufacturer](ctx, s.db, "name")
}

func (s *Service) CreateManufacturer(ctx context.Context, m *model.Manufacturer) error {
	return create(ctx, s.db, m)
}

func (s *Service) UpdateManufacturer(ctx context.Context, id int64, name string) error {
	return update(ctx, s.db, id, func(m *model.Manufacturer) { m.Name = name })
}

func (s *Service) DeleteManufacturer(ctx context.Context, id int64) error {
	return remove[model.Manufacturer](ctx, s.db, id)
}

// --- Equipment models ---

func (s *Service) ListModels(ctx context.Context) ([]model.EquipmentModel, error) {
	return list[model.EquipmentModel](ctx, s.db, "name", "Manufacturer")
}

func (s *Service) CreateModel(ctx context.Context, m *model.EquipmentModel) error {
	return create(ctx, s.db, m)
}

func (s *Service) UpdateModel(ctx context.Context, id int64, name string, manufacturerID int64) error {
	return update(ctx, s.db, id, func(m *model.EquipmentModel) {
		m.Name = name
		m.ManufacturerID = manufacturerID
	})
}

func (s *Service) DeleteModel(ctx context.Context, id int64) error {
	return remove[model.EquipmentModel](ctx, s.db, id)
}

// --- Box types ---

func (s *Service) ListBoxTypes(ctx context.Context) ([]model.BoxType, error) {
	return list[model.BoxType](ctx, s.db, "name")
}

func (s *Service) CreateBoxType(ctx context.Context, t *model.BoxType) error {
	return create(ctx, s.db, t)
}

func (s *Service) UpdateBoxType(ctx context.Context, id int64, name string) error {
	return update(ctx, s.db, id, func(t *model.BoxType) { t.Name = name })
}

func (s *Service) DeleteBoxType(ctx context.Context, id int64) error {
	return remove[model.BoxType](ctx, s.db, id)
}

// --- Locations ---

func (s *Service) ListLocations(ctx context.Context) ([]model.Location, error) {
	return list[model.Location](ctx, s.db, "name")
}

func (s *Service) CreateLocation(ctx context.Context, l *model.Location) error {
	return create(ctx, s.db, l)
}

func (s *Service) UpdateLocation(ctx context.Context, id int64, name string) error {
	return update(ctx, s.db, id, func(l *model.Location) { l.Name = name })
}

func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	return remove[model.Location](ctx, s.db, id)
}

// --- Parts ---

func (s *Service) ListParts(ctx context.Context) ([]model.Part, error) {
	return list[model.Part](ctx, s.db, "part_number")
}

func (s *Service) CreatePart(ctx context.Context, p *model.Part) error {
	return create(ctx, s.db, p)
}

func (s *Service) UpdatePart(ctx context.Context, id int64, partNumber, description string) error {
	return update(ctx, s.db, id, func(p *model.Part) {
		p.PartNumber = partNumber
		p.Description = description
	})
}

func (s *Service) DeletePart(ctx context.Context, id int64) error {
	return remove[model.Part](ctx, s.db, id)
}

// --- Applications ---

func (s *Service) ListApplications(ctx context.Context) ([]model.Application, error) {
	return list[model.Application](ctx, s.db, "name")
}

func (s *Service) CreateApplication(ctx context.Context, a *model.Application) error {
	return create(ctx, s.db, a)
}

func (s *Service) UpdateApplication(ctx context.Context, id int64, apply func(*model.Application)) error {
	return update(ctx, s.db, id, apply)
}

func (s *Service) DeleteApplication(ctx context.Context, id int64) error {
	return remove[model.Application](ctx, s.db, id)
}

// --- Standard times ---

func (s *Service) ListStandardTimes(ctx context.Context) ([]model.StandardTime, error) {
	return list[model.StandardTime](ctx, s.db, "hours")
}

func (s *Service) CreateStandardTime(ctx context.Context, t *model.StandardTime) error {
	return create(ctx, s.db, t)
}

func (s *Service) UpdateStandardTime(ctx context.Context, id int64, apply func(*model.StandardTime)) error {
	return update(ctx, s.db, id, apply)
}

func (s *Service) DeleteStandardTime(ctx context.Context, id int64) error {
	return remove[model.StandardTime](ctx, s.db, id)
}

// --- Boxes ---

func (s *Service) CreateBox(ctx context.Context, b *model.Box) error {
	return create(ctx, s.db, b)
}

func (s *Service) UpdateBox(ctx context.Context, id int64, apply func(*model.Box)) error {
	return update(ctx, s.db, id, apply)
}

func (s *Service) DeleteBox(ctx context.Context, id int64) error {
	return remove[model.Box](ctx, s.db, id)
}

// --- Users ---

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return list[model.User](ctx, s.db, "last_name, first_name", "Aliases")
}

func (s *Service) CreateUser(ctx context.Context, u *model.User) error {
	return create(ctx, s.db, u)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, apply func(*model.User)) error {
	return update(ctx, s.db, id, apply)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return remove[model.User](ctx, s.db, id)
}

func (s *Service) CreateUserAlias(ctx context.Context, a *model.UserAlias) error {
	return create(ctx, s.db, a)
}

func (s *Service) DeleteUserAlias(ctx context.Context, id int64) error {
	return remove[model.UserAlias](ctx, s.db, id)
}
