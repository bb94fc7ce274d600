package repository

import (
	"context"
	"errors"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetByID returns a live room with its property loaded.
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// ListByIDs returns the live rooms among ids ordered by id.
func (r *RoomRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Order("id asc").
		Find(&rooms).Error
	return rooms, err
}

// ListByProperty returns the live rooms of a live property.
func (r *RoomRepository) ListByProperty(ctx context.Context, propertyID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("rooms.property_id = ? AND rooms.is_deleted = ? AND properties.is_deleted = ?", propertyID, false, false).
		Order("rooms.id asc").
		Find(&rooms).Error
	return rooms, err
}

// lockRoom takes a row lock on a live room for the rest of tx. SQLite ignores
// the locking clause and relies on its single writer.
func lockRoom(tx *gorm.DB, roomID int64) (*domain.Room, error) {
	var room domain.Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", roomID, false).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}
