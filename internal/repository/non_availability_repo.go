package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"

	"gorm.io/gorm"
)

const nonAvailabilityTable = "room_non_availabilities"

var nonAvailabilitySortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"startDate": "start_date",
	"endDate":   "end_date",
	"reason":    "reason",
}

type NonAvailabilityRepository struct {
	db *gorm.DB
}

func NewNonAvailabilityRepository(db *gorm.DB) *NonAvailabilityRepository {
	return &NonAvailabilityRepository{db: db}
}

func (r *NonAvailabilityRepository) Create(ctx context.Context, block *domain.RoomNonAvailability) error {
	candidate := daterange.Range{Start: block.StartDate, End: block.EndDate}
	return guardedWrite(ctx, r.db, &domain.RoomNonAvailability{}, block.RoomID, 0, candidate, func(tx *gorm.DB) error {
		block.ID = 0
		return tx.Create(block).Error
	})
}

func (r *NonAvailabilityRepository) Update(ctx context.Context, block *domain.RoomNonAvailability) error {
	candidate := daterange.Range{Start: block.StartDate, End: block.EndDate}
	return guardedWrite(ctx, r.db, &domain.RoomNonAvailability{}, block.RoomID, block.ID, candidate, func(tx *gorm.DB) error {
		block.UpdatedAt = time.Now().UTC()
		res := tx.Model(&domain.RoomNonAvailability{}).
			Where("id = ? AND is_deleted = ?", block.ID, false).
			Updates(map[string]any{
				"reason":     block.Reason,
				"start_date": block.StartDate,
				"end_date":   block.EndDate,
				"updated_at": block.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *NonAvailabilityRepository) SoftDelete(ctx context.Context, id, roomID int64) error {
	return softDelete(ctx, r.db, &domain.RoomNonAvailability{}, id, roomID)
}

func (r *NonAvailabilityRepository) GetByID(ctx context.Context, id int64) (*domain.RoomNonAvailability, error) {
	var block domain.RoomNonAvailability
	err := r.db.WithContext(ctx).
		Preload("Room.Property").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

// List pages through the tenant's live blocks. Search matches the room name
// or the reason.
func (r *NonAvailabilityRepository) List(ctx context.Context, f OverrideFilter) ([]domain.RoomNonAvailability, int64, error) {
	q := tenantScope(r.db.WithContext(ctx).Model(&domain.RoomNonAvailability{}), nonAvailabilityTable, f)
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("(LOWER(rooms.name) LIKE ? OR LOWER("+nonAvailabilityTable+".reason) LIKE ?)", p, p)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blocks []domain.RoomNonAvailability
	err := q.Preload("Room").
		Order(orderBy(nonAvailabilityTable, nonAvailabilitySortColumns, f.SortBy, f.SortOrder)).
		Offset(f.offset()).
		Limit(f.Take).
		Find(&blocks).Error
	if err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}

func (r *NonAvailabilityRepository) ListOverlapping(ctx context.Context, roomIDs []int64, rng daterange.Range) ([]domain.RoomNonAvailability, error) {
	var blocks []domain.RoomNonAvailability
	err := overlapping(r.db.WithContext(ctx), roomIDs, rng).Find(&blocks).Error
	return blocks, err
}
