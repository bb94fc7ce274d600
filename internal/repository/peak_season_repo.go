package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"

	"gorm.io/gorm"
)

const peakSeasonTable = "peak_season_rates"

var peakSeasonSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"startDate": "start_date",
	"endDate":   "end_date",
	"price":     "price",
}

type PeakSeasonRepository struct {
	db *gorm.DB
}

func NewPeakSeasonRepository(db *gorm.DB) *PeakSeasonRepository {
	return &PeakSeasonRepository{db: db}
}

// Create inserts rate unless it overlaps a live rate of the same room.
func (r *PeakSeasonRepository) Create(ctx context.Context, rate *domain.PeakSeasonRate) error {
	candidate := daterange.Range{Start: rate.StartDate, End: rate.EndDate}
	return guardedWrite(ctx, r.db, &domain.PeakSeasonRate{}, rate.RoomID, 0, candidate, func(tx *gorm.DB) error {
		rate.ID = 0
		return tx.Create(rate).Error
	})
}

// Update rewrites price and interval of a live rate, re-checking overlap
// against the room's other live rates.
func (r *PeakSeasonRepository) Update(ctx context.Context, rate *domain.PeakSeasonRate) error {
	candidate := daterange.Range{Start: rate.StartDate, End: rate.EndDate}
	return guardedWrite(ctx, r.db, &domain.PeakSeasonRate{}, rate.RoomID, rate.ID, candidate, func(tx *gorm.DB) error {
		rate.UpdatedAt = time.Now().UTC()
		res := tx.Model(&domain.PeakSeasonRate{}).
			Where("id = ? AND is_deleted = ?", rate.ID, false).
			Updates(map[string]any{
				"price":      rate.Price,
				"start_date": rate.StartDate,
				"end_date":   rate.EndDate,
				"updated_at": rate.UpdatedAt,
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

func (r *PeakSeasonRepository) SoftDelete(ctx context.Context, id, roomID int64) error {
	return softDelete(ctx, r.db, &domain.PeakSeasonRate{}, id, roomID)
}

// GetByID returns a live rate with its room and property loaded.
func (r *PeakSeasonRepository) GetByID(ctx context.Context, id int64) (*domain.PeakSeasonRate, error) {
	var rate domain.PeakSeasonRate
	err := r.db.WithContext(ctx).
		Preload("Room.Property").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// List pages through the tenant's live rates. Search matches the room name.
func (r *PeakSeasonRepository) List(ctx context.Context, f OverrideFilter) ([]domain.PeakSeasonRate, int64, error) {
	q := tenantScope(r.db.WithContext(ctx).Model(&domain.PeakSeasonRate{}), peakSeasonTable, f)
	if f.Search != "" {
		q = q.Where("LOWER(rooms.name) LIKE ?", likePattern(f.Search))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rates []domain.PeakSeasonRate
	err := q.Preload("Room").
		Order(orderBy(peakSeasonTable, peakSeasonSortColumns, f.SortBy, f.SortOrder)).
		Offset(f.offset()).
		Limit(f.Take).
		Find(&rates).Error
	if err != nil {
		return nil, 0, err
	}
	return rates, total, nil
}

// ListOverlapping returns live rates of the given rooms intersecting rng.
func (r *PeakSeasonRepository) ListOverlapping(ctx context.Context, roomIDs []int64, rng daterange.Range) ([]domain.PeakSeasonRate, error) {
	var rates []domain.PeakSeasonRate
	err := overlapping(r.db.WithContext(ctx), roomIDs, rng).Find(&rates).Error
	return rates, err
}
