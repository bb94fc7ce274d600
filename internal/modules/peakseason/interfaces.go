package peakseason

import (
	"context"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

type RateRepository interface {
	Create(ctx context.Context, rate *domain.PeakSeasonRate) error
	Update(ctx context.Context, rate *domain.PeakSeasonRate) error
	SoftDelete(ctx context.Context, id, roomID int64) error
	GetByID(ctx context.Context, id int64) (*domain.PeakSeasonRate, error)
	List(ctx context.Context, f repository.OverrideFilter) ([]domain.PeakSeasonRate, int64, error)
}

type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// CalendarInvalidator drops derived calendar data of a room.
type CalendarInvalidator interface {
	InvalidateRoom(roomID int64)
}
