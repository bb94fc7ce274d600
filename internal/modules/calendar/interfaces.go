package calendar

import (
	"context"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"
)

type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Room, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]domain.Room, error)
}

type RateReader interface {
	ListOverlapping(ctx context.Context, roomIDs []int64, rng daterange.Range) ([]domain.PeakSeasonRate, error)
}

type BlockReader interface {
	ListOverlapping(ctx context.Context, roomIDs []int64, rng daterange.Range) ([]domain.RoomNonAvailability, error)
}
