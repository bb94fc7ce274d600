package nonavailability

import (
	"context"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

type BlockRepository interface {
	Create(ctx context.Context, block *domain.RoomNonAvailability) error
	Update(ctx context.Context, block *domain.RoomNonAvailability) error
	SoftDelete(ctx context.Context, id, roomID int64) error
	GetByID(ctx context.Context, id int64) (*domain.RoomNonAvailability, error)
	List(ctx context.Context, f repository.OverrideFilter) ([]domain.RoomNonAvailability, int64, error)
}

type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type CalendarInvalidator interface {
	InvalidateRoom(roomID int64)
}
