package payment

import (
	"context"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

type PaymentRepository interface {
	CreateReserving(ctx context.Context, p *domain.Payment) error
	GetByUUID(ctx context.Context, uuid string) (*domain.Payment, error)
	Transition(ctx context.Context, uuid string, from, to domain.PaymentStatus, fields map[string]any) (bool, error)
	TransitionReleasing(ctx context.Context, uuid string, from, to domain.PaymentStatus) (bool, error)
	ListForTenant(ctx context.Context, f repository.PaymentFilter) ([]domain.Payment, int64, error)
}

type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// CalendarInvalidator drops cached calendars of a room whose stock changed.
type CalendarInvalidator interface {
	InvalidateRoom(roomID int64)
}

// Scheduler arranges for ExpirePayment to run for uuid after delay.
type Scheduler interface {
	Schedule(ctx context.Context, uuid string, delay time.Duration) error
}

type Notifier interface {
	Send(ctx context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error
}
