package notification

import (
	"context"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
)

type NotificationRepository interface {
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, userID, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}
