package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	repo NotificationRepository
}

func NewService(repo NotificationRepository) *Service {
	return &Service{repo: repo}
}

// GetUserNotifications returns the newest notifications and the unread count.
// limit is clamped to [1, 100]; zero means the default.
func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) (*ListResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Notifications: list, UnreadCount: unread}, nil
}

func (s *Service) MarkAsRead(ctx context.Context, userID, id int64) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if err := s.repo.MarkAsRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return s.repo.MarkAllAsRead(ctx, userID)
}
