package nonavailability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

const (
	defaultTake      = 10
	defaultSortBy    = "createdAt"
	defaultSortOrder = "asc"
)

// Service manages the periods in which a tenant takes a room off the market.
type Service struct {
	blocks   BlockRepository
	rooms    RoomReader
	calendar CalendarInvalidator
	loggerf  func(format string, args ...interface{})
}

func NewService(blocks BlockRepository, rooms RoomReader, calendar CalendarInvalidator, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{blocks: blocks, rooms: rooms, calendar: calendar, loggerf: loggerf}
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateRequest) (*domain.RoomNonAvailability, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	reason, err := cleanReason(req.Reason)
	if err != nil {
		return nil, err
	}
	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.OwnedBy(actor.ID) {
		return nil, ErrForbidden
	}

	block := &domain.RoomNonAvailability{
		RoomID:    room.ID,
		Reason:    reason,
		StartDate: rng.Start,
		EndDate:   rng.End,
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, mapWriteError(err)
	}

	s.invalidate(block.RoomID)
	s.loggerf("level=info msg=room blocked id=%d room_id=%d range=%s", block.ID, block.RoomID, rng)
	return block, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, req UpdateRequest) (*domain.RoomNonAvailability, error) {
	block, err := s.ownedBlock(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Reason != nil {
		reason, err := cleanReason(*req.Reason)
		if err != nil {
			return nil, err
		}
		block.Reason = reason
	}
	start, end := block.StartDate.Format(daterange.DayLayout), block.EndDate.Format(daterange.DayLayout)
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	rng, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	block.StartDate, block.EndDate = rng.Start, rng.End

	if err := s.blocks.Update(ctx, block); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, mapWriteError(err)
	}

	s.invalidate(block.RoomID)
	s.loggerf("level=info msg=room block updated id=%d room_id=%d range=%s", block.ID, block.RoomID, rng)
	return block, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) (*domain.RoomNonAvailability, error) {
	block, err := s.ownedBlock(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.blocks.SoftDelete(ctx, block.ID, block.RoomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	block.IsDeleted = true

	s.invalidate(block.RoomID)
	s.loggerf("level=info msg=room block deleted id=%d room_id=%d", block.ID, block.RoomID)
	return block, nil
}

// List returns the tenant's blocks, oldest first unless asked otherwise.
func (s *Service) List(ctx context.Context, actor domain.Actor, q ListQuery) (*ListResult, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	f := repository.OverrideFilter{
		TenantID:  actor.ID,
		RoomID:    q.RoomID,
		Search:    strings.TrimSpace(q.Search),
		Page:      max(q.Page, 1),
		Take:      q.Take,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if f.Take <= 0 {
		f.Take = defaultTake
	}
	if f.SortBy == "" {
		f.SortBy = defaultSortBy
	}
	if f.SortOrder == "" {
		f.SortOrder = defaultSortOrder
	}
	var err error
	if f.From, err = optionalDay(q.StartDate, "start_date"); err != nil {
		return nil, err
	}
	if f.To, err = optionalDay(q.EndDate, "end_date"); err != nil {
		return nil, err
	}

	blocks, total, err := s.blocks.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Data: blocks,
		Meta: response.Meta{Page: f.Page, Take: f.Take, Total: total},
	}, nil
}

func (s *Service) ownedBlock(ctx context.Context, actor domain.Actor, id int64) (*domain.RoomNonAvailability, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	block, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if block.Room == nil || !block.Room.OwnedBy(actor.ID) {
		return nil, ErrForbidden
	}
	return block, nil
}

func (s *Service) invalidate(roomID int64) {
	if s.calendar != nil {
		s.calendar.InvalidateRoom(roomID)
	}
}

func mapWriteError(err error) error {
	var conflict *daterange.ConflictError
	switch {
	case errors.As(err, &conflict):
		return fmt.Errorf("%w: %s conflicts with block %d (%s)", ErrOverlap, conflict.Candidate, conflict.Existing.ID, conflict.Existing.Range)
	case errors.Is(err, repository.ErrNotFound):
		return ErrRoomNotFound
	default:
		return err
	}
}

func cleanReason(s string) (string, error) {
	reason := strings.TrimSpace(s)
	if reason == "" {
		return "", fmt.Errorf("%w: reason is required", ErrValidation)
	}
	return reason, nil
}

func optionalDay(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(daterange.DayLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
	}
	return &t, nil
}

func parseRange(start, end string) (daterange.Range, error) {
	s, err := time.Parse(daterange.DayLayout, strings.TrimSpace(start))
	if err != nil {
		return daterange.Range{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
	}
	e, err := time.Parse(daterange.DayLayout, strings.TrimSpace(end))
	if err != nil {
		return daterange.Range{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrValidation)
	}
	rng, err := daterange.New(s, e)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return rng, nil
}
