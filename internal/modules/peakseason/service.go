package peakseason

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
	defaultSortOrder = "desc"
)

type Service struct {
	rates    RateRepository
	rooms    RoomReader
	calendar CalendarInvalidator
	loggerf  func(format string, args ...interface{})
}

func NewService(rates RateRepository, rooms RoomReader, calendar CalendarInvalidator, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{rates: rates, rooms: rooms, calendar: calendar, loggerf: loggerf}
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateRequest) (*domain.PeakSeasonRate, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	rng, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedRoom(ctx, actor, req.RoomID); err != nil {
		return nil, err
	}

	rate := &domain.PeakSeasonRate{
		RoomID:    req.RoomID,
		Price:     req.Price,
		StartDate: rng.Start,
		EndDate:   rng.End,
	}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, s.mapWriteError(err)
	}

	s.invalidate(rate.RoomID)
	s.loggerf("level=info msg=peak season rate created id=%d room_id=%d range=%s price=%d", rate.ID, rate.RoomID, rng, rate.Price)
	return rate, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, req UpdateRequest) (*domain.PeakSeasonRate, error) {
	rate, err := s.ownedRate(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
		}
		rate.Price = *req.Price
	}
	start, end := rate.StartDate.Format(daterange.DayLayout), rate.EndDate.Format(daterange.DayLayout)
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
	rate.StartDate, rate.EndDate = rng.Start, rng.End

	if err := s.rates.Update(ctx, rate); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.mapWriteError(err)
	}

	s.invalidate(rate.RoomID)
	s.loggerf("level=info msg=peak season rate updated id=%d room_id=%d range=%s price=%d", rate.ID, rate.RoomID, rng, rate.Price)
	return rate, nil
}

// Delete soft-deletes the rate and returns it.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) (*domain.PeakSeasonRate, error) {
	rate, err := s.ownedRate(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.rates.SoftDelete(ctx, rate.ID, rate.RoomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rate.IsDeleted = true

	s.invalidate(rate.RoomID)
	s.loggerf("level=info msg=peak season rate deleted id=%d room_id=%d", rate.ID, rate.RoomID)
	return rate, nil
}

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
	if q.StartDate != "" {
		t, err := time.Parse(daterange.DayLayout, q.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
		}
		f.From = &t
	}
	if q.EndDate != "" {
		t, err := time.Parse(daterange.DayLayout, q.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrValidation)
		}
		f.To = &t
	}

	rates, total, err := s.rates.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Data: rates,
		Meta: response.Meta{Page: f.Page, Take: f.Take, Total: total},
	}, nil
}

func (s *Service) ownedRoom(ctx context.Context, actor domain.Actor, roomID int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.OwnedBy(actor.ID) {
		return nil, ErrForbidden
	}
	return room, nil
}

func (s *Service) ownedRate(ctx context.Context, actor domain.Actor, id int64) (*domain.PeakSeasonRate, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	rate, err := s.rates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rate.Room == nil || !rate.Room.OwnedBy(actor.ID) {
		return nil, ErrForbidden
	}
	return rate, nil
}

func (s *Service) mapWriteError(err error) error {
	var conflict *daterange.ConflictError
	switch {
	case errors.As(err, &conflict):
		return fmt.Errorf("%w: %s conflicts with rate %d (%s)", ErrOverlap, conflict.Candidate, conflict.Existing.ID, conflict.Existing.Range)
	case errors.Is(err, repository.ErrNotFound):
		return ErrRoomNotFound
	default:
		return err
	}
}

func (s *Service) invalidate(roomID int64) {
	if s.calendar != nil {
		s.calendar.InvalidateRoom(roomID)
	}
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
