package calendar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"
)

const (
	MonthLayout = "2006-01"

	// MaxCompareDays bounds the window of a single comparison.
	MaxCompareDays = 366
)

type Service struct {
	rooms   RoomReader
	rates   RateReader
	blocks  BlockReader
	cache   *Cache
	loggerf func(format string, args ...interface{})
}

// NewService wires the calendar. cache may be nil.
func NewService(rooms RoomReader, rates RateReader, blocks BlockReader, cache *Cache, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{rooms: rooms, rates: rates, blocks: blocks, cache: cache, loggerf: loggerf}
}

// Generate returns one day per calendar day of the month containing
// monthStart. The returned value may be shared with the cache and must not be
// modified.
func (s *Service) Generate(ctx context.Context, roomID int64, monthStart time.Time) (*MonthCalendar, error) {
	month := daterange.MonthOf(monthStart)
	label := month.Start.Format(MonthLayout)

	if s.cache != nil {
		if cal, ok := s.cache.Get(roomID, label); ok {
			return cal, nil
		}
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrRoomNotFound, roomID)
		}
		return nil, err
	}

	ids := []int64{room.ID}
	rates, err := s.rates.ListOverlapping(ctx, ids, month)
	if err != nil {
		return nil, fmt.Errorf("load peak season rates: %w", err)
	}
	blocks, err := s.blocks.ListOverlapping(ctx, ids, month)
	if err != nil {
		return nil, fmt.Errorf("load non-availabilities: %w", err)
	}

	cal := &MonthCalendar{
		RoomID:    room.ID,
		BasePrice: room.Price,
		Stock:     room.Stock,
		Month:     label,
		Days:      make([]CalendarDay, 0, month.Days()),
	}
	month.Each(func(day time.Time) {
		price, peak := effectivePrice(day, room.Price, rates)
		block := blockingOn(day, blocks)
		d := CalendarDay{
			Date:         day.Format(daterange.DayLayout),
			Price:        price,
			IsPeakSeason: peak,
			Available:    room.Stock > 0 && block == nil,
		}
		if block != nil {
			d.NonAvailableReason = block.Reason
		}
		cal.Days = append(cal.Days, d)
	})

	if s.cache != nil {
		s.cache.Set(room.ID, label, cal)
	}
	return cal, nil
}

// Compare reduces each room's effective daily price over [start, end] to
// min, max and mean. An inverted window yields no days, in which case every
// statistic is the room's base price.
func (s *Service) Compare(ctx context.Context, roomIDs []int64, start, end time.Time) ([]RoomPriceComparison, error) {
	if len(roomIDs) == 0 {
		return nil, fmt.Errorf("%w: room ids are required", ErrValidation)
	}
	window := daterange.Range{Start: daterange.Normalize(start), End: daterange.Normalize(end)}
	if window.Days() > MaxCompareDays {
		return nil, fmt.Errorf("%w: window longer than %d days", ErrValidation, MaxCompareDays)
	}

	rooms, err := s.rooms.ListByIDs(ctx, roomIDs)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}
	return s.compareRooms(ctx, rooms, window)
}

// PropertyMonthlyComparison compares every live room of the property over
// the calendar month containing ref.
func (s *Service) PropertyMonthlyComparison(ctx context.Context, propertyID int64, ref time.Time) (*PropertyComparison, error) {
	rooms, err := s.rooms.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("%w: property %d", ErrNoRooms, propertyID)
	}

	month := daterange.MonthOf(ref)
	data, err := s.compareRooms(ctx, rooms, month)
	if err != nil {
		return nil, err
	}
	return &PropertyComparison{
		PropertyID: propertyID,
		Month:      month.Start.Format(MonthLayout),
		Data:       data,
	}, nil
}

func (s *Service) compareRooms(ctx context.Context, rooms []domain.Room, window daterange.Range) ([]RoomPriceComparison, error) {
	byRoom := make(map[int64][]domain.PeakSeasonRate, len(rooms))
	if window.Days() > 0 {
		ids := make([]int64, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.ID)
		}
		rates, err := s.rates.ListOverlapping(ctx, ids, window)
		if err != nil {
			return nil, fmt.Errorf("load peak season rates: %w", err)
		}
		for _, rate := range rates {
			byRoom[rate.RoomID] = append(byRoom[rate.RoomID], rate)
		}
	}

	out := make([]RoomPriceComparison, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, compareRoom(room, byRoom[room.ID], window))
	}
	return out, nil
}

func compareRoom(room domain.Room, rates []domain.PeakSeasonRate, window daterange.Range) RoomPriceComparison {
	c := RoomPriceComparison{
		RoomID:       room.ID,
		Name:         room.Name,
		Type:         string(room.Type),
		PropertyID:   room.PropertyID,
		BasePrice:    room.Price,
		MinimumPrice: room.Price,
		MaximumPrice: room.Price,
		AveragePrice: room.Price,
		DailyPrices:  make(map[string]int64, window.Days()),
	}
	if window.Days() == 0 {
		return c
	}

	var sum int64
	first := true
	window.Each(func(day time.Time) {
		price, _ := effectivePrice(day, room.Price, rates)
		c.DailyPrices[day.Format(daterange.DayLayout)] = price
		sum += price
		if first || price < c.MinimumPrice {
			c.MinimumPrice = price
		}
		if first || price > c.MaximumPrice {
			c.MaximumPrice = price
		}
		first = false
	})
	c.AveragePrice = int64(math.Round(float64(sum) / float64(len(c.DailyPrices))))
	return c
}

// effectivePrice is the price of the rate covering day, else base.
func effectivePrice(day time.Time, base int64, rates []domain.PeakSeasonRate) (int64, bool) {
	for _, r := range rates {
		if covers(r.StartDate, r.EndDate, day) {
			return r.Price, true
		}
	}
	return base, false
}

func blockingOn(day time.Time, blocks []domain.RoomNonAvailability) *domain.RoomNonAvailability {
	for i := range blocks {
		if covers(blocks[i].StartDate, blocks[i].EndDate, day) {
			return &blocks[i]
		}
	}
	return nil
}

func covers(start, end, day time.Time) bool {
	return daterange.Range{Start: daterange.Normalize(start), End: daterange.Normalize(end)}.Contains(day)
}

// ParseMonth accepts YYYY-MM and defaults to the current month when empty.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return daterange.MonthStart(now), nil
	}
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must be YYYY-MM", ErrValidation)
	}
	return t, nil
}

// ParseWindow parses two YYYY-MM-DD dates and requires start <= end.
func ParseWindow(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(daterange.DayLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
	}
	e, err := time.Parse(daterange.DayLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrValidation)
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, daterange.ErrInvalidRange)
	}
	return s, e, nil
}
