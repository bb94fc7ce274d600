// Package daterange implements closed, day-granular date intervals and the
// overlap rule shared by every per-room override.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("start date must not be after end date")
	ErrOverlap      = errors.New("date range overlaps an existing entry")
)

// Range is a closed interval of calendar days: both Start and End are
// included. A Range with Start == End covers exactly one day.
type Range struct {
	Start time.Time
	End   time.Time
}

// New normalizes both bounds to UTC midnight and rejects start > end.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Normalize(start), End: Normalize(end)}
	if r.Start.After(r.End) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Normalize truncates t to midnight of its calendar day in UTC.
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps is true iff a.Start <= b.End and b.Start <= a.End.
func Overlaps(a, b Range) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

func (r Range) Overlaps(o Range) bool {
	return Overlaps(r, o)
}

// Contains reports whether day (normalized) falls inside r.
func (r Range) Contains(day time.Time) bool {
	d := Normalize(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days in r, 0 when r is inverted.
func (r Range) Days() int {
	if r.Start.After(r.End) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Each yields every day of r in ascending order. An inverted range yields
// nothing.
func (r Range) Each(fn func(day time.Time)) {
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func (r Range) String() string {
	return r.Start.Format(DayLayout) + ".." + r.End.Format(DayLayout)
}

// MonthOf returns the first and last day of the calendar month containing ref.
func MonthOf(ref time.Time) Range {
	first := MonthStart(ref)
	return Range{Start: first, End: first.AddDate(0, 1, -1)}
}

// MonthStart returns the first day of ref's calendar month in UTC.
func MonthStart(ref time.Time) time.Time {
	y, m, _ := ref.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Entry is a persisted interval identified by its owner's ID.
type Entry struct {
	ID    int64
	Range Range
}

// ConflictError names the first existing entry a candidate overlaps.
type ConflictError struct {
	Candidate Range
	Existing  Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("range %s overlaps entry %d (%s)", e.Candidate, e.Existing.ID, e.Existing.Range)
}

func (e *ConflictError) Unwrap() error { return ErrOverlap }

// CanInsert fails with a *ConflictError when candidate overlaps any entry.
// Callers pass only live (non-deleted) entries and exclude the entry being
// updated.
func CanInsert(candidate Range, existing []Entry) error {
	for _, e := range existing {
		if Overlaps(candidate, e.Range) {
			return &ConflictError{Candidate: candidate, Existing: e}
		}
	}
	return nil
}

// Without returns entries minus the one with the given ID.
func Without(entries []Entry, id int64) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
