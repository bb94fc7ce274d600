package repository

import (
	"context"
	"strings"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideFilter narrows a tenant's override listing. From and To bound the
// override interval from inside: start_date >= From and end_date <= To.
type OverrideFilter struct {
	TenantID  int64
	RoomID    int64
	From      *time.Time
	To        *time.Time
	Search    string
	Page      int
	Take      int
	SortBy    string
	SortOrder string
}

func (f OverrideFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Take
}

type rangeRow struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
}

// liveRanges loads the non-deleted intervals of one room from model's table.
func liveRanges(tx *gorm.DB, model any, roomID int64) ([]daterange.Entry, error) {
	var rows []rangeRow
	err := tx.Model(model).
		Select("id", "start_date", "end_date").
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]daterange.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, daterange.Entry{
			ID:    r.ID,
			Range: daterange.Range{Start: daterange.Normalize(r.StartDate), End: daterange.Normalize(r.EndDate)},
		})
	}
	return out, nil
}

// guardedWrite locks the room, checks candidate against every other live
// interval of the room and runs write, all in one serializable transaction.
// excludeID is the override being updated, 0 on create.
func guardedWrite(ctx context.Context, db *gorm.DB, model any, roomID, excludeID int64, candidate daterange.Range, write func(tx *gorm.DB) error) error {
	return database.RunSerializable(ctx, db, func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, roomID); err != nil {
			return err
		}
		existing, err := liveRanges(tx, model, roomID)
		if err != nil {
			return err
		}
		if err := daterange.CanInsert(candidate, daterange.Without(existing, excludeID)); err != nil {
			return err
		}
		return write(tx)
	})
}

// softDelete flags one live override as deleted under the room lock.
func softDelete(ctx context.Context, db *gorm.DB, model any, id, roomID int64) error {
	return database.RunSerializable(ctx, db, func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, roomID); err != nil {
			return err
		}
		res := tx.Model(model).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]any{"is_deleted": true, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// tenantScope restricts model's table to live overrides on live rooms of the
// tenant's live properties.
func tenantScope(q *gorm.DB, table string, f OverrideFilter) *gorm.DB {
	q = q.Joins("JOIN rooms ON rooms.id = "+table+".room_id").
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where(table+".is_deleted = ? AND rooms.is_deleted = ? AND properties.is_deleted = ?", false, false, false).
		Where("properties.tenant_id = ?", f.TenantID)
	if f.RoomID > 0 {
		q = q.Where(table+".room_id = ?", f.RoomID)
	}
	if f.From != nil {
		q = q.Where(table+".start_date >= ?", daterange.Normalize(*f.From))
	}
	if f.To != nil {
		q = q.Where(table+".end_date <= ?", daterange.Normalize(*f.To))
	}
	return q
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// orderBy maps a whitelisted sort key to a column of table. Unknown keys fall
// back to created_at.
func orderBy(table string, columns map[string]string, sortBy, sortOrder string) clause.OrderByColumn {
	col, ok := columns[sortBy]
	if !ok {
		col = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Table: table, Name: col},
		Desc:   !strings.EqualFold(sortOrder, "asc"),
	}
}

func overlapping(q *gorm.DB, roomIDs []int64, r daterange.Range) *gorm.DB {
	return q.Where("room_id IN ? AND is_deleted = ?", roomIDs, false).
		Where("start_date <= ? AND end_date >= ?", r.End, r.Start).
		Order("start_date asc")
}
