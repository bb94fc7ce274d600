package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"

	"gorm.io/gorm"
)

const paymentTable = "payments"

var paymentSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"expiredAt":  "expired_at",
	"totalPrice": "total_price",
	"status":     "status",
}

// PaymentFilter narrows the payments made on a tenant's rooms.
type PaymentFilter struct {
	TenantID  int64
	Status    domain.PaymentStatus
	Query     string
	Page      int
	Take      int
	SortBy    string
	SortOrder string
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateReserving takes p.ReservedUnits from the room's stock and inserts p in
// the same transaction. It fails with ErrNotFound for a missing room and with
// ErrNoStock when the room cannot cover the reservation. A taken uuid is
// reported as ErrDuplicate.
func (r *PaymentRepository) CreateReserving(ctx context.Context, p *domain.Payment) error {
	return database.RunSerializable(ctx, r.db, func(tx *gorm.DB) error {
		p.ID = 0
		if _, err := lockRoom(tx, p.RoomID); err != nil {
			return err
		}
		res := tx.Model(&domain.Room{}).
			Where("id = ? AND stock >= ?", p.RoomID, p.ReservedUnits).
			UpdateColumn("stock", gorm.Expr("stock - ?", p.ReservedUnits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoStock
		}
		if err := tx.Create(p).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

// GetByUUID loads a payment with its payer, room and property.
func (r *PaymentRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Room.Property").
		Where("uuid = ?", uuid).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Transition moves the payment from one status to another only if it is
// still in from. It reports whether this call made the change.
func (r *PaymentRepository) Transition(ctx context.Context, uuid string, from, to domain.PaymentStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("uuid = ? AND status = ?", uuid, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TransitionReleasing is Transition plus returning the payment's reserved
// units to the room stock, atomically. The stock is touched only when this
// call won the status change, so duplicate calls never double-release.
func (r *PaymentRepository) TransitionReleasing(ctx context.Context, uuid string, from, to domain.PaymentStatus) (bool, error) {
	var changed bool
	err := database.RunSerializable(ctx, r.db, func(tx *gorm.DB) error {
		changed = false

		var p domain.Payment
		err := tx.Select("id", "room_id", "reserved_units").Where("uuid = ?", uuid).First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Model(&domain.Payment{}).
			Where("id = ? AND status = ?", p.ID, from).
			Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if p.ReservedUnits > 0 {
			err = tx.Model(&domain.Room{}).
				Where("id = ?", p.RoomID).
				UpdateColumn("stock", gorm.Expr("stock + ?", p.ReservedUnits)).Error
			if err != nil {
				return err
			}
		}
		changed = true
		return nil
	})
	return changed, err
}

// ListForTenant pages through payments on the tenant's live rooms. Query
// matches the payment uuid, payer name or email, room name or property title.
func (r *PaymentRepository) ListForTenant(ctx context.Context, f PaymentFilter) ([]domain.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Joins("JOIN rooms ON rooms.id = payments.room_id").
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Joins("JOIN users ON users.id = payments.user_id").
		Where("rooms.is_deleted = ? AND properties.is_deleted = ? AND properties.tenant_id = ?", false, false, f.TenantID)
	if f.Status != "" {
		q = q.Where("payments.status = ?", f.Status)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where(
			"(LOWER(payments.uuid) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(rooms.name) LIKE ? OR LOWER(properties.title) LIKE ?)",
			p, p, p, p, p, p,
		)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []domain.Payment
	err := q.Preload("User").
		Preload("Room.Property").
		Order(orderBy(paymentTable, paymentSortColumns, f.SortBy, f.SortOrder)).
		Offset((max(f.Page, 1) - 1) * f.Take).
		Limit(f.Take).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListOverdue returns uuids of payments still waiting for payment whose
// expiry has passed.
func (r *PaymentRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var uuids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("status = ? AND expired_at <= ?", domain.PaymentWaitingForPayment, now.UTC()).
		Order("expired_at asc").
		Limit(limit).
		Pluck("uuid", &uuids).Error
	return uuids, err
}
