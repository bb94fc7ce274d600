package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultTake      = 10
	defaultSortBy    = "createdAt"
	defaultSortOrder = "desc"

	// reservedUnitsPerPayment is the stock a booking holds until it is
	// rejected or expires.
	reservedUnitsPerPayment = 1

	maxUUIDAttempts = 3
)

// Service drives a payment from booking to PAID, REJECTED or EXPIRED.
//
//	WAITING_FOR_PAYMENT --proof--> WAITING_FOR_PAYMENT_CONFIRMATION --accept--> PAID
//	        |                                       \--reject--> REJECTED
//	        \--deadline--> EXPIRED
//
// Every transition is checked against domain.CanTransition and applied as a
// compare-and-set on the stored status.
type Service struct {
	payments   PaymentRepository
	rooms      RoomReader
	calendar   CalendarInvalidator
	scheduler  Scheduler
	notifier   Notifier
	expiration time.Duration
	now        func() time.Time
	loggerf    func(format string, args ...interface{})
}

func NewService(payments PaymentRepository, rooms RoomReader, calendar CalendarInvalidator, scheduler Scheduler, notifier Notifier, expiration time.Duration, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments:   payments,
		rooms:      rooms,
		calendar:   calendar,
		scheduler:  scheduler,
		notifier:   notifier,
		expiration: expiration,
		now:        time.Now,
		loggerf:    loggerf,
	}
}

// CreatePayment books one unit of the room for the actor and starts the
// payment deadline.
func (s *Service) CreatePayment(ctx context.Context, actor domain.Actor, req CreateRequest) (*domain.Payment, error) {
	if actor.ID == 0 {
		return nil, ErrForbidden
	}
	if req.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: total_price must not be negative", ErrValidation)
	}
	if req.Duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1", ErrValidation)
	}
	method := domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	switch method {
	case "":
		method = domain.PaymentMethodManual
	case domain.PaymentMethodManual, domain.PaymentMethodAutomatic:
	default:
		return nil, fmt.Errorf("%w: unknown payment_method %q", ErrValidation, req.PaymentMethod)
	}

	now := s.now().UTC()
	expiredAt := now.Add(s.expiration)
	if req.ExpiredAt != nil {
		if !req.ExpiredAt.After(now) {
			return nil, fmt.Errorf("%w: expired_at must be in the future", ErrValidation)
		}
		expiredAt = req.ExpiredAt.UTC()
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	p := &domain.Payment{
		UserID:        actor.ID,
		RoomID:        room.ID,
		TotalPrice:    req.TotalPrice,
		Duration:      req.Duration,
		PaymentMethod: method,
		Status:        domain.PaymentWaitingForPayment,
		ReservedUnits: reservedUnitsPerPayment,
		PaymentProof:  strings.TrimSpace(req.PaymentProof),
		InvoiceURL:    strings.TrimSpace(req.InvoiceURL),
		ExpiredAt:     expiredAt,
	}
	if err := s.createReserving(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoStock):
			return nil, fmt.Errorf("%w: no units left in room %d", ErrRoomUnavailable, room.ID)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRoomNotFound
		default:
			return nil, fmt.Errorf("create payment: %w", err)
		}
	}
	p.Room = room
	s.invalidate(p.RoomID)
	s.loggerf("level=info msg=payment created uuid=%s user_id=%d room_id=%d expired_at=%s", p.UUID, p.UserID, p.RoomID, p.ExpiredAt.Format(time.RFC3339))

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, p.UUID, expiredAt.Sub(now)); err != nil {
			s.loggerf("level=error msg=failed to schedule payment expiration uuid=%s err=%v", p.UUID, err)
		}
	}

	s.notify(ctx, p.UserID, domain.NotifUploadPaymentProof, map[string]any{
		"uuid":        p.UUID,
		"room_id":     p.RoomID,
		"room_name":   room.Name,
		"expire_at":   p.ExpiredAt.Format(time.RFC3339),
		"total_price": p.TotalPrice,
	})
	return p, nil
}

// UploadProof attaches the payer's transfer proof and hands the payment to
// the tenant for confirmation.
func (s *Service) UploadProof(ctx context.Context, actor domain.Actor, id, proofURL string) (*domain.Payment, error) {
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, fmt.Errorf("%w: payment_proof is required", ErrValidation)
	}

	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if !domain.CanTransition(p.Status, domain.PaymentWaitingForConfirmation) {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidState, p.Status)
	}

	changed, err := s.payments.Transition(ctx, p.UUID, p.Status, domain.PaymentWaitingForConfirmation,
		map[string]any{"payment_proof": proofURL})
	if err != nil {
		return nil, fmt.Errorf("upload payment proof: %w", err)
	}
	if !changed {
		return nil, fmt.Errorf("%w: payment left %s", ErrInvalidState, p.Status)
	}
	p.Status = domain.PaymentWaitingForConfirmation
	p.PaymentProof = proofURL
	s.loggerf("level=info msg=payment proof uploaded uuid=%s user_id=%d", p.UUID, p.UserID)

	if tenantID, ok := tenantOf(p); ok {
		s.notify(ctx, tenantID, domain.NotifPaymentProofUploaded, map[string]any{
			"uuid":      p.UUID,
			"room_id":   p.RoomID,
			"payer":     payerName(p),
			"proof_url": proofURL,
		})
	}
	return p, nil
}

// UpdatePayment lets the owning tenant accept or reject a proof. A rejected
// payment returns its reserved units to the room.
func (s *Service) UpdatePayment(ctx context.Context, actor domain.Actor, id string, action Action) (*domain.Payment, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, fmt.Errorf("%w: type must be ACCEPT or REJECT", ErrValidation)
	}
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}

	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenantID, ok := tenantOf(p); !ok || tenantID != actor.ID {
		return nil, ErrForbidden
	}
	target, template := domain.PaymentPaid, domain.NotifPaymentAccepted
	if action == ActionReject {
		target, template = domain.PaymentRejected, domain.NotifPaymentRejected
	}
	if !domain.CanTransition(p.Status, target) {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidState, p.Status)
	}

	var changed bool
	if action == ActionAccept {
		changed, err = s.payments.Transition(ctx, p.UUID, p.Status, target, nil)
	} else {
		changed, err = s.payments.TransitionReleasing(ctx, p.UUID, p.Status, target)
	}
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if !changed {
		return nil, fmt.Errorf("%w: payment left %s", ErrInvalidState, p.Status)
	}
	if action == ActionReject {
		s.invalidate(p.RoomID)
	}
	p.Status = target
	s.loggerf("level=info msg=payment confirmed uuid=%s tenant_id=%d status=%s", p.UUID, actor.ID, target)

	s.notify(ctx, p.UserID, template, map[string]any{
		"name":         payerName(p),
		"payment_code": p.UUID,
		"total_price":  p.TotalPrice,
		"duration":     p.Duration,
	})
	return p, nil
}

// ExpirePayment moves an unpaid payment past its deadline to EXPIRED and
// returns its units to the room. It reports false without error when there is
// nothing to do, so repeated deliveries are harmless.
func (s *Service) ExpirePayment(ctx context.Context, id string) (bool, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}
	if !domain.CanTransition(p.Status, domain.PaymentExpired) {
		s.loggerf("level=info msg=payment expiration skipped uuid=%s status=%s", p.UUID, p.Status)
		return false, nil
	}
	if now := s.now().UTC(); p.ExpiredAt.After(now) {
		s.loggerf("level=info msg=payment expiration not due uuid=%s expired_at=%s", p.UUID, p.ExpiredAt.Format(time.RFC3339))
		return false, nil
	}

	changed, err := s.payments.TransitionReleasing(ctx, p.UUID, p.Status, domain.PaymentExpired)
	if err != nil {
		return false, fmt.Errorf("expire payment %s: %w", p.UUID, err)
	}
	if !changed {
		s.loggerf("level=info msg=payment expiration lost race uuid=%s", p.UUID)
		return false, nil
	}
	s.invalidate(p.RoomID)
	s.loggerf("level=info msg=payment expired uuid=%s room_id=%d released=%d", p.UUID, p.RoomID, p.ReservedUnits)

	s.notify(ctx, p.UserID, domain.NotifPaymentExpired, map[string]any{
		"name":         payerName(p),
		"payment_code": p.UUID,
		"room_id":      p.RoomID,
	})
	return true, nil
}

// GetPayment is visible to the payer and to the tenant owning the room.
func (s *Service) GetPayment(ctx context.Context, actor domain.Actor, id string) (*domain.Payment, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID == actor.ID {
		return p, nil
	}
	if tenantID, ok := tenantOf(p); ok && actor.IsTenant() && tenantID == actor.ID {
		return p, nil
	}
	return nil, ErrForbidden
}

func (s *Service) ListTenantPayments(ctx context.Context, actor domain.Actor, q ListQuery) (*ListResult, error) {
	if !actor.IsTenant() {
		return nil, ErrForbidden
	}
	status := domain.PaymentStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	f := repository.PaymentFilter{
		TenantID:  actor.ID,
		Status:    status,
		Query:     strings.TrimSpace(q.Q),
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

	payments, total, err := s.payments.ListForTenant(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Data: payments,
		Meta: response.Meta{Page: f.Page, Take: f.Take, Total: total},
	}, nil
}

func (s *Service) get(ctx context.Context, id string) (*domain.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	p, err := s.payments.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

// notify logs delivery failures instead of returning them.
// createReserving persists p under a fresh uuid, drawing another one if the
// first is already taken.
func (s *Service) createReserving(ctx context.Context, p *domain.Payment) error {
	var err error
	for attempt := 0; attempt < maxUUIDAttempts; attempt++ {
		p.UUID = uuid.NewString()
		if err = s.payments.CreateReserving(ctx, p); !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		s.loggerf("level=error msg=payment uuid collision uuid=%s", p.UUID)
	}
	return err
}

func (s *Service) invalidate(roomID int64) {
	if s.calendar != nil {
		s.calendar.InvalidateRoom(roomID)
	}
}

func (s *Service) notify(ctx context.Context, recipientID int64, template domain.NotificationType, data map[string]any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, recipientID, template, data); err != nil {
		s.loggerf("level=error msg=failed to send notification template=%s recipient_id=%d err=%v", template, recipientID, err)
	}
}

func tenantOf(p *domain.Payment) (int64, bool) {
	if p.Room == nil || p.Room.Property == nil {
		return 0, false
	}
	return p.Room.Property.TenantID, true
}

func payerName(p *domain.Payment) string {
	if p.User == nil {
		return "Customer"
	}
	return p.User.DisplayName()
}
