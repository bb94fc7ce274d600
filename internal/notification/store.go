package notification

import (
	"context"
	"fmt"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
)

type NotificationWriter interface {
	Create(ctx context.Context, n *domain.Notification) error
}

var titles = map[domain.NotificationType]string{
	domain.NotifUploadPaymentProof:   "Upload your payment proof",
	domain.NotifPaymentProofUploaded: "Payment proof received",
	domain.NotifPaymentAccepted:      "Payment accepted",
	domain.NotifPaymentRejected:      "Payment rejected",
	domain.NotifPaymentExpired:       "Payment expired",
}

// StoreNotifier persists an in-app notification for the recipient.
type StoreNotifier struct {
	repo NotificationWriter
}

func NewStoreNotifier(repo NotificationWriter) *StoreNotifier {
	return &StoreNotifier{repo: repo}
}

func (s *StoreNotifier) Send(ctx context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error {
	n := &domain.Notification{
		UserID:  recipientID,
		Type:    templateID,
		Title:   Title(templateID),
		Message: message(templateID, data),
		Data:    data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func Title(templateID domain.NotificationType) string {
	if t, ok := titles[templateID]; ok {
		return t
	}
	return string(templateID)
}

func message(templateID domain.NotificationType, data map[string]any) string {
	switch templateID {
	case domain.NotifUploadPaymentProof:
		return fmt.Sprintf("Upload the transfer proof for %v before %v.", data["room_name"], data["expire_at"])
	case domain.NotifPaymentProofUploaded:
		return fmt.Sprintf("%v uploaded the proof for payment %v.", data["payer"], data["uuid"])
	case domain.NotifPaymentAccepted:
		return fmt.Sprintf("Payment %v was accepted.", data["payment_code"])
	case domain.NotifPaymentRejected:
		return fmt.Sprintf("Payment %v was rejected.", data["payment_code"])
	case domain.NotifPaymentExpired:
		return fmt.Sprintf("Payment %v expired before a proof was uploaded.", data["payment_code"])
	default:
		return ""
	}
}
