package domain

import "time"

type NotificationType string

const (
	NotifUploadPaymentProof   NotificationType = "upload-payment-proof"
	NotifPaymentProofUploaded NotificationType = "payment-proof-uploaded"
	NotifPaymentAccepted      NotificationType = "payment-accepted"
	NotifPaymentRejected      NotificationType = "payment-rejected"
	NotifPaymentExpired       NotificationType = "payment-expired"
)

type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(64)"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	IsRead    bool             `json:"is_read"`
	Data      map[string]any   `json:"data,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time        `json:"created_at"`
}
