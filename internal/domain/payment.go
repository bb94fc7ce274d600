package domain

import "time"

type PaymentStatus string

const (
	PaymentWaitingForPayment      PaymentStatus = "WAITING_FOR_PAYMENT"
	PaymentWaitingForConfirmation PaymentStatus = "WAITING_FOR_PAYMENT_CONFIRMATION"
	PaymentPaid                   PaymentStatus = "PAID"
	PaymentRejected               PaymentStatus = "REJECTED"
	PaymentExpired                PaymentStatus = "EXPIRED"
)

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentWaitingForPayment:      {PaymentWaitingForConfirmation: true, PaymentExpired: true},
	PaymentWaitingForConfirmation: {PaymentPaid: true, PaymentRejected: true},
	PaymentPaid:                   {},
	PaymentRejected:               {},
	PaymentExpired:                {},
}

// CanTransition reports whether a payment in from may move to to. PAID,
// REJECTED and EXPIRED are final.
func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}

func (s PaymentStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

type PaymentMethod string

const (
	PaymentMethodManual    PaymentMethod = "MANUAL"
	PaymentMethodAutomatic PaymentMethod = "AUTOMATIC"
)

type Payment struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	UUID          string        `json:"uuid" gorm:"uniqueIndex;size:36"`
	UserID        int64         `json:"user_id" gorm:"index"`
	RoomID        int64         `json:"room_id" gorm:"index"`
	TotalPrice    int64         `json:"total_price"`
	Duration      int           `json:"duration"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(16)"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(40);index"`
	ReservedUnits int           `json:"reserved_units"`
	PaymentProof  string        `json:"payment_proof,omitempty"`
	InvoiceURL    string        `json:"invoice_url,omitempty"`
	ExpiredAt     time.Time     `json:"expired_at" gorm:"index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}
