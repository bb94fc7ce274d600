package payment

import (
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
)

type Action string

const (
	ActionAccept Action = "ACCEPT"
	ActionReject Action = "REJECT"
)

type CreateRequest struct {
	RoomID        int64      `json:"room_id" binding:"required,gt=0" example:"12"`
	TotalPrice    int64      `json:"total_price" binding:"gte=0" example:"450000"`
	Duration      int        `json:"duration" binding:"required,gte=1" example:"3"`
	PaymentMethod string     `json:"payment_method" binding:"omitempty,oneof=MANUAL AUTOMATIC" example:"MANUAL"`
	PaymentProof  string     `json:"payment_proof,omitempty" binding:"omitempty,url"`
	InvoiceURL    string     `json:"invoice_url,omitempty" binding:"omitempty,url"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty" example:"2025-03-05T10:15:00Z"`
}

type UploadProofRequest struct {
	PaymentProof string `json:"payment_proof" binding:"required,url" example:"https://cdn.example.com/proofs/abc.jpg"`
}

type UpdateRequest struct {
	Type Action `json:"type" binding:"required,oneof=ACCEPT REJECT" example:"ACCEPT"`
}

type ListQuery struct {
	Q         string `form:"q"`
	Status    string `form:"status" validate:"omitempty,oneof=WAITING_FOR_PAYMENT WAITING_FOR_PAYMENT_CONFIRMATION PAID REJECTED EXPIRED"`
	Page      int    `form:"page" validate:"omitempty,gte=1"`
	Take      int    `form:"take" validate:"omitempty,gte=1,lte=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=createdAt updatedAt expiredAt totalPrice status"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type ListResult struct {
	Data []domain.Payment `json:"data"`
	Meta response.Meta    `json:"meta"`
}

type ExpireResponse struct {
	UUID    string `json:"uuid"`
	Expired bool   `json:"expired"`
}

type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"INVALID_STATE"`
		Message string `json:"message" example:"payment is not in the required status"`
	} `json:"error"`
}
