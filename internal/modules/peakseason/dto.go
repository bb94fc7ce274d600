package peakseason

import (
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
)

type CreateRequest struct {
	RoomID    int64  `json:"room_id" binding:"required,gt=0" example:"12"`
	Price     int64  `json:"price" binding:"required" example:"175000"`
	StartDate string `json:"start_date" binding:"required" example:"2025-12-20"`
	EndDate   string `json:"end_date" binding:"required" example:"2026-01-03"`
}

// UpdateRequest changes only the fields that are set. The room of a rate
// cannot be changed.
type UpdateRequest struct {
	Price     *int64  `json:"price,omitempty" example:"180000"`
	StartDate *string `json:"start_date,omitempty" example:"2025-12-21"`
	EndDate   *string `json:"end_date,omitempty" example:"2026-01-02"`
}

type ListQuery struct {
	RoomID    int64  `form:"room_id"`
	StartDate string `form:"start_date" validate:"omitempty,day"`
	EndDate   string `form:"end_date" validate:"omitempty,day"`
	Search    string `form:"search"`
	Page      int    `form:"page" validate:"omitempty,gte=1"`
	Take      int    `form:"take" validate:"omitempty,gte=1,lte=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=createdAt updatedAt startDate endDate price"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type ListResult struct {
	Data []domain.PeakSeasonRate `json:"data"`
	Meta response.Meta           `json:"meta"`
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"CONFLICT"`
		Message string `json:"message" example:"peak season rate overlaps an existing rate for this room"`
	} `json:"error"`
}
