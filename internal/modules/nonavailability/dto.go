package nonavailability

import (
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
)

type CreateRequest struct {
	RoomID    int64  `json:"room_id" binding:"required,gt=0" example:"12"`
	Reason    string `json:"reason" binding:"required,max=255" example:"Renovation"`
	StartDate string `json:"start_date" binding:"required" example:"2025-07-01"`
	EndDate   string `json:"end_date" binding:"required" example:"2025-07-14"`
}

type UpdateRequest struct {
	Reason    *string `json:"reason,omitempty" binding:"omitempty,max=255" example:"Plumbing"`
	StartDate *string `json:"start_date,omitempty" example:"2025-07-02"`
	EndDate   *string `json:"end_date,omitempty" example:"2025-07-10"`
}

type ListQuery struct {
	RoomID    int64  `form:"room_id"`
	StartDate string `form:"start_date" validate:"omitempty,day"`
	EndDate   string `form:"end_date" validate:"omitempty,day"`
	Search    string `form:"search"`
	Page      int    `form:"page" validate:"omitempty,gte=1"`
	Take      int    `form:"take" validate:"omitempty,gte=1,lte=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=createdAt updatedAt startDate endDate reason"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type ListResult struct {
	Data []domain.RoomNonAvailability `json:"data"`
	Meta response.Meta                `json:"meta"`
}

type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"CONFLICT"`
		Message string `json:"message" example:"non-availability overlaps an existing one for this room"`
	} `json:"error"`
}
