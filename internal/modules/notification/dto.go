package notification

import "github.com/RachdianZulkarnain/final-project-api/internal/domain"

type ListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	Error   struct {
		Code    string `json:"code" example:"NOT_FOUND"`
		Message string `json:"message"`
	} `json:"error"`
}
