package notification

import "github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

var (
	ErrNotFound     = apperr.New(apperr.KindNotFound, "notification not found")
	ErrUnauthorized = apperr.New(apperr.KindForbidden, "user not authenticated")
)
