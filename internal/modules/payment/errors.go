package payment

import "github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

var (
	ErrValidation      = apperr.New(apperr.KindValidation, "invalid payment request")
	ErrNotFound        = apperr.New(apperr.KindNotFound, "payment not found")
	ErrRoomNotFound    = apperr.New(apperr.KindNotFound, "room not found")
	ErrRoomUnavailable = apperr.New(apperr.KindValidation, "room is not available")
	ErrForbidden       = apperr.New(apperr.KindForbidden, "payment does not belong to this user")
	ErrInvalidState    = apperr.New(apperr.KindInvalidState, "payment is not in the required status")
)
