package calendar

import "github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

var (
	ErrValidation   = apperr.New(apperr.KindValidation, "invalid calendar request")
	ErrRoomNotFound = apperr.New(apperr.KindNotFound, "room not found")
	ErrNoRooms      = apperr.New(apperr.KindNotFound, "no rooms found")
)
