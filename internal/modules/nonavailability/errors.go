package nonavailability

import "github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

var (
	ErrValidation   = apperr.New(apperr.KindValidation, "invalid room non-availability")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "room non-availability not found")
	ErrRoomNotFound = apperr.New(apperr.KindNotFound, "room not found")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "room does not belong to this tenant")
	ErrOverlap      = apperr.New(apperr.KindConflict, "non-availability overlaps an existing one for this room")
)
