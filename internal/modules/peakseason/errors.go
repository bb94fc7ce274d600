package peakseason

import "github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"

var (
	ErrValidation   = apperr.New(apperr.KindValidation, "invalid peak season rate")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "peak season rate not found")
	ErrRoomNotFound = apperr.New(apperr.KindNotFound, "room not found")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "room does not belong to this tenant")
	ErrOverlap      = apperr.New(apperr.KindConflict, "peak season rate overlaps an existing rate for this room")
)
