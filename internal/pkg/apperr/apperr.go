// Package apperr classifies domain errors so transport layers can map them
// without knowing each module's sentinels.
package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindInvalidState:
		return "INVALID_STATE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified sentinel. Modules declare their own values with New
// and wrap them with fmt.Errorf("%w: ...").
type Error struct {
	Kind Kind
	Msg  string
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

// KindOf returns the kind of the first classified error in err's chain, or
// KindInternal when none is found.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
