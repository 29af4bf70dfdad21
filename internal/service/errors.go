package service

import (
	"errors"
	"fmt"

	"shareit/internal/database"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrUnavailable       = errors.New("item unavailable for booking")
	ErrIllegalTransition = errors.New("booking status can no longer change")
	ErrCreatingComment   = errors.New("comment not allowed")
	ErrAccessDenied      = errors.New("access denied")
	ErrConflict          = errors.New("conflict")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// storageErr maps storage sentinels onto error kinds. Other errors pass through.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return &Error{Kind: ErrNotFound, Msg: err.Error()}
	case errors.Is(err, database.ErrDuplicateEmail):
		return &Error{Kind: ErrConflict, Msg: err.Error()}
	case errors.Is(err, database.ErrDuplicateComment):
		return &Error{Kind: ErrValidation, Msg: err.Error()}
	default:
		return err
	}
}
