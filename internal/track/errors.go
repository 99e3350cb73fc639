package track

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Kind string // "part", "connection", "motherboard"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError indicates a precondition failed. Wherever the check does
// not depend on store state it is raised before any transaction begins;
// store-dependent checks run inside the transaction and roll it back.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Notes appended to connections the system closes automatically. Conflicts
// themselves are not errors: they are reported back to the caller as data
// (see ConnectResult) and only closed when displacement was requested.
const (
	NoteDisplacedByConnect  = "Automatically disconnected due to new part connection"
	NoteMotherboardDisposed = "Automatically disconnected due to motherboard disposal"
	NotePartDisposed        = "Automatically disconnected due to part disposal"
)
