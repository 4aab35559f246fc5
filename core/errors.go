package core

import "github.com/pkg/errors"

var (
	// ErrDuplicate is returned by repositories when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate key")

	// ErrInUse is returned when deleting a record still referenced by other records.
	ErrInUse = NewValidationError(errors.New("cet élément est utilisé par d'autres enregistrements"))

	// ErrForbidden is returned when the caller's role does not allow an action.
	ErrForbidden = errors.New("permission refusée")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldsError is a shorthand for a ValidationError made of field errors only.
func NewFieldsError(flds ...FieldError) error {
	return &ValidationError{Err: errors.New("invalid data"), Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{message: msg}
}

func (nf NotFoundError) Error() string {
	return nf.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
