package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// PermissionDeniedError is returned when the database refuses a statement
// for lack of privileges
type PermissionDeniedError struct {
	Operation string
	Err       error
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Operation
}

func (e *PermissionDeniedError) Unwrap() error {
	return e.Err
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsPermissionDenied(err error) bool {
	var pd *PermissionDeniedError
	return errors.As(err, &pd)
}
