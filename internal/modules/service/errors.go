package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrAuthorNotAdmin   = errors.New("task author must be an admin")
	ErrInvalidDateRange = errors.New("end_date must not be before start_date")
	ErrUnknownReference = errors.New("referenced record does not exist")
	ErrInvalidValue     = errors.New("invalid value")
	ErrRequired         = errors.New("this field is required")
	ErrTooLong          = errors.New("value is too long")
	ErrArchiveDisabled  = errors.New("chat archive storage is not configured")
)

// FieldError ties a validation failure to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// notFound maps the orm's missing-record error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
