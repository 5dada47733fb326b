package sanitizer

import "errors"

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrEmptyAfterCleaning  = errors.New("empty_after_cleaning")
	ErrTooLong             = errors.New("message_too_long")
	ErrFiltered            = errors.New("message_filtered")
)
