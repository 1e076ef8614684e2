package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrCapacityExceeded        = errors.New("slot capacity exceeded")
	ErrNotFound                = errors.New("booking not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
