package token

import "errors"

var (
	ErrNotFound              = errors.New("token not found")
	ErrLinkExpired           = errors.New("registration link expired")
	ErrAlreadySubmitted      = errors.New("token already submitted")
	ErrBookingCancelled      = errors.New("booking cancelled")
	ErrPrimaryVisitorMissing = errors.New("primary visitor missing")
	ErrValidation            = errors.New("validation error")
)
