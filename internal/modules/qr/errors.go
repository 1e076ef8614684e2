package qr

import "errors"

var (
	ErrNotFound         = errors.New("payload does not resolve to a visitor")
	ErrBookingCancelled = errors.New("booking cancelled")
	ErrAlreadyUsed      = errors.New("qr payload already used")
	ErrAlreadyCheckedIn = errors.New("visitor already checked in")
	ErrNotApproved      = errors.New("visitor not approved for check-in")
)
