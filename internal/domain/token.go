package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type TokenStatus string

const (
	TokenPending   TokenStatus = "pending"
	TokenCompleted TokenStatus = "completed"
	TokenCheckedIn TokenStatus = "checked_in"
)

// RegistrationToken is a time-limited handle letting a dependent submit their
// own details after the booking exists. Completing it produces exactly one
// Visitor; the token id is derived from the booking id plus an ordinal so
// re-issue for the same seat is a no-op.
type RegistrationToken struct {
	ID        string `json:"id" gorm:"primaryKey;size:40"`
	BookingID string `json:"booking_id" gorm:"size:36;index"`
	Ordinal   int    `json:"ordinal"`
	Contact   string `json:"contact" gorm:"size:128"`

	// Leader marks the first token of a group-walkin booking; its completion
	// fans out member tokens for the remaining contacts.
	Leader bool `json:"leader"`

	Status      TokenStatus    `json:"status" gorm:"size:16;index"`
	ExpiresAt   time.Time      `json:"expires_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Details     datatypes.JSON `json:"details,omitempty"`
	VisitorID   *string        `json:"visitor_id,omitempty" gorm:"size:36"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RegistrationToken) TableName() string { return "registration_tokens" }

func TokenID(bookingID string, ordinal int) string {
	return fmt.Sprintf("%s-%02d", bookingID, ordinal)
}

func (t *RegistrationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
