package token

import (
	"time"

	"museumvisit/internal/domain"
)

// FetchResult is the self-service form context: token state plus the booking
// facts a dependent needs to see before submitting.
type FetchResult struct {
	TokenID       string               `json:"token_id"`
	Status        domain.TokenStatus   `json:"status"`
	Contact       string               `json:"contact,omitempty"`
	ExpiresAt     time.Time            `json:"expires_at"`
	BookingID     string               `json:"booking_id"`
	BookingStatus domain.BookingStatus `json:"booking_status"`
	VisitDate     string               `json:"visit_date"`
	Window        string               `json:"window"`
	Institution   string               `json:"institution,omitempty"`
	Purpose       string               `json:"purpose,omitempty"`
}

type CompleteRequest struct {
	Name     string `json:"name" binding:"required" validate:"required"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	Category string `json:"category"`

	// Purpose and Institution are honored only for leader tokens; dependents
	// inherit both from the primary visitor regardless of what the form sends.
	Purpose     string `json:"purpose"`
	Institution string `json:"institution"`

	Details map[string]interface{} `json:"details"`
}

type CompleteResult struct {
	VisitorID string `json:"visitor_id"`
	QRPayload string `json:"qr_payload"`
}
