package checkin

import "time"

type CheckInRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// VisitorSummary is what the gate screen shows after a successful scan.
type VisitorSummary struct {
	VisitorID   string     `json:"visitor_id"`
	BookingID   string     `json:"booking_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Institution string     `json:"institution,omitempty"`
	IsPrimary   bool       `json:"is_primary"`
	CheckinAt   *time.Time `json:"checkin_at"`
}
