package booking

import "museumvisit/internal/domain"

type VisitorInfo struct {
	Name        string `json:"name" binding:"required" validate:"required"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Contact     string `json:"contact" binding:"required" validate:"required"`
	Category    string `json:"category"`
	Purpose     string `json:"purpose"`
	Institution string `json:"institution"`
}

// DependentInfo may arrive with contact only; whether a dependent becomes a
// visitor row immediately or a registration token depends on the booking type
// and on whether the name is present.
type DependentInfo struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
	Contact  string `json:"contact" binding:"required" validate:"required"`
	Category string `json:"category"`
}

type CreateBookingRequest struct {
	Type           domain.BookingType `json:"type" binding:"required"`
	VisitDate      string             `json:"visit_date" binding:"required"`
	Window         string             `json:"window" binding:"required"`
	DeclaredTotal  int                `json:"declared_total"`
	PrimaryVisitor VisitorInfo        `json:"primary_visitor" binding:"required"`
	Dependents     []DependentInfo    `json:"dependents"`
}

type TokenRef struct {
	TokenID string `json:"token_id"`
	Contact string `json:"contact"`
}

type CreateResult struct {
	BookingID        string     `json:"booking_id"`
	PrimaryVisitorID string     `json:"primary_visitor_id,omitempty"`
	Tokens           []TokenRef `json:"tokens,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type WindowAvailability struct {
	Window    string `json:"window"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

type AvailabilityResponse struct {
	Date    string               `json:"date"`
	Windows []WindowAvailability `json:"windows"`
}
