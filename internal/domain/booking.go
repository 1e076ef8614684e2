package domain

import "time"

type BookingType string

const (
	BookingIndividual       BookingType = "individual"
	BookingGroup            BookingType = "group"
	BookingIndividualWalkIn BookingType = "individual-walkin"
	BookingGroupWalkIn      BookingType = "group-walkin"
)

func (t BookingType) Valid() bool {
	switch t {
	case BookingIndividual, BookingGroup, BookingIndividualWalkIn, BookingGroupWalkIn:
		return true
	}
	return false
}

// WalkIn reports whether the visitor party is already at the desk, which
// auto-approves the primary visitor at creation time.
func (t BookingType) WalkIn() bool {
	return t == BookingIndividualWalkIn || t == BookingGroupWalkIn
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingCancelled BookingStatus = "cancelled"
	BookingCheckedIn BookingStatus = "checked-in"
)

// Visit windows are a fixed enumeration; capacity is tracked per
// (visit_date, window) pair.
const (
	WindowMorning   = "morning"
	WindowMidday    = "midday"
	WindowAfternoon = "afternoon"
)

func ValidWindow(w string) bool {
	return w == WindowMorning || w == WindowMidday || w == WindowAfternoon
}

type Booking struct {
	ID                 string        `json:"id" gorm:"primaryKey;size:36"`
	Type               BookingType   `json:"type" gorm:"size:24" validate:"required"`
	Status             BookingStatus `json:"status" gorm:"size:16;index"`
	VisitDate          string        `json:"visit_date" gorm:"size:10;index:idx_slot" validate:"required"`
	Window             string        `json:"window" gorm:"column:visit_window;size:16;index:idx_slot" validate:"required"`
	DeclaredCount      int           `json:"declared_count" validate:"required,gte=1"`
	CancellationReason string        `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`

	Visitors []Visitor           `json:"visitors,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Tokens   []RegistrationToken `json:"tokens,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

func (Booking) TableName() string { return "bookings" }

// Cancelled bookings no longer count against slot capacity and refuse every
// later token or check-in operation.
func (b *Booking) Cancelled() bool { return b.Status == BookingCancelled }
