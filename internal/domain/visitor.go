package domain

import "time"

type VisitorStatus string

const (
	VisitorPending  VisitorStatus = "pending"
	VisitorApproved VisitorStatus = "approved"
	VisitorVisited  VisitorStatus = "visited"
)

type Visitor struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	BookingID string `json:"booking_id" gorm:"size:36;index" validate:"required"`
	IsPrimary bool   `json:"is_primary"`

	Name        string `json:"name" gorm:"size:128" validate:"required"`
	Gender      string `json:"gender,omitempty" gorm:"size:16"`
	Address     string `json:"address,omitempty" gorm:"type:text"`
	Contact     string `json:"contact" gorm:"size:128;index" validate:"required"`
	Category    string `json:"category,omitempty" gorm:"size:32"`
	Purpose     string `json:"purpose,omitempty" gorm:"size:255"`
	Institution string `json:"institution,omitempty" gorm:"size:255"`

	Status VisitorStatus `json:"status" gorm:"size:16;index"`

	// QRPayload is the snapshot of the last issued payload. Re-issuing
	// overwrites it; QRConsumed survives re-issue and flips exactly once.
	QRPayload  string     `json:"-" gorm:"type:text"`
	QRConsumed bool       `json:"qr_consumed"`
	CheckinAt  *time.Time `json:"checkin_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Visitor) TableName() string { return "visitors" }
