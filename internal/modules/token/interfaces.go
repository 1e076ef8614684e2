package token

import (
	"context"
	"time"

	"museumvisit/internal/domain"

	"gorm.io/datatypes"
)

type TokenRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RegistrationToken, error)
	Complete(ctx context.Context, tokenID string, v *domain.Visitor, details datatypes.JSON, fanOut []domain.RegistrationToken, at time.Time) error
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

type VisitorReader interface {
	GetPrimaryByBooking(ctx context.Context, bookingID string) (*domain.Visitor, error)
}

// QRIssuer signs a payload for a visitor without persisting it; the snapshot
// is stored on the visitor row inside the completion transaction.
type QRIssuer interface {
	Payload(v *domain.Visitor) (string, error)
}
