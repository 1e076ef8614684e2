package booking

import (
	"context"
	"time"

	"museumvisit/internal/domain"
)

// BookingRepository defines the storage operations the aggregate needs.
type BookingRepository interface {
	CreateWithSlotReservation(ctx context.Context, b *domain.Booking, capacity int) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetDetail(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	CancelWithReason(ctx context.Context, id string, reason string, at time.Time) error
	BookedCountForSlot(ctx context.Context, date, window string) (int, error)
}

type VisitorRepository interface {
	GetPrimaryByBooking(ctx context.Context, bookingID string) (*domain.Visitor, error)
	ApproveByBooking(ctx context.Context, bookingID string) error
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
	CountByBookingAndStatus(ctx context.Context, bookingID string, status domain.VisitorStatus) (int64, error)
}

type TokenRepository interface {
	Create(ctx context.Context, t *domain.RegistrationToken) (created bool, err error)
	ListByBooking(ctx context.Context, bookingID string) ([]domain.RegistrationToken, error)
	MaxOrdinal(ctx context.Context, bookingID string) (int, error)
}

// QRIssuer issues a payload for a visitor and stores it as the snapshot.
type QRIssuer interface {
	Issue(ctx context.Context, v *domain.Visitor) (string, error)
}
