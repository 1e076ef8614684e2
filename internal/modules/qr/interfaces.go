package qr

import (
	"context"

	"museumvisit/internal/domain"
)

type VisitorReader interface {
	GetByID(ctx context.Context, id string) (*domain.Visitor, error)
	FindLatestByContactAndBooking(ctx context.Context, contact, bookingID string) (*domain.Visitor, error)
	UpdateQRPayload(ctx context.Context, id, payload string) error
}

type TokenReader interface {
	GetByID(ctx context.Context, id string) (*domain.RegistrationToken, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}
