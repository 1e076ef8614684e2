package qr

import (
	"context"
	"errors"

	"museumvisit/internal/domain"

	"gorm.io/gorm"
)

// Service issues opaque QR payloads and resolves scanned ones back to a
// visitor. Validation here is read-only; the atomic single-use flip belongs to
// the check-in state machine.
type Service struct {
	codec    *Codec
	visitors VisitorReader
	tokens   TokenReader
	bookings BookingReader
}

func NewService(codec *Codec, visitors VisitorReader, tokens TokenReader, bookings BookingReader) *Service {
	return &Service{
		codec:    codec,
		visitors: visitors,
		tokens:   tokens,
		bookings: bookings,
	}
}

// Payload builds and signs a visitor-id payload without persisting it.
// Callers that insert the visitor row in a larger transaction set the
// snapshot on the row themselves, so the payload commits with the visitor.
func (s *Service) Payload(v *domain.Visitor) (string, error) {
	return s.codec.Encode(Claims{
		Kind:      KindVisitor,
		VisitorID: v.ID,
		BookingID: v.BookingID,
	})
}

// Issue builds a visitor-id payload and stores it as the visitor's snapshot.
// Re-issuing overwrites the snapshot but never touches qr_consumed.
func (s *Service) Issue(ctx context.Context, v *domain.Visitor) (string, error) {
	payload, err := s.Payload(v)
	if err != nil {
		return "", err
	}

	if err := s.visitors.UpdateQRPayload(ctx, v.ID, payload); err != nil {
		return "", err
	}
	v.QRPayload = payload
	return payload, nil
}

// Resolve maps a payload to its visitor. Strategies in priority order:
// direct visitor id, completed-token id, email+booking most-recent fallback.
func (s *Service) Resolve(ctx context.Context, payload string) (*domain.Visitor, error) {
	claims, err := s.codec.Decode(payload)
	if err != nil {
		return nil, err
	}

	if claims.VisitorID != "" {
		v, err := s.visitors.GetByID(ctx, claims.VisitorID)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if claims.TokenID != "" {
		t, err := s.tokens.GetByID(ctx, claims.TokenID)
		switch {
		case err == nil:
			if t.VisitorID != nil {
				v, verr := s.visitors.GetByID(ctx, *t.VisitorID)
				if verr == nil {
					return v, nil
				}
				if !errors.Is(verr, gorm.ErrRecordNotFound) {
					return nil, verr
				}
			}
			// Token exists but never produced a visitor: fall through to the
			// email lookup, same as legacy payloads that predate completion.
			if t.Contact != "" {
				v, verr := s.visitors.FindLatestByContactAndBooking(ctx, t.Contact, t.BookingID)
				if verr == nil {
					return v, nil
				}
				if !errors.Is(verr, gorm.ErrRecordNotFound) {
					return nil, verr
				}
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	if claims.Email != "" && claims.BookingID != "" {
		v, err := s.visitors.FindLatestByContactAndBooking(ctx, claims.Email, claims.BookingID)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, ErrNotFound
}

// Validate resolves the payload and applies the business guards in order:
// booking status first, then the consumed flag, then visitor status. It
// performs no writes, so a passing result is only a candidate; the caller
// must still win the check-in compare-and-swap.
func (s *Service) Validate(ctx context.Context, payload string) (*domain.Visitor, error) {
	v, err := s.Resolve(ctx, payload)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, v.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.Cancelled() {
		return nil, ErrBookingCancelled
	}

	if v.QRConsumed {
		return nil, ErrAlreadyUsed
	}
	switch v.Status {
	case domain.VisitorVisited:
		return nil, ErrAlreadyCheckedIn
	case domain.VisitorApproved:
		return v, nil
	default:
		return nil, ErrNotApproved
	}
}
