package checkin

import (
	"context"
	"time"

	"museumvisit/internal/modules/qr"
	"museumvisit/internal/notification"

	"github.com/rs/zerolog"
)

// Service is the check-in state machine. The terminal approved -> visited
// transition is a single compare-and-swap on the visitor row; everything after
// the swap (token mirroring, booking recomputation, feed broadcast) is
// idempotent follow-up.
type Service struct {
	validator PayloadValidator
	visitors  VisitorRepository
	tokens    TokenRepository
	bookings  StatusRecomputer
	feed      Broadcaster
	notifs    notification.Sender
	log       *zerolog.Logger
}

func NewService(
	validator PayloadValidator,
	visitors VisitorRepository,
	tokens TokenRepository,
	bookings StatusRecomputer,
	feed Broadcaster,
	notifs notification.Sender,
	log *zerolog.Logger,
) *Service {
	return &Service{
		validator: validator,
		visitors:  visitors,
		tokens:    tokens,
		bookings:  bookings,
		feed:      feed,
		notifs:    notifs,
		log:       log,
	}
}

// CheckIn validates the payload, wins (or loses) the single-use flip and
// derives the follow-up state. Two concurrent scans of one payload both pass
// validation, but only the swap winner returns a summary; the loser gets
// qr.ErrAlreadyUsed.
func (s *Service) CheckIn(ctx context.Context, payload string) (*VisitorSummary, error) {
	v, err := s.validator.Validate(ctx, payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	won, err := s.visitors.MarkVisited(ctx, v.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, qr.ErrAlreadyUsed
	}

	if err := s.tokens.MarkCheckedIn(ctx, v.ID); err != nil {
		// the visitor transition already committed; a stale token status is
		// recoverable, failing the scan over it is not
		s.log.Warn().Err(err).Str("visitor_id", v.ID).Msg("token check-in mirror failed")
	}

	if err := s.bookings.RecomputeStatus(ctx, v.BookingID); err != nil {
		s.log.Warn().Err(err).Str("booking_id", v.BookingID).Msg("booking status recomputation failed")
	}

	summary := &VisitorSummary{
		VisitorID:   v.ID,
		BookingID:   v.BookingID,
		Name:        v.Name,
		Category:    v.Category,
		Institution: v.Institution,
		IsPrimary:   v.IsPrimary,
		CheckinAt:   &now,
	}

	if s.feed != nil {
		s.feed.BroadcastCheckIn(summary)
	}
	if s.notifs != nil {
		if err := s.notifs.VisitorCheckedIn(ctx, v.ID, v.BookingID); err != nil {
			s.log.Warn().Err(err).Str("visitor_id", v.ID).Msg("check-in notification failed")
		}
	}

	return summary, nil
}
