package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender is the outward edge of the core: confirmation emails, PDF passes and
// any other rendering live behind it in the surrounding application. The core
// only reports lifecycle events.
type Sender interface {
	BookingCreated(ctx context.Context, bookingID string, tokenIDs []string) error
	BookingApproved(ctx context.Context, bookingID string) error
	BookingCancelled(ctx context.Context, bookingID, reason string) error
	TokenCompleted(ctx context.Context, tokenID, visitorID string) error
	VisitorCheckedIn(ctx context.Context, visitorID, bookingID string) error
}

// LogSender is the default Sender: it records events and nothing more.
type LogSender struct {
	log *zerolog.Logger
}

func NewLogSender(log *zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) BookingCreated(_ context.Context, bookingID string, tokenIDs []string) error {
	s.log.Info().Str("booking_id", bookingID).Strs("token_ids", tokenIDs).Msg("booking created")
	return nil
}

func (s *LogSender) BookingApproved(_ context.Context, bookingID string) error {
	s.log.Info().Str("booking_id", bookingID).Msg("booking approved")
	return nil
}

func (s *LogSender) BookingCancelled(_ context.Context, bookingID, reason string) error {
	s.log.Info().Str("booking_id", bookingID).Str("reason", reason).Msg("booking cancelled")
	return nil
}

func (s *LogSender) TokenCompleted(_ context.Context, tokenID, visitorID string) error {
	s.log.Info().Str("token_id", tokenID).Str("visitor_id", visitorID).Msg("token completed")
	return nil
}

func (s *LogSender) VisitorCheckedIn(_ context.Context, visitorID, bookingID string) error {
	s.log.Info().Str("visitor_id", visitorID).Str("booking_id", bookingID).Msg("visitor checked in")
	return nil
}
