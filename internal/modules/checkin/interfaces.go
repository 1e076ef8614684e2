package checkin

import (
	"context"
	"time"

	"museumvisit/internal/domain"
)

// PayloadValidator resolves a scanned payload and applies the read-only
// business guards (booking status, consumed flag, visitor status).
type PayloadValidator interface {
	Validate(ctx context.Context, payload string) (*domain.Visitor, error)
}

type VisitorRepository interface {
	MarkVisited(ctx context.Context, id string, at time.Time) (bool, error)
}

type TokenRepository interface {
	MarkCheckedIn(ctx context.Context, visitorID string) error
}

// StatusRecomputer re-derives the booking status after a visitor transition.
type StatusRecomputer interface {
	RecomputeStatus(ctx context.Context, bookingID string) error
}

// Broadcaster pushes successful check-ins to subscribed gate screens.
type Broadcaster interface {
	BroadcastCheckIn(ev interface{})
}
