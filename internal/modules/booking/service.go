package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"museumvisit/internal/domain"
	"museumvisit/internal/notification"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"museumvisit/internal/repository"
)

const dateLayout = "2006-01-02"

type Service struct {
	bookings BookingRepository
	visitors VisitorRepository
	tokens   TokenRepository
	qr       QRIssuer
	notifs   notification.Sender
	log      *zerolog.Logger

	capacity   int
	partyLimit int
	tokenTTL   time.Duration
}

func NewService(
	bookings BookingRepository,
	visitors VisitorRepository,
	tokens TokenRepository,
	qr QRIssuer,
	notifs notification.Sender,
	log *zerolog.Logger,
	capacity, partyLimit int,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		bookings:   bookings,
		visitors:   visitors,
		tokens:     tokens,
		qr:         qr,
		notifs:     notifs,
		log:        log,
		capacity:   capacity,
		partyLimit: partyLimit,
		tokenTTL:   tokenTTL,
	}
}

// Create reserves slot capacity and materializes the booking's initial visitor
// and token records in one storage transaction. Which records appear depends
// on the booking type:
//
//   - individual / group: primary visitor now, one registration token per
//     dependent contact (the companion flow).
//   - individual-walkin: primary visitor now, auto-approved.
//   - group-walkin with named dependents: every visitor row now, auto-approved.
//   - group-walkin with contact-only dependents: no visitors yet; a leader
//     token is issued whose completion fans out the member tokens.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*CreateResult, error) {
	if !req.Type.Valid() || !domain.ValidWindow(req.Window) {
		return nil, ErrValidation
	}
	if _, err := time.Parse(dateLayout, req.VisitDate); err != nil {
		return nil, ErrValidation
	}
	if req.PrimaryVisitor.Name == "" || req.PrimaryVisitor.Contact == "" {
		return nil, ErrValidation
	}
	declared := req.DeclaredTotal
	if declared == 0 {
		declared = 1 + len(req.Dependents)
	}
	if declared != 1+len(req.Dependents) {
		return nil, ErrValidation
	}
	if declared > s.partyLimit {
		return nil, ErrValidation
	}

	now := time.Now()
	b := &domain.Booking{
		ID:            uuid.NewString(),
		Type:          req.Type,
		Status:        domain.BookingPending,
		VisitDate:     req.VisitDate,
		Window:        req.Window,
		DeclaredCount: declared,
	}

	deferred := req.Type == domain.BookingGroupWalkIn && len(req.Dependents) > 0 && !dependentsNamed(req.Dependents)

	var primaryID string
	if deferred {
		contacts := make([]string, 0, len(req.Dependents))
		for _, d := range req.Dependents {
			contacts = append(contacts, d.Contact)
		}
		details, err := json.Marshal(map[string]interface{}{"member_contacts": contacts})
		if err != nil {
			return nil, err
		}
		b.Tokens = append(b.Tokens, domain.RegistrationToken{
			ID:        domain.TokenID(b.ID, 1),
			BookingID: b.ID,
			Ordinal:   1,
			Contact:   req.PrimaryVisitor.Contact,
			Leader:    true,
			Status:    domain.TokenPending,
			ExpiresAt: now.Add(s.tokenTTL),
			Details:   datatypes.JSON(details),
		})
	} else {
		primaryStatus := domain.VisitorPending
		if req.Type.WalkIn() {
			primaryStatus = domain.VisitorApproved
		}
		primary := domain.Visitor{
			ID:          uuid.NewString(),
			BookingID:   b.ID,
			IsPrimary:   true,
			Name:        req.PrimaryVisitor.Name,
			Gender:      req.PrimaryVisitor.Gender,
			Address:     req.PrimaryVisitor.Address,
			Contact:     req.PrimaryVisitor.Contact,
			Category:    req.PrimaryVisitor.Category,
			Purpose:     req.PrimaryVisitor.Purpose,
			Institution: req.PrimaryVisitor.Institution,
			Status:      primaryStatus,
		}
		primaryID = primary.ID
		b.Visitors = append(b.Visitors, primary)

		if req.Type.WalkIn() {
			// Dependents are present at the desk: materialize them now,
			// inheriting institution/purpose from the primary.
			for _, d := range req.Dependents {
				b.Visitors = append(b.Visitors, domain.Visitor{
					ID:          uuid.NewString(),
					BookingID:   b.ID,
					Name:        d.Name,
					Gender:      d.Gender,
					Address:     d.Address,
					Contact:     d.Contact,
					Category:    d.Category,
					Purpose:     req.PrimaryVisitor.Purpose,
					Institution: req.PrimaryVisitor.Institution,
					Status:      domain.VisitorApproved,
				})
			}
		} else {
			for i, d := range req.Dependents {
				ordinal := i + 1
				b.Tokens = append(b.Tokens, domain.RegistrationToken{
					ID:        domain.TokenID(b.ID, ordinal),
					BookingID: b.ID,
					Ordinal:   ordinal,
					Contact:   d.Contact,
					Status:    domain.TokenPending,
					ExpiresAt: now.Add(s.tokenTTL),
				})
			}
		}
	}

	if err := s.bookings.CreateWithSlotReservation(ctx, b, s.capacity); err != nil {
		if errors.Is(err, repository.ErrSlotFull) {
			return nil, ErrCapacityExceeded
		}
		return nil, err
	}

	result := &CreateResult{
		BookingID:        b.ID,
		PrimaryVisitorID: primaryID,
	}
	tokenIDs := make([]string, 0, len(b.Tokens))
	for _, t := range b.Tokens {
		result.Tokens = append(result.Tokens, TokenRef{TokenID: t.ID, Contact: t.Contact})
		tokenIDs = append(tokenIDs, t.ID)
	}

	if s.notifs != nil {
		if err := s.notifs.BookingCreated(ctx, b.ID, tokenIDs); err != nil {
			s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("booking created notification failed")
		}
	}

	return result, nil
}

// Approve moves a pending booking to approved. Re-approving an approved
// booking succeeds and re-runs the follow-up writes, so a call that failed
// partway (status flipped, visitors still pending) is repaired by retrying.
// For walk-in flavors the primary visitor's QR is issued here; for scheduled
// groups any tokens missing since creation are backfilled, keyed by
// (booking id, ordinal) so a repeated call creates nothing twice.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	transitioned := false
	switch b.Status {
	case domain.BookingPending:
		if err := s.bookings.UpdateStatus(ctx, id, domain.BookingApproved); err != nil {
			return nil, err
		}
		b.Status = domain.BookingApproved
		transitioned = true
	case domain.BookingApproved:
		// fall through to the follow-up writes, each of which is idempotent
	default:
		return nil, ErrInvalidStatusTransition
	}

	if err := s.visitors.ApproveByBooking(ctx, id); err != nil {
		return nil, err
	}

	if b.Type.WalkIn() {
		primary, err := s.visitors.GetPrimaryByBooking(ctx, id)
		switch {
		case err == nil:
			if _, err := s.qr.Issue(ctx, primary); err != nil {
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// two-tier group-walkin: the leader has not completed their token
			// yet, QR issuance happens on completion instead
		default:
			return nil, err
		}
	}

	if b.Type == domain.BookingGroup {
		if err := s.backfillTokens(ctx, b); err != nil {
			return nil, err
		}
	}

	if transitioned && s.notifs != nil {
		if err := s.notifs.BookingApproved(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("booking_id", id).Msg("booking approved notification failed")
		}
	}

	return b, nil
}

func (s *Service) backfillTokens(ctx context.Context, b *domain.Booking) error {
	visitorCount, err := s.visitors.CountByBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	existing, err := s.tokens.ListByBooking(ctx, b.ID)
	if err != nil {
		return err
	}

	missing := b.DeclaredCount - int(visitorCount) - len(existing)
	if missing <= 0 {
		return nil
	}

	next, err := s.tokens.MaxOrdinal(ctx, b.ID)
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.tokenTTL)
	for i := 0; i < missing; i++ {
		next++
		created, err := s.tokens.Create(ctx, &domain.RegistrationToken{
			ID:        domain.TokenID(b.ID, next),
			BookingID: b.ID,
			Ordinal:   next,
			Status:    domain.TokenPending,
			ExpiresAt: expires,
		})
		if err != nil {
			return err
		}
		if !created {
			s.log.Debug().Str("booking_id", b.ID).Int("ordinal", next).Msg("token already present, skipping backfill")
		}
	}
	return nil
}

// Cancel is terminal: tokens and visitors stay in place but every later
// check-in or completion against them fails. Re-cancelling is a no-op success.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch b.Status {
	case domain.BookingCancelled:
		return b, nil
	case domain.BookingCheckedIn:
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now()
	if err := s.bookings.CancelWithReason(ctx, id, reason, now); err != nil {
		return nil, err
	}
	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now

	if s.notifs != nil {
		if err := s.notifs.BookingCancelled(ctx, id, reason); err != nil {
			s.log.Warn().Err(err).Str("booking_id", id).Msg("booking cancelled notification failed")
		}
	}

	return b, nil
}

// RecomputeStatus derives the booking-level status from its visitors: once
// every visitor is visited, the booking is checked-in. Idempotent; called
// after each visitor transition rather than scattered across call sites.
func (s *Service) RecomputeStatus(ctx context.Context, bookingID string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingApproved {
		return nil
	}

	total, err := s.visitors.CountByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}
	visited, err := s.visitors.CountByBookingAndStatus(ctx, bookingID, domain.VisitorVisited)
	if err != nil {
		return err
	}
	if visited != total {
		return nil
	}
	return s.bookings.UpdateStatus(ctx, bookingID, domain.BookingCheckedIn)
}

func (s *Service) GetDetail(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Availability reports remaining capacity per window for a date. Derived
// read only; the authoritative check happens inside Create's transaction.
func (s *Service) Availability(ctx context.Context, dateStr string) (*AvailabilityResponse, error) {
	if _, err := time.Parse(dateLayout, dateStr); err != nil {
		return nil, ErrValidation
	}

	windows := []string{domain.WindowMorning, domain.WindowMidday, domain.WindowAfternoon}
	out := &AvailabilityResponse{Date: dateStr}
	for _, w := range windows {
		booked, err := s.bookings.BookedCountForSlot(ctx, dateStr, w)
		if err != nil {
			return nil, err
		}
		remaining := s.capacity - booked
		if remaining < 0 {
			remaining = 0
		}
		out.Windows = append(out.Windows, WindowAvailability{
			Window:    w,
			Capacity:  s.capacity,
			Booked:    booked,
			Remaining: remaining,
		})
	}
	return out, nil
}

func dependentsNamed(deps []DependentInfo) bool {
	for _, d := range deps {
		if d.Name == "" {
			return false
		}
	}
	return true
}
