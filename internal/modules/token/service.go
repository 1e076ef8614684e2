package token

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"museumvisit/internal/domain"
	"museumvisit/internal/notification"
	"museumvisit/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	tokens   TokenRepository
	bookings BookingReader
	visitors VisitorReader
	qr       QRIssuer
	notifs   notification.Sender
	log      *zerolog.Logger

	ttl time.Duration
}

func NewService(
	tokens TokenRepository,
	bookings BookingReader,
	visitors VisitorReader,
	qr QRIssuer,
	notifs notification.Sender,
	log *zerolog.Logger,
	ttl time.Duration,
) *Service {
	return &Service{
		tokens:   tokens,
		bookings: bookings,
		visitors: visitors,
		qr:       qr,
		notifs:   notifs,
		log:      log,
		ttl:      ttl,
	}
}

// Fetch returns the token plus the booking context the self-service form
// shows. Expiry is a pure timestamp comparison evaluated here, at read time:
// nothing marks tokens expired in storage.
func (s *Service) Fetch(ctx context.Context, tokenID string) (*FetchResult, error) {
	t, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, t.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Cancelled() {
		return nil, ErrBookingCancelled
	}
	if t.Status == domain.TokenPending && t.Expired(time.Now()) {
		return nil, ErrLinkExpired
	}

	result := &FetchResult{
		TokenID:       t.ID,
		Status:        t.Status,
		Contact:       t.Contact,
		ExpiresAt:     t.ExpiresAt,
		BookingID:     b.ID,
		BookingStatus: b.Status,
		VisitDate:     b.VisitDate,
		Window:        b.Window,
	}

	primary, err := s.visitors.GetPrimaryByBooking(ctx, t.BookingID)
	switch {
	case err == nil:
		result.Institution = primary.Institution
		result.Purpose = primary.Purpose
	case errors.Is(err, gorm.ErrRecordNotFound):
		// leader has not registered yet; the form shows no inherited fields
	default:
		return nil, err
	}

	return result, nil
}

// Complete turns a pending token into exactly one visitor. The token flip,
// the visitor insert (QR snapshot included) and, for leader tokens, the
// member-token fan-out all share one transaction, so a replay either loses
// the compare-and-swap (AlreadySubmitted) or never sees a half-completed
// state; a crash mid-completion leaves nothing stranded.
func (s *Service) Complete(ctx context.Context, tokenID string, req CompleteRequest) (*CompleteResult, error) {
	if req.Name == "" {
		return nil, ErrValidation
	}

	t, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, t.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Cancelled() {
		return nil, ErrBookingCancelled
	}
	if t.Status != domain.TokenPending {
		return nil, ErrAlreadySubmitted
	}
	now := time.Now()
	if t.Expired(now) {
		return nil, ErrLinkExpired
	}

	contact := t.Contact
	if contact == "" {
		contact = req.Contact
	}
	if contact == "" {
		return nil, ErrValidation
	}

	v := &domain.Visitor{
		ID:        uuid.NewString(),
		BookingID: t.BookingID,
		Name:      req.Name,
		Gender:    req.Gender,
		Address:   req.Address,
		Contact:   contact,
		Category:  req.Category,
		Status:    domain.VisitorApproved,
	}

	if t.Leader {
		// The leader is the booking's primary visitor; their own fields are
		// the source others inherit from.
		v.IsPrimary = true
		v.Purpose = req.Purpose
		v.Institution = req.Institution
	} else {
		primary, err := s.visitors.GetPrimaryByBooking(ctx, t.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPrimaryVisitorMissing
			}
			return nil, err
		}
		v.Purpose = primary.Purpose
		v.Institution = primary.Institution
	}

	details, err := mergeDetails(t.Details, req.Details)
	if err != nil {
		return nil, err
	}

	payload, err := s.qr.Payload(v)
	if err != nil {
		return nil, err
	}
	v.QRPayload = payload

	var fanOut []domain.RegistrationToken
	if t.Leader {
		fanOut, err = s.memberFanOut(t, now)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tokens.Complete(ctx, t.ID, v, details, fanOut, now); err != nil {
		if errors.Is(err, repository.ErrTokenNotPending) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.TokenCompleted(ctx, t.ID, v.ID); err != nil {
			s.log.Warn().Err(err).Str("token_id", t.ID).Msg("token completed notification failed")
		}
	}

	return &CompleteResult{VisitorID: v.ID, QRPayload: payload}, nil
}

// memberFanOut builds one member token per contact stashed on the leader at
// booking time. The tokens are inserted inside the completion transaction,
// keyed by (booking id, ordinal).
func (s *Service) memberFanOut(leader *domain.RegistrationToken, now time.Time) ([]domain.RegistrationToken, error) {
	contacts, err := memberContacts(leader.Details)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}

	out := make([]domain.RegistrationToken, 0, len(contacts))
	ordinal := leader.Ordinal
	expires := now.Add(s.ttl)
	for _, contact := range contacts {
		ordinal++
		out = append(out, domain.RegistrationToken{
			ID:        domain.TokenID(leader.BookingID, ordinal),
			BookingID: leader.BookingID,
			Ordinal:   ordinal,
			Contact:   contact,
			Status:    domain.TokenPending,
			ExpiresAt: expires,
		})
	}
	return out, nil
}

// mergeDetails keeps whatever was stashed at issue time (member contacts for
// leader tokens) and records the submitted form blob under "captured".
func mergeDetails(existing datatypes.JSON, captured map[string]interface{}) (datatypes.JSON, error) {
	m := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &m); err != nil {
			return nil, err
		}
	}
	if captured != nil {
		m["captured"] = captured
	}
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func memberContacts(details datatypes.JSON) ([]string, error) {
	if len(details) == 0 {
		return nil, nil
	}
	var m struct {
		MemberContacts []string `json:"member_contacts"`
	}
	if err := json.Unmarshal(details, &m); err != nil {
		return nil, err
	}
	return m.MemberContacts, nil
}
