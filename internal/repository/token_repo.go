package repository

import (
	"context"
	"time"

	"museumvisit/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a token. The id encodes (booking id, ordinal), so a replayed
// issue for the same seat hits the primary key and reports created=false
// instead of failing, which keeps Approve's token backfill idempotent.
func (r *TokenRepository) Create(ctx context.Context, t *domain.RegistrationToken) (created bool, err error) {
	err = r.db.WithContext(ctx).Create(t).Error
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id string) (*domain.RegistrationToken, error) {
	var t domain.RegistrationToken
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.RegistrationToken, error) {
	var out []domain.RegistrationToken
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("ordinal ASC").
		Find(&out).Error
	return out, err
}

func (r *TokenRepository) MaxOrdinal(ctx context.Context, bookingID string) (int, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&domain.RegistrationToken{}).
		Select("COALESCE(MAX(ordinal), 0)").
		Where("booking_id = ?", bookingID).
		Scan(&max).Error
	return int(max), err
}

// Complete flips the token pending->completed and creates its visitor, plus
// any fan-out tokens the completion implies, in one transaction. The token
// update is a guarded compare-and-swap: if another request already completed
// it, zero rows match and ErrTokenNotPending comes back with the whole
// transaction rolled back. Fan-out inserts ignore already-present ordinals,
// so a retried completion never duplicates a member token.
func (r *TokenRepository) Complete(ctx context.Context, tokenID string, v *domain.Visitor, details datatypes.JSON, fanOut []domain.RegistrationToken, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.RegistrationToken{}).
			Where("id = ? AND status = ?", tokenID, domain.TokenPending).
			Updates(map[string]interface{}{
				"status":       domain.TokenCompleted,
				"completed_at": at,
				"visitor_id":   v.ID,
				"details":      details,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotPending
		}

		if len(fanOut) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fanOut).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkCheckedIn mirrors the visitor's terminal transition onto its token.
func (r *TokenRepository) MarkCheckedIn(ctx context.Context, visitorID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.RegistrationToken{}).
		Where("visitor_id = ? AND status = ?", visitorID, domain.TokenCompleted).
		Update("status", domain.TokenCheckedIn).Error
}
