package repository

import (
	"context"
	"time"

	"museumvisit/internal/domain"

	"gorm.io/gorm"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) Create(ctx context.Context, v *domain.Visitor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VisitorRepository) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	var v domain.Visitor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisitorRepository) GetPrimaryByBooking(ctx context.Context, bookingID string) (*domain.Visitor, error) {
	var v domain.Visitor
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND is_primary = ?", bookingID, true).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisitorRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.Visitor, error) {
	var out []domain.Visitor
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FindLatestByContactAndBooking resolves the legacy email+booking QR payload
// shape: the most recently created visitor wins.
func (r *VisitorRepository) FindLatestByContactAndBooking(ctx context.Context, contact, bookingID string) (*domain.Visitor, error) {
	var v domain.Visitor
	err := r.db.WithContext(ctx).
		Where("contact = ? AND booking_id = ?", contact, bookingID).
		Order("created_at DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateQRPayload overwrites the stored payload snapshot. It deliberately
// touches nothing else: qr_consumed never resets on re-issue.
func (r *VisitorRepository) UpdateQRPayload(ctx context.Context, id, payload string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("id = ?", id).
		Update("qr_payload", payload).Error
}

// ApproveByBooking moves every pending visitor of the booking to approved.
func (r *VisitorRepository) ApproveByBooking(ctx context.Context, bookingID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("booking_id = ? AND status = ?", bookingID, domain.VisitorPending).
		Update("status", domain.VisitorApproved).Error
}

// MarkVisited is the single-use check-in flip: one guarded UPDATE that sets
// status, checkin timestamp and qr_consumed together. Under two concurrent
// scans of the same payload exactly one caller sees visited=true; the loser's
// update matches zero rows.
func (r *VisitorRepository) MarkVisited(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("id = ? AND qr_consumed = ? AND status = ?", id, false, domain.VisitorApproved).
		Updates(map[string]interface{}{
			"status":      domain.VisitorVisited,
			"qr_consumed": true,
			"checkin_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByBookingAndStatus backs the booking-level status recomputation.
func (r *VisitorRepository) CountByBookingAndStatus(ctx context.Context, bookingID string, status domain.VisitorStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("booking_id = ? AND status = ?", bookingID, status).
		Count(&n).Error
	return n, err
}

func (r *VisitorRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Visitor{}).
		Where("booking_id = ?", bookingID).
		Count(&n).Error
	return n, err
}
