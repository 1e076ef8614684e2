package repository

import (
	"context"
	"time"

	"museumvisit/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithSlotReservation performs the capacity check and the booking insert
// as one transaction. Visitors and tokens attached to the booking are inserted
// in the same transaction.
func (r *BookingRepository) CreateWithSlotReservation(ctx context.Context, b *domain.Booking, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Postgres rejects FOR UPDATE on aggregate queries, and row locks
		// cannot serialize two first bookings into an empty slot anyway. A
		// transaction-scoped advisory lock on the slot serializes writers
		// instead. Sqlite serializes writers on its own.
		if tx.Dialector.Name() == "postgres" {
			err := tx.Exec(
				"SELECT pg_advisory_xact_lock(hashtext(?))",
				slotLockKey(b.VisitDate, b.Window),
			).Error
			if err != nil {
				return err
			}
		}

		var booked int64
		if err := slotBookedQuery(tx, b.VisitDate, b.Window).Scan(&booked).Error; err != nil {
			return err
		}

		if int(booked)+b.DeclaredCount > capacity {
			return ErrSlotFull
		}

		return tx.Create(b).Error
	})
}

func slotLockKey(date, window string) string {
	return date + "/" + window
}

// slotBookedQuery sums declared visitor counts of non-cancelled bookings in
// the slot. Plain aggregate, no locking clause; callers that need mutual
// exclusion take the slot advisory lock first.
func slotBookedQuery(tx *gorm.DB, date, window string) *gorm.DB {
	return tx.Model(&domain.Booking{}).
		Select("COALESCE(SUM(declared_count), 0)").
		Where("visit_date = ? AND visit_window = ? AND status <> ?",
			date, window, domain.BookingCancelled)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetDetail loads the booking together with its visitors and tokens.
func (r *BookingRepository) GetDetail(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Visitors").
		Preload("Tokens").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *BookingRepository) CancelWithReason(ctx context.Context, id string, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              domain.BookingCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        at,
		}).Error
}

// BookedCountForSlot sums declared visitor counts of non-cancelled bookings in
// the slot. Read-only view used by the availability endpoint; the authoritative
// check lives inside CreateWithSlotReservation.
func (r *BookingRepository) BookedCountForSlot(ctx context.Context, date, window string) (int, error) {
	var booked int64
	err := slotBookedQuery(r.db.WithContext(ctx), date, window).Scan(&booked).Error
	return int(booked), err
}
