package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrSlotFull is returned when the atomic check-and-reserve finds the
	// (date, window) slot cannot absorb the requested visitor count.
	ErrSlotFull = errors.New("slot capacity exceeded")

	// ErrTokenNotPending is returned when a completion update matched no row,
	// meaning the token was already completed (or checked in) by another request.
	ErrTokenNotPending = errors.New("token not in pending state")
)

// isDuplicateKey detects a unique-constraint violation on both backends:
// GORM's translated error for sqlite and the raw pgconn error for postgres.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// modernc's sqlite errors bypass GORM's translator.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
