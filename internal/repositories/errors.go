package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced row does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a concurrent writer won a race or a unique key already exists.
	ErrConflict = errors.New("conflicting write")
	// ErrWriteFailure means the store rejected a write; nothing was applied.
	ErrWriteFailure = errors.New("write failed")
)

const pgUniqueViolation = "23505"

// translateError maps gorm and driver errors from a write onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrWriteFailure, err)
}

// readError maps a read error, leaving anything but not-found untouched.
func readError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
