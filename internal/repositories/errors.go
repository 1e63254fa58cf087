package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL error codes treated as write conflicts
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("write conflict")
)

// IsNotFoundError reports whether err means the requested row does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConflictError reports whether err is a unique violation or a serialization failure
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return true
		}
	}
	return false
}

// NotFound wraps ErrNotFound with the resource and id
func NotFound(resource string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", resource, id, ErrNotFound)
}
