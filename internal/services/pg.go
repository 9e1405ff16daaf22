package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE classes used to map driver errors onto the error taxonomy. The
// postgres driver is pgx-based, so raw driver errors surface as
// *pgconn.PgError.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// isSerializationFailure reports whether err is a transient transaction
// abort worth one retry: a serialization failure or a deadlock loser.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// isUniqueViolation reports whether err is a unique constraint violation.
// gorm's TranslateError covers the postgres and sqlite drivers alike; the
// SQLSTATE check catches pgx errors that bypass the translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
