package repository

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
	pgLockNotAvailable   = "55P03"
	pgInvalidTextRep     = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isMissing covers empty results and ids that are not valid uuids.
func isMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || pgCode(err) == pgInvalidTextRep
}

// isSlotConflict covers the overlap exclusion constraint and a booking
// lock that could not be taken within lock_timeout.
func isSlotConflict(err error) bool {
	switch pgCode(err) {
	case pgExclusionViolation, pgLockNotAvailable:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func notFoundOr(err error, code, message, op string) error {
	if isMissing(err) {
		return httperr.ErrNotFound(code, message)
	}
	return errors.Wrap(err, op)
}
