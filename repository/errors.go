package repository

import (
	"errors"
	"fmt"

	"gambler/wagering/domain/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories translate into engine errors
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014" // raised when lock_timeout expires
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

// translateError maps lock contention to a retryable conflict and constraint
// violations to validation errors. Anything else is wrapped with msg.
func translateError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return apperrors.Conflict(err, "%s: bet is busy", msg)
		case pgUniqueViolation:
			return &apperrors.Error{Kind: apperrors.KindValidation, Message: fmt.Sprintf("%s: %s already exists", msg, pgErr.ConstraintName), Err: err}
		case pgCheckViolation:
			return &apperrors.Error{Kind: apperrors.KindValidation, Message: fmt.Sprintf("%s: constraint %s violated", msg, pgErr.ConstraintName), Err: err}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
