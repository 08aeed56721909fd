package repository

import (
	"errors"
	"testing"

	"gambler/wagering/domain/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind apperrors.Kind
	}{
		{name: "lock not available", err: &pgconn.PgError{Code: "55P03"}, wantKind: apperrors.KindConcurrencyConflict},
		{name: "lock timeout", err: &pgconn.PgError{Code: "57014"}, wantKind: apperrors.KindConcurrencyConflict},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, wantKind: apperrors.KindConcurrencyConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, wantKind: apperrors.KindConcurrencyConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "participations_bet_user_unique"}, wantKind: apperrors.KindValidation},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", ConstraintName: "ledger_accounts_balance_check"}, wantKind: apperrors.KindValidation},
		{name: "other postgres error", err: &pgconn.PgError{Code: "42P01"}, wantKind: apperrors.KindInternal},
		{name: "plain error", err: errors.New("connection refused"), wantKind: apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := translateError(tt.err, "failed")

			assert.Equal(t, tt.wantKind, apperrors.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
