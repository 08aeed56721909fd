package repository

import (
	"context"
	"testing"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_DebitAndCredit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ledger := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	err := ledger.Debit(ctx, 1, decimal.RequireFromString("0.1"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	require.NoError(t, ledger.Credit(ctx, 1, decimal.RequireFromString("1.5")))
	require.NoError(t, ledger.Debit(ctx, 1, decimal.RequireFromString("0.4")))

	err = ledger.Debit(ctx, 1, decimal.RequireFromString("2"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	balance, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	requireDecimalEqual(t, "1.1", balance)

	entries, err := ledger.Entries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	requireDecimalEqual(t, "1.5", entries[0].Amount)
	requireDecimalEqual(t, "0", entries[0].BalanceBefore)
	requireDecimalEqual(t, "-0.4", entries[1].Amount)
	requireDecimalEqual(t, "1.1", entries[1].BalanceAfter)

	unknown, err := ledger.Balance(ctx, 2)
	require.NoError(t, err)
	assert.True(t, unknown.IsZero())
}
