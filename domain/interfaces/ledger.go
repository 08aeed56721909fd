package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerGateway moves value in and out of user accounts. Each call is atomic on its own.
type LedgerGateway interface {
	// Debit removes amount from the user's account, failing with InsufficientFunds
	Debit(ctx context.Context, userID int64, amount decimal.Decimal) error

	// Credit adds amount to the user's account
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) error
}
