package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambler/wagering/database"
	"gambler/wagering/domain/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one recorded balance change
type LedgerEntry struct {
	ID            int64
	UserID        int64
	Amount        decimal.Decimal // negative for debits
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// LedgerRepository is the Postgres ledger gateway. Every call runs in its own
// transaction, independent of any bet unit of work.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a ledger on the pool
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Debit removes amount from the user's account
func (r *LedgerRepository) Debit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var balance decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.InsufficientFunds("user %d has no account", userID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock account %d: %w", userID, err)
		}
		if balance.LessThan(amount) {
			return apperrors.InsufficientFunds("balance %s is below %s", balance, amount)
		}
		return r.apply(ctx, tx, userID, balance, amount.Neg())
	})
}

// Credit adds amount to the user's account, opening it when needed
func (r *LedgerRepository) Credit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var balance decimal.Decimal
		query := `
			INSERT INTO ledger_accounts (user_id, balance)
			VALUES ($1, 0)
			ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING balance
		`
		if err := tx.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
			return fmt.Errorf("failed to open account %d: %w", userID, err)
		}
		return r.apply(ctx, tx, userID, balance, amount)
	})
}

// Balance returns the user's balance, zero for unknown users
func (r *LedgerRepository) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance of %d: %w", userID, err)
	}
	return balance, nil
}

// Entries returns the user's balance history, oldest first
func (r *LedgerRepository) Entries(ctx context.Context, userID int64) ([]*LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, balance_before, balance_after, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*LedgerEntry, 0)
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.BalanceBefore, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

func (r *LedgerRepository) apply(ctx context.Context, tx pgx.Tx, userID int64, before, change decimal.Decimal) error {
	after := before.Add(change)

	_, err := tx.Exec(ctx, `UPDATE ledger_accounts SET balance = $2, updated_at = NOW() WHERE user_id = $1`, userID, after)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update account %d", userID))
	}

	query := `
		INSERT INTO ledger_entries (user_id, amount, balance_before, balance_after)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, query, userID, change, before, after); err != nil {
		return fmt.Errorf("failed to record ledger entry for %d: %w", userID, err)
	}
	return nil
}
