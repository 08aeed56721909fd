package testhelpers

import (
	"context"
	"sync"

	"gambler/wagering/domain/apperrors"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one call recorded by MemoryLedger
type LedgerEntry struct {
	UserID int64
	Amount decimal.Decimal // negative for debits
}

// MemoryLedger is an in-memory LedgerGateway with failure injection
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[int64]decimal.Decimal
	entries    []LedgerEntry
	creditErrs []error
	debitErrs  []error
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[int64]decimal.Decimal)}
}

// Deposit funds an account without recording an entry
func (l *MemoryLedger) Deposit(userID int64, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = l.balances[userID].Add(amount)
}

func (l *MemoryLedger) Balance(userID int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

// FailNextCredit makes the next Credit return err
func (l *MemoryLedger) FailNextCredit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditErrs = append(l.creditErrs, err)
}

// FailNextDebit makes the next Debit return err
func (l *MemoryLedger) FailNextDebit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debitErrs = append(l.debitErrs, err)
}

func (l *MemoryLedger) Debit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.debitErrs) > 0 {
		err := l.debitErrs[0]
		l.debitErrs = l.debitErrs[1:]
		return err
	}
	balance := l.balances[userID]
	if balance.LessThan(amount) {
		return apperrors.InsufficientFunds("balance %s is below %s", balance, amount)
	}
	l.balances[userID] = balance.Sub(amount)
	l.entries = append(l.entries, LedgerEntry{UserID: userID, Amount: amount.Neg()})
	return nil
}

func (l *MemoryLedger) Credit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.creditErrs) > 0 {
		err := l.creditErrs[0]
		l.creditErrs = l.creditErrs[1:]
		return err
	}
	l.balances[userID] = l.balances[userID].Add(amount)
	l.entries = append(l.entries, LedgerEntry{UserID: userID, Amount: amount})
	return nil
}

// Entries returns the recorded calls for a user
func (l *MemoryLedger) Entries(userID int64) []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LedgerEntry
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Credits counts successful credits to a user
func (l *MemoryLedger) Credits(userID int64) int {
	count := 0
	for _, e := range l.Entries(userID) {
		if e.Amount.IsPositive() {
			count++
		}
	}
	return count
}
