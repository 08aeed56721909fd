package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation is a user's pooled stake on one side of a bet
type Participation struct {
	ID         int64
	BetID      int64
	UserID     int64
	Prediction Side
	Amount     decimal.Decimal
	Payout     *decimal.Decimal // nil until settled
	Claimed    bool
	ClaimedAt  *time.Time
	CreatedAt  time.Time
}

// IsSettled checks if a payout has been computed
func (p *Participation) IsSettled() bool {
	return p.Payout != nil
}

// UnclaimedPayout returns the payout still owed to the user
func (p *Participation) UnclaimedPayout() decimal.Decimal {
	if p.Claimed || p.Payout == nil {
		return decimal.Zero
	}
	return *p.Payout
}

// SetPayout records the settled payout
func (p *Participation) SetPayout(amount decimal.Decimal) {
	p.Payout = &amount
}

// MarkPaid records a payout that was credited outside of a claim, such as a refund
func (p *Participation) MarkPaid(amount decimal.Decimal, now time.Time) {
	p.Payout = &amount
	p.Claimed = true
	p.ClaimedAt = &now
}
