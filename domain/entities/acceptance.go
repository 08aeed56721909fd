package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acceptance is a match of part of an offer at the offer's odds.
// AcceptAmount is in creator-stake units, CounterStake is the acceptor's escrow.
type Acceptance struct {
	ID              int64
	OfferID         int64
	BetID           int64
	AcceptorID      int64
	AcceptAmount    decimal.Decimal
	CounterStake    decimal.Decimal
	Odds            decimal.Decimal
	CreatorPayout   *decimal.Decimal
	AcceptorPayout  *decimal.Decimal
	CreatorClaimed  bool
	AcceptorClaimed bool
	CreatedAt       time.Time
}

// IsSettled checks if both payouts have been computed
func (a *Acceptance) IsSettled() bool {
	return a.CreatorPayout != nil && a.AcceptorPayout != nil
}

// HasClaims checks if either side has already been paid
func (a *Acceptance) HasClaims() bool {
	return a.CreatorClaimed || a.AcceptorClaimed
}

// SetPayouts records the settled payouts of both sides
func (a *Acceptance) SetPayouts(creator, acceptor decimal.Decimal) {
	a.CreatorPayout = &creator
	a.AcceptorPayout = &acceptor
}
