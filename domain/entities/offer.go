package entities

import (
	"time"

	"gambler/wagering/domain/apperrors"

	"github.com/shopspring/decimal"
)

// OfferStatus represents the state of an order-book offer
type OfferStatus string

const (
	OfferStatusOpen            OfferStatus = "open"
	OfferStatusPartiallyFilled OfferStatus = "partially_filled"
	OfferStatusFilled          OfferStatus = "filled"
	OfferStatusCancelled       OfferStatus = "cancelled"
)

// OddsScale is the number of decimal places requested odds may carry
const OddsScale int32 = 8

// MaxOdds is the highest decimal odds an offer may request
var MaxOdds = decimal.NewFromInt(1000)

// ValidateOdds checks requested odds are above evens, below MaxOdds and within OddsScale
func ValidateOdds(odds decimal.Decimal) error {
	if !odds.GreaterThan(decimal.NewFromInt(1)) {
		return apperrors.ErrInvalidOdds
	}
	if odds.GreaterThan(MaxOdds) {
		return apperrors.Validation("odds must not exceed %s", MaxOdds)
	}
	if !odds.Equal(odds.Truncate(OddsScale)) {
		return apperrors.Validation("odds %s has more than %d decimal places", odds, OddsScale)
	}
	return nil
}

// Offer is a custom-odds stake waiting to be matched by other users
type Offer struct {
	ID              int64
	BetID           int64
	CreatorID       int64
	Prediction      Side
	StakeAmount     decimal.Decimal
	RequestedOdds   decimal.Decimal
	RemainingAmount decimal.Decimal
	RefundedAmount  decimal.Decimal
	Status          OfferStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOffer builds an open offer with its whole stake unmatched
func NewOffer(betID, creatorID int64, prediction Side, stake, odds decimal.Decimal, now time.Time) *Offer {
	return &Offer{
		BetID:           betID,
		CreatorID:       creatorID,
		Prediction:      prediction,
		StakeAmount:     stake,
		RequestedOdds:   odds,
		RemainingAmount: stake,
		RefundedAmount:  decimal.Zero,
		Status:          OfferStatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsAcceptable checks if the offer still has an unmatched remainder on the book
func (o *Offer) IsAcceptable() bool {
	return o.Status == OfferStatusOpen || o.Status == OfferStatusPartiallyFilled
}

// MatchedAmount returns the portion of the stake covered by acceptances
func (o *Offer) MatchedAmount() decimal.Decimal {
	return o.StakeAmount.Sub(o.RemainingAmount).Sub(o.RefundedAmount)
}

// CounterStake is what an acceptor escrows to match amount of the creator's stake
func (o *Offer) CounterStake(amount decimal.Decimal, scale int32) decimal.Decimal {
	return Truncate(amount.Mul(o.RequestedOdds.Sub(decimal.NewFromInt(1))), scale)
}

// Fill matches amount of the remaining stake
func (o *Offer) Fill(amount decimal.Decimal, now time.Time) error {
	if !o.IsAcceptable() {
		return apperrors.InvalidTransition("offer %d is %s", o.ID, o.Status)
	}
	if !amount.IsPositive() {
		return apperrors.Validation("accept amount must be positive")
	}
	if amount.GreaterThan(o.RemainingAmount) {
		return apperrors.Validation("accept amount %s exceeds remaining %s", amount, o.RemainingAmount)
	}
	o.RemainingAmount = o.RemainingAmount.Sub(amount)
	if o.RemainingAmount.IsZero() {
		o.Status = OfferStatusFilled
	} else {
		o.Status = OfferStatusPartiallyFilled
	}
	o.UpdatedAt = now
	return nil
}

// Withdraw takes the unmatched remainder off the book and returns the amount to refund
func (o *Offer) Withdraw(now time.Time) (decimal.Decimal, error) {
	if !o.IsAcceptable() {
		return decimal.Zero, apperrors.InvalidTransition("offer %d is %s", o.ID, o.Status)
	}
	refund := o.RemainingAmount
	o.RefundedAmount = o.RefundedAmount.Add(refund)
	o.RemainingAmount = decimal.Zero
	o.Status = OfferStatusCancelled
	o.UpdatedAt = now
	return refund, nil
}
