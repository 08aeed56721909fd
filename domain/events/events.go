package events

import (
	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetCreated        EventType = "bet_created"
	EventTypeBetStarted        EventType = "bet_started"
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypeBetCompleted      EventType = "bet_completed"
	EventTypeBetCancelled      EventType = "bet_cancelled"
	EventTypeOfferCreated      EventType = "offer_created"
	EventTypeOfferAccepted     EventType = "offer_accepted"
	EventTypeOfferCancelled    EventType = "offer_cancelled"
	EventTypeDisputeRaised     EventType = "dispute_raised"
	EventTypeDisputeResolved   EventType = "dispute_resolved"
	EventTypeWinningsClaimable EventType = "winnings_claimable"
	EventTypeWinningsClaimed   EventType = "winnings_claimed"
)

// AllEventTypes lists every event the engine emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeBetCreated,
		EventTypeBetStarted,
		EventTypeBetPlaced,
		EventTypeBetCompleted,
		EventTypeBetCancelled,
		EventTypeOfferCreated,
		EventTypeOfferAccepted,
		EventTypeOfferCancelled,
		EventTypeDisputeRaised,
		EventTypeDisputeResolved,
		EventTypeWinningsClaimable,
		EventTypeWinningsClaimed,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetCreatedEvent represents a new bet opening for stakes
type BetCreatedEvent struct {
	BetID     int64  `json:"bet_id"`
	CreatorID int64  `json:"creator_id"`
	MatchID   string `json:"match_id"`
}

func (e BetCreatedEvent) Type() EventType {
	return EventTypeBetCreated
}

// BetStartedEvent represents a bet moving to in progress
type BetStartedEvent struct {
	BetID   int64 `json:"bet_id"`
	ActorID int64 `json:"actor_id"`
}

func (e BetStartedEvent) Type() EventType {
	return EventTypeBetStarted
}

// BetPlacedEvent represents a pooled stake
type BetPlacedEvent struct {
	BetID      int64           `json:"bet_id"`
	UserID     int64           `json:"user_id"`
	Prediction string          `json:"prediction"`
	Amount     decimal.Decimal `json:"amount"`
	TotalPool  decimal.Decimal `json:"total_pool"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetCompletedEvent represents a declared winner and a computed settlement
type BetCompletedEvent struct {
	BetID       int64           `json:"bet_id"`
	Winner      string          `json:"winner"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	FeeResidual decimal.Decimal `json:"fee_residual"`
	Redeclared  bool            `json:"redeclared"`
}

func (e BetCompletedEvent) Type() EventType {
	return EventTypeBetCompleted
}

// BetCancelledEvent represents a cancelled bet whose escrow was refunded
type BetCancelledEvent struct {
	BetID         int64           `json:"bet_id"`
	ActorID       int64           `json:"actor_id"`
	Reason        string          `json:"reason"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
}

func (e BetCancelledEvent) Type() EventType {
	return EventTypeBetCancelled
}

// OfferCreatedEvent represents a new custom-odds offer on the book
type OfferCreatedEvent struct {
	BetID      int64           `json:"bet_id"`
	OfferID    int64           `json:"offer_id"`
	CreatorID  int64           `json:"creator_id"`
	Prediction string          `json:"prediction"`
	Stake      decimal.Decimal `json:"stake"`
	Odds       decimal.Decimal `json:"odds"`
}

func (e OfferCreatedEvent) Type() EventType {
	return EventTypeOfferCreated
}

// OfferAcceptedEvent represents a full or partial match of an offer
type OfferAcceptedEvent struct {
	BetID        int64           `json:"bet_id"`
	OfferID      int64           `json:"offer_id"`
	AcceptanceID int64           `json:"acceptance_id"`
	CreatorID    int64           `json:"creator_id"`
	AcceptorID   int64           `json:"acceptor_id"`
	AcceptAmount decimal.Decimal `json:"accept_amount"`
	CounterStake decimal.Decimal `json:"counter_stake"`
	Remaining    decimal.Decimal `json:"remaining"`
}

func (e OfferAcceptedEvent) Type() EventType {
	return EventTypeOfferAccepted
}

// OfferCancelledEvent represents an offer withdrawn by its creator
type OfferCancelledEvent struct {
	BetID     int64           `json:"bet_id"`
	OfferID   int64           `json:"offer_id"`
	CreatorID int64           `json:"creator_id"`
	Refunded  decimal.Decimal `json:"refunded"`
}

func (e OfferCancelledEvent) Type() EventType {
	return EventTypeOfferCancelled
}

// DisputeRaisedEvent represents a bet flagged for review
type DisputeRaisedEvent struct {
	BetID   int64  `json:"bet_id"`
	ActorID int64  `json:"actor_id"`
	Reason  string `json:"reason"`
}

func (e DisputeRaisedEvent) Type() EventType {
	return EventTypeDisputeRaised
}

// DisputeResolvedEvent represents an administrative dispute resolution
type DisputeResolvedEvent struct {
	BetID      int64  `json:"bet_id"`
	ActorID    int64  `json:"actor_id"`
	Resolution string `json:"resolution"`
	Winner     string `json:"winner,omitempty"`
	Reason     string `json:"reason"`
}

func (e DisputeResolvedEvent) Type() EventType {
	return EventTypeDisputeResolved
}

// WinningsClaimableEvent tells a user a positive payout awaits a claim
type WinningsClaimableEvent struct {
	BetID  int64           `json:"bet_id"`
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

func (e WinningsClaimableEvent) Type() EventType {
	return EventTypeWinningsClaimable
}

// WinningsClaimedEvent represents a payout credited to the user's ledger account
type WinningsClaimedEvent struct {
	BetID  int64           `json:"bet_id"`
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

func (e WinningsClaimedEvent) Type() EventType {
	return EventTypeWinningsClaimed
}
