package interfaces

import (
	"context"

	"gambler/wagering/domain/entities"

	"github.com/shopspring/decimal"
)

// BetService defines the bet lifecycle operations
type BetService interface {
	// CreateBet opens a new bet owned by the caller
	CreateBet(ctx context.Context, caller entities.Caller, params entities.BetParams) (*entities.Bet, error)

	// GetBet retrieves a bet by ID
	GetBet(ctx context.Context, betID int64) (*entities.Bet, error)

	// StartBet stops pooled staking, allowed for the creator or an administrator
	StartBet(ctx context.Context, caller entities.Caller, betID int64) (*entities.Bet, error)

	// DeclareWinner completes the bet and computes every payout
	DeclareWinner(ctx context.Context, caller entities.Caller, betID int64, winner entities.Winner) (*entities.Bet, error)

	// CancelBet cancels the bet and refunds all escrow
	CancelBet(ctx context.Context, caller entities.Caller, betID int64, reason string) (*entities.Bet, error)

	// GetBetsByMatch returns all bets on an external match
	GetBetsByMatch(ctx context.Context, matchID string) ([]*entities.Bet, error)
}

// PoolService defines pooled staking operations
type PoolService interface {
	// PlaceStake debits the caller and adds the stake to a side pool
	PlaceStake(ctx context.Context, caller entities.Caller, betID int64, prediction entities.Side, amount decimal.Decimal) (*entities.Participation, error)

	// GetMarket returns the pools and live odds of a bet
	GetMarket(ctx context.Context, betID int64) (*entities.Market, error)
}

// OrderBookService defines custom-odds offer operations
type OrderBookService interface {
	// CreateOffer escrows the caller's stake and posts it at the requested odds
	CreateOffer(ctx context.Context, caller entities.Caller, betID int64, prediction entities.Side, stake, odds decimal.Decimal) (*entities.Offer, error)

	// AcceptOffer matches amount of an offer, escrowing the counter-stake
	AcceptOffer(ctx context.Context, caller entities.Caller, betID, offerID int64, amount decimal.Decimal) (*entities.Acceptance, error)

	// CancelOffer withdraws the unmatched remainder of the caller's offer
	CancelOffer(ctx context.Context, caller entities.Caller, betID, offerID int64) (*entities.Offer, error)

	// ListOffers returns the book of a bet
	ListOffers(ctx context.Context, betID int64) ([]*entities.Offer, error)
}

// ClaimService defines payout collection
type ClaimService interface {
	// Claim credits every unclaimed payout the caller holds on the bet
	Claim(ctx context.Context, caller entities.Caller, betID int64) (decimal.Decimal, error)
}

// DisputeService defines the dispute workflow
type DisputeService interface {
	// RaiseDispute flags the bet and holds its payouts
	RaiseDispute(ctx context.Context, caller entities.Caller, betID int64, reason string) (*entities.Bet, error)

	// ResolveDispute redeclares or cancels a disputed bet
	ResolveDispute(ctx context.Context, caller entities.Caller, betID int64, resolution entities.DisputeResolution) (*entities.Bet, error)

	// GetAuditTrail returns the forced actions recorded on a bet
	GetAuditTrail(ctx context.Context, betID int64) ([]*entities.AuditEntry, error)
}
