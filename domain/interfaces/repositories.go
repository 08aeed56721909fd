package interfaces

import (
	"context"

	"gambler/wagering/domain/entities"
)

// BetRepository defines the interface for bet and participation data access
type BetRepository interface {
	// Create inserts a new bet and sets its ID
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByID retrieves a bet by its ID, nil when it does not exist
	GetByID(ctx context.Context, id int64) (*entities.Bet, error)

	// LockByID retrieves a bet and holds its row lock until the unit of work ends
	LockByID(ctx context.Context, id int64) (*entities.Bet, error)

	// GetByMatchID returns all bets on an external match
	GetByMatchID(ctx context.Context, matchID string) ([]*entities.Bet, error)

	// Update persists status, pools, winner and dispute fields
	Update(ctx context.Context, bet *entities.Bet) error

	// CreateParticipation inserts a pooled stake and sets its ID
	CreateParticipation(ctx context.Context, participation *entities.Participation) error

	// GetParticipationsByBet returns all pooled stakes on a bet
	GetParticipationsByBet(ctx context.Context, betID int64) ([]*entities.Participation, error)

	// UpdateParticipation persists payout and claim fields
	UpdateParticipation(ctx context.Context, participation *entities.Participation) error
}

// OfferRepository defines the interface for order-book data access
type OfferRepository interface {
	// Create inserts a new offer and sets its ID
	Create(ctx context.Context, offer *entities.Offer) error

	// GetByBet returns every offer posted on a bet, oldest first
	GetByBet(ctx context.Context, betID int64) ([]*entities.Offer, error)

	// Update persists remaining, refunded and status fields
	Update(ctx context.Context, offer *entities.Offer) error

	// CreateAcceptance inserts a match of an offer and sets its ID
	CreateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error

	// GetAcceptancesByBet returns every acceptance on a bet
	GetAcceptancesByBet(ctx context.Context, betID int64) ([]*entities.Acceptance, error)

	// UpdateAcceptance persists payout and claim fields
	UpdateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error
}

// AuditRepository defines the interface for the administrative audit trail
type AuditRepository interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *entities.AuditEntry) error

	// GetByBet returns the audit trail of a bet, oldest first
	GetByBet(ctx context.Context, betID int64) ([]*entities.AuditEntry, error)
}
