package entities

import (
	"time"

	"gambler/wagering/domain/apperrors"

	"github.com/shopspring/decimal"
)

// Side identifies one of the two contestants of a bet
type Side string

const (
	SideContestant1 Side = "contestant1"
	SideContestant2 Side = "contestant2"
)

// IsValid reports whether the side names one of the two contestants
func (s Side) IsValid() bool {
	return s == SideContestant1 || s == SideContestant2
}

// Opposite returns the other contestant
func (s Side) Opposite() Side {
	if s == SideContestant1 {
		return SideContestant2
	}
	return SideContestant1
}

// Winner is the declared outcome of a bet
type Winner string

const (
	WinnerNone        Winner = "none"
	WinnerContestant1 Winner = "contestant1"
	WinnerContestant2 Winner = "contestant2"
	WinnerVoid        Winner = "void"
)

// IsDeclarable reports whether the winner can be passed to a declaration
func (w Winner) IsDeclarable() bool {
	return w == WinnerContestant1 || w == WinnerContestant2 || w == WinnerVoid
}

// Side returns the winning side, false for void or none
func (w Winner) Side() (Side, bool) {
	switch w {
	case WinnerContestant1:
		return SideContestant1, true
	case WinnerContestant2:
		return SideContestant2, true
	default:
		return "", false
	}
}

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusOpen       BetStatus = "open"
	BetStatusInProgress BetStatus = "in_progress"
	BetStatusCompleted  BetStatus = "completed"
	BetStatusCancelled  BetStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transition is allowed
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusCompleted || s == BetStatusCancelled
}

// ContestRef points to the external contest a bet is about
type ContestRef struct {
	TournamentID   string
	TournamentName string
	EventID        string
	EventName      string
	PhaseID        string
	MatchID        string
}

// Contestant is one of the two competitors of a contest
type Contestant struct {
	ID   string
	Name string
}

// Bet is the aggregate root of a two-sided wager
type Bet struct {
	ID                    int64
	Contest               ContestRef
	Contestant1           Contestant
	Contestant2           Contestant
	Status                BetStatus
	Winner                Winner
	Contestant1Pool       decimal.Decimal
	Contestant2Pool       decimal.Decimal
	TotalPool             decimal.Decimal
	MinimumBet            decimal.Decimal
	MaximumBet            decimal.Decimal
	FeeRate               decimal.Decimal // locked at creation
	AllowOffersInProgress bool            // locked at creation
	CreatorID             int64
	Disputed              bool
	DisputeReason         string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ResolvedAt            *time.Time
}

// IsOpen checks if the bet still takes pooled stakes
func (b *Bet) IsOpen() bool {
	return b.Status == BetStatusOpen
}

// IsCompleted checks if a winner has been declared
func (b *Bet) IsCompleted() bool {
	return b.Status == BetStatusCompleted
}

// CanAcceptStakes checks if pooled stakes can still be placed
func (b *Bet) CanAcceptStakes() bool {
	return b.IsOpen()
}

// CanAcceptOffers checks if order-book offers can be posted or accepted
func (b *Bet) CanAcceptOffers() bool {
	if b.Disputed {
		return false
	}
	if b.Status == BetStatusOpen {
		return true
	}
	return b.Status == BetStatusInProgress && b.AllowOffersInProgress
}

// ValidateStakeAmount checks amount against the bet's limits
func (b *Bet) ValidateStakeAmount(amount decimal.Decimal) error {
	if amount.LessThan(b.MinimumBet) {
		return apperrors.Validation("stake %s is below the minimum of %s", amount, b.MinimumBet)
	}
	if amount.GreaterThan(b.MaximumBet) {
		return apperrors.Validation("stake %s is above the maximum of %s", amount, b.MaximumBet)
	}
	return nil
}

// SidePool returns the current pool of a side
func (b *Bet) SidePool(side Side) decimal.Decimal {
	if side == SideContestant1 {
		return b.Contestant1Pool
	}
	return b.Contestant2Pool
}

// AddToPool increments a side pool and the total pool together
func (b *Bet) AddToPool(side Side, amount decimal.Decimal) {
	if side == SideContestant1 {
		b.Contestant1Pool = b.Contestant1Pool.Add(amount)
	} else {
		b.Contestant2Pool = b.Contestant2Pool.Add(amount)
	}
	b.TotalPool = b.Contestant1Pool.Add(b.Contestant2Pool)
}

// Odds returns totalPool/sidePool, false while the side has no stake
func (b *Bet) Odds(side Side) (decimal.Decimal, bool) {
	sidePool := b.SidePool(side)
	if !sidePool.IsPositive() {
		return decimal.Zero, false
	}
	return b.TotalPool.Div(sidePool), true
}

// PoolBalanced checks the pool invariant
func (b *Bet) PoolBalanced() bool {
	return b.TotalPool.Equal(b.Contestant1Pool.Add(b.Contestant2Pool))
}

// Start moves an open bet to in progress
func (b *Bet) Start(now time.Time) error {
	if b.Status != BetStatusOpen {
		return apperrors.InvalidTransition("bet %d cannot start from %s", b.ID, b.Status)
	}
	b.Status = BetStatusInProgress
	b.UpdatedAt = now
	return nil
}

// Complete declares the winner of an in-progress bet
func (b *Bet) Complete(winner Winner, now time.Time) error {
	if !winner.IsDeclarable() {
		return apperrors.Validation("winner %q is not valid", winner)
	}
	if b.Status != BetStatusInProgress {
		return apperrors.InvalidTransition("bet %d cannot complete from %s", b.ID, b.Status)
	}
	if b.Disputed {
		return apperrors.InvalidTransition("bet %d is disputed and must be resolved", b.ID)
	}
	b.Status = BetStatusCompleted
	b.Winner = winner
	b.ResolvedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel cancels a bet that has not reached a terminal state
func (b *Bet) Cancel(now time.Time) error {
	if b.Status.IsTerminal() {
		return apperrors.InvalidTransition("bet %d cannot be cancelled from %s", b.ID, b.Status)
	}
	b.Status = BetStatusCancelled
	b.Disputed = false
	b.ResolvedAt = &now
	b.UpdatedAt = now
	return nil
}

// RaiseDispute flags an in-progress or completed bet as disputed
func (b *Bet) RaiseDispute(reason string, now time.Time) error {
	if b.Status != BetStatusInProgress && b.Status != BetStatusCompleted {
		return apperrors.InvalidTransition("bet %d cannot be disputed from %s", b.ID, b.Status)
	}
	if b.Disputed {
		return apperrors.InvalidTransition("bet %d is already disputed", b.ID)
	}
	b.Disputed = true
	b.DisputeReason = reason
	b.UpdatedAt = now
	return nil
}

// Redeclare settles a disputed bet with the given winner and clears the dispute
func (b *Bet) Redeclare(winner Winner, now time.Time) error {
	if !winner.IsDeclarable() {
		return apperrors.Validation("winner %q is not valid", winner)
	}
	if b.Status == BetStatusCancelled {
		return apperrors.InvalidTransition("bet %d is cancelled", b.ID)
	}
	if !b.Disputed {
		return apperrors.InvalidTransition("bet %d is not disputed", b.ID)
	}
	b.Status = BetStatusCompleted
	b.Winner = winner
	b.Disputed = false
	b.ResolvedAt = &now
	b.UpdatedAt = now
	return nil
}

// VoidDispute cancels a disputed bet and clears the dispute
func (b *Bet) VoidDispute(now time.Time) error {
	if b.Status == BetStatusCancelled {
		return apperrors.InvalidTransition("bet %d is cancelled", b.ID)
	}
	if !b.Disputed {
		return apperrors.InvalidTransition("bet %d is not disputed", b.ID)
	}
	b.Status = BetStatusCancelled
	b.Winner = WinnerNone
	b.Disputed = false
	b.ResolvedAt = &now
	b.UpdatedAt = now
	return nil
}
