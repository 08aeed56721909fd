package entities

import (
	"strings"
	"time"

	"gambler/wagering/domain/apperrors"

	"github.com/shopspring/decimal"
)

// BetParams holds the caller-supplied fields of a new bet
type BetParams struct {
	Contest     ContestRef
	Contestant1 Contestant
	Contestant2 Contestant
	MinimumBet  decimal.Decimal
	MaximumBet  decimal.Decimal
}

// Validate checks limits, contestants and contest ids
func (p BetParams) Validate(scale int32) error {
	if strings.TrimSpace(p.Contest.TournamentID) == "" || strings.TrimSpace(p.Contest.EventID) == "" || strings.TrimSpace(p.Contest.MatchID) == "" {
		return apperrors.Validation("tournament, event and match ids are required")
	}
	if strings.TrimSpace(p.Contestant1.ID) == "" || strings.TrimSpace(p.Contestant2.ID) == "" {
		return apperrors.Validation("both contestants are required")
	}
	if p.Contestant1.ID == p.Contestant2.ID {
		return apperrors.Validation("contestants must be distinct")
	}
	if !p.MinimumBet.IsPositive() {
		return apperrors.Validation("minimum bet must be positive")
	}
	if !p.MaximumBet.GreaterThan(p.MinimumBet) {
		return apperrors.Validation("maximum bet must be greater than minimum bet")
	}
	if err := ValidateScale(p.MinimumBet, scale); err != nil {
		return err
	}
	return ValidateScale(p.MaximumBet, scale)
}

// NewBet builds an open bet with empty pools
func NewBet(creatorID int64, params BetParams, feeRate decimal.Decimal, allowOffersInProgress bool, now time.Time) *Bet {
	return &Bet{
		Contest:               params.Contest,
		Contestant1:           params.Contestant1,
		Contestant2:           params.Contestant2,
		Status:                BetStatusOpen,
		Winner:                WinnerNone,
		Contestant1Pool:       decimal.Zero,
		Contestant2Pool:       decimal.Zero,
		TotalPool:             decimal.Zero,
		MinimumBet:            params.MinimumBet,
		MaximumBet:            params.MaximumBet,
		FeeRate:               feeRate,
		AllowOffersInProgress: allowOffersInProgress,
		CreatorID:             creatorID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
