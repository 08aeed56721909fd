package testutil

import (
	"time"

	"gambler/wagering/domain/entities"

	"github.com/shopspring/decimal"
)

// CreateTestBet creates an open bet on matchID with sensible defaults
func CreateTestBet(creatorID int64, matchID string) *entities.Bet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return entities.NewBet(creatorID, TestBetParams(matchID), decimal.RequireFromString("0.01"), false, now)
}

// TestBetParams returns creation parameters for a bet on matchID
func TestBetParams(matchID string) entities.BetParams {
	return entities.BetParams{
		Contest: entities.ContestRef{
			TournamentID:   "tournament-1",
			TournamentName: "Test Tournament",
			EventID:        "event-1",
			EventName:      "Test Event",
			PhaseID:        "phase-1",
			MatchID:        matchID,
		},
		Contestant1: entities.Contestant{ID: "c-1", Name: "Alpha"},
		Contestant2: entities.Contestant{ID: "c-2", Name: "Bravo"},
		MinimumBet:  decimal.RequireFromString("0.001"),
		MaximumBet:  decimal.NewFromInt(1),
	}
}

// CreateTestParticipation creates a pooled stake
func CreateTestParticipation(betID, userID int64, side entities.Side, amount string) *entities.Participation {
	return &entities.Participation{
		BetID:      betID,
		UserID:     userID,
		Prediction: side,
		Amount:     decimal.RequireFromString(amount),
		CreatedAt:  time.Now().UTC(),
	}
}

// CreateTestOffer creates an open offer
func CreateTestOffer(betID, creatorID int64, side entities.Side, stake, odds string) *entities.Offer {
	return entities.NewOffer(betID, creatorID, side, decimal.RequireFromString(stake), decimal.RequireFromString(odds), time.Now().UTC())
}
