package services

import (
	"context"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type claimService struct {
	*Engine
}

// NewClaimService creates a new payout claim service
func NewClaimService(engine *Engine) interfaces.ClaimService {
	return &claimService{Engine: engine}
}

// Claim credits every unclaimed payout the caller holds on the bet.
// The claimed flags are committed before the ledger credit; a failed credit
// reverts them in a separate unit of work.
func (s *claimService) Claim(ctx context.Context, caller entities.Caller, betID int64) (decimal.Decimal, error) {
	var amount decimal.Decimal
	var record entities.ClaimRecord

	err := s.withBet(ctx, "claim", betID, func(tx *betTx) error {
		bet := tx.bet()
		if !bet.IsCompleted() {
			return apperrors.NotEligible("bet %d is %s", betID, bet.Status)
		}
		if bet.Disputed {
			return apperrors.NotEligible("bet %d is disputed, payouts are on hold", betID)
		}

		holdings := tx.detail.HoldingsOf(caller.UserID)
		if holdings.IsEmpty() {
			return apperrors.NotEligible("user %d has no position on bet %d", caller.UserID, betID)
		}
		if holdings.AllClaimed() {
			return apperrors.AlreadyClaimed("winnings on bet %d already claimed", betID)
		}
		total := holdings.UnclaimedTotal()
		if !total.IsPositive() {
			return apperrors.NoWinnings("no winnings on bet %d", betID)
		}

		record = holdings.MarkClaimed(tx.now)
		if err := saveClaimRecord(tx, record); err != nil {
			return err
		}
		amount = total
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.ledger.Credit(ctx, caller.UserID, amount); err != nil {
		s.revertClaim(ctx, betID, caller.UserID, amount, record)
		return decimal.Zero, wrapInternal(err, "failed to credit winnings of bet %d", betID)
	}

	s.publishAfter(ctx, events.WinningsClaimedEvent{BetID: betID, UserID: caller.UserID, Amount: amount})

	log.WithFields(log.Fields{
		"betID":  betID,
		"userID": caller.UserID,
		"amount": amount.String(),
	}).Info("Winnings claimed")
	return amount, nil
}

// revertClaim clears the claimed flags of a claim whose credit failed
func (s *claimService) revertClaim(ctx context.Context, betID, userID int64, amount decimal.Decimal, record entities.ClaimRecord) {
	fields := log.Fields{
		"betID":  betID,
		"userID": userID,
		"amount": amount.String(),
	}

	err := s.withBet(context.WithoutCancel(ctx), "revert_claim", betID, func(tx *betTx) error {
		tx.detail.Revert(record)
		return saveClaimRecord(tx, record)
	})
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Ledger credit failed and claim could not be reverted, manual reconciliation required")
		return
	}
	log.WithFields(fields).Warn("Ledger credit failed, claim reverted")
}

// saveClaimRecord persists the positions named by record
func saveClaimRecord(tx *betTx, record entities.ClaimRecord) error {
	if record.ParticipationID != 0 {
		for _, p := range tx.detail.Participations {
			if p.ID == record.ParticipationID {
				if err := tx.saveParticipation(p); err != nil {
					return err
				}
			}
		}
	}

	touched := make(map[int64]bool)
	for _, id := range record.CreatorAcceptanceIDs {
		touched[id] = true
	}
	for _, id := range record.AcceptorAcceptanceIDs {
		touched[id] = true
	}
	for _, a := range tx.detail.Acceptances {
		if touched[a.ID] {
			if err := tx.saveAcceptance(a); err != nil {
				return err
			}
		}
	}
	return nil
}
