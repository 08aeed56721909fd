package services

import (
	"context"
	"maps"
	"slices"
	"strings"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type betService struct {
	*Engine
	calculator *SettlementCalculator
}

// NewBetService creates a new bet lifecycle service
func NewBetService(engine *Engine) interfaces.BetService {
	return &betService{
		Engine:     engine,
		calculator: NewSettlementCalculator(engine.settings.MoneyScale),
	}
}

// CreateBet opens a new bet owned by the caller
func (s *betService) CreateBet(ctx context.Context, caller entities.Caller, params entities.BetParams) (*entities.Bet, error) {
	if err := params.Validate(s.settings.MoneyScale); err != nil {
		return nil, err
	}

	bet := entities.NewBet(caller.UserID, params, s.settings.FeeRate, s.settings.AllowOffersInProgress, s.now())
	err := s.withUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		if err := uow.BetRepository().Create(ctx, bet); err != nil {
			return wrapInternal(err, "failed to create bet")
		}
		if err := uow.EventBus().Publish(events.BetCreatedEvent{
			BetID:     bet.ID,
			CreatorID: bet.CreatorID,
			MatchID:   bet.Contest.MatchID,
		}); err != nil {
			log.WithError(err).Error("Failed to queue bet created event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":     bet.ID,
		"creatorID": bet.CreatorID,
		"matchID":   bet.Contest.MatchID,
		"feeRate":   bet.FeeRate.String(),
	}).Info("Bet created")
	return bet, nil
}

// GetBet retrieves a bet by ID
func (s *betService) GetBet(ctx context.Context, betID int64) (*entities.Bet, error) {
	var bet *entities.Bet
	err := s.read(ctx, func(uow interfaces.UnitOfWork) error {
		found, err := uow.BetRepository().GetByID(ctx, betID)
		if err != nil {
			return wrapInternal(err, "failed to get bet %d", betID)
		}
		if found == nil {
			return apperrors.NotFound("bet %d not found", betID)
		}
		bet = found
		return nil
	})
	return bet, err
}

// GetBetsByMatch returns all bets on an external match
func (s *betService) GetBetsByMatch(ctx context.Context, matchID string) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	err := s.read(ctx, func(uow interfaces.UnitOfWork) error {
		found, err := uow.BetRepository().GetByMatchID(ctx, matchID)
		if err != nil {
			return wrapInternal(err, "failed to get bets for match %s", matchID)
		}
		bets = found
		return nil
	})
	return bets, err
}

// StartBet moves an open bet to in progress
func (s *betService) StartBet(ctx context.Context, caller entities.Caller, betID int64) (*entities.Bet, error) {
	var result *entities.Bet
	err := s.withBet(ctx, "start_bet", betID, func(tx *betTx) error {
		bet := tx.bet()
		if !caller.IsPrivileged() && caller.UserID != bet.CreatorID {
			return apperrors.PermissionDenied("only the creator or an administrator can start bet %d", betID)
		}
		if err := bet.Start(tx.now); err != nil {
			return err
		}
		if err := tx.saveBet(); err != nil {
			return err
		}
		if caller.IsPrivileged() && caller.UserID != bet.CreatorID {
			if err := tx.audit(caller, entities.AuditActionStart, "forced start"); err != nil {
				return err
			}
		}
		tx.publish(events.BetStartedEvent{BetID: bet.ID, ActorID: caller.UserID})
		result = bet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeclareWinner completes an in-progress bet and computes every payout
func (s *betService) DeclareWinner(ctx context.Context, caller entities.Caller, betID int64, winner entities.Winner) (*entities.Bet, error) {
	if !caller.IsPrivileged() {
		return nil, apperrors.PermissionDenied("only an administrator can declare a winner")
	}
	if !winner.IsDeclarable() {
		return nil, apperrors.Validation("winner %q is not valid", winner)
	}

	var result *entities.Bet
	var settlement *Settlement
	err := s.withBet(ctx, "declare_winner", betID, func(tx *betTx) error {
		if err := tx.bet().Complete(winner, tx.now); err != nil {
			return err
		}
		applied, err := settle(tx, s.calculator, winner)
		if err != nil {
			return err
		}
		if err := tx.audit(caller, entities.AuditActionDeclareWinner, "winner "+string(winner)); err != nil {
			return err
		}
		publishSettlement(tx, applied, false)
		result, settlement = tx.bet(), applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":       betID,
		"winner":      winner,
		"totalPaid":   settlement.TotalPaid.String(),
		"feeResidual": settlement.FeeResidual.String(),
		"actorID":     caller.UserID,
	}).Info("Bet settled")
	return result, nil
}

// CancelBet cancels the bet and refunds all escrow.
// The creator may only cancel an open bet nobody has staked on.
func (s *betService) CancelBet(ctx context.Context, caller entities.Caller, betID int64, reason string) (*entities.Bet, error) {
	if caller.IsPrivileged() {
		if err := validateReason(reason); err != nil {
			return nil, err
		}
	}

	var result *entities.Bet
	var refunded decimal.Decimal
	err := s.withBet(ctx, "cancel_bet", betID, func(tx *betTx) error {
		bet := tx.bet()
		if !caller.IsPrivileged() {
			if caller.UserID != bet.CreatorID {
				return apperrors.PermissionDenied("only the creator or an administrator can cancel bet %d", betID)
			}
			if !bet.IsOpen() {
				return apperrors.InvalidTransition("bet %d can only be cancelled by its creator while open", betID)
			}
			if tx.detail.HasActivity() {
				return apperrors.PermissionDenied("bet %d has stakes, only an administrator can cancel it", betID)
			}
		}

		if err := bet.Cancel(tx.now); err != nil {
			return err
		}
		var err error
		refunded, err = refundAll(tx, s.calculator)
		if err != nil {
			return err
		}
		if err := tx.saveBet(); err != nil {
			return err
		}
		if caller.IsPrivileged() {
			if err := tx.audit(caller, entities.AuditActionCancel, reason); err != nil {
				return err
			}
		}
		tx.publish(events.BetCancelledEvent{
			BetID:         bet.ID,
			ActorID:       caller.UserID,
			Reason:        reason,
			TotalRefunded: refunded,
		})
		result = bet
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":    betID,
		"actorID":  caller.UserID,
		"reason":   reason,
		"refunded": refunded.String(),
	}).Info("Bet cancelled")
	return result, nil
}

// settle computes payouts for winner, records them on every unclaimed
// position and refunds unmatched offer remainders
func settle(tx *betTx, calculator *SettlementCalculator, winner entities.Winner) (*Settlement, error) {
	detail := tx.detail
	settlement := calculator.Settle(detail, winner)

	for _, p := range detail.Participations {
		if p.Claimed {
			continue
		}
		p.SetPayout(settlement.Participations[p.ID])
		if err := tx.saveParticipation(p); err != nil {
			return nil, err
		}
	}

	for _, a := range detail.Acceptances {
		payout := settlement.Acceptances[a.ID]
		if !a.CreatorClaimed {
			creator := payout.Creator
			a.CreatorPayout = &creator
		}
		if !a.AcceptorClaimed {
			acceptor := payout.Acceptor
			a.AcceptorPayout = &acceptor
		}
		if err := tx.saveAcceptance(a); err != nil {
			return nil, err
		}
	}

	if err := withdrawOffers(tx); err != nil {
		return nil, err
	}
	if err := tx.saveBet(); err != nil {
		return nil, err
	}
	return settlement, nil
}

// withdrawOffers takes every unmatched remainder off the book and refunds it
func withdrawOffers(tx *betTx) error {
	for _, o := range tx.detail.Offers {
		if !o.IsAcceptable() {
			continue
		}
		refund, err := o.Withdraw(tx.now)
		if err != nil {
			return err
		}
		if err := tx.credit(o.CreatorID, refund); err != nil {
			return err
		}
		if err := tx.saveOffer(o); err != nil {
			return err
		}
	}
	return nil
}

// refundAll returns every position's escrow at face value and marks it paid.
// Positions already paid by a claim are skipped.
func refundAll(tx *betTx, calculator *SettlementCalculator) (decimal.Decimal, error) {
	detail := tx.detail
	refunds := calculator.Refunds(detail)
	total := decimal.Zero

	for _, p := range detail.Participations {
		if p.Claimed {
			continue
		}
		amount := refunds.Participations[p.ID]
		if err := tx.credit(p.UserID, amount); err != nil {
			return decimal.Zero, err
		}
		p.MarkPaid(amount, tx.now)
		if err := tx.saveParticipation(p); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}

	for _, a := range detail.Acceptances {
		offer := detail.Offer(a.OfferID)
		payout := refunds.Acceptances[a.ID]
		if !a.CreatorClaimed && offer != nil {
			if err := tx.credit(offer.CreatorID, payout.Creator); err != nil {
				return decimal.Zero, err
			}
			creator := payout.Creator
			a.CreatorPayout = &creator
			a.CreatorClaimed = true
			total = total.Add(creator)
		}
		if !a.AcceptorClaimed {
			if err := tx.credit(a.AcceptorID, payout.Acceptor); err != nil {
				return decimal.Zero, err
			}
			acceptor := payout.Acceptor
			a.AcceptorPayout = &acceptor
			a.AcceptorClaimed = true
			total = total.Add(acceptor)
		}
		if err := tx.saveAcceptance(a); err != nil {
			return decimal.Zero, err
		}
	}

	for _, o := range detail.Offers {
		if o.IsAcceptable() {
			total = total.Add(o.RemainingAmount)
		}
	}
	if err := withdrawOffers(tx); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// publishSettlement queues the completion event and one claimable event per winning user
func publishSettlement(tx *betTx, settlement *Settlement, redeclared bool) {
	bet := tx.bet()
	tx.publish(events.BetCompletedEvent{
		BetID:       bet.ID,
		Winner:      string(settlement.Winner),
		TotalPaid:   settlement.TotalPaid,
		FeeResidual: settlement.FeeResidual,
		Redeclared:  redeclared,
	})

	owed := tx.detail.UnclaimedByUser()
	for _, userID := range sortedUserIDs(owed) {
		if amount := owed[userID]; amount.IsPositive() {
			tx.publish(events.WinningsClaimableEvent{BetID: bet.ID, UserID: userID, Amount: amount})
		}
	}
}

// validateReason requires a non-empty reason for administrative actions
func validateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.Validation("a reason is required")
	}
	return nil
}

func sortedUserIDs(m map[int64]decimal.Decimal) []int64 {
	return slices.Sorted(maps.Keys(m))
}
