package services

import (
	"context"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type disputeService struct {
	*Engine
	calculator *SettlementCalculator
}

// NewDisputeService creates a new dispute workflow service
func NewDisputeService(engine *Engine) interfaces.DisputeService {
	return &disputeService{
		Engine:     engine,
		calculator: NewSettlementCalculator(engine.settings.MoneyScale),
	}
}

// RaiseDispute flags the bet and holds its payouts until an administrator resolves it.
// Administrators and anyone holding a position may raise a dispute before any claim is paid.
func (s *disputeService) RaiseDispute(ctx context.Context, caller entities.Caller, betID int64, reason string) (*entities.Bet, error) {
	if err := validateReason(reason); err != nil {
		return nil, err
	}

	var result *entities.Bet
	err := s.withBet(ctx, "raise_dispute", betID, func(tx *betTx) error {
		if !caller.IsPrivileged() && !tx.detail.IsParticipant(caller.UserID) {
			return apperrors.PermissionDenied("only participants or administrators can dispute bet %d", betID)
		}
		if tx.detail.HasClaims() {
			return apperrors.InvalidTransition("bet %d has paid claims and can no longer be disputed", betID)
		}
		if err := tx.bet().RaiseDispute(reason, tx.now); err != nil {
			return err
		}
		if err := tx.saveBet(); err != nil {
			return err
		}
		if err := tx.audit(caller, entities.AuditActionRaiseDispute, reason); err != nil {
			return err
		}
		tx.publish(events.DisputeRaisedEvent{BetID: betID, ActorID: caller.UserID, Reason: reason})
		result = tx.bet()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":   betID,
		"actorID": caller.UserID,
		"reason":  reason,
	}).Warn("Dispute raised")
	return result, nil
}

// ResolveDispute redeclares or cancels a disputed bet.
// Positions already paid keep their payout; everything else is recomputed.
func (s *disputeService) ResolveDispute(ctx context.Context, caller entities.Caller, betID int64, resolution entities.DisputeResolution) (*entities.Bet, error) {
	if !caller.IsPrivileged() {
		return nil, apperrors.PermissionDenied("only an administrator can resolve a dispute")
	}
	if err := validateReason(resolution.Reason); err != nil {
		return nil, err
	}
	switch resolution.Action {
	case entities.ResolutionRedeclare:
		if !resolution.Winner.IsDeclarable() {
			return nil, apperrors.Validation("winner %q is not valid", resolution.Winner)
		}
	case entities.ResolutionCancel:
	default:
		return nil, apperrors.Validation("resolution %q is not valid", resolution.Action)
	}

	var result *entities.Bet
	err := s.withBet(ctx, "resolve_dispute", betID, func(tx *betTx) error {
		bet := tx.bet()
		if bet.Status == entities.BetStatusCancelled {
			return apperrors.InvalidTransition("bet %d is cancelled", betID)
		}
		if !bet.Disputed {
			return apperrors.InvalidTransition("bet %d is not disputed", betID)
		}

		switch resolution.Action {
		case entities.ResolutionRedeclare:
			if err := bet.Redeclare(resolution.Winner, tx.now); err != nil {
				return err
			}
			settlement, err := settle(tx, s.calculator, resolution.Winner)
			if err != nil {
				return err
			}
			if err := tx.audit(caller, entities.AuditActionRedeclareWinner, resolution.Reason); err != nil {
				return err
			}
			tx.publish(disputeResolved(caller, bet, resolution))
			publishSettlement(tx, settlement, true)

		case entities.ResolutionCancel:
			if err := bet.VoidDispute(tx.now); err != nil {
				return err
			}
			refunded, err := refundAll(tx, s.calculator)
			if err != nil {
				return err
			}
			if err := tx.saveBet(); err != nil {
				return err
			}
			if err := tx.audit(caller, entities.AuditActionCancelByDispute, resolution.Reason); err != nil {
				return err
			}
			tx.publish(disputeResolved(caller, bet, resolution))
			tx.publish(events.BetCancelledEvent{
				BetID:         betID,
				ActorID:       caller.UserID,
				Reason:        resolution.Reason,
				TotalRefunded: refunded,
			})
		}

		result = bet
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":      betID,
		"actorID":    caller.UserID,
		"resolution": resolution.Action,
		"winner":     resolution.Winner,
	}).Info("Dispute resolved")
	return result, nil
}

// GetAuditTrail returns the forced actions recorded on a bet
func (s *disputeService) GetAuditTrail(ctx context.Context, betID int64) ([]*entities.AuditEntry, error) {
	var entries []*entities.AuditEntry
	err := s.read(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = uow.AuditRepository().GetByBet(ctx, betID)
		if err != nil {
			return wrapInternal(err, "failed to get audit trail for bet %d", betID)
		}
		return nil
	})
	return entries, err
}

func disputeResolved(caller entities.Caller, bet *entities.Bet, resolution entities.DisputeResolution) events.DisputeResolvedEvent {
	ev := events.DisputeResolvedEvent{
		BetID:      bet.ID,
		ActorID:    caller.UserID,
		Resolution: string(resolution.Action),
		Reason:     resolution.Reason,
	}
	if resolution.Action == entities.ResolutionRedeclare {
		ev.Winner = string(resolution.Winner)
	}
	return ev
}
