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

type poolService struct {
	*Engine
}

// NewPoolService creates a new pooled staking service
func NewPoolService(engine *Engine) interfaces.PoolService {
	return &poolService{Engine: engine}
}

// PlaceStake debits the caller and adds the stake to a side pool.
// Each user holds at most one participation per bet.
func (s *poolService) PlaceStake(ctx context.Context, caller entities.Caller, betID int64, prediction entities.Side, amount decimal.Decimal) (*entities.Participation, error) {
	var participation *entities.Participation
	var totalPool decimal.Decimal

	err := s.withBet(ctx, "place_stake", betID, func(tx *betTx) error {
		bet := tx.bet()
		if !bet.CanAcceptStakes() {
			return apperrors.InvalidTransition("bet %d is %s and no longer accepts stakes", betID, bet.Status)
		}
		if !prediction.IsValid() {
			return apperrors.Validation("prediction %q is not valid", prediction)
		}
		if err := entities.ValidateScale(amount, s.settings.MoneyScale); err != nil {
			return err
		}
		if err := bet.ValidateStakeAmount(amount); err != nil {
			return err
		}
		if tx.detail.ParticipationFor(caller.UserID) != nil {
			return apperrors.Validation("user %d has already staked on bet %d", caller.UserID, betID)
		}

		if err := tx.debit(caller.UserID, amount); err != nil {
			return err
		}

		p := &entities.Participation{
			BetID:      bet.ID,
			UserID:     caller.UserID,
			Prediction: prediction,
			Amount:     amount,
			CreatedAt:  tx.now,
		}
		if err := tx.uow.BetRepository().CreateParticipation(tx.ctx, p); err != nil {
			return wrapInternal(err, "failed to record participation on bet %d", betID)
		}

		bet.AddToPool(prediction, amount)
		bet.UpdatedAt = tx.now
		if err := tx.saveBet(); err != nil {
			return err
		}

		tx.publish(events.BetPlacedEvent{
			BetID:      bet.ID,
			UserID:     caller.UserID,
			Prediction: string(prediction),
			Amount:     amount,
			TotalPool:  bet.TotalPool,
		})
		participation, totalPool = p, bet.TotalPool
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":      betID,
		"userID":     caller.UserID,
		"prediction": prediction,
		"amount":     amount.String(),
		"totalPool":  totalPool.String(),
	}).Info("Stake placed")
	return participation, nil
}

// GetMarket returns the pools and live odds of a bet
func (s *poolService) GetMarket(ctx context.Context, betID int64) (*entities.Market, error) {
	var market *entities.Market
	err := s.read(ctx, func(uow interfaces.UnitOfWork) error {
		bet, err := uow.BetRepository().GetByID(ctx, betID)
		if err != nil {
			return wrapInternal(err, "failed to get bet %d", betID)
		}
		if bet == nil {
			return apperrors.NotFound("bet %d not found", betID)
		}
		market = entities.MarketOf(bet)
		return nil
	})
	return market, err
}
