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

type orderBookService struct {
	*Engine
}

// NewOrderBookService creates a new custom-odds order book service
func NewOrderBookService(engine *Engine) interfaces.OrderBookService {
	return &orderBookService{Engine: engine}
}

// CreateOffer escrows the caller's stake and posts it at the requested odds
func (s *orderBookService) CreateOffer(ctx context.Context, caller entities.Caller, betID int64, prediction entities.Side, stake, odds decimal.Decimal) (*entities.Offer, error) {
	if err := entities.ValidateOdds(odds); err != nil {
		return nil, err
	}
	if !stake.IsPositive() {
		return nil, apperrors.Validation("stake must be positive")
	}
	if !prediction.IsValid() {
		return nil, apperrors.Validation("prediction %q is not valid", prediction)
	}
	if err := entities.ValidateScale(stake, s.settings.MoneyScale); err != nil {
		return nil, err
	}

	var offer *entities.Offer
	err := s.withBet(ctx, "create_offer", betID, func(tx *betTx) error {
		bet := tx.bet()
		if !bet.CanAcceptOffers() {
			return apperrors.InvalidTransition("bet %d is not accepting offers", betID)
		}

		if err := tx.debit(caller.UserID, stake); err != nil {
			return err
		}

		o := entities.NewOffer(bet.ID, caller.UserID, prediction, stake, odds, tx.now)
		if err := tx.uow.OfferRepository().Create(tx.ctx, o); err != nil {
			return wrapInternal(err, "failed to create offer on bet %d", betID)
		}

		tx.publish(events.OfferCreatedEvent{
			BetID:      bet.ID,
			OfferID:    o.ID,
			CreatorID:  o.CreatorID,
			Prediction: string(o.Prediction),
			Stake:      o.StakeAmount,
			Odds:       o.RequestedOdds,
		})
		offer = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":     betID,
		"offerID":   offer.ID,
		"creatorID": caller.UserID,
		"stake":     stake.String(),
		"odds":      odds.String(),
	}).Info("Offer created")
	return offer, nil
}

// AcceptOffer matches amount of an offer. The acceptor escrows amount x (odds - 1).
func (s *orderBookService) AcceptOffer(ctx context.Context, caller entities.Caller, betID, offerID int64, amount decimal.Decimal) (*entities.Acceptance, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("accept amount must be positive")
	}
	if err := entities.ValidateScale(amount, s.settings.MoneyScale); err != nil {
		return nil, err
	}

	var acceptance *entities.Acceptance
	err := s.withBet(ctx, "accept_offer", betID, func(tx *betTx) error {
		bet := tx.bet()
		offer := tx.detail.Offer(offerID)
		if offer == nil {
			return apperrors.NotFound("offer %d not found on bet %d", offerID, betID)
		}
		if !bet.CanAcceptOffers() {
			return apperrors.InvalidTransition("bet %d is not accepting offers", betID)
		}
		if !offer.IsAcceptable() {
			return apperrors.InvalidTransition("offer %d is %s", offerID, offer.Status)
		}
		if offer.CreatorID == caller.UserID {
			return apperrors.Validation("cannot accept your own offer")
		}
		if amount.GreaterThan(offer.RemainingAmount) {
			return apperrors.Validation("accept amount %s exceeds remaining %s", amount, offer.RemainingAmount)
		}

		counterStake := offer.CounterStake(amount, s.settings.MoneyScale)
		if !counterStake.IsPositive() {
			return apperrors.Validation("accept amount %s is too small at odds %s", amount, offer.RequestedOdds)
		}

		if err := tx.debit(caller.UserID, counterStake); err != nil {
			return err
		}

		if err := offer.Fill(amount, tx.now); err != nil {
			return err
		}
		a := &entities.Acceptance{
			OfferID:      offer.ID,
			BetID:        bet.ID,
			AcceptorID:   caller.UserID,
			AcceptAmount: amount,
			CounterStake: counterStake,
			Odds:         offer.RequestedOdds,
			CreatedAt:    tx.now,
		}
		if err := tx.uow.OfferRepository().CreateAcceptance(tx.ctx, a); err != nil {
			return wrapInternal(err, "failed to record acceptance of offer %d", offerID)
		}
		if err := tx.saveOffer(offer); err != nil {
			return err
		}

		tx.publish(events.OfferAcceptedEvent{
			BetID:        bet.ID,
			OfferID:      offer.ID,
			AcceptanceID: a.ID,
			CreatorID:    offer.CreatorID,
			AcceptorID:   caller.UserID,
			AcceptAmount: amount,
			CounterStake: counterStake,
			Remaining:    offer.RemainingAmount,
		})
		acceptance = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":        betID,
		"offerID":      offerID,
		"acceptorID":   caller.UserID,
		"acceptAmount": amount.String(),
		"counterStake": acceptance.CounterStake.String(),
	}).Info("Offer accepted")
	return acceptance, nil
}

// CancelOffer withdraws the unmatched remainder of the caller's offer.
// Matched portions stay in force.
func (s *orderBookService) CancelOffer(ctx context.Context, caller entities.Caller, betID, offerID int64) (*entities.Offer, error) {
	var offer *entities.Offer
	var refunded decimal.Decimal

	err := s.withBet(ctx, "cancel_offer", betID, func(tx *betTx) error {
		o := tx.detail.Offer(offerID)
		if o == nil {
			return apperrors.NotFound("offer %d not found on bet %d", offerID, betID)
		}
		if o.CreatorID != caller.UserID {
			return apperrors.PermissionDenied("only the creator can cancel offer %d", offerID)
		}
		if tx.bet().Status.IsTerminal() {
			return apperrors.InvalidTransition("bet %d is %s", betID, tx.bet().Status)
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

		tx.publish(events.OfferCancelledEvent{
			BetID:     betID,
			OfferID:   o.ID,
			CreatorID: o.CreatorID,
			Refunded:  refund,
		})
		offer, refunded = o, refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":     betID,
		"offerID":   offerID,
		"creatorID": caller.UserID,
		"refunded":  refunded.String(),
	}).Info("Offer cancelled")
	return offer, nil
}

// ListOffers returns the book of a bet
func (s *orderBookService) ListOffers(ctx context.Context, betID int64) ([]*entities.Offer, error) {
	var offers []*entities.Offer
	err := s.read(ctx, func(uow interfaces.UnitOfWork) error {
		bet, err := uow.BetRepository().GetByID(ctx, betID)
		if err != nil {
			return wrapInternal(err, "failed to get bet %d", betID)
		}
		if bet == nil {
			return apperrors.NotFound("bet %d not found", betID)
		}
		offers, err = uow.OfferRepository().GetByBet(ctx, betID)
		if err != nil {
			return wrapInternal(err, "failed to get offers for bet %d", betID)
		}
		return nil
	})
	return offers, err
}
