package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// betTx is one attempt of a unit of work serialized on a single bet
type betTx struct {
	ctx     context.Context
	uow     interfaces.UnitOfWork
	detail  *entities.BetDetail
	journal *ledgerJournal
	now     time.Time
}

func (t *betTx) bet() *entities.Bet {
	return t.detail.Bet
}

func (t *betTx) debit(userID int64, amount decimal.Decimal) error {
	return t.journal.debit(t.ctx, userID, amount)
}

func (t *betTx) credit(userID int64, amount decimal.Decimal) error {
	return t.journal.credit(t.ctx, userID, amount)
}

func (t *betTx) saveBet() error {
	if err := t.uow.BetRepository().Update(t.ctx, t.bet()); err != nil {
		return wrapInternal(err, "failed to update bet %d", t.bet().ID)
	}
	return nil
}

func (t *betTx) saveParticipation(p *entities.Participation) error {
	if err := t.uow.BetRepository().UpdateParticipation(t.ctx, p); err != nil {
		return wrapInternal(err, "failed to update participation %d", p.ID)
	}
	return nil
}

func (t *betTx) saveOffer(o *entities.Offer) error {
	if err := t.uow.OfferRepository().Update(t.ctx, o); err != nil {
		return wrapInternal(err, "failed to update offer %d", o.ID)
	}
	return nil
}

func (t *betTx) saveAcceptance(a *entities.Acceptance) error {
	if err := t.uow.OfferRepository().UpdateAcceptance(t.ctx, a); err != nil {
		return wrapInternal(err, "failed to update acceptance %d", a.ID)
	}
	return nil
}

// audit records a forced action in the audit table and the log
func (t *betTx) audit(caller entities.Caller, action entities.AuditAction, reason string) error {
	entry := &entities.AuditEntry{
		BetID:     t.bet().ID,
		ActorID:   caller.UserID,
		Action:    action,
		Reason:    reason,
		CreatedAt: t.now,
	}
	if err := t.uow.AuditRepository().Record(t.ctx, entry); err != nil {
		return wrapInternal(err, "failed to record audit entry for bet %d", t.bet().ID)
	}

	log.WithFields(log.Fields{
		"betID":   entry.BetID,
		"actorID": entry.ActorID,
		"action":  entry.Action,
		"reason":  entry.Reason,
		"admin":   caller.Admin,
		"system":  caller.System,
	}).Info("Audit: forced bet action")
	return nil
}

func (t *betTx) publish(event events.Event) {
	if err := t.uow.EventBus().Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to queue event")
	}
}

// withBet runs fn under the bet's lock, retrying the whole attempt on lock contention
func (e *Engine) withBet(ctx context.Context, operation string, betID int64, fn func(*betTx) error) error {
	attempt := func() error {
		err := e.attemptWithBet(ctx, betID, fn)
		if err == nil || apperrors.IsKind(err, apperrors.KindConcurrencyConflict) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		e.metrics.RecordTxRetry(ctx, operation)
		log.WithFields(log.Fields{
			"operation": operation,
			"betID":     betID,
			"wait":      wait,
		}).WithError(err).Warn("Retrying bet transaction after conflict")
	}

	return backoff.RetryNotify(attempt, e.newBackOff(ctx), notify)
}

func (e *Engine) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.settings.RetryInitialInterval
	b.MaxInterval = time.Second
	b.Reset()

	retries := e.settings.MaxTxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (e *Engine) attemptWithBet(ctx context.Context, betID int64, fn func(*betTx) error) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return wrapInternal(err, "failed to begin transaction")
	}

	journal := newLedgerJournal(e.ledger)
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := uow.Rollback(); err != nil {
			log.WithError(err).WithField("betID", betID).Error("Failed to roll back bet transaction")
		}
		journal.compensate(context.WithoutCancel(ctx), betID)
	}()

	detail, err := loadLockedDetail(ctx, uow, betID)
	if err != nil {
		return err
	}

	tx := &betTx{
		ctx:     ctx,
		uow:     uow,
		detail:  detail,
		journal: journal,
		now:     e.now(),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return wrapInternal(err, "failed to commit bet %d", betID)
	}
	committed = true
	return nil
}

// withUnitOfWork runs fn in a transaction that does not lock a bet
func (e *Engine) withUnitOfWork(ctx context.Context, fn func(interfaces.UnitOfWork) error) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return wrapInternal(err, "failed to begin transaction")
	}
	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to roll back transaction")
		}
		return err
	}
	if err := uow.Commit(); err != nil {
		return wrapInternal(err, "failed to commit transaction")
	}
	return nil
}

// read runs fn in a transaction that is always rolled back
func (e *Engine) read(ctx context.Context, fn func(interfaces.UnitOfWork) error) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return wrapInternal(err, "failed to begin transaction")
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Error("Failed to roll back read transaction")
		}
	}()
	return fn(uow)
}

// publishAfter publishes an event outside any bet lock
func (e *Engine) publishAfter(ctx context.Context, event events.Event) {
	err := e.withUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		return uow.EventBus().Publish(event)
	})
	if err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event")
	}
}

func loadLockedDetail(ctx context.Context, uow interfaces.UnitOfWork, betID int64) (*entities.BetDetail, error) {
	bet, err := uow.BetRepository().LockByID(ctx, betID)
	if err != nil {
		return nil, wrapInternal(err, "failed to lock bet %d", betID)
	}
	if bet == nil {
		return nil, apperrors.NotFound("bet %d not found", betID)
	}
	return loadChildren(ctx, uow, bet)
}

func loadDetail(ctx context.Context, uow interfaces.UnitOfWork, betID int64) (*entities.BetDetail, error) {
	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, wrapInternal(err, "failed to get bet %d", betID)
	}
	if bet == nil {
		return nil, apperrors.NotFound("bet %d not found", betID)
	}
	return loadChildren(ctx, uow, bet)
}

func loadChildren(ctx context.Context, uow interfaces.UnitOfWork, bet *entities.Bet) (*entities.BetDetail, error) {
	participations, err := uow.BetRepository().GetParticipationsByBet(ctx, bet.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to get participations for bet %d", bet.ID)
	}
	offers, err := uow.OfferRepository().GetByBet(ctx, bet.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to get offers for bet %d", bet.ID)
	}
	acceptances, err := uow.OfferRepository().GetAcceptancesByBet(ctx, bet.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to get acceptances for bet %d", bet.ID)
	}
	return &entities.BetDetail{
		Bet:            bet,
		Participations: participations,
		Offers:         offers,
		Acceptances:    acceptances,
	}, nil
}

// wrapInternal keeps typed errors and turns anything else into an internal error
func wrapInternal(err error, format string, args ...any) error {
	var typed *apperrors.Error
	if errors.As(err, &typed) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return apperrors.Internal(err, format, args...)
}

type ledgerOp struct {
	userID int64
	amount decimal.Decimal
	credit bool
}

// ledgerJournal records the ledger calls of one attempt so they can be reversed
type ledgerJournal struct {
	ledger interfaces.LedgerGateway
	ops    []ledgerOp
}

func newLedgerJournal(ledger interfaces.LedgerGateway) *ledgerJournal {
	return &ledgerJournal{ledger: ledger}
}

func (j *ledgerJournal) debit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := j.ledger.Debit(ctx, userID, amount); err != nil {
		if apperrors.IsKind(err, apperrors.KindInsufficientFunds) {
			return err
		}
		return wrapInternal(err, "ledger debit of %s for user %d failed", amount, userID)
	}
	j.ops = append(j.ops, ledgerOp{userID: userID, amount: amount})
	return nil
}

func (j *ledgerJournal) credit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := j.ledger.Credit(ctx, userID, amount); err != nil {
		return wrapInternal(err, "ledger credit of %s for user %d failed", amount, userID)
	}
	j.ops = append(j.ops, ledgerOp{userID: userID, amount: amount, credit: true})
	return nil
}

// compensate reverses every recorded call, newest first
func (j *ledgerJournal) compensate(ctx context.Context, betID int64) {
	for i := len(j.ops) - 1; i >= 0; i-- {
		op := j.ops[i]
		var err error
		if op.credit {
			err = j.ledger.Debit(ctx, op.userID, op.amount)
		} else {
			err = j.ledger.Credit(ctx, op.userID, op.amount)
		}

		fields := log.Fields{
			"betID":  betID,
			"userID": op.userID,
			"amount": op.amount.String(),
			"credit": op.credit,
		}
		if err != nil {
			log.WithFields(fields).WithError(err).Error("Ledger compensation failed, manual reconciliation required")
			continue
		}
		log.WithFields(fields).Warn("Compensated ledger call of aborted bet transaction")
	}
	j.ops = nil
}
