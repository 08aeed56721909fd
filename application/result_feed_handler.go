package application

import (
	"context"
	"errors"
	"fmt"

	"gambler/wagering/application/dto"
	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ResultFeedHandlerImpl implements the ResultFeedHandler interface
type ResultFeedHandlerImpl struct {
	betService interfaces.BetService
	caller     entities.Caller
}

// NewResultFeedHandler creates a handler that acts on bets as the system actor
func NewResultFeedHandler(betService interfaces.BetService, systemActorID int64) ResultFeedHandler {
	return &ResultFeedHandlerImpl{
		betService: betService,
		caller:     entities.SystemCaller(systemActorID),
	}
}

// HandleContestStarted moves every open bet on the match to in progress
func (h *ResultFeedHandlerImpl) HandleContestStarted(ctx context.Context, started dto.ContestStartedDTO) error {
	log.WithFields(log.Fields{
		"matchID":   started.MatchID,
		"eventTime": started.EventTime,
	}).Info("Contest started, starting open bets")

	bets, err := h.betService.GetBetsByMatch(ctx, started.MatchID)
	if err != nil {
		return fmt.Errorf("failed to get bets for match %s: %w", started.MatchID, err)
	}

	var retryable []error
	for _, bet := range bets {
		if !bet.IsOpen() {
			continue
		}
		if _, err := h.betService.StartBet(ctx, h.caller, bet.ID); err != nil {
			retryable = h.collect(retryable, err, bet.ID, "start")
		}
	}
	return errors.Join(retryable...)
}

// HandleContestFinished completes every live bet on the match with the reported winner.
// Bets still open when the result arrives are started first.
func (h *ResultFeedHandlerImpl) HandleContestFinished(ctx context.Context, finished dto.ContestFinishedDTO) error {
	fields := log.Fields{
		"matchID": finished.MatchID,
		"winner":  finished.Winner,
	}
	if !finished.Winner.IsDeclarable() {
		log.WithFields(fields).Warn("Ignoring contest result without a declarable winner")
		return nil
	}
	log.WithFields(fields).Info("Contest finished, declaring winners")

	bets, err := h.betService.GetBetsByMatch(ctx, finished.MatchID)
	if err != nil {
		return fmt.Errorf("failed to get bets for match %s: %w", finished.MatchID, err)
	}

	var retryable []error
	declared := 0
	for _, bet := range bets {
		if bet.Status.IsTerminal() || bet.Disputed {
			continue
		}
		if bet.IsOpen() {
			if _, err := h.betService.StartBet(ctx, h.caller, bet.ID); err != nil {
				retryable = h.collect(retryable, err, bet.ID, "start")
				continue
			}
		}
		if _, err := h.betService.DeclareWinner(ctx, h.caller, bet.ID, finished.Winner); err != nil {
			retryable = h.collect(retryable, err, bet.ID, "declare")
			continue
		}
		declared++
	}

	log.WithFields(fields).WithField("declared", declared).Info("Contest result applied")
	return errors.Join(retryable...)
}

// collect logs a failed bet transition and keeps it when a redelivery could succeed
func (h *ResultFeedHandlerImpl) collect(errs []error, err error, betID int64, action string) []error {
	entry := log.WithFields(log.Fields{
		"betID":  betID,
		"action": action,
		"kind":   apperrors.KindOf(err),
	}).WithError(err)

	switch apperrors.KindOf(err) {
	case apperrors.KindConcurrencyConflict, apperrors.KindInternal:
		entry.Error("Failed to apply contest result to bet, will retry")
		return append(errs, fmt.Errorf("bet %d %s: %w", betID, action, err))
	default:
		entry.Warn("Contest result not applicable to bet")
		return errs
	}
}
