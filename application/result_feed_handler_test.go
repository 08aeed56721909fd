package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"gambler/wagering/application/dto"
	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSystemActorID = int64(42)

var systemCaller = entities.SystemCaller(testSystemActorID)

func betWithStatus(id int64, status entities.BetStatus) *entities.Bet {
	return &entities.Bet{ID: id, Status: status, Winner: entities.WinnerNone}
}

func TestResultFeedHandler_HandleContestStarted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("starts only open bets", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		betService.On("GetBetsByMatch", ctx, "match-1").Return([]*entities.Bet{
			betWithStatus(1, entities.BetStatusOpen),
			betWithStatus(2, entities.BetStatusInProgress),
			betWithStatus(3, entities.BetStatusCancelled),
		}, nil)
		betService.On("StartBet", ctx, systemCaller, int64(1)).Return(betWithStatus(1, entities.BetStatusInProgress), nil)

		err := handler.HandleContestStarted(ctx, dto.ContestStartedDTO{MatchID: "match-1", EventTime: time.Now()})
		require.NoError(t, err)
		betService.AssertExpectations(t)
		betService.AssertNumberOfCalls(t, "StartBet", 1)
	})

	t.Run("conflicts are returned for redelivery", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		betService.On("GetBetsByMatch", ctx, "match-1").Return([]*entities.Bet{
			betWithStatus(1, entities.BetStatusOpen),
			betWithStatus(2, entities.BetStatusOpen),
		}, nil)
		betService.On("StartBet", ctx, systemCaller, int64(1)).Return(nil, apperrors.Conflict(errors.New("lock timeout"), "bet 1 busy"))
		betService.On("StartBet", ctx, systemCaller, int64(2)).Return(betWithStatus(2, entities.BetStatusInProgress), nil)

		err := handler.HandleContestStarted(ctx, dto.ContestStartedDTO{MatchID: "match-1"})
		assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
		betService.AssertExpectations(t)
	})

	t.Run("lookup failure", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		betService.On("GetBetsByMatch", ctx, "match-1").Return(nil, errors.New("db down"))

		err := handler.HandleContestStarted(ctx, dto.ContestStartedDTO{MatchID: "match-1"})
		require.Error(t, err)
		betService.AssertNotCalled(t, "StartBet", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResultFeedHandler_HandleContestFinished(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("declares live bets and starts open ones first", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		disputed := betWithStatus(4, entities.BetStatusInProgress)
		disputed.Disputed = true
		betService.On("GetBetsByMatch", ctx, "match-1").Return([]*entities.Bet{
			betWithStatus(1, entities.BetStatusOpen),
			betWithStatus(2, entities.BetStatusInProgress),
			betWithStatus(3, entities.BetStatusCompleted),
			disputed,
		}, nil)
		betService.On("StartBet", ctx, systemCaller, int64(1)).Return(betWithStatus(1, entities.BetStatusInProgress), nil)
		betService.On("DeclareWinner", ctx, systemCaller, int64(1), entities.WinnerContestant2).Return(betWithStatus(1, entities.BetStatusCompleted), nil)
		betService.On("DeclareWinner", ctx, systemCaller, int64(2), entities.WinnerContestant2).Return(betWithStatus(2, entities.BetStatusCompleted), nil)

		err := handler.HandleContestFinished(ctx, dto.ContestFinishedDTO{MatchID: "match-1", Winner: entities.WinnerContestant2})
		require.NoError(t, err)
		betService.AssertExpectations(t)
		betService.AssertNumberOfCalls(t, "DeclareWinner", 2)
	})

	t.Run("results without a declarable winner are ignored", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		err := handler.HandleContestFinished(ctx, dto.ContestFinishedDTO{MatchID: "match-1", Winner: entities.WinnerNone})
		require.NoError(t, err)
		betService.AssertNotCalled(t, "GetBetsByMatch", mock.Anything, mock.Anything)
	})

	t.Run("state errors are not retried", func(t *testing.T) {
		betService := new(testhelpers.MockBetService)
		handler := NewResultFeedHandler(betService, testSystemActorID)

		betService.On("GetBetsByMatch", ctx, "match-1").Return([]*entities.Bet{
			betWithStatus(2, entities.BetStatusInProgress),
		}, nil)
		betService.On("DeclareWinner", ctx, systemCaller, int64(2), entities.WinnerVoid).
			Return(nil, apperrors.InvalidTransition("bet 2 is completed"))

		err := handler.HandleContestFinished(ctx, dto.ContestFinishedDTO{MatchID: "match-1", Winner: entities.WinnerVoid})
		require.NoError(t, err)
		betService.AssertExpectations(t)
	})
}
