package services

import (
	"testing"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A completed bet is disputed before any claim and redeclared for the other
// side. The first winner's unclaimed payout drops to zero and only the new
// winner is paid.
func TestResolveDispute_RedeclareMovesPayouts(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)

	disputed, err := env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "contestant2 won on review")
	require.NoError(t, err)
	assert.True(t, disputed.Disputed)
	assert.Equal(t, "contestant2 won on review", disputed.DisputeReason)

	resolved, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
		entities.Redeclare(entities.WinnerContestant2, "video review"))
	require.NoError(t, err)
	assert.Equal(t, entities.BetStatusCompleted, resolved.Status)
	assert.Equal(t, entities.WinnerContestant2, resolved.Winner)
	assert.False(t, resolved.Disputed)

	_, err = env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoWinnings)

	amount, err := env.claims.Claim(t.Context(), user(TestUserYID), bet.ID)
	require.NoError(t, err)
	requireDecimal(t, "0.99", amount)

	env.requireBalance(t, TestUserXID, "9.6")
	env.requireBalance(t, TestUserYID, "10.39")

	var redeclared bool
	for _, ev := range env.store.Recorder.OfType(events.EventTypeBetCompleted) {
		if ev.(events.BetCompletedEvent).Redeclared {
			redeclared = true
		}
	}
	assert.True(t, redeclared)

	resolvedEvents := env.store.Recorder.OfType(events.EventTypeDisputeResolved)
	require.Len(t, resolvedEvents, 1)
	assert.Equal(t, string(entities.WinnerContestant2), resolvedEvents[0].(events.DisputeResolvedEvent).Winner)

	trail, err := env.disputes.GetAuditTrail(t.Context(), bet.ID)
	require.NoError(t, err)
	actions := make([]entities.AuditAction, 0, len(trail))
	for _, entry := range trail {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []entities.AuditAction{
		entities.AuditActionDeclareWinner,
		entities.AuditActionRaiseDispute,
		entities.AuditActionRedeclareWinner,
	}, actions)
}

func TestResolveDispute_CancelRefundsEverything(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)
	_, err := env.disputes.RaiseDispute(t.Context(), admin(), bet.ID, "match fixed")
	require.NoError(t, err)

	resolved, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID, entities.CancelResolution("match fixed"))

	require.NoError(t, err)
	assert.Equal(t, entities.BetStatusCancelled, resolved.Status)
	assert.Equal(t, entities.WinnerNone, resolved.Winner)
	env.requireBalance(t, TestUserXID, TestInitialBalance)
	env.requireBalance(t, TestUserYID, TestInitialBalance)

	cancelled := env.store.Recorder.OfType(events.EventTypeBetCancelled)
	require.Len(t, cancelled, 1)
	requireDecimal(t, "1", cancelled[0].(events.BetCancelledEvent).TotalRefunded)

	_, err = env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotEligible)
}

func TestRaiseDispute_InProgressHoldsDeclaration(t *testing.T) {
	env := newTestEnv(t)
	bet := env.createBet(t, "0.01", "1.0")
	env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")
	env.start(t, bet.ID)

	_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserXID), bet.ID, "suspicious stream delay")
	require.NoError(t, err)

	_, err = env.bets.DeclareWinner(t.Context(), admin(), bet.ID, entities.WinnerContestant1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)

	resolved, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
		entities.Redeclare(entities.WinnerContestant1, "checked"))
	require.NoError(t, err)
	assert.Equal(t, entities.BetStatusCompleted, resolved.Status)

	amount, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	require.NoError(t, err)
	requireDecimal(t, "0.396", amount)
}

func TestRaiseDispute_Rejections(t *testing.T) {
	t.Run("reason required", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "")

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("outsider", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserZID), bet.ID, "I disagree")

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("open bet", func(t *testing.T) {
		env := newTestEnv(t)
		bet := env.createBet(t, "0.01", "1.0")
		env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")

		_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserXID), bet.ID, "too early")

		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})

	t.Run("after a claim", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)
		_, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
		require.NoError(t, err)

		_, err = env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "wrong winner")

		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
		assert.False(t, env.store.Bet(bet.ID).Disputed)
	})

	t.Run("already disputed", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)
		_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "wrong winner")
		require.NoError(t, err)

		_, err = env.disputes.RaiseDispute(t.Context(), admin(), bet.ID, "again")

		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})
}

func TestResolveDispute_Rejections(t *testing.T) {
	t.Run("non administrator", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.ResolveDispute(t.Context(), user(TestUserYID), bet.ID,
			entities.Redeclare(entities.WinnerContestant2, "mine"))

		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("not disputed", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
			entities.Redeclare(entities.WinnerContestant2, "review"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})

	t.Run("invalid winner", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
			entities.Redeclare(entities.WinnerNone, "review"))

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown action", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
			entities.DisputeResolution{Action: "appeal", Reason: "review"})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("reason required", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.disputes.ResolveDispute(t.Context(), admin(), bet.ID, entities.CancelResolution(""))

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestResolveDispute_CancelledBetIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	bet := env.createBet(t, "0.01", "1.0")
	env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")
	env.stake(t, bet.ID, TestUserYID, entities.SideContestant2, "0.6")
	env.start(t, bet.ID)

	_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "match abandoned")
	require.NoError(t, err)

	cancelled, err := env.bets.CancelBet(t.Context(), admin(), bet.ID, "match abandoned")
	require.NoError(t, err)
	assert.Equal(t, entities.BetStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Disputed)

	_, err = env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
		entities.Redeclare(entities.WinnerContestant1, "late result"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)

	_, err = env.disputes.ResolveDispute(t.Context(), admin(), bet.ID,
		entities.CancelResolution("again"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)

	stored := env.store.Bet(bet.ID)
	assert.Equal(t, entities.BetStatusCancelled, stored.Status)
	assert.Equal(t, entities.WinnerNone, stored.Winner)
	env.requireBalance(t, TestUserXID, TestInitialBalance)
	env.requireBalance(t, TestUserYID, TestInitialBalance)
	assert.Empty(t, env.store.Recorder.OfType(events.EventTypeBetCompleted))
	assert.Len(t, env.store.Recorder.OfType(events.EventTypeBetCancelled), 1)
	assert.Empty(t, env.store.Recorder.OfType(events.EventTypeDisputeResolved))
}
