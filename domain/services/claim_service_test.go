package services

import (
	"errors"
	"sync"
	"testing"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settledPool creates a completed bet where X backed contestant1 with 0.4
// and Y backed contestant2 with 0.6
func settledPool(t *testing.T, env *testEnv, winner entities.Winner) *entities.Bet {
	t.Helper()
	bet := env.createBet(t, "0.01", "1.0")
	env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")
	env.stake(t, bet.ID, TestUserYID, entities.SideContestant2, "0.6")
	env.start(t, bet.ID)
	env.declare(t, bet.ID, winner)
	return bet
}

func TestClaim_Success(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)

	amount, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

	require.NoError(t, err)
	requireDecimal(t, "0.99", amount)
	env.requireBalance(t, TestUserXID, "10.59")

	claimed := env.store.Recorder.OfType(events.EventTypeWinningsClaimed)
	require.Len(t, claimed, 1)
	ev := claimed[0].(events.WinningsClaimedEvent)
	assert.Equal(t, TestUserXID, ev.UserID)
	requireDecimal(t, "0.99", ev.Amount)

	for _, p := range env.store.Participations(bet.ID) {
		if p.UserID == TestUserXID {
			assert.True(t, p.Claimed)
			require.NotNil(t, p.ClaimedAt)
		}
	}
}

func TestClaim_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)

	_, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	require.NoError(t, err)

	_, err = env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
	env.requireBalance(t, TestUserXID, "10.59")
	assert.Equal(t, 1, env.ledger.Credits(TestUserXID))
}

func TestClaim_ConcurrentDuplicatesPayOnce(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, env.ledger.Credits(TestUserXID))
	env.requireBalance(t, TestUserXID, "10.59")
	assert.Len(t, env.store.Recorder.OfType(events.EventTypeWinningsClaimed), 1)
}

func TestClaim_Rejections(t *testing.T) {
	t.Run("losing side", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.claims.Claim(t.Context(), user(TestUserYID), bet.ID)

		assert.ErrorIs(t, err, apperrors.ErrNoWinnings)
	})

	t.Run("no position", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)

		_, err := env.claims.Claim(t.Context(), user(TestUserZID), bet.ID)

		assert.ErrorIs(t, err, apperrors.ErrNotEligible)
	})

	t.Run("bet not completed", func(t *testing.T) {
		env := newTestEnv(t)
		bet := env.createBet(t, "0.01", "1.0")
		env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")
		env.start(t, bet.ID)

		_, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

		assert.ErrorIs(t, err, apperrors.ErrNotEligible)
	})

	t.Run("disputed bet", func(t *testing.T) {
		env := newTestEnv(t)
		bet := settledPool(t, env, entities.WinnerContestant1)
		_, err := env.disputes.RaiseDispute(t.Context(), user(TestUserYID), bet.ID, "wrong winner")
		require.NoError(t, err)

		_, err = env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

		assert.ErrorIs(t, err, apperrors.ErrNotEligible)
		env.requireBalance(t, TestUserXID, "9.6")
	})

	t.Run("unknown bet", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.claims.Claim(t.Context(), user(TestUserXID), 404)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestClaim_VoidRefundsAtFaceValue(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerVoid)

	x, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	require.NoError(t, err)
	y, err := env.claims.Claim(t.Context(), user(TestUserYID), bet.ID)
	require.NoError(t, err)

	requireDecimal(t, "0.4", x)
	requireDecimal(t, "0.6", y)
	env.requireBalance(t, TestUserXID, TestInitialBalance)
	env.requireBalance(t, TestUserYID, TestInitialBalance)
}

func TestClaim_CombinesPoolAndOrderBookPositions(t *testing.T) {
	env := newTestEnv(t)
	bet := env.createBet(t, "0.01", "1.0")
	env.stake(t, bet.ID, TestUserXID, entities.SideContestant1, "0.4")
	env.stake(t, bet.ID, TestUserYID, entities.SideContestant2, "0.6")
	offer := env.offer(t, bet.ID, TestUserXID, entities.SideContestant1, "0.2", "3.0")
	env.accept(t, bet.ID, offer.ID, TestTakerID, "0.2")
	env.start(t, bet.ID)
	env.declare(t, bet.ID, entities.WinnerContestant1)

	amount, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

	require.NoError(t, err)
	requireDecimal(t, "1.586", amount)
	env.requireBalance(t, TestUserXID, "10.986")

	acceptances := env.store.Acceptances(bet.ID)
	require.Len(t, acceptances, 1)
	assert.True(t, acceptances[0].CreatorClaimed)
	assert.False(t, acceptances[0].AcceptorClaimed)
}

func TestClaim_CreditFailureRevertsClaim(t *testing.T) {
	env := newTestEnv(t)
	bet := settledPool(t, env, entities.WinnerContestant1)
	env.ledger.FailNextCredit(errors.New("ledger unavailable"))

	_, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	env.requireBalance(t, TestUserXID, "9.6")
	for _, p := range env.store.Participations(bet.ID) {
		assert.False(t, p.Claimed)
	}
	assert.Empty(t, env.store.Recorder.OfType(events.EventTypeWinningsClaimed))

	amount, err := env.claims.Claim(t.Context(), user(TestUserXID), bet.ID)
	require.NoError(t, err)
	requireDecimal(t, "0.99", amount)
	env.requireBalance(t, TestUserXID, "10.59")
}
