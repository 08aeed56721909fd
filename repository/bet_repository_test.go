package repository

import (
	"context"
	"testing"
	"time"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, actual.Equal(decimal.RequireFromString(expected)), "expected %s, got %s", expected, actual)
}

func TestBetRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(100, "match-42")
	require.NoError(t, repo.Create(ctx, bet))
	require.NotZero(t, bet.ID)

	got, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "match-42", got.Contest.MatchID)
	assert.Equal(t, "Alpha", got.Contestant1.Name)
	assert.Equal(t, entities.BetStatusOpen, got.Status)
	assert.Equal(t, entities.WinnerNone, got.Winner)
	requireDecimalEqual(t, "0.01", got.FeeRate)
	requireDecimalEqual(t, "0.001", got.MinimumBet)
	assert.Nil(t, got.ResolvedAt)

	missing, err := repo.GetByID(ctx, bet.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byMatch, err := repo.GetByMatchID(ctx, "match-42")
	require.NoError(t, err)
	require.Len(t, byMatch, 1)
	assert.Equal(t, bet.ID, byMatch[0].ID)
}

func TestBetRepository_UpdateAndParticipations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(100, "match-1")
	require.NoError(t, repo.Create(ctx, bet))

	p := testutil.CreateTestParticipation(bet.ID, 200, entities.SideContestant1, "0.4")
	require.NoError(t, repo.CreateParticipation(ctx, p))
	require.NotZero(t, p.ID)

	t.Run("second stake by the same user is rejected", func(t *testing.T) {
		dup := testutil.CreateTestParticipation(bet.ID, 200, entities.SideContestant2, "0.1")
		err := repo.CreateParticipation(ctx, dup)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("pools and winner persist", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		bet.AddToPool(entities.SideContestant1, decimal.RequireFromString("0.4"))
		bet.Status = entities.BetStatusCompleted
		bet.Winner = entities.WinnerContestant1
		bet.ResolvedAt = &now
		require.NoError(t, repo.Update(ctx, bet))

		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.BetStatusCompleted, got.Status)
		assert.Equal(t, entities.WinnerContestant1, got.Winner)
		requireDecimalEqual(t, "0.4", got.TotalPool)
		require.NotNil(t, got.ResolvedAt)
		assert.True(t, now.Equal(*got.ResolvedAt))
	})

	t.Run("payout round trips through null", func(t *testing.T) {
		participations, err := repo.GetParticipationsByBet(ctx, bet.ID)
		require.NoError(t, err)
		require.Len(t, participations, 1)
		assert.Nil(t, participations[0].Payout)

		participations[0].SetPayout(decimal.RequireFromString("0.99"))
		participations[0].Claimed = true
		require.NoError(t, repo.UpdateParticipation(ctx, participations[0]))

		participations, err = repo.GetParticipationsByBet(ctx, bet.ID)
		require.NoError(t, err)
		require.NotNil(t, participations[0].Payout)
		requireDecimalEqual(t, "0.99", *participations[0].Payout)
		assert.True(t, participations[0].Claimed)
	})

	t.Run("pool checks are enforced", func(t *testing.T) {
		broken := *bet
		broken.TotalPool = decimal.NewFromInt(5)
		err := repo.Update(ctx, &broken)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestBetRepository_LockByIDBlocksSecondLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bet := testutil.CreateTestBet(100, "match-1")
	require.NoError(t, NewBetRepository(testDB.DB).Create(ctx, bet))

	first, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer first.Rollback(ctx)

	locked, err := newBetRepositoryWithTx(first).LockByID(ctx, bet.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	second, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer second.Rollback(ctx)

	_, err = newBetRepositoryWithTx(second).LockByID(ctx, bet.ID)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}

func TestOfferRepository_OffersAndAcceptances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	bets := NewBetRepository(testDB.DB)
	offers := NewOfferRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(100, "match-1")
	require.NoError(t, bets.Create(ctx, bet))

	offer := testutil.CreateTestOffer(bet.ID, 500, entities.SideContestant1, "0.2", "3.0")
	require.NoError(t, offers.Create(ctx, offer))
	require.NotZero(t, offer.ID)

	require.NoError(t, offer.Fill(decimal.RequireFromString("0.05"), time.Now().UTC()))
	require.NoError(t, offers.Update(ctx, offer))

	acceptance := &entities.Acceptance{
		OfferID:      offer.ID,
		BetID:        bet.ID,
		AcceptorID:   600,
		AcceptAmount: decimal.RequireFromString("0.05"),
		CounterStake: decimal.RequireFromString("0.1"),
		Odds:         offer.RequestedOdds,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, offers.CreateAcceptance(ctx, acceptance))

	gotOffers, err := offers.GetByBet(ctx, bet.ID)
	require.NoError(t, err)
	require.Len(t, gotOffers, 1)
	assert.Equal(t, entities.OfferStatusPartiallyFilled, gotOffers[0].Status)
	requireDecimalEqual(t, "0.15", gotOffers[0].RemainingAmount)
	requireDecimalEqual(t, "3", gotOffers[0].RequestedOdds)

	acceptance.SetPayouts(decimal.RequireFromString("0.149"), decimal.Zero)
	acceptance.CreatorClaimed = true
	require.NoError(t, offers.UpdateAcceptance(ctx, acceptance))

	gotAcceptances, err := offers.GetAcceptancesByBet(ctx, bet.ID)
	require.NoError(t, err)
	require.Len(t, gotAcceptances, 1)
	require.NotNil(t, gotAcceptances[0].CreatorPayout)
	requireDecimalEqual(t, "0.149", *gotAcceptances[0].CreatorPayout)
	requireDecimalEqual(t, "0", *gotAcceptances[0].AcceptorPayout)
	assert.True(t, gotAcceptances[0].CreatorClaimed)
	assert.False(t, gotAcceptances[0].AcceptorClaimed)
}

func TestAuditRepository_RecordAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	audit := NewAuditRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(100, "match-1")
	require.NoError(t, NewBetRepository(testDB.DB).Create(ctx, bet))

	for _, action := range []entities.AuditAction{entities.AuditActionStart, entities.AuditActionCancel} {
		require.NoError(t, audit.Record(ctx, &entities.AuditEntry{
			BetID:     bet.ID,
			ActorID:   900,
			Action:    action,
			Reason:    "ops",
			CreatedAt: time.Now().UTC(),
		}))
	}

	entries, err := audit.GetByBet(ctx, bet.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.AuditActionStart, entries[0].Action)
	assert.Equal(t, entities.AuditActionCancel, entries[1].Action)
}
