package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledDetail() *BetDetail {
	payout := d("0.99")
	zero := d("0")
	creator := d("0.596")
	return &BetDetail{
		Bet: newTestBet(BetStatusCompleted),
		Participations: []*Participation{
			{ID: 1, UserID: 10, Prediction: SideContestant1, Amount: d("0.4"), Payout: &payout},
			{ID: 2, UserID: 20, Prediction: SideContestant2, Amount: d("0.6"), Payout: &zero},
		},
		Offers: []*Offer{
			{ID: 3, CreatorID: 10, Prediction: SideContestant1, StakeAmount: d("0.2"), Status: OfferStatusFilled},
		},
		Acceptances: []*Acceptance{
			{ID: 4, OfferID: 3, AcceptorID: 30, AcceptAmount: d("0.2"), CounterStake: d("0.4"), CreatorPayout: &creator, AcceptorPayout: &zero},
		},
	}
}

func TestBetDetail_HoldingsOf(t *testing.T) {
	t.Parallel()

	detail := settledDetail()

	holdings := detail.HoldingsOf(10)
	require.NotNil(t, holdings.Participation)
	assert.Len(t, holdings.AsCreator, 1)
	assert.Empty(t, holdings.AsAcceptor)
	assert.True(t, holdings.UnclaimedTotal().Equal(d("1.586")))

	assert.Len(t, detail.HoldingsOf(30).AsAcceptor, 1)
	assert.True(t, detail.HoldingsOf(99).IsEmpty())
}

func TestBetDetail_IsParticipant(t *testing.T) {
	t.Parallel()

	detail := settledDetail()

	assert.True(t, detail.IsParticipant(10))
	assert.True(t, detail.IsParticipant(20))
	assert.True(t, detail.IsParticipant(30))
	assert.False(t, detail.IsParticipant(40))
}

func TestBetDetail_ClaimAndRevert(t *testing.T) {
	t.Parallel()

	detail := settledDetail()
	holdings := detail.HoldingsOf(10)

	record := holdings.MarkClaimed(now)

	assert.Equal(t, int64(1), record.ParticipationID)
	assert.Equal(t, []int64{4}, record.CreatorAcceptanceIDs)
	assert.Empty(t, record.AcceptorAcceptanceIDs)
	assert.True(t, holdings.AllClaimed())
	assert.True(t, detail.HasClaims())
	assert.True(t, holdings.UnclaimedTotal().IsZero())

	owed := detail.UnclaimedByUser()
	_, stillOwed := owed[10]
	assert.False(t, stillOwed)

	detail.Revert(record)

	assert.False(t, detail.HasClaims())
	assert.Nil(t, detail.Participations[0].ClaimedAt)
	assert.True(t, detail.UnclaimedByUser()[10].Equal(d("1.586")))
}
