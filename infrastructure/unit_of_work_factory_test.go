package infrastructure

import (
	"context"
	"testing"

	"gambler/wagering/domain/events"
	"gambler/wagering/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWorkFactory_RegisterLocalHandler(t *testing.T) {
	noop := func(ctx context.Context, event events.Event) error { return nil }

	assert.False(t, NewUnitOfWorkFactory(nil, nil).RegisterLocalHandler(events.EventTypeBetPlaced, noop))
	assert.True(t, NewUnitOfWorkFactory(nil, NewLocalEventBus()).RegisterLocalHandler(events.EventTypeBetPlaced, noop))
}

func TestUnitOfWorkFactory_EventsFollowTheTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := NewLocalEventBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	var received []events.EventType
	factory.RegisterLocalHandler(events.EventTypeBetCreated, func(ctx context.Context, event events.Event) error {
		received = append(received, event.Type())
		return nil
	})

	rolledBack := factory.Create()
	require.NoError(t, rolledBack.Begin(ctx))
	require.NoError(t, rolledBack.EventBus().Publish(events.BetCreatedEvent{BetID: 1}))
	require.NoError(t, rolledBack.Rollback())
	assert.Empty(t, received)

	committed := factory.Create()
	require.NoError(t, committed.Begin(ctx))
	bet := testutil.CreateTestBet(100, "match-1")
	require.NoError(t, committed.BetRepository().Create(ctx, bet))
	require.NoError(t, committed.EventBus().Publish(events.BetCreatedEvent{BetID: bet.ID}))
	require.NoError(t, committed.Commit())

	assert.Equal(t, []events.EventType{events.EventTypeBetCreated}, received)
}
