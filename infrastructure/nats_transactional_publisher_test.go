package infrastructure

import (
	"context"
	"errors"
	"testing"

	"gambler/wagering/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
	failOn          events.EventType
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil && (m.failOn == "" || m.failOn == event.Type()) {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func testPlacedEvent() events.BetPlacedEvent {
	return events.BetPlacedEvent{
		BetID:      123,
		UserID:     456,
		Prediction: "contestant1",
		Amount:     decimal.RequireFromString("0.4"),
		TotalPool:  decimal.RequireFromString("1.0"),
	}
}

func TestNATSTransactionalPublisher_FlushAfterCommit(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	testEvent := testPlacedEvent()
	require.NoError(t, transPublisher.Publish(testEvent))

	// Nothing leaves before the flush
	assert.Len(t, mockPublisher.PublishedEvents, 0)
	assert.Equal(t, 1, transPublisher.Pending())

	require.NoError(t, transPublisher.Flush(context.Background()))

	require.Len(t, mockPublisher.PublishedEvents, 1)
	assert.Equal(t, testEvent, mockPublisher.PublishedEvents[0])
	assert.Equal(t, 0, transPublisher.Pending())
}

func TestNATSTransactionalPublisher_LocalHandlersRunOnFlush(t *testing.T) {
	bus := NewLocalEventBus()
	transPublisher := NewNATSTransactionalPublisher(bus)

	handler1Called := false
	handler2Called := false
	var receivedEvent events.Event

	bus.RegisterLocalHandler(events.EventTypeBetPlaced, func(ctx context.Context, event events.Event) error {
		handler1Called = true
		receivedEvent = event
		return nil
	})
	bus.RegisterLocalHandler(events.EventTypeBetPlaced, func(ctx context.Context, event events.Event) error {
		handler2Called = true
		return nil
	})

	testEvent := testPlacedEvent()
	require.NoError(t, transPublisher.Publish(testEvent))
	assert.False(t, handler1Called)

	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.True(t, handler1Called)
	assert.True(t, handler2Called)
	assert.Equal(t, testEvent, receivedEvent)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(testPlacedEvent()))
	transPublisher.Discard()

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 0)
}

func TestNATSTransactionalPublisher_FailedEventDoesNotBlockOthers(t *testing.T) {
	mockPublisher := &MockEventPublisher{
		PublishError: errors.New("nats unavailable"),
		failOn:       events.EventTypeBetPlaced,
	}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(testPlacedEvent()))
	require.NoError(t, transPublisher.Publish(events.BetStartedEvent{BetID: 123, ActorID: 1}))

	require.NoError(t, transPublisher.Flush(context.Background()))

	require.Len(t, mockPublisher.PublishedEvents, 1)
	assert.Equal(t, events.EventTypeBetStarted, mockPublisher.PublishedEvents[0].Type())
}
