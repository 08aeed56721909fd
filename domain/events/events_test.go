package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllEventTypes(t *testing.T) {
	seen := make(map[EventType]bool)
	for _, eventType := range AllEventTypes() {
		assert.False(t, seen[eventType], "duplicate event type %s", eventType)
		seen[eventType] = true
	}

	emitted := []Event{
		BetCreatedEvent{},
		BetStartedEvent{},
		BetPlacedEvent{},
		BetCompletedEvent{},
		BetCancelledEvent{},
		OfferCreatedEvent{},
		OfferAcceptedEvent{},
		OfferCancelledEvent{},
		DisputeRaisedEvent{},
		DisputeResolvedEvent{},
		WinningsClaimableEvent{},
		WinningsClaimedEvent{},
	}
	assert.Len(t, emitted, len(seen))
	for _, event := range emitted {
		assert.True(t, seen[event.Type()], "%T is not listed", event)
	}
}
