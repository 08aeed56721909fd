package infrastructure

import (
	"context"

	"gambler/wagering/domain/events"

	log "github.com/sirupsen/logrus"
)

// LocalEventBus delivers events to in-process handlers only. It is the publisher
// used when no NATS servers are configured.
type LocalEventBus struct {
	localHandlers
}

// NewLocalEventBus creates an empty in-process bus
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{}
}

// Publish hands the event to the registered local handlers
func (b *LocalEventBus) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Emitting event on local bus")
	b.dispatch(context.Background(), event)
	return nil
}
