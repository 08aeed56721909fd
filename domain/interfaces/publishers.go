package interfaces

import (
	"context"

	"gambler/wagering/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events, called after commit
	Flush(ctx context.Context) error

	// Discard drops all pending events, called on rollback
	Discard()
}

// EngineMetrics receives counters the engine cannot express as events
type EngineMetrics interface {
	// RecordTxRetry counts a unit of work retried after lock contention
	RecordTxRetry(ctx context.Context, operation string)
}
