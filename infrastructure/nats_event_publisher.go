package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gambler/wagering/domain/events"

	log "github.com/sirupsen/logrus"
)

// PublishMetrics counts events leaving the process
type PublishMetrics interface {
	RecordEventPublished(ctx context.Context, eventType string)
}

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	localHandlers
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
	metrics       PublishMetrics
}

// NewNATSEventPublisher creates a new NATS event publisher. metrics may be nil.
func NewNATSEventPublisher(natsClient *NATSClient, subjectMapper *EventSubjectMapper, metrics PublishMetrics) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		metrics:       metrics,
	}
}

// Publish runs the local handlers, then publishes the enveloped event to its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	p.dispatch(ctx, event)

	subject := p.subjectMapper.MapEventToSubject(event)

	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		// no stream bound to the subject yet, nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordEventPublished(ctx, string(event.Type()))
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// EnsureDomainEventStream ensures the wagering events stream exists with the correct subjects
func (p *NATSEventPublisher) EnsureDomainEventStream() error {
	return p.natsClient.EnsureStream(domainEventStream, "Wagering engine domain events", p.subjectMapper.GetAllSubjects())
}
