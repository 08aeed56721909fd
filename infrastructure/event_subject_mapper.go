package infrastructure

import (
	"strings"

	"gambler/wagering/domain/events"
)

const (
	// SubjectPrefix namespaces every event the engine publishes
	SubjectPrefix = "wagering"

	// ContestResultsSubject matches every contest result of the feed
	ContestResultsSubject = "contests.results.>"

	domainEventStream   = "wagering_events"
	contestResultStream = "contest_results"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.subjectFor(event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	return events.EventType(strings.TrimPrefix(subject, SubjectPrefix+"."))
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, eventType := range types {
		subjects = append(subjects, m.subjectFor(eventType))
	}
	return subjects
}

func (m *EventSubjectMapper) subjectFor(eventType events.EventType) string {
	return SubjectPrefix + "." + string(eventType)
}
