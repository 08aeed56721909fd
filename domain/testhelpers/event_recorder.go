package testhelpers

import (
	"context"
	"sync"

	"gambler/wagering/domain/events"
)

// EventRecorder is an EventPublisher that keeps every published event
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of the published events
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every published event in order
func (r *EventRecorder) Types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

// OfType returns the published events of one type
func (r *EventRecorder) OfType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// BufferedPublisher is a TransactionalEventPublisher that flushes into an EventRecorder
type BufferedPublisher struct {
	recorder *EventRecorder
	pending  []events.Event
}

func NewBufferedPublisher(recorder *EventRecorder) *BufferedPublisher {
	return &BufferedPublisher{recorder: recorder}
}

func (p *BufferedPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *BufferedPublisher) Flush(ctx context.Context) error {
	for _, ev := range p.pending {
		if err := p.recorder.Publish(ev); err != nil {
			return err
		}
	}
	p.pending = nil
	return nil
}

func (p *BufferedPublisher) Discard() {
	p.pending = nil
}
