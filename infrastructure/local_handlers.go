package infrastructure

import (
	"context"
	"sync"

	"gambler/wagering/domain/events"

	log "github.com/sirupsen/logrus"
)

// LocalHandler handles an event inside the publishing process
type LocalHandler func(ctx context.Context, event events.Event) error

// localHandlers is the in-process handler table shared by the publishers.
// The zero value is ready to use.
type localHandlers struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]LocalHandler
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (l *localHandlers) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handlers == nil {
		l.handlers = make(map[events.EventType][]LocalHandler)
	}
	l.handlers[eventType] = append(l.handlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(l.handlers[eventType]),
	}).Info("Registered local event handler")
}

// dispatch runs every handler of the event's type. Handler errors and panics are logged
// and never stop the remaining handlers.
func (l *localHandlers) dispatch(ctx context.Context, event events.Event) {
	l.mu.RLock()
	handlers := make([]LocalHandler, len(l.handlers[event.Type()]))
	copy(handlers, l.handlers[event.Type()])
	l.mu.RUnlock()

	for i, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": i,
						"panic":        r,
					}).Error("Local event handler panicked")
				}
			}()
			if err := handler(ctx, event); err != nil {
				log.WithFields(log.Fields{
					"eventType":    event.Type(),
					"handlerIndex": i,
				}).WithError(err).Error("Local event handler failed")
			}
		}()
	}
}
