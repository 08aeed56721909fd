package infrastructure

import (
	"gambler/wagering/database"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"
	"gambler/wagering/repository"
)

// localHandlerRegistry is implemented by publishers that can run handlers in process
type localHandlerRegistry interface {
	RegisterLocalHandler(eventType events.EventType, handler LocalHandler)
}

// UnitOfWorkFactory implements interfaces.UnitOfWorkFactory.
// It creates units of work that handle both database transactions and event publishing.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(interfaces.TransactionalEventPublisher) interfaces.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory. A nil publisher drops every event.
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	if eventPublisher == nil {
		eventPublisher = NewNoopEventPublisher()
	}
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers a handler invoked in process for every flushed event of eventType.
// It reports false when the publisher cannot run local handlers.
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) bool {
	registry, ok := f.eventPublisher.(localHandlerRegistry)
	if !ok {
		return false
	}
	registry.RegisterLocalHandler(eventType, handler)
	return true
}

// Create creates a new UnitOfWork with its own transactional publisher
func (f *UnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}
