package testhelpers

import (
	"context"

	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) LockByID(ctx context.Context, id int64) (*entities.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByMatchID(ctx context.Context, matchID string) ([]*entities.Bet, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) CreateParticipation(ctx context.Context, participation *entities.Participation) error {
	args := m.Called(ctx, participation)
	return args.Error(0)
}

func (m *MockBetRepository) GetParticipationsByBet(ctx context.Context, betID int64) ([]*entities.Participation, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participation), args.Error(1)
}

func (m *MockBetRepository) UpdateParticipation(ctx context.Context, participation *entities.Participation) error {
	args := m.Called(ctx, participation)
	return args.Error(0)
}

// MockOfferRepository is a mock implementation of OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *entities.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.Offer, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Offer), args.Error(1)
}

func (m *MockOfferRepository) Update(ctx context.Context, offer *entities.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepository) CreateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	args := m.Called(ctx, acceptance)
	return args.Error(0)
}

func (m *MockOfferRepository) GetAcceptancesByBet(ctx context.Context, betID int64) ([]*entities.Acceptance, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Acceptance), args.Error(1)
}

func (m *MockOfferRepository) UpdateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	args := m.Called(ctx, acceptance)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.AuditEntry, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockLedgerGateway is a mock implementation of LedgerGateway
type MockLedgerGateway struct {
	mock.Mock
}

func (m *MockLedgerGateway) Debit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockLedgerGateway) Credit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

// MockUnitOfWork wires repository mocks into a UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	BetRepo   *MockBetRepository
	OfferRepo *MockOfferRepository
	AuditRepo *MockAuditRepository
	Publisher *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work backed by fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		BetRepo:   &MockBetRepository{},
		OfferRepo: &MockOfferRepository{},
		AuditRepo: &MockAuditRepository{},
		Publisher: &MockEventPublisher{},
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BetRepository() interfaces.BetRepository {
	return m.BetRepo
}

func (m *MockUnitOfWork) OfferRepository() interfaces.OfferRepository {
	return m.OfferRepo
}

func (m *MockUnitOfWork) AuditRepository() interfaces.AuditRepository {
	return m.AuditRepo
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.Publisher
}

// AssertAllExpectations verifies the unit of work and every repository mock
func (m *MockUnitOfWork) AssertAllExpectations(t mock.TestingT) {
	m.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.OfferRepo.AssertExpectations(t)
	m.AuditRepo.AssertExpectations(t)
	m.Publisher.AssertExpectations(t)
}

// MockUnitOfWorkFactory returns the same MockUnitOfWork on every Create
type MockUnitOfWorkFactory struct {
	UnitOfWork *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.UnitOfWork
}
