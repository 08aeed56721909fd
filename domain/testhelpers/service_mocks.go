package testhelpers

import (
	"context"

	"gambler/wagering/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockBetService is a mock implementation of BetService
type MockBetService struct {
	mock.Mock
}

func (m *MockBetService) CreateBet(ctx context.Context, caller entities.Caller, params entities.BetParams) (*entities.Bet, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetService) GetBet(ctx context.Context, betID int64) (*entities.Bet, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetService) StartBet(ctx context.Context, caller entities.Caller, betID int64) (*entities.Bet, error) {
	args := m.Called(ctx, caller, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetService) DeclareWinner(ctx context.Context, caller entities.Caller, betID int64, winner entities.Winner) (*entities.Bet, error) {
	args := m.Called(ctx, caller, betID, winner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetService) CancelBet(ctx context.Context, caller entities.Caller, betID int64, reason string) (*entities.Bet, error) {
	args := m.Called(ctx, caller, betID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetService) GetBetsByMatch(ctx context.Context, matchID string) ([]*entities.Bet, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockEngineMetrics is a mock implementation of EngineMetrics
type MockEngineMetrics struct {
	mock.Mock
}

func (m *MockEngineMetrics) RecordTxRetry(ctx context.Context, operation string) {
	m.Called(ctx, operation)
}
