package services

import (
	"testing"
	"time"

	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/interfaces"
	"gambler/wagering/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Test constants for consistent test data
const (
	TestCreatorID = int64(100)
	TestUserXID   = int64(200)
	TestUserYID   = int64(300)
	TestUserZID   = int64(400)
	TestOfferorID = int64(500)
	TestTakerID   = int64(600)
	TestAdminID   = int64(900)
	TestSystemID  = int64(1)

	TestInitialBalance = "10"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func user(id int64) entities.Caller {
	return entities.UserCaller(id)
}

func admin() entities.Caller {
	return entities.AdminCaller(TestAdminID)
}

func system() entities.Caller {
	return entities.SystemCaller(TestSystemID)
}

func testSettings() Settings {
	return Settings{
		FeeRate:              dec("0.01"),
		MoneyScale:           8,
		MaxTxRetries:         3,
		RetryInitialInterval: time.Millisecond,
	}
}

// testEnv wires every service to an in-memory store and ledger
type testEnv struct {
	store    *testhelpers.MemoryStore
	ledger   *testhelpers.MemoryLedger
	engine   *Engine
	bets     interfaces.BetService
	pools    interfaces.PoolService
	book     interfaces.OrderBookService
	claims   interfaces.ClaimService
	disputes interfaces.DisputeService
}

func newTestEnv(t *testing.T, opts ...func(*Settings)) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil, opts...)
}

func newTestEnvWith(t *testing.T, metrics interfaces.EngineMetrics, opts ...func(*Settings)) *testEnv {
	t.Helper()

	settings := testSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	store := testhelpers.NewMemoryStore()
	ledger := testhelpers.NewMemoryLedger()
	engineOpts := []EngineOption{WithClock(func() time.Time { return testNow })}
	if metrics != nil {
		engineOpts = append(engineOpts, WithMetrics(metrics))
	}
	engine := NewEngine(store, ledger, settings, engineOpts...)

	for _, id := range []int64{TestCreatorID, TestUserXID, TestUserYID, TestUserZID, TestOfferorID, TestTakerID} {
		ledger.Deposit(id, dec(TestInitialBalance))
	}

	return &testEnv{
		store:    store,
		ledger:   ledger,
		engine:   engine,
		bets:     NewBetService(engine),
		pools:    NewPoolService(engine),
		book:     NewOrderBookService(engine),
		claims:   NewClaimService(engine),
		disputes: NewDisputeService(engine),
	}
}

func betParams(minimum, maximum string) entities.BetParams {
	return entities.BetParams{
		Contest: entities.ContestRef{
			TournamentID:   "tourney-1",
			TournamentName: "Spring Open",
			EventID:        "event-1",
			EventName:      "Singles",
			PhaseID:        "phase-1",
			MatchID:        "match-1",
		},
		Contestant1: entities.Contestant{ID: "c-1", Name: "Alpha"},
		Contestant2: entities.Contestant{ID: "c-2", Name: "Bravo"},
		MinimumBet:  dec(minimum),
		MaximumBet:  dec(maximum),
	}
}

func (e *testEnv) createBet(t *testing.T, minimum, maximum string) *entities.Bet {
	t.Helper()
	bet, err := e.bets.CreateBet(t.Context(), user(TestCreatorID), betParams(minimum, maximum))
	require.NoError(t, err)
	return bet
}

func (e *testEnv) stake(t *testing.T, betID, userID int64, side entities.Side, amount string) *entities.Participation {
	t.Helper()
	p, err := e.pools.PlaceStake(t.Context(), user(userID), betID, side, dec(amount))
	require.NoError(t, err)
	return p
}

func (e *testEnv) start(t *testing.T, betID int64) {
	t.Helper()
	_, err := e.bets.StartBet(t.Context(), user(TestCreatorID), betID)
	require.NoError(t, err)
}

func (e *testEnv) declare(t *testing.T, betID int64, winner entities.Winner) {
	t.Helper()
	_, err := e.bets.DeclareWinner(t.Context(), admin(), betID, winner)
	require.NoError(t, err)
}

func (e *testEnv) offer(t *testing.T, betID, userID int64, side entities.Side, stake, odds string) *entities.Offer {
	t.Helper()
	o, err := e.book.CreateOffer(t.Context(), user(userID), betID, side, dec(stake), dec(odds))
	require.NoError(t, err)
	return o
}

func (e *testEnv) accept(t *testing.T, betID, offerID, userID int64, amount string) *entities.Acceptance {
	t.Helper()
	a, err := e.book.AcceptOffer(t.Context(), user(userID), betID, offerID, dec(amount))
	require.NoError(t, err)
	return a
}

// requireBalance checks a ledger balance by decimal value
func (e *testEnv) requireBalance(t *testing.T, userID int64, expected string) {
	t.Helper()
	balance := e.ledger.Balance(userID)
	require.Truef(t, balance.Equal(dec(expected)), "user %d balance: expected %s, got %s", userID, expected, balance)
}

// requireDecimal compares decimals by value
func requireDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, actual.Equal(dec(expected)), "expected %s, got %s %v", expected, actual, msgAndArgs)
}
