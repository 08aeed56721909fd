package services

import (
	"context"
	"time"

	"gambler/wagering/config"
	"gambler/wagering/domain/interfaces"

	"github.com/shopspring/decimal"
)

// Settings are the settlement parameters shared by every service
type Settings struct {
	FeeRate               decimal.Decimal
	MoneyScale            int32
	AllowOffersInProgress bool
	MaxTxRetries          int
	RetryInitialInterval  time.Duration
}

// NewSettingsFromConfig copies the settlement parameters out of the application config
func NewSettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		FeeRate:               cfg.FeeRate,
		MoneyScale:            cfg.MoneyScale,
		AllowOffersInProgress: cfg.AllowOffersInProgress,
		MaxTxRetries:          cfg.MaxTxRetries,
		RetryInitialInterval:  20 * time.Millisecond,
	}
}

// Engine holds the collaborators every wagering service runs against
type Engine struct {
	uowFactory interfaces.UnitOfWorkFactory
	ledger     interfaces.LedgerGateway
	settings   Settings
	metrics    interfaces.EngineMetrics
	now        func() time.Time
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithMetrics routes retry counters to m
func WithMetrics(m interfaces.EngineMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates the shared engine for the wagering services
func NewEngine(uowFactory interfaces.UnitOfWorkFactory, ledger interfaces.LedgerGateway, settings Settings, opts ...EngineOption) *Engine {
	e := &Engine{
		uowFactory: uowFactory,
		ledger:     ledger,
		settings:   settings,
		metrics:    noopMetrics{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settings returns the engine's settlement parameters
func (e *Engine) Settings() Settings {
	return e.settings
}

type noopMetrics struct{}

func (noopMetrics) RecordTxRetry(context.Context, string) {}
