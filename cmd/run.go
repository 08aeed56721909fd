package cmd

import (
	"context"
	"fmt"
	"time"

	"gambler/wagering/application"
	"gambler/wagering/config"
	"gambler/wagering/database"
	"gambler/wagering/domain/interfaces"
	"gambler/wagering/domain/services"
	"gambler/wagering/infrastructure"
	"gambler/wagering/infrastructure/observability"
	"gambler/wagering/repository"

	log "github.com/sirupsen/logrus"
)

// App bundles the wired wagering services for callers embedding the engine
type App struct {
	Bets      interfaces.BetService
	Pools     interfaces.PoolService
	OrderBook interfaces.OrderBookService
	Claims    interfaces.ClaimService
	Disputes  interfaces.DisputeService

	db       *database.DB
	nats     *infrastructure.NATSClient
	consumer *infrastructure.MessageConsumer
}

// Build connects the engine to its database, ledger, event bus and metrics
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	app := &App{db: db}

	var publisher interfaces.EventPublisher
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		app.nats = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := app.nats.Connect(ctx); err != nil {
			db.Close()
			return nil, err
		}
		natsPublisher := infrastructure.NewNATSEventPublisher(app.nats, infrastructure.NewEventSubjectMapper(), metrics)
		if err := natsPublisher.EnsureDomainEventStream(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
		publisher = natsPublisher
	} else {
		log.Warn("NATS_SERVERS not set, events stay in process and the result feed is disabled")
		publisher = infrastructure.NewLocalEventBus()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	for _, eventType := range observability.TrackedEventTypes() {
		uowFactory.RegisterLocalHandler(eventType, metrics.HandleEvent)
	}

	ledger := repository.NewLedgerRepository(db)
	engine := services.NewEngine(uowFactory, ledger, services.NewSettingsFromConfig(cfg), services.WithMetrics(metrics))

	app.Bets = services.NewBetService(engine)
	app.Pools = services.NewPoolService(engine)
	app.OrderBook = services.NewOrderBookService(engine)
	app.Claims = services.NewClaimService(engine)
	app.Disputes = services.NewDisputeService(engine)

	if app.nats != nil {
		resultHandler := application.NewResultFeedHandler(app.Bets, cfg.SystemActorID)
		app.consumer = infrastructure.NewMessageConsumer(app.nats, infrastructure.NewResultFeedListener(resultHandler))
	}

	log.WithFields(log.Fields{
		"feeRate":               cfg.FeeRate.String(),
		"moneyScale":            cfg.MoneyScale,
		"allowOffersInProgress": cfg.AllowOffersInProgress,
		"maxTxRetries":          cfg.MaxTxRetries,
	}).Info("Wagering engine initialized")
	return app, nil
}

// Close releases the connections held by the app
func (a *App) Close() {
	if a.consumer != nil {
		a.consumer.Stop()
	}
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if a.db != nil {
		log.Info("Closing database connection...")
		a.db.Close()
	}
}

// Run initializes the engine and consumes the result feed until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting wagering engine...")

	cfg := config.Get()

	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}

	consumerErr := make(chan error, 1)
	if app.consumer != nil {
		go func() {
			consumerErr <- app.consumer.Start(ctx)
		}()
	}

	log.Infof("Wagering engine is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-consumerErr:
		if err != nil {
			log.WithError(err).Error("Message consumer stopped")
		}
	}

	log.Info("Shutting down wagering engine...")
	app.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
