package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"gambler/wagering/config"
	"gambler/wagering/domain/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the wagering engine
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	betsCreatedCounter    metric.Int64Counter
	stakesPlacedCounter   metric.Int64Counter
	stakeVolumeCounter    metric.Float64Counter
	offersCreatedCounter  metric.Int64Counter
	offersAcceptedCounter metric.Int64Counter
	settlementsCounter    metric.Int64Counter
	feeResidualCounter    metric.Float64Counter
	cancellationsCounter  metric.Int64Counter
	disputesCounter       metric.Int64Counter
	claimsCounter         metric.Int64Counter
	claimVolumeCounter    metric.Float64Counter
	txRetriesCounter      metric.Int64Counter
	publishedCounter      metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider with the configured exporter
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.setup(reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized successfully")
	return nil
}

// setup builds the meter provider around reader and creates the instruments. Callers hold mp.mu.
func (mp *MetricsProvider) setup(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("wagering-engine")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.betsCreatedCounter, BetsCreatedTotal, "Total number of bets opened"},
		{&mp.stakesPlacedCounter, StakesPlacedTotal, "Total number of pooled stakes"},
		{&mp.offersCreatedCounter, OffersCreatedTotal, "Total number of order-book offers posted"},
		{&mp.offersAcceptedCounter, OffersAcceptedTotal, "Total number of offer acceptances"},
		{&mp.settlementsCounter, SettlementsTotal, "Total number of settlements computed"},
		{&mp.cancellationsCounter, BetsCancelledTotal, "Total number of cancelled bets"},
		{&mp.disputesCounter, DisputesRaisedTotal, "Total number of disputes raised"},
		{&mp.claimsCounter, ClaimsTotal, "Total number of successful claims"},
		{&mp.txRetriesCounter, TxRetriesTotal, "Total number of bet transactions retried after lock contention"},
		{&mp.publishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
	}
	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}

	volumes := []struct {
		target      *metric.Float64Counter
		name        string
		description string
	}{
		{&mp.stakeVolumeCounter, StakeVolume, "Total value staked into pools"},
		{&mp.claimVolumeCounter, ClaimPayoutVolume, "Total value credited by claims"},
		{&mp.feeResidualCounter, FeeResidualVolume, "Total escrow retained as fee residual at settlement"},
	}
	for _, v := range volumes {
		counter, err := mp.meter.Float64Counter(v.name, metric.WithDescription(v.description))
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", v.name, err)
		}
		*v.target = counter
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordTxRetry records a bet transaction retried after lock contention
func (mp *MetricsProvider) RecordTxRetry(ctx context.Context, operation string) {
	if !mp.isEnabled() {
		return
	}

	mp.txRetriesCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelOperation, operation)),
	)
}

// RecordEventPublished records an event published to NATS
func (mp *MetricsProvider) RecordEventPublished(ctx context.Context, eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.publishedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// HandleEvent updates the business counters from a committed domain event.
// It has the shape of a local event handler.
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	switch e := event.(type) {
	case events.BetCreatedEvent:
		mp.betsCreatedCounter.Add(ctx, 1)
	case events.BetPlacedEvent:
		mp.stakesPlacedCounter.Add(ctx, 1)
		mp.stakeVolumeCounter.Add(ctx, e.Amount.InexactFloat64())
	case events.OfferCreatedEvent:
		mp.offersCreatedCounter.Add(ctx, 1)
	case events.OfferAcceptedEvent:
		mp.offersAcceptedCounter.Add(ctx, 1)
	case events.BetCompletedEvent:
		mp.settlementsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelWinner, e.Winner),
			attribute.String(LabelRedeclared, strconv.FormatBool(e.Redeclared)),
		))
		mp.feeResidualCounter.Add(ctx, e.FeeResidual.InexactFloat64())
	case events.BetCancelledEvent:
		mp.cancellationsCounter.Add(ctx, 1)
	case events.DisputeRaisedEvent:
		mp.disputesCounter.Add(ctx, 1)
	case events.WinningsClaimedEvent:
		mp.claimsCounter.Add(ctx, 1)
		mp.claimVolumeCounter.Add(ctx, e.Amount.InexactFloat64())
	}
	return nil
}

// TrackedEventTypes lists the events HandleEvent counts
func TrackedEventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBetCreated,
		events.EventTypeBetPlaced,
		events.EventTypeOfferCreated,
		events.EventTypeOfferAccepted,
		events.EventTypeBetCompleted,
		events.EventTypeBetCancelled,
		events.EventTypeDisputeRaised,
		events.EventTypeWinningsClaimed,
	}
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
