package observability

// Metric name prefixes
const (
	MetricPrefix = "wagering_engine"
)

// Metric names
const (
	// Pool metrics
	StakesPlacedTotal = MetricPrefix + ".stakes.placed_total"
	StakeVolume       = MetricPrefix + ".stakes.volume"

	// Order book metrics
	OffersCreatedTotal  = MetricPrefix + ".offers.created_total"
	OffersAcceptedTotal = MetricPrefix + ".offers.accepted_total"

	// Lifecycle metrics
	BetsCreatedTotal    = MetricPrefix + ".bets.created_total"
	SettlementsTotal    = MetricPrefix + ".bets.settlements_total"
	BetsCancelledTotal  = MetricPrefix + ".bets.cancelled_total"
	DisputesRaisedTotal = MetricPrefix + ".disputes.raised_total"

	// Claim metrics
	ClaimsTotal       = MetricPrefix + ".claims.total"
	ClaimPayoutVolume = MetricPrefix + ".claims.payout_volume"
	FeeResidualVolume = MetricPrefix + ".settlements.fee_residual"

	// Transaction metrics
	TxRetriesTotal = MetricPrefix + ".tx.retries_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelEventType  = "event_type"
	LabelOperation  = "operation"
	LabelWinner     = "winner"
	LabelRedeclared = "redeclared"
)
