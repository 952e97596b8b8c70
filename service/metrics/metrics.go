package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Transaction Metrics
	transactionsSubmittedTotal *prometheus.CounterVec
	confirmationDuration       *prometheus.HistogramVec
	confirmationPollsTotal     *prometheus.CounterVec

	// Event Metrics
	natsMessagesPublished *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),

		transactionsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_submitted_total",
				Help: "Total number of transactions submitted by outcome",
			},
			[]string{"program_id", "outcome"},
		),
		confirmationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transaction_confirmation_duration_seconds",
				Help:    "Time from submission until the requested commitment was reached",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
			},
			[]string{"commitment"},
		),
		confirmationPollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_confirmation_polls_total",
				Help: "Total number of signature status polls",
			},
			[]string{"commitment"},
		),

		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// Transaction metric helpers

// RecordTransactionSubmitted records the terminal outcome of a submission
// ("confirmed", "rejected", "network_error", "error").
func (m *Metrics) RecordTransactionSubmitted(programID, outcome string) {
	m.transactionsSubmittedTotal.WithLabelValues(programID, outcome).Inc()
}

// RecordConfirmation records how long a transaction took to reach the commitment.
func (m *Metrics) RecordConfirmation(commitment string, duration float64) {
	m.confirmationDuration.WithLabelValues(commitment).Observe(duration)
}

// RecordConfirmationPoll records a single signature status poll.
func (m *Metrics) RecordConfirmationPoll(commitment string) {
	m.confirmationPollsTotal.WithLabelValues(commitment).Inc()
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
}
