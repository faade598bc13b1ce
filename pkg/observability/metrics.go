package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry defaults to prometheus.DefaultRegisterer / DefaultGatherer.
	Registry *prometheus.Registry
}

// InitMetrics wires the OTel meter provider to a Prometheus exporter and
// returns the /metrics handler for the same registry.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	var opts []promexporter.Option
	handler := promhttp.Handler()
	if cfg.Registry != nil {
		opts = append(opts, promexporter.WithRegisterer(cfg.Registry))
		handler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	}

	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return provider, handler, nil
}

// Metrics holds the decision engine's Prometheus collectors.
type Metrics struct {
	decisions      *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	conflicts      prometheus.Counter
	cacheRequests  *prometheus.CounterVec
	outboxRelayed  prometheus.Counter
	outboxFailures prometheus.Counter
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decision_engine_decisions_total",
				Help: "Decisions appended to the ledger",
			},
			[]string{"decision", "loan_type", "manual"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decision_engine_evaluation_duration_seconds",
				Help:    "Time spent producing a decision",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "decision_engine_recalculation_conflicts_total",
			Help: "Optimistic concurrency conflicts seen while committing a recalculation",
		}),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decision_engine_policy_cache_requests_total",
				Help: "Policy cache lookups by result",
			},
			[]string{"result"},
		),
		outboxRelayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "decision_engine_outbox_relayed_total",
			Help: "Outbox entries published to the broker",
		}),
		outboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "decision_engine_outbox_failures_total",
			Help: "Outbox relay batches that failed to publish",
		}),
	}
}

func (m *Metrics) DecisionRecorded(decision, loanType string, manual bool) {
	m.decisions.WithLabelValues(decision, loanType, strconv.FormatBool(manual)).Inc()
}

func (m *Metrics) ConcurrencyConflict() { m.conflicts.Inc() }

func (m *Metrics) ObserveDuration(operation string, elapsed time.Duration) {
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// PolicyCacheRequest counts a cache lookup; result is "hit", "miss" or "error".
func (m *Metrics) PolicyCacheRequest(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) OutboxRelayed(n int) { m.outboxRelayed.Add(float64(n)) }

func (m *Metrics) OutboxFailed() { m.outboxFailures.Inc() }
