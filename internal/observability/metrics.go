// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Intake metrics
	BatchesAccepted prometheus.Counter
	BatchesRejected prometheus.Counter
	ProbesDiscarded prometheus.Counter

	// Batch worker metrics
	BatchesParsed    prometheus.Counter
	BatchParseErrors prometheus.Counter
	EventsNormalized *prometheus.CounterVec
	BatchCycleTime   prometheus.Histogram
	StreamLagSeconds prometheus.Gauge

	// Queue metrics
	IntakeQueueDepth prometheus.Gauge
	EventsQueueDepth prometheus.Gauge

	// Egress metrics
	Deliveries       *prometheus.CounterVec
	DeliveryLatency  prometheus.Histogram
	LastDeliveryUnix prometheus.Gauge

	// Websocket metrics
	WSSubscriberConnected prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sol_dex_hub"
	}

	return &Metrics{
		BatchesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "batches_accepted_total",
			Help:      "Total number of webhook batches accepted onto the intake queue",
		}),
		BatchesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "batches_rejected_total",
			Help:      "Total number of webhook batches rejected because the intake queue was full",
		}),
		ProbesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "probes_discarded_total",
			Help:      "Total number of upstream probe pings discarded",
		}),
		BatchesParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "batches_parsed_total",
			Help:      "Total number of webhook batches parsed",
		}),
		BatchParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "batch_parse_errors_total",
			Help:      "Total number of webhook batches dropped as unparseable",
		}),
		EventsNormalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_normalized_total",
			Help:      "Total number of normalized events by kind",
		}, []string{"kind"}),
		BatchCycleTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "batch_cycle_seconds",
			Help:      "Duration of one batch worker iteration",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		StreamLagSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "stream_lag_seconds",
			Help:      "Difference between wall clock and the newest block timestamp processed",
		}),
		IntakeQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "intake_depth",
			Help:      "Current length of the intake queue",
		}),
		EventsQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "events_depth",
			Help:      "Current length of the events queue",
		}),
		Deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "egress",
			Name:      "deliveries_total",
			Help:      "Total number of outbound webhook deliveries by status",
		}, []string{"status"}),
		DeliveryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "egress",
			Name:      "delivery_seconds",
			Help:      "Latency of outbound webhook deliveries",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		LastDeliveryUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "egress",
			Name:      "last_delivery_timestamp_seconds",
			Help:      "Unix timestamp of the last successful delivery",
		}),
		WSSubscriberConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "subscriber_connected",
			Help:      "Whether the single websocket subscriber slot is taken",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
