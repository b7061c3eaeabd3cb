// Package metrics exposes Prometheus collectors for the client bridge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	streamsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trtbridge",
			Subsystem: "stream",
			Name:      "opened_total",
			Help:      "Total number of streams opened",
		},
	)

	streamsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trtbridge",
			Subsystem: "stream",
			Name:      "closed_total",
			Help:      "Total number of streams closed, by terminal reason",
		},
		[]string{"reason"},
	)

	tokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trtbridge",
			Subsystem: "stream",
			Name:      "tokens_total",
			Help:      "Total tokens delivered to consumers",
		},
	)

	stopSignalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trtbridge",
			Subsystem: "stream",
			Name:      "stop_signals_total",
			Help:      "Total stop-signal requests issued to the server",
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trtbridge",
			Subsystem: "client",
			Name:      "errors_total",
			Help:      "Total client errors, by failing phase",
		},
		[]string{"phase"},
	)

	modelLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trtbridge",
			Subsystem: "client",
			Name:      "model_load_seconds",
			Help:      "Time spent waiting for model readiness",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(
		streamsTotal, streamsClosedTotal, tokensTotal,
		stopSignalsTotal, errorsTotal, modelLoadDuration,
	)
}

// StreamOpened records a newly opened stream.
func StreamOpened() { streamsTotal.Inc() }

// StreamClosed records a closed stream with its terminal reason
// (eos, stop_word, error, cancel).
func StreamClosed(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	streamsClosedTotal.WithLabelValues(reason).Inc()
}

// TokenDelivered counts one token handed to a consumer.
func TokenDelivered() { tokensTotal.Inc() }

// StopSignalSent counts one stop-signal request.
func StopSignalSent() { stopSignalsTotal.Inc() }

// Error counts a failure in the named phase (load, build, decode, stream).
func Error(phase string) { errorsTotal.WithLabelValues(phase).Inc() }

// ObserveModelLoad records how long a readiness wait took.
func ObserveModelLoad(d time.Duration) { modelLoadDuration.Observe(d.Seconds()) }
