// Package metrics exposes Prometheus instrumentation for script
// executions: counts by outcome, per-stage latency, and counts by error
// kind, so operators can see consensus-relevant failures without reading
// logs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"radon-engine/internal/radon/value"
)

var (
	// Executions counts the stage executions passed to Observe, labeled
	// by stage and whether the result is an Error Value. cmd/radonsrv
	// observes the Tally stage once per request.
	Executions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radon",
		Name:      "executions_total",
		Help:      "Total script executions by stage and outcome.",
	}, []string{"stage", "outcome"})

	// ErrorsByKind counts the Error results passed to Observe, labeled by
	// stage and ErrorKind, so a spike in one kind (e.g. DivisionByZero) is
	// visible without grepping logs.
	ErrorsByKind = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radon",
		Name:      "errors_total",
		Help:      "Total Error values produced, by ErrorKind.",
	}, []string{"stage", "kind"})

	// StageLatency records the seconds passed to Observe, by stage label.
	// cmd/radonsrv passes the whole request's wall-clock time under the
	// tally label.
	StageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "radon",
		Name:      "stage_latency_seconds",
		Help:      "Latency of each pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(Executions, ErrorsByKind, StageLatency)
}

// Observe records the outcome of one stage execution.
func Observe(stage value.Stage, result value.Value, seconds float64) {
	StageLatency.WithLabelValues(stage.String()).Observe(seconds)

	errv, failed := result.(*value.Error)
	if !failed {
		Executions.WithLabelValues(stage.String(), "success").Inc()
		return
	}
	Executions.WithLabelValues(stage.String(), "error").Inc()
	ErrorsByKind.WithLabelValues(stage.String(), errv.ErrorKind.String()).Inc()
}
