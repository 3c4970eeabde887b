package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Oracle stages
const (
	StageExtract  = "extract"
	StageClassify = "classify"
)

// Oracle outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeCacheHit      = "cache_hit"
	OutcomeError         = "error"
	OutcomeEmpty         = "empty"
	OutcomeLowConfidence = "low_confidence"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry        *prometheus.Registry
	claimsCreated   *prometheus.CounterVec
	oracleRequests  *prometheus.CounterVec
	reconciliations prometheus.Counter
	draftDuration   prometheus.Histogram
}

// New creates the counters on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		claimsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marincop",
			Name:      "claims_created_total",
			Help:      "Claims committed to the store, by extraction source.",
		}, []string{"source"}),
		oracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marincop",
			Name:      "oracle_requests_total",
			Help:      "Extraction oracle calls by stage and outcome.",
		}, []string{"stage", "outcome"}),
		reconciliations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marincop",
			Name:      "finance_reconciliations_total",
			Help:      "Finance patches applied to claims.",
		}),
		draftDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marincop",
			Name:      "draft_duration_seconds",
			Help:      "Time to draft a claim from notification text.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		}),
	}
	m.registry.MustRegister(m.claimsCreated, m.oracleRequests, m.reconciliations, m.draftDuration)
	return m
}

// Registry exposes the registry for scraping or testing
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ClaimCreated counts a committed claim
func (m *Metrics) ClaimCreated(source string) {
	if m == nil {
		return
	}
	m.claimsCreated.WithLabelValues(source).Inc()
}

// OracleRequest counts one oracle call
func (m *Metrics) OracleRequest(stage, outcome string) {
	if m == nil {
		return
	}
	m.oracleRequests.WithLabelValues(stage, outcome).Inc()
}

// FinanceReconciled counts a finance patch
func (m *Metrics) FinanceReconciled() {
	if m == nil {
		return
	}
	m.reconciliations.Inc()
}

// ObserveDraft records draft latency
func (m *Metrics) ObserveDraft(d time.Duration) {
	if m == nil {
		return
	}
	m.draftDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
