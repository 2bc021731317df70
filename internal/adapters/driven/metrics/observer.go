package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/ncfp/internal/core/domain"
	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.RunObserver = (*Observer)(nil)

const namespace = "ncfp"

// Observer is a driven.RunObserver backed by a private Prometheus registry.
type Observer struct {
	registry *prometheus.Registry

	added    *prometheus.CounterVec
	failed   *prometheus.CounterVec
	duration *prometheus.GaugeVec
	outcomes *prometheus.CounterVec
}

// NewObserver creates an observer with all run metrics registered.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		added: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_added_total",
			Help:      "Cache rows added by each retrieval stage.",
		}, []string{"stage"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Work items each retrieval stage could not complete.",
		}, []string{"stage"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each retrieval stage.",
		}, []string{"stage"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_outcomes_total",
			Help:      "CDS extraction results by outcome.",
		}, []string{"outcome"}),
	}
	o.registry.MustRegister(o.added, o.failed, o.duration, o.outcomes)

	// Zero series so every outcome appears in the output
	for _, reason := range domain.AllMatchReasons() {
		o.outcomes.WithLabelValues(string(reason))
	}
	return o
}

// StageCompleted records one stage report.
func (o *Observer) StageCompleted(r domain.StageReport) {
	stage := string(r.Stage)
	o.added.WithLabelValues(stage).Add(float64(r.Added))
	o.failed.WithLabelValues(stage).Add(float64(r.Failed))
	o.duration.WithLabelValues(stage).Set(r.Duration.Seconds())
}

// ExtractionOutcome counts one extraction result.
func (o *Observer) ExtractionOutcome(reason domain.MatchReason) {
	o.outcomes.WithLabelValues(string(reason)).Inc()
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// WriteFile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (o *Observer) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
