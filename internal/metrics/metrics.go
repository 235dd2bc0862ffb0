// Package metrics counts parses and analyses for node-exporter textfile
// collection. The CLI writes the file once per run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

const (
	PathPlan  = "plan"
	PathQuery = "query"

	unclassified = "Unclassified"
)

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	PlanParses *prometheus.CounterVec
	Analyses   *prometheus.CounterVec
	Operators  *prometheus.CounterVec
	Speedup    prometheus.Histogram
}

// New creates and registers all metrics with the provided registry.
func New(reg prometheus.Registerer) *Metrics {
	planParses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accelplan_plan_parses_total",
		Help: "Plan inputs parsed, by detected format",
	}, []string{"format"})

	analyses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accelplan_analyses_total",
		Help: "Advisory runs, by input path and recommended strategy",
	}, []string{"path", "strategy"})

	operators := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accelplan_operators_total",
		Help: "Analysed operators, by accelerable operation and recommended backend",
	}, []string{"op", "backend"})

	speedup := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "accelplan_speedup",
		Help:    "Overall speedup of the recommended strategy",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	reg.MustRegister(planParses, analyses, operators, speedup)

	return &Metrics{
		PlanParses: planParses,
		Analyses:   analyses,
		Operators:  operators,
		Speedup:    speedup,
	}
}

func (m *Metrics) ObserveParse(p plan.Plan) {
	m.PlanParses.WithLabelValues(p.Format.String()).Inc()
}

// ObserveAnalysis records one advisory result. path is PathPlan when the
// operators came from a parsed plan tree, PathQuery otherwise.
func (m *Metrics) ObserveAnalysis(path string, result advisor.WorkbenchResult) {
	strategy := result.RecommendedStrategy()
	m.Analyses.WithLabelValues(path, strategy.Name).Inc()
	m.Speedup.Observe(strategy.OverallSpeedup)

	for _, op := range result.OperatorAnalyses {
		name := unclassified
		if op.OpType != nil {
			name = op.OpType.String()
		}
		m.Operators.WithLabelValues(name, op.RecommendedBackend.String()).Inc()
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, replacing the file atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
