package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/costmodel"
	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

func TestMetrics_ObserveParse(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveParse(plan.Plan{Format: plan.FormatJSON})
	m.ObserveParse(plan.Plan{Format: plan.FormatJSON})
	m.ObserveParse(plan.Plan{})

	require.Equal(t, float64(2), testutil.ToFloat64(m.PlanParses.WithLabelValues("json")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.PlanParses.WithLabelValues("raw")))
}

func TestMetrics_ObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())

	hw := hardware.Default()
	hw.GPUCount = 1
	result := advisor.New(hw, costmodel.Default()).Analyze("SELECT region, SUM(cost) FROM cur GROUP BY region", nil)

	m.ObserveAnalysis(PathQuery, result)

	require.Equal(t, float64(1), testutil.ToFloat64(m.Analyses.WithLabelValues(PathQuery, advisor.StrategyAccelerated)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Operators.WithLabelValues("HashAggregate", "Gpu")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Operators.WithLabelValues("Decompression", "Cpu")))
	require.Equal(t, 1, testutil.CollectAndCount(m.Speedup))
}

func TestMetrics_UnclassifiedOperator(t *testing.T) {
	m := New(prometheus.NewRegistry())

	result := advisor.WorkbenchResult{
		OperatorAnalyses: []advisor.OperatorAnalysis{{OperatorName: "Limit", RecommendedBackend: advisor.CPU}},
		Strategies:       []advisor.StrategyComparison{{Name: advisor.StrategyCPUOnly, OverallSpeedup: 1}},
	}
	m.ObserveAnalysis(PathPlan, result)

	require.Equal(t, float64(1), testutil.ToFloat64(m.Operators.WithLabelValues("Unclassified", "Cpu")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Analyses.WithLabelValues(PathPlan, advisor.StrategyCPUOnly)))
}

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	// Vec families only show up once a child exists.
	m.PlanParses.WithLabelValues("json").Add(0)
	m.Analyses.WithLabelValues(PathPlan, advisor.StrategyCPUOnly).Add(0)
	m.Operators.WithLabelValues("Sort", "Cpu").Add(0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	require.True(t, names["accelplan_plan_parses_total"])
	require.True(t, names["accelplan_analyses_total"])
	require.True(t, names["accelplan_operators_total"])
	require.True(t, names["accelplan_speedup"])
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveParse(plan.Plan{Format: plan.FormatText})

	path := filepath.Join(t.TempDir(), "accelplan.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `accelplan_plan_parses_total{format="text"} 1`))
}

func TestWriteTextfile_BadDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "accelplan.prom")
	require.Error(t, WriteTextfile(path, prometheus.NewRegistry()))
}
