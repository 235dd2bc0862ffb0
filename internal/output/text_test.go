package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/comparator"
	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

func TestRenderWorkbenchText_Golden(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderWorkbenchText(&buf, sampleResult(), Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "workbench", buf.Bytes())
}

func TestRenderWorkbenchText_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderWorkbenchText(&buf, sampleResult(), Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, colorGreen+"GPU    "+colorReset) {
		t.Errorf("expected coloured GPU badge, got:\n%s", out)
	}
	if !strings.Contains(out, colorBold+colorCyan+"Strategies"+colorReset) {
		t.Error("expected coloured heading")
	}
}

func TestRenderWorkbenchText_NoColorHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderWorkbenchText(&buf, sampleResult(), Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("NoColor output contains ANSI escapes")
	}
}

func TestRenderWorkbenchText_NoRecommendations(t *testing.T) {
	r := sampleResult()
	r.Recommendations = nil

	var buf bytes.Buffer
	if err := RenderWorkbenchText(&buf, r, Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "No recommendations.\n") {
		t.Errorf("unexpected tail:\n%s", buf.String())
	}
}

func TestRenderWorkbenchText_WriteError(t *testing.T) {
	err := RenderWorkbenchText(failingWriter{}, sampleResult(), Options{})
	if err == nil {
		t.Fatal("expected write error")
	}
}

func TestRenderPlanText_Tree(t *testing.T) {
	rows := int64(42)
	p := plan.Plan{
		Format: plan.FormatText,
		Root: &plan.PlanNode{
			Operator:      "Sort",
			CostTotal:     120.5,
			EstimatedRows: 1500,
			Children: []plan.PlanNode{
				{Operator: "Seq Scan", Relation: "cur", CostTotal: 80, EstimatedRows: 1500, ActualRows: &rows},
			},
			Extra: []plan.KeyValue{{Key: "Sort Key", Value: "region"}},
		},
	}

	var buf bytes.Buffer
	if err := RenderPlanText(&buf, p, Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Plan (text, 2 nodes)",
		"  Sort  (cost=0.00..120.50 rows=1,500)",
		"     Sort Key: region",
		"    -> Seq Scan on cur  (cost=0.00..80.00 rows=1,500 actual=42)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPlanText_Raw(t *testing.T) {
	p := plan.Parse([]byte("just some notes\nabout a query"))

	var buf bytes.Buffer
	if err := RenderPlanText(&buf, p, Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No structured plan found") {
		t.Errorf("expected raw notice, got:\n%s", out)
	}
	if !strings.Contains(out, "  just some notes\n  about a query\n") {
		t.Errorf("expected indented raw text, got:\n%s", out)
	}
}

func TestRenderComparisonText(t *testing.T) {
	old := sampleResult()
	old.OperatorAnalyses[1].RecommendedBackend = advisor.CPU
	old.Strategies[1] = old.Strategies[0]
	old.Strategies[1].Name = advisor.StrategyAccelerated

	result := (&comparator.Comparator{Threshold: comparator.SignificanceThresholdPct}).Compare(old, sampleResult())

	var buf bytes.Buffer
	if err := RenderComparisonText(&buf, result, Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Strategy: Accelerated",
		"~ HashAggregateExec",
		"backend: CPU → GPU",
		"1 backend changes",
		"Verdict: faster but more expensive",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderComparisonText_Identical(t *testing.T) {
	r := sampleResult()
	result := (&comparator.Comparator{Threshold: comparator.SignificanceThresholdPct}).Compare(r, r)

	var buf bytes.Buffer
	if err := RenderComparisonText(&buf, result, Options{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Operators are identical.") {
		t.Errorf("expected identical notice, got:\n%s", out)
	}
	if !strings.Contains(out, "Verdict: no significant change") {
		t.Errorf("expected neutral verdict, got:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`"recommended_backend": "Gpu"`,
		`"operator_backends": [`,
		`"actionable_sql": null`,
		`"simd_level": "Avx2"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}

// --- Helpers ---

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func sampleResult() advisor.WorkbenchResult {
	hw := hardware.Default()
	hw.SIMDLevel = hardware.AVX2
	hw.GPUCount = 1
	hw.GPUTotalVRAMBytes = 24 << 30
	hw.GPUDeviceName = "RTX 4090"
	hw.GPUComputeCapability = &[2]int{8, 9}

	breakEven := 10.69
	sql := "SET accelerator.gpu.enable_olap_aggregation = true;"

	return advisor.WorkbenchResult{
		SQL:             "SELECT region, SUM(cost) FROM cur GROUP BY region",
		HardwareProfile: hw,
		OperatorAnalyses: []advisor.OperatorAnalysis{
			{
				OperatorName:       "ParquetScan",
				EstimatedRows:      1_200_000_000,
				RecommendedBackend: advisor.CPU,
				BackendOptions: []advisor.BackendOption{
					{Backend: advisor.CPU, EstimatedSpeedup: 1, EstimatedTimeMs: 8500, EstimatedCostUSD: 0.008, Available: true},
				},
				Rationale: "no matching accelerator on this host",
			},
			{
				OperatorName:       "HashAggregateExec",
				EstimatedRows:      1_200_000_000,
				RecommendedBackend: advisor.GPU,
				BackendOptions: []advisor.BackendOption{
					{Backend: advisor.CPU, EstimatedSpeedup: 1, EstimatedTimeMs: 23400, EstimatedCostUSD: 0.021, Available: true},
					{Backend: advisor.GPU, EstimatedSpeedup: 9.3, EstimatedTimeMs: 2516.13, EstimatedCostUSD: 0.083, Available: true},
				},
				Rationale: "GPU hash aggregate provides 9.3x speedup",
			},
		},
		Strategies: []advisor.StrategyComparison{
			{
				Name:                  advisor.StrategyCPUOnly,
				Description:           "All operators on CPU with SIMD",
				TotalEstimatedTimeMs:  31900,
				TotalEstimatedCostUSD: 0.029,
				OverallSpeedup:        1,
				OperatorBackends: []advisor.Assignment{
					{Operator: "ParquetScan", Backend: advisor.CPU},
					{Operator: "HashAggregateExec", Backend: advisor.CPU},
				},
			},
			{
				Name:                  advisor.StrategyAccelerated,
				Description:           "Optimal hardware per operator",
				TotalEstimatedTimeMs:  11016.13,
				TotalEstimatedCostUSD: 0.091,
				OverallSpeedup:        2.8958,
				OperatorBackends: []advisor.Assignment{
					{Operator: "ParquetScan", Backend: advisor.CPU},
					{Operator: "HashAggregateExec", Backend: advisor.GPU},
				},
				BreakEvenQueriesPerHour: &breakEven,
			},
		},
		RecommendedStrategyIndex: 1,
		Recommendations: []advisor.Recommendation{
			{
				Category:      advisor.HardwareAcceleration,
				Title:         "Enable GPU for OLAP aggregation",
				Description:   "Set accelerator.gpu.enable_olap_aggregation = true in MegaDB config",
				ActionableSQL: &sql,
			},
			{
				Category:    advisor.ScalingHint,
				Title:       "Add FPGA (OpenCL) capacity for Decompression",
				Description: "ParquetScan processes 1.2B rows on CPU/SIMD",
			},
		},
	}
}
