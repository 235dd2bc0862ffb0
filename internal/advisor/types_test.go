package advisor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jacobarthurs/accelplan/internal/costmodel"
)

func TestLabels(t *testing.T) {
	if HashAggregate.Label() != "Hash Aggregate" {
		t.Errorf("HashAggregate.Label() = %q", HashAggregate.Label())
	}
	if Decompression.Label() != "Decompression" {
		t.Errorf("Decompression.Label() = %q", Decompression.Label())
	}
	if GPU.Label() != "GPU (CUDA)" {
		t.Errorf("GPU.Label() = %q", GPU.Label())
	}
	if CPU.Badge() != "CPU" {
		t.Errorf("CPU.Badge() = %q", CPU.Badge())
	}
	if HardwareAcceleration.Label() != "Hardware Acceleration" {
		t.Errorf("HardwareAcceleration.Label() = %q", HardwareAcceleration.Label())
	}
	if StorageTier.Label() != "Storage Tier" {
		t.Errorf("StorageTier.Label() = %q", StorageTier.Label())
	}
}

func TestEveryOpHasCostModelEntry(t *testing.T) {
	model := costmodel.Default()
	for _, op := range AllOps() {
		if _, ok := model.Ops[op.String()]; !ok {
			t.Errorf("no cost model entry for %s", op)
		}
	}
	if len(costmodel.OpNames) != len(AllOps()) {
		t.Errorf("cost model knows %d operations, advisor %d", len(costmodel.OpNames), len(AllOps()))
	}
	for _, name := range costmodel.AcceleratorNames {
		b, err := ParseBackend(name)
		if err != nil {
			t.Errorf("ParseBackend(%q): %v", name, err)
		}
		if b == CPU {
			t.Errorf("accelerator %q parsed as Cpu", name)
		}
	}
}

func TestWorkbenchResult_JSONWireShape(t *testing.T) {
	e := New(gpuProfile(), costmodel.Default())
	r := e.Analyze("SELECT SUM(cost) FROM cur GROUP BY region", nil)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"sql", "explain_text", "hardware_profile", "operator_analyses", "strategies", "recommended_strategy_index", "recommendations"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if doc["explain_text"] != nil {
		t.Errorf("explain_text = %v, want null", doc["explain_text"])
	}

	ops := doc["operator_analyses"].([]any)
	agg := ops[1].(map[string]any)
	if agg["op_type"] != "HashAggregate" || agg["recommended_backend"] != "Gpu" {
		t.Errorf("operator = %v", agg)
	}

	strategies := doc["strategies"].([]any)
	accel := strategies[1].(map[string]any)
	pairs := accel["operator_backends"].([]any)
	pair := pairs[1].([]any)
	if len(pair) != 2 || pair[0] != "HashAggregateExec" || pair[1] != "Gpu" {
		t.Errorf("assignment = %v, want [HashAggregateExec Gpu]", pair)
	}
	if strategies[0].(map[string]any)["break_even_queries_per_hour"] != nil {
		t.Error("cpu-only break-even should be null")
	}

	found := false
	for _, rec := range doc["recommendations"].([]any) {
		if rec.(map[string]any)["category"] == "HardwareAcceleration" {
			found = true
		}
	}
	if !found {
		t.Errorf("no HardwareAcceleration recommendation in %v", doc["recommendations"])
	}
}

func TestWorkbenchResult_RoundTrip(t *testing.T) {
	e := New(fullProfile(), costmodel.Default())
	r := e.Analyze("SELECT COST_FORECAST(c), COUNT(*) FROM t GROUP BY k", nil)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded WorkbenchResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(decoded.OperatorAnalyses) != len(r.OperatorAnalyses) {
		t.Fatalf("operators = %d, want %d", len(decoded.OperatorAnalyses), len(r.OperatorAnalyses))
	}
	last := decoded.OperatorAnalyses[len(decoded.OperatorAnalyses)-1]
	if last.OpType == nil || *last.OpType != CostAnalytics || last.RecommendedBackend != NPU {
		t.Errorf("last operator = %+v", last)
	}
	if decoded.Strategies[1].OperatorBackends[0] != r.Strategies[1].OperatorBackends[0] {
		t.Errorf("assignment = %v, want %v", decoded.Strategies[1].OperatorBackends[0], r.Strategies[1].OperatorBackends[0])
	}
	if decoded.HardwareProfile.FPGADeviceName != "Xilinx Alveo U250" {
		t.Errorf("hardware profile not preserved: %+v", decoded.HardwareProfile)
	}
}

func TestAssignment_UnmarshalRejectsUnknownBackend(t *testing.T) {
	var a Assignment
	err := json.Unmarshal([]byte(`["Sort", "Tpu"]`), &a)
	if err == nil || !strings.Contains(err.Error(), "Tpu") {
		t.Errorf("err = %v, want unknown backend", err)
	}
}

func TestFormatRows(t *testing.T) {
	cases := map[int64]string{
		0:             "0",
		999:           "999",
		1_500:         "1.5K",
		100_000:       "100K",
		5_000_000:     "5M",
		10_000_000:    "10M",
		1_200_000_000: "1.2B",
	}
	for n, want := range cases {
		if got := FormatRows(n); got != want {
			t.Errorf("FormatRows(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatTimeMs(t *testing.T) {
	cases := map[float64]string{
		9:        "9ms",
		267:      "267ms",
		999.4:    "999ms",
		1000:     "1.0s",
		2516.129: "2.5s",
		23400:    "23.4s",
	}
	for ms, want := range cases {
		if got := FormatTimeMs(ms); got != want {
			t.Errorf("FormatTimeMs(%v) = %q, want %q", ms, got, want)
		}
	}
}

func TestFormatSpeedup(t *testing.T) {
	cases := map[float64]string{9.3: "9.3x", 45: "45x", 1: "1x", 2.8958: "2.9x"}
	for x, want := range cases {
		if got := FormatSpeedup(x); got != want {
			t.Errorf("FormatSpeedup(%v) = %q, want %q", x, got, want)
		}
	}
}

func TestShortOperatorName(t *testing.T) {
	cases := map[string]string{
		"HashAggregateExec": "HashAggregate",
		"ParquetScan":       "Parquet",
		"Seq Scan on cur":   "Seq Scan on cur",
		"Exec":              "Exec",
	}
	for in, want := range cases {
		if got := ShortOperatorName(in); got != want {
			t.Errorf("ShortOperatorName(%q) = %q, want %q", in, got, want)
		}
	}
}
