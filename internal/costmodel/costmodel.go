// Package costmodel holds the per-operator cost table used by the advisor.
//
// Each entry is calibrated at a reference row volume: the CPU time and cost
// of processing ReferenceRows rows, and for every accelerator the speedup
// over CPU and its cost at that volume. The advisor scales both linearly
// with the actual row count, so recalibrating is a matter of editing the
// table (or overriding it from YAML) rather than the algorithm.
package costmodel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Accelerator backend names as they appear in the table.
const (
	GPU  = "Gpu"
	FPGA = "Fpga"
	NPU  = "Npu"
)

var AcceleratorNames = []string{GPU, FPGA, NPU}

// Operation kinds the table is keyed by.
var OpNames = []string{
	"HashAggregate",
	"Filter",
	"Sort",
	"HashJoin",
	"GraphTraversal",
	"VectorDistance",
	"CostAnalytics",
	"Decompression",
	"RuleEngine",
}

type BackendCost struct {
	Backend string  `yaml:"backend" json:"backend"`
	Speedup float64 `yaml:"speedup" json:"speedup"`
	CostUSD float64 `yaml:"cost_usd" json:"cost_usd"`
}

type OpModel struct {
	// Operator is the physical operator name reported when the operator
	// is inferred from query text rather than read from a plan.
	Operator      string        `yaml:"operator" json:"operator"`
	ReferenceRows int64         `yaml:"reference_rows" json:"reference_rows"`
	CPUTimeMs     float64       `yaml:"cpu_time_ms" json:"cpu_time_ms"`
	CPUCostUSD    float64       `yaml:"cpu_cost_usd" json:"cpu_cost_usd"`
	Accelerators  []BackendCost `yaml:"accelerators,omitempty" json:"accelerators,omitempty"`
	// Technique names the accelerated implementation, e.g. "GPU hash aggregate".
	Technique string `yaml:"technique,omitempty" json:"technique,omitempty"`
}

// Scale returns the factor that maps the reference volume onto rows.
func (m OpModel) Scale(rows int64) float64 {
	if m.ReferenceRows <= 0 {
		return 1
	}
	return float64(rows) / float64(m.ReferenceRows)
}

type Model struct {
	Generic OpModel            `yaml:"generic" json:"generic"`
	Ops     map[string]OpModel `yaml:"ops" json:"ops"`
}

// Lookup returns the entry for op, or the generic entry when op is unknown.
func (m Model) Lookup(op string) OpModel {
	if e, ok := m.Ops[op]; ok {
		return e
	}
	return m.Generic
}

// Default is the stock calibration.
func Default() Model {
	return Model{
		Generic: OpModel{
			Operator:      "Operator",
			ReferenceRows: 1_000_000,
			CPUTimeMs:     50,
			CPUCostUSD:    0.00005,
		},
		Ops: map[string]OpModel{
			"Decompression": {
				Operator:      "ParquetScan",
				ReferenceRows: 1_200_000_000,
				CPUTimeMs:     8500,
				CPUCostUSD:    0.008,
				Accelerators:  []BackendCost{{Backend: FPGA, Speedup: 5.0, CostUSD: 0.012}},
				Technique:     "ZSTD decompression on FPGA at wire speed",
			},
			"HashAggregate": {
				Operator:      "HashAggregateExec",
				ReferenceRows: 1_200_000_000,
				CPUTimeMs:     23400,
				CPUCostUSD:    0.021,
				Accelerators:  []BackendCost{{Backend: GPU, Speedup: 9.3, CostUSD: 0.083}},
				Technique:     "GPU hash aggregate",
			},
			"GraphTraversal": {
				Operator:      "GraphTraversalExec",
				ReferenceRows: 5_000_000,
				CPUTimeMs:     12000,
				CPUCostUSD:    0.011,
				Accelerators:  []BackendCost{{Backend: GPU, Speedup: 45.0, CostUSD: 0.035}},
				Technique:     "GPU BFS over CSR adjacency",
			},
			"VectorDistance": {
				Operator:      "VectorDistanceExec",
				ReferenceRows: 10_000_000,
				CPUTimeMs:     450,
				CPUCostUSD:    0.0004,
				Accelerators:  []BackendCost{{Backend: GPU, Speedup: 50.0, CostUSD: 0.001}},
				Technique:     "cuBLAS batch cosine similarity",
			},
			"CostAnalytics": {
				Operator:      "CostAnalyticsExec",
				ReferenceRows: 500_000,
				CPUTimeMs:     1200,
				CPUCostUSD:    0.001,
				Accelerators:  []BackendCost{{Backend: NPU, Speedup: 8.0, CostUSD: 0.002}},
				Technique:     "ONNX Runtime inference",
			},
			"Filter": {
				Operator:      "FilterExec",
				ReferenceRows: 1_200_000_000,
				CPUTimeMs:     3200,
				CPUCostUSD:    0.003,
				Technique:     "SIMD predicate evaluation",
			},
			"Sort": {
				Operator:      "SortExec",
				ReferenceRows: 100_000_000,
				CPUTimeMs:     9000,
				CPUCostUSD:    0.008,
				Accelerators:  []BackendCost{{Backend: GPU, Speedup: 6.0, CostUSD: 0.028}},
				Technique:     "GPU radix sort",
			},
			"HashJoin": {
				Operator:      "HashJoinExec",
				ReferenceRows: 500_000_000,
				CPUTimeMs:     15000,
				CPUCostUSD:    0.014,
				Accelerators:  []BackendCost{{Backend: GPU, Speedup: 7.5, CostUSD: 0.052}},
				Technique:     "GPU hash join build and probe",
			},
			"RuleEngine": {
				Operator:      "RuleEngineExec",
				ReferenceRows: 1_000_000,
				CPUTimeMs:     2000,
				CPUCostUSD:    0.002,
				Accelerators:  []BackendCost{{Backend: FPGA, Speedup: 4.0, CostUSD: 0.004}},
				Technique:     "FPGA pattern-matching pipeline",
			},
		},
	}
}

// Validate rejects entries the advisor cannot use.
func (m Model) Validate() error {
	if err := validateEntry("generic", m.Generic); err != nil {
		return err
	}
	for name, e := range m.Ops {
		if !knownOp(name) {
			return fmt.Errorf("unknown operation %q", name)
		}
		if err := validateEntry(name, e); err != nil {
			return err
		}
	}
	return nil
}

func validateEntry(name string, e OpModel) error {
	if e.ReferenceRows <= 0 {
		return fmt.Errorf("%s: reference_rows must be positive", name)
	}
	if e.CPUTimeMs < 0 || e.CPUCostUSD < 0 {
		return fmt.Errorf("%s: cpu time and cost must not be negative", name)
	}
	seen := make(map[string]bool)
	for _, a := range e.Accelerators {
		if !knownAccelerator(a.Backend) {
			return fmt.Errorf("%s: unknown backend %q", name, a.Backend)
		}
		if seen[a.Backend] {
			return fmt.Errorf("%s: backend %q listed twice", name, a.Backend)
		}
		seen[a.Backend] = true
		if a.Speedup <= 0 {
			return fmt.Errorf("%s: %s speedup must be positive", name, a.Backend)
		}
		if a.CostUSD < 0 {
			return fmt.Errorf("%s: %s cost must not be negative", name, a.Backend)
		}
	}
	return nil
}

func knownOp(name string) bool {
	for _, op := range OpNames {
		if op == name {
			return true
		}
	}
	return false
}

func knownAccelerator(name string) bool {
	for _, b := range AcceleratorNames {
		if b == name {
			return true
		}
	}
	return false
}

// Load reads a YAML override. Each operation present in the file replaces
// the default entry for that operation; the others keep their defaults.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("reading cost model: %w", err)
	}

	var override Model
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Model{}, fmt.Errorf("parsing cost model %s: %w", path, err)
	}

	m := Default()
	if override.Generic.ReferenceRows != 0 {
		m.Generic = override.Generic
	}
	for name, e := range override.Ops {
		m.Ops[name] = e
	}

	if err := m.Validate(); err != nil {
		return Model{}, fmt.Errorf("invalid cost model %s: %w", path, err)
	}
	return m, nil
}
