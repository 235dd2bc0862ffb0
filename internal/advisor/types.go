package advisor

import (
	"encoding/json"
	"fmt"

	"github.com/jacobarthurs/accelplan/internal/hardware"
)

// AccelerableOp is an operation kind with a known accelerated implementation.
type AccelerableOp int

const (
	HashAggregate AccelerableOp = iota
	Filter
	Sort
	HashJoin
	GraphTraversal
	VectorDistance
	CostAnalytics
	Decompression
	RuleEngine
)

var accelerableOps = [...]AccelerableOp{
	HashAggregate, Filter, Sort, HashJoin, GraphTraversal,
	VectorDistance, CostAnalytics, Decompression, RuleEngine,
}

// AllOps lists every operation kind in declaration order.
func AllOps() []AccelerableOp {
	return accelerableOps[:]
}

func (o AccelerableOp) String() string {
	switch o {
	case HashAggregate:
		return "HashAggregate"
	case Filter:
		return "Filter"
	case Sort:
		return "Sort"
	case HashJoin:
		return "HashJoin"
	case GraphTraversal:
		return "GraphTraversal"
	case VectorDistance:
		return "VectorDistance"
	case CostAnalytics:
		return "CostAnalytics"
	case Decompression:
		return "Decompression"
	case RuleEngine:
		return "RuleEngine"
	default:
		return fmt.Sprintf("AccelerableOp(%d)", int(o))
	}
}

func (o AccelerableOp) Label() string {
	switch o {
	case HashAggregate:
		return "Hash Aggregate"
	case Filter:
		return "Filter"
	case Sort:
		return "Sort"
	case HashJoin:
		return "Hash Join"
	case GraphTraversal:
		return "Graph Traversal"
	case VectorDistance:
		return "Vector Distance"
	case CostAnalytics:
		return "Cost Analytics"
	case Decompression:
		return "Decompression"
	case RuleEngine:
		return "Rule Engine"
	default:
		return o.String()
	}
}

func (o AccelerableOp) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *AccelerableOp) UnmarshalText(text []byte) error {
	for _, op := range accelerableOps {
		if op.String() == string(text) {
			*o = op
			return nil
		}
	}
	return fmt.Errorf("unknown operation %q", text)
}

// Backend is an execution target for an operator.
type Backend int

const (
	CPU Backend = iota
	GPU
	FPGA
	NPU
)

var backends = [...]Backend{CPU, GPU, FPGA, NPU}

func (b Backend) String() string {
	switch b {
	case CPU:
		return "Cpu"
	case GPU:
		return "Gpu"
	case FPGA:
		return "Fpga"
	case NPU:
		return "Npu"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

func (b Backend) Label() string {
	switch b {
	case CPU:
		return "CPU/SIMD"
	case GPU:
		return "GPU (CUDA)"
	case FPGA:
		return "FPGA (OpenCL)"
	case NPU:
		return "NPU (ONNX)"
	default:
		return b.String()
	}
}

// Badge is the short upper-case tag used in tables.
func (b Backend) Badge() string {
	switch b {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case FPGA:
		return "FPGA"
	case NPU:
		return "NPU"
	default:
		return "?"
	}
}

func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Backend) UnmarshalText(text []byte) error {
	v, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func ParseBackend(s string) (Backend, error) {
	for _, b := range backends {
		if b.String() == s {
			return b, nil
		}
	}
	return CPU, fmt.Errorf("unknown backend %q", s)
}

// RecommendationCategory groups recommendations for display.
type RecommendationCategory int

const (
	HardwareAcceleration RecommendationCategory = iota
	StorageTier
	PartitionStrategy
	IndexSuggestion
	QueryRewrite
	ScalingHint
)

var categories = [...]RecommendationCategory{
	HardwareAcceleration, StorageTier, PartitionStrategy,
	IndexSuggestion, QueryRewrite, ScalingHint,
}

func (c RecommendationCategory) String() string {
	switch c {
	case HardwareAcceleration:
		return "HardwareAcceleration"
	case StorageTier:
		return "StorageTier"
	case PartitionStrategy:
		return "PartitionStrategy"
	case IndexSuggestion:
		return "IndexSuggestion"
	case QueryRewrite:
		return "QueryRewrite"
	case ScalingHint:
		return "ScalingHint"
	default:
		return fmt.Sprintf("RecommendationCategory(%d)", int(c))
	}
}

func (c RecommendationCategory) Label() string {
	switch c {
	case HardwareAcceleration:
		return "Hardware Acceleration"
	case StorageTier:
		return "Storage Tier"
	case PartitionStrategy:
		return "Partition Strategy"
	case IndexSuggestion:
		return "Index Suggestion"
	case QueryRewrite:
		return "Query Rewrite"
	case ScalingHint:
		return "Scaling Hint"
	default:
		return c.String()
	}
}

func (c RecommendationCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *RecommendationCategory) UnmarshalText(text []byte) error {
	for _, v := range categories {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("unknown recommendation category %q", text)
}

// BackendOption is one candidate backend for an operator.
type BackendOption struct {
	Backend          Backend `json:"backend"`
	EstimatedSpeedup float64 `json:"estimated_speedup"`
	EstimatedTimeMs  float64 `json:"estimated_time_ms"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	Available        bool    `json:"available"`
}

// OperatorAnalysis is the verdict for a single plan operator. BackendOptions
// keeps enumeration order, CPU first.
type OperatorAnalysis struct {
	OperatorName       string          `json:"operator_name"`
	OpType             *AccelerableOp  `json:"op_type"`
	EstimatedRows      int64           `json:"estimated_rows"`
	RecommendedBackend Backend         `json:"recommended_backend"`
	BackendOptions     []BackendOption `json:"backend_options"`
	Rationale          string          `json:"rationale"`
}

// Recommended returns the option matching RecommendedBackend.
func (a *OperatorAnalysis) Recommended() BackendOption {
	for _, o := range a.BackendOptions {
		if o.Backend == a.RecommendedBackend {
			return o
		}
	}
	if len(a.BackendOptions) > 0 {
		return a.BackendOptions[0]
	}
	return BackendOption{Backend: CPU, EstimatedSpeedup: 1, Available: true}
}

// Assignment pins one operator to a backend. It is encoded as a
// two-element array: ["HashAggregateExec", "Gpu"].
type Assignment struct {
	Operator string
	Backend  Backend
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{a.Operator, a.Backend})
}

func (a *Assignment) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding assignment: %w", err)
	}
	if err := json.Unmarshal(pair[0], &a.Operator); err != nil {
		return fmt.Errorf("decoding assignment operator: %w", err)
	}
	if err := json.Unmarshal(pair[1], &a.Backend); err != nil {
		return fmt.Errorf("decoding assignment backend: %w", err)
	}
	return nil
}

// StrategyComparison is one whole-query execution strategy.
type StrategyComparison struct {
	Name                    string       `json:"name"`
	Description             string       `json:"description"`
	TotalEstimatedTimeMs    float64      `json:"total_estimated_time_ms"`
	TotalEstimatedCostUSD   float64      `json:"total_estimated_cost_usd"`
	OverallSpeedup          float64      `json:"overall_speedup"`
	OperatorBackends        []Assignment `json:"operator_backends"`
	BreakEvenQueriesPerHour *float64     `json:"break_even_queries_per_hour"`
}

type Recommendation struct {
	Category    RecommendationCategory `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	// ActionableSQL is a statement or config line that can be copied as is.
	ActionableSQL *string `json:"actionable_sql"`
}

// WorkbenchResult is everything the advisor has to say about one query.
type WorkbenchResult struct {
	SQL                      string               `json:"sql"`
	ExplainText              *string              `json:"explain_text"`
	HardwareProfile          hardware.Profile     `json:"hardware_profile"`
	OperatorAnalyses         []OperatorAnalysis   `json:"operator_analyses"`
	Strategies               []StrategyComparison `json:"strategies"`
	RecommendedStrategyIndex int                  `json:"recommended_strategy_index"`
	Recommendations          []Recommendation     `json:"recommendations"`
}

// RecommendedStrategy returns the strategy marked as recommended.
func (r *WorkbenchResult) RecommendedStrategy() StrategyComparison {
	if r.RecommendedStrategyIndex >= 0 && r.RecommendedStrategyIndex < len(r.Strategies) {
		return r.Strategies[r.RecommendedStrategyIndex]
	}
	return StrategyComparison{}
}
