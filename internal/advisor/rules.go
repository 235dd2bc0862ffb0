package advisor

import (
	"fmt"
	"strings"
)

const (
	MinRowsForPartitionHint = 100_000_000
	MinRowsForRewriteHint   = 1_000_000
)

// operatorRule inspects one analysed operator.
type operatorRule func(op *operator, ctx *analysisContext) []Recommendation

// queryRule inspects the analysis as a whole.
type queryRule func(ctx *analysisContext) []Recommendation

var operatorRules = []operatorRule{
	checkGPUAggregation,
	checkGPUGraphTraversal,
	checkVectorIndex,
	checkNPUCostAnalytics,
	checkFPGADecompression,
	checkLargeScanPartitioning,
	checkMissingAccelerator,
}

var queryRules = []queryRule{
	checkBreakEven,
	checkSelectStar,
}

// collectRecommendations runs every rule and keeps the first
// recommendation for each title.
func collectRecommendations(ctx *analysisContext) []Recommendation {
	var recs []Recommendation
	for _, op := range ctx.Operators {
		for _, rule := range operatorRules {
			recs = append(recs, rule(op, ctx)...)
		}
	}
	for _, rule := range queryRules {
		recs = append(recs, rule(ctx)...)
	}

	seen := make(map[string]bool)
	out := recs[:0]
	for _, r := range recs {
		if seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		out = append(out, r)
	}
	return out
}

func isOp(op *operator, kind AccelerableOp) bool {
	return op.analysis.OpType != nil && *op.analysis.OpType == kind
}

func actionable(s string) *string {
	return &s
}

func checkGPUAggregation(op *operator, ctx *analysisContext) []Recommendation {
	if !isOp(op, HashAggregate) || op.analysis.RecommendedBackend != GPU {
		return nil
	}
	return []Recommendation{{
		Category:      HardwareAcceleration,
		Title:         "Enable GPU for OLAP aggregation",
		Description:   "Set accelerator.gpu.enable_olap_aggregation = true in MegaDB config",
		ActionableSQL: actionable("SET accelerator.gpu.enable_olap_aggregation = true;"),
	}}
}

func checkGPUGraphTraversal(op *operator, ctx *analysisContext) []Recommendation {
	if !isOp(op, GraphTraversal) || op.analysis.RecommendedBackend != GPU {
		return nil
	}
	return []Recommendation{{
		Category:      HardwareAcceleration,
		Title:         "Enable GPU graph traversal",
		Description:   "Set accelerator.gpu.enable_graph_traversal = true in MegaDB config so GRAPH MATCH runs as GPU BFS",
		ActionableSQL: actionable("SET accelerator.gpu.enable_graph_traversal = true;"),
	}}
}

func checkVectorIndex(op *operator, ctx *analysisContext) []Recommendation {
	if !isOp(op, VectorDistance) {
		return nil
	}
	rec := Recommendation{
		Category: IndexSuggestion,
		Title:    "Add an approximate nearest-neighbour index",
		Description: fmt.Sprintf("Distance operator compares %s rows exhaustively; an HNSW index turns the scan into a graph search",
			FormatRows(op.analysis.EstimatedRows)),
	}
	if rel := op.relation(); rel != "" {
		rec.ActionableSQL = actionable(fmt.Sprintf("CREATE INDEX ON %s USING hnsw (embedding vector_cosine_ops);", rel))
	}
	return []Recommendation{rec}
}

func checkNPUCostAnalytics(op *operator, ctx *analysisContext) []Recommendation {
	if !isOp(op, CostAnalytics) || op.analysis.RecommendedBackend != NPU {
		return nil
	}
	return []Recommendation{{
		Category:      HardwareAcceleration,
		Title:         "Run cost analytics inference on the NPU",
		Description:   "Set accelerator.npu.enable_cost_inference = true in MegaDB config to route COST_ANOMALY_SCORE and COST_FORECAST to ONNX Runtime",
		ActionableSQL: actionable("SET accelerator.npu.enable_cost_inference = true;"),
	}}
}

func checkFPGADecompression(op *operator, ctx *analysisContext) []Recommendation {
	if !isOp(op, Decompression) || op.analysis.RecommendedBackend != FPGA {
		return nil
	}
	target := "scanned data"
	if rel := op.relation(); rel != "" {
		target = rel
	}
	return []Recommendation{{
		Category:    StorageTier,
		Title:       "Keep scanned data ZSTD-compressed",
		Description: fmt.Sprintf("FPGA decompression runs at wire speed, so storing %s compressed cuts scan I/O without costing CPU", target),
	}}
}

func checkLargeScanPartitioning(op *operator, ctx *analysisContext) []Recommendation {
	rel := op.relation()
	if !isOp(op, Decompression) || rel == "" || op.analysis.EstimatedRows < MinRowsForPartitionHint {
		return nil
	}
	return []Recommendation{{
		Category: PartitionStrategy,
		Title:    fmt.Sprintf("Partition %s", rel),
		Description: fmt.Sprintf("%s rows are scanned from %s; partitioning on the filter column lets the planner prune most of them",
			FormatRows(op.analysis.EstimatedRows), rel),
	}}
}

// checkMissingAccelerator flags operators with a known accelerated
// implementation that this host cannot run.
func checkMissingAccelerator(op *operator, ctx *analysisContext) []Recommendation {
	if op.analysis.OpType == nil || op.analysis.EstimatedRows < ctx.Hardware.GPUOffloadThresholdRows {
		return nil
	}
	var missing []string
	var best float64
	for _, acc := range op.model.Accelerators {
		b, err := ParseBackend(acc.Backend)
		if err != nil || hasOption(op.analysis.BackendOptions, b) {
			continue
		}
		missing = append(missing, b.Label())
		if acc.Speedup > best {
			best = acc.Speedup
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []Recommendation{{
		Category: ScalingHint,
		Title:    fmt.Sprintf("Add %s capacity for %s", strings.Join(missing, " or "), op.analysis.OpType.Label()),
		Description: fmt.Sprintf("%s rows of %s could run up to %s faster, but this host has no %s",
			FormatRows(op.analysis.EstimatedRows), op.analysis.OpType.Label(), FormatSpeedup(best), strings.Join(missing, " or ")),
	}}
}

func hasOption(options []BackendOption, b Backend) bool {
	for _, o := range options {
		if o.Backend == b {
			return true
		}
	}
	return false
}

func checkBreakEven(ctx *analysisContext) []Recommendation {
	accel, ok := ctx.accelerated()
	if !ok || accel.BreakEvenQueriesPerHour == nil {
		return nil
	}
	qph := *accel.BreakEvenQueriesPerHour
	return []Recommendation{{
		Category: ScalingHint,
		Title:    "Accelerated strategy costs more per run",
		Description: fmt.Sprintf("Acceleration saves %s per query at $%.4f extra; it pays off above %.1f queries per hour",
			FormatTimeMs(ctx.Strategies[0].TotalEstimatedTimeMs-accel.TotalEstimatedTimeMs),
			accel.TotalEstimatedCostUSD-ctx.Strategies[0].TotalEstimatedCostUSD, qph),
	}}
}

func checkSelectStar(ctx *analysisContext) []Recommendation {
	if !ctx.selectsStar() {
		return nil
	}
	for _, op := range ctx.Operators {
		if isOp(op, Decompression) && op.analysis.EstimatedRows >= MinRowsForRewriteHint {
			return []Recommendation{{
				Category:    QueryRewrite,
				Title:       "Select only the columns you need",
				Description: "SELECT * decompresses every column of the scanned table; naming the columns lets the scan skip the rest",
			}}
		}
	}
	return nil
}
