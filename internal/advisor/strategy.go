package advisor

const (
	StrategyCPUOnly     = "CPU-only"
	StrategyAccelerated = "Accelerated"

	recommendedStrategyIndex = 1

	msPerHour = 1000.0 * 3600.0
)

// buildStrategies returns the CPU-only baseline followed by the strategy
// that runs every operator on its recommended backend.
func buildStrategies(ops []OperatorAnalysis) []StrategyComparison {
	cpu := StrategyComparison{
		Name:           StrategyCPUOnly,
		Description:    "All operators on CPU with SIMD",
		OverallSpeedup: 1.0,
	}
	accel := StrategyComparison{
		Name:        StrategyAccelerated,
		Description: "Optimal hardware per operator",
	}

	for i := range ops {
		op := &ops[i]
		if len(op.BackendOptions) > 0 {
			base := op.BackendOptions[0]
			cpu.TotalEstimatedTimeMs += base.EstimatedTimeMs
			cpu.TotalEstimatedCostUSD += base.EstimatedCostUSD
		}
		cpu.OperatorBackends = append(cpu.OperatorBackends, Assignment{Operator: op.OperatorName, Backend: CPU})

		chosen := op.Recommended()
		accel.TotalEstimatedTimeMs += chosen.EstimatedTimeMs
		accel.TotalEstimatedCostUSD += chosen.EstimatedCostUSD
		accel.OperatorBackends = append(accel.OperatorBackends, Assignment{Operator: op.OperatorName, Backend: op.RecommendedBackend})
	}

	accel.OverallSpeedup = Speedup(cpu.TotalEstimatedTimeMs, accel.TotalEstimatedTimeMs)
	accel.BreakEvenQueriesPerHour = BreakEven(
		cpu.TotalEstimatedTimeMs, cpu.TotalEstimatedCostUSD,
		accel.TotalEstimatedTimeMs, accel.TotalEstimatedCostUSD,
	)

	return []StrategyComparison{cpu, accel}
}

// Speedup is baseline time over candidate time, or 1 when the candidate
// takes no time at all.
func Speedup(baseMs, candidateMs float64) float64 {
	if candidateMs <= 0 {
		return 1.0
	}
	return baseMs / candidateMs
}

// BreakEven is the throughput, in queries per hour, at which a faster but
// more expensive strategy pays for itself. It is nil unless the candidate
// both costs more and saves time.
func BreakEven(baseMs, baseCost, candidateMs, candidateCost float64) *float64 {
	if candidateCost <= baseCost || baseMs <= candidateMs {
		return nil
	}
	hoursSaved := (baseMs - candidateMs) / msPerHour
	if hoursSaved <= 0 {
		return nil
	}
	v := (candidateCost - baseCost) / hoursSaved
	return &v
}
