// Package comparator diffs two advisory results, typically the same query
// analysed before and after a plan or hardware change.
package comparator

import (
	"github.com/jacobarthurs/accelplan/internal/advisor"
)

type Comparator struct {
	Threshold float64
}

func (c *Comparator) Compare(old, new advisor.WorkbenchResult) ComparisonResult {
	oldStrategy := old.RecommendedStrategy()
	newStrategy := new.RecommendedStrategy()

	summary := Summary{
		OldStrategy: oldStrategy.Name,
		NewStrategy: newStrategy.Name,

		OldTimeMs: oldStrategy.TotalEstimatedTimeMs,
		NewTimeMs: newStrategy.TotalEstimatedTimeMs,
		TimeDelta: newStrategy.TotalEstimatedTimeMs - oldStrategy.TotalEstimatedTimeMs,
		TimePct:   pctChange(oldStrategy.TotalEstimatedTimeMs, newStrategy.TotalEstimatedTimeMs),
		TimeDir:   c.direction(oldStrategy.TotalEstimatedTimeMs, newStrategy.TotalEstimatedTimeMs, true),

		OldCostUSD: oldStrategy.TotalEstimatedCostUSD,
		NewCostUSD: newStrategy.TotalEstimatedCostUSD,
		CostDelta:  newStrategy.TotalEstimatedCostUSD - oldStrategy.TotalEstimatedCostUSD,
		CostPct:    pctChange(oldStrategy.TotalEstimatedCostUSD, newStrategy.TotalEstimatedCostUSD),
		CostDir:    c.direction(oldStrategy.TotalEstimatedCostUSD, newStrategy.TotalEstimatedCostUSD, true),
	}

	operators := c.diffOperators(old.OperatorAnalyses, new.OperatorAnalyses)
	for i := range operators {
		countChanges(&operators[i], &summary)
	}
	summary.Verdict = verdict(summary.TimeDir, summary.CostDir)

	return ComparisonResult{
		Strategies: c.diffStrategies(old.Strategies, new.Strategies),
		Operators:  operators,
		Summary:    summary,
	}
}

func countChanges(delta *OperatorDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.OperatorsAdded++
	case Removed:
		summary.OperatorsRemoved++
	case Modified:
		summary.OperatorsModified++
	case TypeChanged:
		summary.OperatorsTypeChanged++
	}
	if delta.BackendChanged() {
		summary.BackendChanges++
	}
}

func verdict(timeDir, costDir Direction) string {
	switch {
	case timeDir == Improved && costDir == Improved:
		return "faster and cheaper"
	case timeDir == Regressed && costDir == Regressed:
		return "slower and more expensive"
	case timeDir == Improved && costDir == Regressed:
		return "faster but more expensive"
	case timeDir == Regressed && costDir == Improved:
		return "slower but cheaper"
	case timeDir == Improved:
		return "faster"
	case timeDir == Regressed:
		return "slower"
	case costDir == Improved:
		return "cheaper"
	case costDir == Regressed:
		return "more expensive"
	default:
		return "no significant change"
	}
}
