package comparator

import (
	"math"

	"github.com/jacobarthurs/accelplan/internal/advisor"
)

func (c *Comparator) diffOperators(oldOps, newOps []advisor.OperatorAnalysis) []OperatorDelta {
	var deltas []OperatorDelta

	for i := 0; i < max(len(oldOps), len(newOps)); i++ {
		if i >= len(oldOps) {
			deltas = append(deltas, addedOperator(&newOps[i]))
			continue
		}
		if i >= len(newOps) {
			deltas = append(deltas, removedOperator(&oldOps[i]))
			continue
		}
		deltas = append(deltas, c.diffOperator(&oldOps[i], &newOps[i]))
	}

	return deltas
}

func (c *Comparator) diffOperator(old, new *advisor.OperatorAnalysis) OperatorDelta {
	delta := OperatorDelta{}

	if old.OperatorName != new.OperatorName {
		delta.ChangeType = TypeChanged
		delta.OldOperator = old.OperatorName
		delta.NewOperator = new.OperatorName
		delta.Operator = new.OperatorName
	} else {
		delta.ChangeType = Modified
		delta.Operator = old.OperatorName
	}

	oldChoice, newChoice := old.Recommended(), new.Recommended()

	delta.OldBackend = old.RecommendedBackend
	delta.NewBackend = new.RecommendedBackend

	delta.OldTimeMs = oldChoice.EstimatedTimeMs
	delta.NewTimeMs = newChoice.EstimatedTimeMs
	delta.TimeDelta = newChoice.EstimatedTimeMs - oldChoice.EstimatedTimeMs
	delta.TimePct = pctChange(oldChoice.EstimatedTimeMs, newChoice.EstimatedTimeMs)
	delta.TimeDir = c.direction(oldChoice.EstimatedTimeMs, newChoice.EstimatedTimeMs, true)

	delta.OldCostUSD = oldChoice.EstimatedCostUSD
	delta.NewCostUSD = newChoice.EstimatedCostUSD
	delta.CostDelta = newChoice.EstimatedCostUSD - oldChoice.EstimatedCostUSD
	delta.CostPct = pctChange(oldChoice.EstimatedCostUSD, newChoice.EstimatedCostUSD)
	delta.CostDir = c.direction(oldChoice.EstimatedCostUSD, newChoice.EstimatedCostUSD, true)

	delta.OldRows = old.EstimatedRows
	delta.NewRows = new.EstimatedRows
	delta.RowsDelta = new.EstimatedRows - old.EstimatedRows
	delta.RowsPct = pctChange(float64(old.EstimatedRows), float64(new.EstimatedRows))

	if delta.ChangeType == Modified && !c.isSignificant(delta) {
		delta.ChangeType = NoChange
	}

	return delta
}

func addedOperator(op *advisor.OperatorAnalysis) OperatorDelta {
	choice := op.Recommended()
	return OperatorDelta{
		ChangeType: Added,
		Operator:   op.OperatorName,
		NewBackend: op.RecommendedBackend,
		NewTimeMs:  choice.EstimatedTimeMs,
		NewCostUSD: choice.EstimatedCostUSD,
		NewRows:    op.EstimatedRows,
	}
}

func removedOperator(op *advisor.OperatorAnalysis) OperatorDelta {
	choice := op.Recommended()
	return OperatorDelta{
		ChangeType: Removed,
		Operator:   op.OperatorName,
		OldBackend: op.RecommendedBackend,
		OldTimeMs:  choice.EstimatedTimeMs,
		OldCostUSD: choice.EstimatedCostUSD,
		OldRows:    op.EstimatedRows,
	}
}

func (c *Comparator) isSignificant(d OperatorDelta) bool {
	if d.OldBackend != d.NewBackend {
		return true
	}
	if math.Abs(d.TimePct) > c.Threshold {
		return true
	}
	if math.Abs(d.CostPct) > c.Threshold {
		return true
	}
	if math.Abs(d.RowsPct) > c.Threshold {
		return true
	}
	return false
}

func (c *Comparator) diffStrategies(old, new []advisor.StrategyComparison) []StrategyDelta {
	var deltas []StrategyDelta
	for _, o := range old {
		n, ok := findStrategy(new, o.Name)
		if !ok {
			continue
		}
		deltas = append(deltas, StrategyDelta{
			Name:         o.Name,
			OldTimeMs:    o.TotalEstimatedTimeMs,
			NewTimeMs:    n.TotalEstimatedTimeMs,
			TimePct:      pctChange(o.TotalEstimatedTimeMs, n.TotalEstimatedTimeMs),
			TimeDir:      c.direction(o.TotalEstimatedTimeMs, n.TotalEstimatedTimeMs, true),
			OldCostUSD:   o.TotalEstimatedCostUSD,
			NewCostUSD:   n.TotalEstimatedCostUSD,
			CostPct:      pctChange(o.TotalEstimatedCostUSD, n.TotalEstimatedCostUSD),
			CostDir:      c.direction(o.TotalEstimatedCostUSD, n.TotalEstimatedCostUSD, true),
			OldSpeedup:   o.OverallSpeedup,
			NewSpeedup:   n.OverallSpeedup,
			OldBreakEven: o.BreakEvenQueriesPerHour,
			NewBreakEven: n.BreakEvenQueriesPerHour,
		})
	}
	return deltas
}

func findStrategy(strategies []advisor.StrategyComparison, name string) (advisor.StrategyComparison, bool) {
	for _, s := range strategies {
		if s.Name == name {
			return s, true
		}
	}
	return advisor.StrategyComparison{}, false
}

func (c *Comparator) direction(old, new float64, lowerPreference bool) Direction {
	if math.Abs(pctChange(old, new)) < c.Threshold {
		return Unchanged
	}
	if lowerPreference {
		if new < old {
			return Improved
		}
		return Regressed
	}
	if new > old {
		return Improved
	}
	return Regressed
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}
