package output

import (
	"fmt"
	"io"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/comparator"
)

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult, opts Options) error {
	tw := newTextWriter(w, opts)
	s := result.Summary

	tw.heading("Summary")
	if s.OldStrategy == s.NewStrategy {
		tw.printf("  Strategy: %s\n", s.NewStrategy)
	} else {
		tw.printf("  Strategy: %s → %s\n", s.OldStrategy, s.NewStrategy)
	}
	tw.printf("  Time:     %s\n", tw.formatDelta(s.OldTimeMs, s.NewTimeMs, s.TimePct, s.TimeDir, "%.1f ms"))
	tw.printf("  Cost:     %s\n", tw.formatDelta(s.OldCostUSD, s.NewCostUSD, s.CostPct, s.CostDir, "$%.4f"))
	tw.printf("\n")

	if len(result.Strategies) > 0 {
		tw.heading("Strategies")
		for _, d := range result.Strategies {
			tw.printf("  %s\n", d.Name)
			tw.printf("    time:    %s\n", tw.formatDelta(d.OldTimeMs, d.NewTimeMs, d.TimePct, d.TimeDir, "%.1f ms"))
			tw.printf("    cost:    %s\n", tw.formatDelta(d.OldCostUSD, d.NewCostUSD, d.CostPct, d.CostDir, "$%.4f"))
			if d.OldSpeedup != d.NewSpeedup {
				tw.printf("    speedup: %s → %s\n", advisor.FormatSpeedup(d.OldSpeedup), advisor.FormatSpeedup(d.NewSpeedup))
			}
			if d.OldBreakEven != nil || d.NewBreakEven != nil {
				tw.printf("    break-even: %s → %s queries/hour\n", tw.optionalCount(d.OldBreakEven), tw.optionalCount(d.NewBreakEven))
			}
		}
		tw.printf("\n")
	}

	changes := s.OperatorsAdded + s.OperatorsRemoved + s.OperatorsModified + s.OperatorsTypeChanged
	if changes == 0 {
		tw.printf("%s%sOperators are identical.%s\n", tw.c.bold, tw.c.green, tw.c.reset)
		tw.renderVerdict(s)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed, %d backend changes\n\n",
		s.OperatorsModified, s.OperatorsTypeChanged, s.OperatorsAdded, s.OperatorsRemoved, s.BackendChanges)

	tw.heading("Operator Details")
	for _, d := range result.Operators {
		tw.renderOperatorDelta(d)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderOperatorDelta(d comparator.OperatorDelta) {
	switch d.ChangeType {
	case comparator.NoChange:
		return
	case comparator.Added:
		tw.printf("  %s+ %s%s (%s, %s)\n", tw.c.green, d.Operator, tw.c.reset, d.NewBackend.Badge(), advisor.FormatTimeMs(d.NewTimeMs))
		return
	case comparator.Removed:
		tw.printf("  %s- %s%s (%s, %s)\n", tw.c.red, d.Operator, tw.c.reset, d.OldBackend.Badge(), advisor.FormatTimeMs(d.OldTimeMs))
		return
	case comparator.TypeChanged:
		tw.printf("  %s~ %s → %s%s\n", tw.c.yellow, d.OldOperator, d.NewOperator, tw.c.reset)
	case comparator.Modified:
		tw.printf("  %s~ %s%s\n", tw.c.yellow, d.Operator, tw.c.reset)
	}

	if d.BackendChanged() {
		tw.printf("    backend: %s → %s%s%s\n", d.OldBackend.Badge(), tw.c.bold, d.NewBackend.Badge(), tw.c.reset)
	}
	tw.printf("    time: %s\n", tw.formatDelta(d.OldTimeMs, d.NewTimeMs, d.TimePct, d.TimeDir, "%.1f ms"))
	tw.printf("    cost: %s\n", tw.formatDelta(d.OldCostUSD, d.NewCostUSD, d.CostPct, d.CostDir, "$%.4f"))
	if d.OldRows != d.NewRows {
		tw.printf("    rows: %s → %s (%+.1f%%)\n", advisor.FormatRows(d.OldRows), advisor.FormatRows(d.NewRows), d.RowsPct)
	}
}

func (tw *textWriter) optionalCount(v *float64) string {
	if v == nil {
		return "none"
	}
	return tw.count(*v)
}

func (tw *textWriter) formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := tw.dirColor(dir)
	reset := tw.c.reset
	if color == "" {
		reset = ""
	}
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s(%+.1f%%)%s", oldStr, color, newStr, dirArrow(dir), pct, reset)
}

func (tw *textWriter) dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return tw.c.green
	case comparator.Regressed:
		return tw.c.red
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓ "
	case comparator.Regressed:
		return "↑ "
	default:
		return ""
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch {
	case s.TimeDir == comparator.Improved && s.CostDir == comparator.Improved:
		color = tw.c.green
	case s.TimeDir == comparator.Regressed && s.CostDir == comparator.Regressed:
		color = tw.c.red
	case s.TimeDir == comparator.Improved || s.CostDir == comparator.Improved:
		color = tw.c.yellow
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, tw.c.reset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}
