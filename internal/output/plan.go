package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/accelplan/internal/plan"
)

// RenderPlanText dumps a parsed plan as an indented tree, or the raw input
// when no structured plan was recognised.
func RenderPlanText(w io.Writer, p plan.Plan, opts Options) error {
	tw := newTextWriter(w, opts)

	if p.Root == nil {
		tw.printf("%s%sNo structured plan found; input kept as raw text.%s\n\n", tw.c.bold, tw.c.yellow, tw.c.reset)
		if strings.TrimSpace(p.Text) != "" {
			tw.printf("%s", indentLines(p.Text, "  "))
		}
		return tw.err
	}

	tw.heading(fmt.Sprintf("Plan (%s, %d nodes)", p.Format, p.Root.Count()))
	tw.renderNode(p.Root, 0)

	return tw.err
}

func (tw *textWriter) renderNode(n *plan.PlanNode, depth int) {
	indent := strings.Repeat("  ", depth+1)
	prefix := ""
	if depth > 0 {
		prefix = "-> "
	}

	tw.printf("%s%s%s%s%s", indent, prefix, tw.c.bold, n.Operator, tw.c.reset)
	if n.Relation != "" {
		tw.printf(" on %s", n.Relation)
	}
	tw.printf("  %s(cost=%.2f..%.2f rows=%s", tw.c.dim, n.CostStartup, n.CostTotal, tw.count(float64(n.EstimatedRows)))
	if n.ActualRows != nil {
		tw.printf(" actual=%s", tw.count(float64(*n.ActualRows)))
	}
	if n.ActualTimeMs != nil {
		tw.printf(" time=%.3fms", *n.ActualTimeMs)
	}
	tw.printf(")%s\n", tw.c.reset)

	for _, kv := range n.Extra {
		tw.printf("%s   %s%s: %s%s\n", indent, tw.c.dim, kv.Key, kv.Value, tw.c.reset)
	}

	for i := range n.Children {
		tw.renderNode(&n.Children[i], depth+1)
	}
}
