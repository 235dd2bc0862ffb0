package advisor

import (
	"regexp"

	"github.com/jacobarthurs/accelplan/internal/costmodel"
	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

type NodeRef struct {
	Node   *plan.PlanNode
	Parent *plan.PlanNode
	Depth  int
}

// Flatten lists the nodes of a tree children first, so every operator
// appears after the operators feeding it.
func Flatten(root *plan.PlanNode) []NodeRef {
	if root == nil {
		return nil
	}
	var refs []NodeRef
	collectNodes(root, nil, 0, &refs)
	return refs
}

func collectNodes(node *plan.PlanNode, parent *plan.PlanNode, depth int, refs *[]NodeRef) {
	for i := range node.Children {
		collectNodes(&node.Children[i], node, depth+1, refs)
	}
	*refs = append(*refs, NodeRef{
		Node:   node,
		Parent: parent,
		Depth:  depth,
	})
}

// rowSource says where an operator's row count came from.
type rowSource int

const (
	rowsAssumed rowSource = iota
	rowsEstimated
	rowsMeasured
)

func (s rowSource) String() string {
	switch s {
	case rowsMeasured:
		return "measured"
	case rowsEstimated:
		return "estimated"
	default:
		return "assumed"
	}
}

// operator is an analysed operator together with what produced it.
type operator struct {
	analysis OperatorAnalysis
	model    costmodel.OpModel
	source   rowSource
	// ref is nil when the operator was inferred from query text.
	ref *NodeRef
}

func (o *operator) relation() string {
	if o.ref == nil {
		return ""
	}
	return o.ref.Node.Relation
}

// analysisContext is what recommendation rules get to look at.
type analysisContext struct {
	Query      string
	Hardware   hardware.Profile
	Operators  []*operator
	Strategies []StrategyComparison
}

var selectStarRe = regexp.MustCompile(`(?is)\bselect\s+(distinct\s+)?\*`)

func (c *analysisContext) selectsStar() bool {
	return selectStarRe.MatchString(c.Query)
}

func (c *analysisContext) accelerated() (StrategyComparison, bool) {
	for _, s := range c.Strategies {
		if s.Name == StrategyAccelerated {
			return s, true
		}
	}
	return StrategyComparison{}, false
}
