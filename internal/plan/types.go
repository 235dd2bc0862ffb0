package plan

// PlanNode is one operator of an execution plan. Children are owned by
// their parent; a tree is never mutated after it has been parsed.
type PlanNode struct {
	Operator string `json:"operator"`
	Relation string `json:"relation,omitempty"`

	// Planner estimates
	CostStartup   float64 `json:"cost_startup"`
	CostTotal     float64 `json:"cost_total"`
	EstimatedRows int64   `json:"estimated_rows"`
	Width         int     `json:"width,omitempty"`

	// Runtime telemetry, only present for EXPLAIN ANALYZE output
	ActualRows   *int64   `json:"actual_rows,omitempty"`
	ActualTimeMs *float64 `json:"actual_time_ms,omitempty"`

	Children []PlanNode `json:"children,omitempty"`
	Extra    []KeyValue `json:"extra,omitempty"`
}

// KeyValue is an auxiliary plan attribute that has no dedicated field.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Rows returns the measured row count when available, the estimate otherwise.
func (n *PlanNode) Rows() (rows int64, measured bool) {
	if n.ActualRows != nil {
		return *n.ActualRows, true
	}
	return n.EstimatedRows, false
}

// Label is the operator name qualified by its relation, if any.
func (n *PlanNode) Label() string {
	if n.Relation != "" {
		return n.Operator + " on " + n.Relation
	}
	return n.Operator
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *PlanNode) Count() int {
	total := 1
	for i := range n.Children {
		total += n.Children[i].Count()
	}
	return total
}

// ExtraValue looks up an auxiliary attribute by key.
func (n *PlanNode) ExtraValue(key string) (string, bool) {
	for _, kv := range n.Extra {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Format identifies which input shape produced a Plan.
type Format int

const (
	FormatRaw  Format = 0
	FormatJSON Format = 1
	FormatText Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "raw"
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Plan is the outcome of dispatching raw plan content to the parsers.
// Root is nil when neither shape matched; Text is then shown verbatim.
type Plan struct {
	Format Format    `json:"format"`
	Text   string    `json:"text"`
	Root   *PlanNode `json:"root"`
}
