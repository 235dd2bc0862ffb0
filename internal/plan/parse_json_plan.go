package plan

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Keys of the structured (EXPLAIN FORMAT JSON) plan document.
const (
	keyPlan            = "Plan"
	keyNodeType        = "Node Type"
	keyRelationName    = "Relation Name"
	keyStartupCost     = "Startup Cost"
	keyTotalCost       = "Total Cost"
	keyPlanRows        = "Plan Rows"
	keyPlanWidth       = "Plan Width"
	keyActualRows      = "Actual Rows"
	keyActualTotalTime = "Actual Total Time"
	keyPlans           = "Plans"
)

var modeledKeys = map[string]bool{
	keyNodeType:        true,
	keyRelationName:    true,
	keyStartupCost:     true,
	keyTotalCost:       true,
	keyPlanRows:        true,
	keyPlanWidth:       true,
	keyActualRows:      true,
	keyActualTotalTime: true,
	keyPlans:           true,
}

// ParseJSON parses a structured plan document. The document may be a bare
// node, an object holding the node under "Plan", or an array whose first
// element is either of those.
func ParseJSON(data []byte) (*PlanNode, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, false
	}

	obj, ok := unwrapDocument(doc)
	if !ok {
		return nil, false
	}

	node, ok := nodeFromDocument(obj)
	if !ok {
		return nil, false
	}
	return &node, true
}

func unwrapDocument(doc any) (map[string]any, bool) {
	if arr, ok := doc.([]any); ok {
		if len(arr) == 0 {
			return nil, false
		}
		doc = arr[0]
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	if inner, ok := obj[keyPlan].(map[string]any); ok {
		return inner, true
	}
	return obj, true
}

// nodeFromDocument fails only when the node type is missing. Children that
// fail are dropped so their siblings survive.
func nodeFromDocument(doc map[string]any) (PlanNode, bool) {
	op, ok := doc[keyNodeType].(string)
	if !ok {
		return PlanNode{}, false
	}

	node := PlanNode{
		Operator:      op,
		CostStartup:   floatValue(doc[keyStartupCost]),
		CostTotal:     floatValue(doc[keyTotalCost]),
		EstimatedRows: countValue(doc[keyPlanRows]),
		Width:         int(countValue(doc[keyPlanWidth])),
	}
	if rel, ok := doc[keyRelationName].(string); ok {
		node.Relation = rel
	}
	if v, ok := doc[keyActualRows]; ok {
		if rows, ok := parseCount(v); ok {
			node.ActualRows = &rows
		}
	}
	if v, ok := doc[keyActualTotalTime]; ok {
		if ms, ok := parseFloat(v); ok {
			node.ActualTimeMs = &ms
		}
	}

	if kids, ok := doc[keyPlans].([]any); ok {
		for _, kid := range kids {
			obj, ok := kid.(map[string]any)
			if !ok {
				continue
			}
			if child, ok := nodeFromDocument(obj); ok {
				node.Children = append(node.Children, child)
			}
		}
	}

	node.Extra = extraFields(doc)
	return node, true
}

// extraFields keeps unmodeled scalar (and string list) attributes, sorted by
// key so output is deterministic.
func extraFields(doc map[string]any) []KeyValue {
	var keys []string
	for k := range doc {
		if !modeledKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var extra []KeyValue
	for _, k := range keys {
		if s, ok := scalarString(doc[k]); ok {
			extra = append(extra, KeyValue{Key: k, Value: s})
		}
	}
	return extra
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}

func parseFloat(v any) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case float64:
		f = t
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func floatValue(v any) float64 {
	f, _ := parseFloat(v)
	return f
}

// parseCount accepts integral and fractional row counts; negative counts
// and counts that do not fit in an int64 are treated as malformed.
func parseCount(v any) (int64, bool) {
	f, ok := parseFloat(v)
	// float64(math.MaxInt64) rounds up to 2^63, which does not convert.
	if !ok || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func countValue(v any) int64 {
	n, _ := parseCount(v)
	return n
}

// MarshalDocument writes a node back into the structured document shape
// accepted by ParseJSON.
func MarshalDocument(node *PlanNode) ([]byte, error) {
	return json.Marshal(toDocument(node))
}

func toDocument(node *PlanNode) map[string]any {
	doc := map[string]any{
		keyNodeType:    node.Operator,
		keyStartupCost: node.CostStartup,
		keyTotalCost:   node.CostTotal,
		keyPlanRows:    node.EstimatedRows,
		keyPlanWidth:   node.Width,
	}
	if node.Relation != "" {
		doc[keyRelationName] = node.Relation
	}
	if node.ActualRows != nil {
		doc[keyActualRows] = *node.ActualRows
	}
	if node.ActualTimeMs != nil {
		doc[keyActualTotalTime] = *node.ActualTimeMs
	}
	for _, kv := range node.Extra {
		if !modeledKeys[kv.Key] {
			doc[kv.Key] = kv.Value
		}
	}
	if len(node.Children) > 0 {
		kids := make([]any, 0, len(node.Children))
		for i := range node.Children {
			kids = append(kids, toDocument(&node.Children[i]))
		}
		doc[keyPlans] = kids
	}
	return doc
}
