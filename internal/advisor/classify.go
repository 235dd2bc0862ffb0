package advisor

import (
	"strings"
)

// Classifier maps a piece of text (query or operator name) to an
// operation kind.
type Classifier interface {
	Classify(text string) (AccelerableOp, bool)
}

type pattern struct {
	op     AccelerableOp
	tokens []string
}

// QueryClassifier recognises acceleration-relevant constructs in raw query
// text by case-insensitive substring match. It is the fallback used when no
// plan tree is available.
type QueryClassifier struct{}

var queryPatterns = []pattern{
	{HashAggregate, []string{"GROUP BY", "SUM(", "COUNT("}},
	{GraphTraversal, []string{"GRAPH MATCH"}},
	{VectorDistance, []string{"<->"}},
	{CostAnalytics, []string{"COST_ANOMALY_SCORE", "COST_FORECAST"}},
}

// Detect returns every construct found in query, in a fixed order.
func (QueryClassifier) Detect(query string) []AccelerableOp {
	upper := strings.ToUpper(query)
	var ops []AccelerableOp
	for _, p := range queryPatterns {
		if containsAny(upper, p.tokens) {
			ops = append(ops, p.op)
		}
	}
	return ops
}

func (c QueryClassifier) Classify(query string) (AccelerableOp, bool) {
	ops := c.Detect(query)
	if len(ops) == 0 {
		return 0, false
	}
	return ops[0], true
}

// OperatorClassifier classifies plan operator names such as "Seq Scan",
// "HashAggregate" or "HashAggregateExec: SUM(cost)". Only the text before
// the first colon is considered.
type OperatorClassifier struct{}

// Checked in order; the first match wins.
var operatorPatterns = []pattern{
	{HashAggregate, []string{"aggregate"}},
	{GraphTraversal, []string{"graph", "traversal"}},
	{VectorDistance, []string{"vector", "distance", "knn"}},
	{CostAnalytics, []string{"cost_anomaly", "cost_forecast", "costanalytics", "cost analytics"}},
	{RuleEngine, []string{"rule"}},
	{HashJoin, []string{"hash"}},
	{Sort, []string{"sort"}},
	{Filter, []string{"filter"}},
	{Decompression, []string{"seq scan", "parquet", "columnar", "bitmap heap scan", "table scan", "tablescan"}},
}

func (OperatorClassifier) Classify(operator string) (AccelerableOp, bool) {
	head, _, _ := strings.Cut(operator, ":")
	head = strings.ToLower(strings.TrimSpace(head))
	if head == "" {
		return 0, false
	}
	for _, p := range operatorPatterns {
		if containsAny(head, p.tokens) {
			return p.op, true
		}
	}
	return 0, false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
