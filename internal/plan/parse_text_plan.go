package plan

import (
	"math"
	"strconv"
	"strings"
)

const (
	costClause   = "(cost="
	actualClause = "(actual "
	childMarker  = "->"
)

// ParseText parses indentation-structured EXPLAIN text such as:
//
//	Hash Join  (cost=10.00..250.00 rows=1000 width=64)
//	  ->  Seq Scan on orders  (cost=0.00..180.00 rows=9000 width=32)
//	  ->  Hash  (cost=5.00..5.00 rows=100 width=32)
//
// A line belongs to the nearest preceding line with strictly smaller
// indentation. Depth is the raw count of leading whitespace, so ragged
// indentation is taken literally.
func ParseText(text string) (*PlanNode, bool) {
	lines := planLines(text)
	if len(lines) == 0 {
		return nil, false
	}
	node, _ := parseLines(lines, 0)
	return &node, true
}

func planLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// parseLines parses lines[start] and every following deeper line as its
// subtree, returning the index of the first line outside that subtree.
func parseLines(lines []string, start int) (PlanNode, int) {
	indent := indentOf(lines[start])
	node := parseOperatorLine(stripMarker(lines[start]))

	idx := start + 1
	for idx < len(lines) && indentOf(lines[idx]) > indent {
		var child PlanNode
		child, idx = parseLines(lines, idx)
		node.Children = append(node.Children, child)
	}
	return node, idx
}

func stripMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	return strings.TrimSpace(strings.TrimPrefix(trimmed, childMarker))
}

// parseOperatorLine splits "Op on rel  (cost=a..b rows=n width=w)" into its
// parts. Fields that are missing or malformed stay zero.
func parseOperatorLine(line string) PlanNode {
	node := PlanNode{Operator: line}

	idx := strings.Index(line, costClause)
	if idx >= 0 {
		head := strings.TrimSpace(line[:idx])
		if head != "" {
			node.Operator = head
			if on := strings.Index(head, " on "); on >= 0 {
				node.Operator = strings.TrimSpace(head[:on])
				relation := strings.Fields(head[on+len(" on "):])
				if len(relation) > 0 {
					node.Relation = relation[0]
				}
				if len(relation) > 1 {
					node.Extra = append(node.Extra, KeyValue{Key: "Alias", Value: strings.Join(relation[1:], " ")})
				}
			}
		}
		parseCostClause(clauseBody(line[idx+len(costClause):]), &node)
	}

	if a := strings.Index(line, actualClause); a >= 0 {
		parseActualClause(clauseBody(line[a+len(actualClause):]), &node)
	}

	return node
}

func clauseBody(s string) string {
	if end := strings.IndexByte(s, ')'); end >= 0 {
		return s[:end]
	}
	return s
}

func parseCostClause(body string, node *PlanNode) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return
	}
	node.CostStartup, node.CostTotal = parseRange(fields[0])
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "rows="):
			node.EstimatedRows, _ = parseTextCount(strings.TrimPrefix(f, "rows="))
		case strings.HasPrefix(f, "width="):
			w, _ := parseTextCount(strings.TrimPrefix(f, "width="))
			node.Width = int(w)
		}
	}
}

func parseActualClause(body string, node *PlanNode) {
	for _, f := range strings.Fields(body) {
		switch {
		case strings.HasPrefix(f, "time="):
			_, total := parseRange(strings.TrimPrefix(f, "time="))
			node.ActualTimeMs = &total
		case strings.HasPrefix(f, "rows="):
			if rows, ok := parseTextCount(strings.TrimPrefix(f, "rows=")); ok {
				node.ActualRows = &rows
			}
		case strings.HasPrefix(f, "loops="):
			node.Extra = append(node.Extra, KeyValue{Key: "Actual Loops", Value: strings.TrimPrefix(f, "loops=")})
		}
	}
}

// parseRange reads "a..b"; anything unparseable yields zero.
func parseRange(s string) (float64, float64) {
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return 0, 0
	}
	return parseTextFloat(lo), parseTextFloat(hi)
}

func parseTextFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseTextCount(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, true
	}
	return parseCount(s)
}
