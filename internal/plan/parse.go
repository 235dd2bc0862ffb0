package plan

import (
	"strings"
)

// Parse tries the structured shape first, then indentation text. When
// neither matches the returned Plan has no root and Format is FormatRaw.
func Parse(data []byte) Plan {
	p := Plan{Text: string(data)}

	if root, ok := ParseJSON(data); ok {
		p.Format = FormatJSON
		p.Root = root
		return p
	}

	if looksLikeTextPlan(p.Text) {
		if root, ok := ParseText(p.Text); ok {
			p.Format = FormatText
			p.Root = root
			return p
		}
	}

	return p
}

// looksLikeTextPlan keeps arbitrary prose (or a SQL statement) from being
// read as a one-node plan.
func looksLikeTextPlan(text string) bool {
	for _, line := range planLines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, costClause) || strings.HasPrefix(trimmed, childMarker) {
			return true
		}
		// DataFusion style: "HashAggregateExec: ..."
		if first, _, ok := strings.Cut(trimmed, ":"); ok && !strings.Contains(first, " ") &&
			(strings.HasSuffix(first, "Exec") || strings.HasSuffix(first, "Scan")) {
			return true
		}
	}
	return looksLikeIndentedTree(text)
}

// looksLikeIndentedTree accepts bare operator trees without cost clauses,
// e.g. "Hash Join\n  Seq Scan on a": a first line that is not SQL with
// every following line indented deeper than it.
func looksLikeIndentedTree(text string) bool {
	lines := planLines(text)
	if len(lines) < 2 || startsWithSQLKeyword(lines[0]) {
		return false
	}
	top := indentOf(lines[0])
	for _, line := range lines[1:] {
		if indentOf(line) <= top {
			return false
		}
	}
	return true
}

func startsWithSQLKeyword(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimRight(fields[0], "(;"))
	for _, kw := range sqlPrefixes {
		if first == kw {
			return true
		}
	}
	return false
}
