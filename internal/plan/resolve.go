package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Source is resolved analysis input: the query text, a plan, or both.
type Source struct {
	SQL  string
	Plan *Plan
}

// ResolveOptions controls how SQL input is turned into a plan.
type ResolveOptions struct {
	// ConnStr, when set, is used to EXPLAIN SQL input against a live database.
	ConnStr string
	Analyze bool
	Label   string
}

// Resolve reads input ("" for interactive, "-" for stdin, otherwise a file)
// and classifies it. Plan content is parsed; SQL content is explained when a
// connection is configured and otherwise returned for heuristic analysis.
func Resolve(ctx context.Context, input string, opts ResolveOptions) (Source, error) {
	data, err := readInput(input, opts.Label)
	if err != nil {
		return Source{}, err
	}

	switch detectType(data, input) {
	case "json", "text":
		p := Parse(data)
		return Source{Plan: &p}, nil
	case "sql":
		sql := strings.TrimSpace(string(data))
		if strings.HasPrefix(strings.ToUpper(sql), "EXPLAIN") {
			return Source{}, fmt.Errorf("input should not include EXPLAIN prefix - provide the raw query only")
		}
		if opts.ConnStr == "" {
			return Source{SQL: sql}, nil
		}
		doc, err := Explain(ctx, opts.ConnStr, sql, opts.Analyze)
		if err != nil {
			return Source{}, err
		}
		p := Parse(doc)
		if p.Root == nil {
			return Source{}, fmt.Errorf("database returned an unreadable plan for %sinput", opts.Label)
		}
		return Source{SQL: sql, Plan: &p}, nil
	default:
		return Source{}, fmt.Errorf("unable to detect %sinput type: expected JSON plan, EXPLAIN text, SQL query, or .json/.txt/.sql file", opts.Label)
	}
}

// ReadQuery loads query text from a file, or stdin for "-".
func ReadQuery(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading query: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sEXPLAIN output (JSON or text) or SQL query", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))

	if (strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "{")) &&
		!json.Valid(data) {
		return nil, fmt.Errorf("input appears truncated; for large inputs use: accelplan analyze <file>")
	}

	return data, nil
}

var sqlPrefixes = []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "EXPLAIN", "MATCH", "GRAPH"}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}
	if strings.HasSuffix(filename, ".sql") {
		return "sql"
	}
	if strings.HasSuffix(filename, ".txt") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if looksLikeTextPlan(trimmed) {
		return "text"
	}

	upper := strings.ToUpper(trimmed)
	for _, prefix := range sqlPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return "sql"
		}
	}

	return "unknown"
}
