package advisor

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRows abbreviates a row count: 1200000000 -> "1.2B", 100000 -> "100K".
func FormatRows(n int64) string {
	var v float64
	var suffix string
	switch {
	case n >= 1_000_000_000:
		v, suffix = float64(n)/1_000_000_000, "B"
	case n >= 1_000_000:
		v, suffix = float64(n)/1_000_000, "M"
	case n >= 1_000:
		v, suffix = float64(n)/1_000, "K"
	default:
		return strconv.FormatInt(n, 10)
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0") + suffix
}

// FormatTimeMs renders a duration in milliseconds, switching to seconds
// from one second up.
func FormatTimeMs(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// FormatSpeedup renders a multiplier with one decimal: "9.3x", "45x".
func FormatSpeedup(x float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", x), ".0") + "x"
}

// ShortOperatorName drops the "Exec" or "Scan" suffix of engine operator names.
func ShortOperatorName(name string) string {
	if s, ok := strings.CutSuffix(name, "Exec"); ok && s != "" {
		return s
	}
	if s, ok := strings.CutSuffix(name, "Scan"); ok && s != "" {
		return s
	}
	return name
}
