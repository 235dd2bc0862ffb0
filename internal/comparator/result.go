package comparator

import "github.com/jacobarthurs/accelplan/internal/advisor"

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ChangeType int

const (
	NoChange    ChangeType = 0
	Modified    ChangeType = 1
	Added       ChangeType = 2
	Removed     ChangeType = 3
	TypeChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	default:
		return "no_change"
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// OperatorDelta compares the operators found at the same position of two
// analyses.
type OperatorDelta struct {
	Operator   string     `json:"operator"`
	ChangeType ChangeType `json:"change_type"`

	OldOperator string `json:"old_operator,omitempty"`
	NewOperator string `json:"new_operator,omitempty"`

	OldBackend advisor.Backend `json:"old_backend"`
	NewBackend advisor.Backend `json:"new_backend"`

	OldTimeMs float64   `json:"old_time_ms"`
	NewTimeMs float64   `json:"new_time_ms"`
	TimeDelta float64   `json:"time_delta_ms"`
	TimePct   float64   `json:"time_pct"`
	TimeDir   Direction `json:"time_dir"`

	OldCostUSD float64   `json:"old_cost_usd"`
	NewCostUSD float64   `json:"new_cost_usd"`
	CostDelta  float64   `json:"cost_delta_usd"`
	CostPct    float64   `json:"cost_pct"`
	CostDir    Direction `json:"cost_dir"`

	OldRows   int64   `json:"old_rows"`
	NewRows   int64   `json:"new_rows"`
	RowsDelta int64   `json:"rows_delta"`
	RowsPct   float64 `json:"rows_pct"`
}

// BackendChanged reports whether both sides exist and run on different backends.
func (d OperatorDelta) BackendChanged() bool {
	switch d.ChangeType {
	case Added, Removed:
		return false
	default:
		return d.OldBackend != d.NewBackend
	}
}

// StrategyDelta compares a strategy present in both analyses.
type StrategyDelta struct {
	Name string `json:"name"`

	OldTimeMs float64   `json:"old_time_ms"`
	NewTimeMs float64   `json:"new_time_ms"`
	TimePct   float64   `json:"time_pct"`
	TimeDir   Direction `json:"time_dir"`

	OldCostUSD float64   `json:"old_cost_usd"`
	NewCostUSD float64   `json:"new_cost_usd"`
	CostPct    float64   `json:"cost_pct"`
	CostDir    Direction `json:"cost_dir"`

	OldSpeedup float64 `json:"old_speedup"`
	NewSpeedup float64 `json:"new_speedup"`

	OldBreakEven *float64 `json:"old_break_even_queries_per_hour"`
	NewBreakEven *float64 `json:"new_break_even_queries_per_hour"`
}

type ComparisonResult struct {
	Strategies []StrategyDelta `json:"strategies"`
	Operators  []OperatorDelta `json:"operators"`
	Summary    Summary         `json:"summary"`
}

// Summary compares the recommended strategy of each side.
type Summary struct {
	OldStrategy string `json:"old_strategy"`
	NewStrategy string `json:"new_strategy"`

	OldTimeMs float64   `json:"old_time_ms"`
	NewTimeMs float64   `json:"new_time_ms"`
	TimeDelta float64   `json:"time_delta_ms"`
	TimePct   float64   `json:"time_pct"`
	TimeDir   Direction `json:"time_dir"`

	OldCostUSD float64   `json:"old_cost_usd"`
	NewCostUSD float64   `json:"new_cost_usd"`
	CostDelta  float64   `json:"cost_delta_usd"`
	CostPct    float64   `json:"cost_pct"`
	CostDir    Direction `json:"cost_dir"`

	OperatorsAdded       int `json:"operators_added"`
	OperatorsRemoved     int `json:"operators_removed"`
	OperatorsModified    int `json:"operators_modified"`
	OperatorsTypeChanged int `json:"operators_type_changed"`
	BackendChanges       int `json:"backend_changes"`

	Verdict string `json:"verdict"`
}
