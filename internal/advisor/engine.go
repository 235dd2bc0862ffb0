// Package advisor recommends a hardware backend for each operator of a
// query and compares whole-query execution strategies.
//
// An Engine is built once from a hardware profile and a cost model and is
// safe for concurrent use; Analyze never fails and never performs I/O.
package advisor

import (
	"fmt"
	"math"

	"github.com/jacobarthurs/accelplan/internal/costmodel"
	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

type Engine struct {
	hw         hardware.Profile
	model      costmodel.Model
	query      QueryClassifier
	classifier Classifier
}

type Option func(*Engine)

// WithClassifier replaces the classifier used for plan operator names.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

func New(hw hardware.Profile, model costmodel.Model, opts ...Option) *Engine {
	e := &Engine{
		hw:         hw,
		model:      model,
		classifier: OperatorClassifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Hardware() hardware.Profile { return e.hw }

// Analyze produces the advisory result for query. When p carries a parsed
// tree, every plan node is analysed; otherwise operators are inferred from
// the query text.
func (e *Engine) Analyze(query string, p *plan.Plan) WorkbenchResult {
	var ops []*operator
	if p != nil && p.Root != nil {
		ops = e.fromPlan(p.Root)
	} else {
		ops = e.fromQuery(query)
	}

	result := WorkbenchResult{
		SQL:             query,
		HardwareProfile: e.hw,
	}
	if p != nil && p.Text != "" {
		text := p.Text
		result.ExplainText = &text
	}

	for _, op := range ops {
		result.OperatorAnalyses = append(result.OperatorAnalyses, op.analysis)
	}
	result.Strategies = buildStrategies(result.OperatorAnalyses)
	result.RecommendedStrategyIndex = recommendedStrategyIndex

	ctx := &analysisContext{
		Query:      query,
		Hardware:   e.hw,
		Operators:  ops,
		Strategies: result.Strategies,
	}
	result.Recommendations = collectRecommendations(ctx)

	return result
}

// fromQuery infers operators from query text: a compressed scan always
// comes first, followed by one operator per detected construct, or a plain
// filter when nothing was detected.
func (e *Engine) fromQuery(query string) []*operator {
	kinds := []AccelerableOp{Decompression}
	detected := e.query.Detect(query)
	if len(detected) == 0 {
		kinds = append(kinds, Filter)
	} else {
		kinds = append(kinds, detected...)
	}

	ops := make([]*operator, 0, len(kinds))
	for _, kind := range kinds {
		m := e.model.Lookup(kind.String())
		ops = append(ops, e.analyze(m.Operator, &kind, m, m.ReferenceRows, rowsAssumed, nil))
	}
	return ops
}

func (e *Engine) fromPlan(root *plan.PlanNode) []*operator {
	refs := Flatten(root)
	ops := make([]*operator, 0, len(refs))
	for i := range refs {
		ref := &refs[i]
		rows, measured := ref.Node.Rows()
		source := rowsEstimated
		if measured {
			source = rowsMeasured
		}
		if rows < 0 {
			rows = 0
		}

		var kind *AccelerableOp
		m := e.model.Generic
		if k, ok := e.classifier.Classify(ref.Node.Operator); ok {
			kind = &k
			m = e.model.Lookup(k.String())
		}
		ops = append(ops, e.analyze(ref.Node.Label(), kind, m, rows, source, ref))
	}
	return ops
}

func (e *Engine) analyze(name string, kind *AccelerableOp, m costmodel.OpModel, rows int64, source rowSource, ref *NodeRef) *operator {
	options := e.backendOptions(m, rows)
	best := chooseBackend(options)

	var opType *AccelerableOp
	if kind != nil {
		k := *kind
		opType = &k
	}

	return &operator{
		analysis: OperatorAnalysis{
			OperatorName:       name,
			OpType:             opType,
			EstimatedRows:      rows,
			RecommendedBackend: options[best].Backend,
			BackendOptions:     options,
			Rationale:          e.rationale(m, rows, source, options, best),
		},
		model:  m,
		source: source,
		ref:    ref,
	}
}

// backendOptions lists CPU first, then each accelerator the model knows
// for this operator and the hardware has, in model order. A GPU option for
// an operator below the offload threshold is listed but unavailable.
func (e *Engine) backendOptions(m costmodel.OpModel, rows int64) []BackendOption {
	scale := m.Scale(rows)
	cpuTime := m.CPUTimeMs * scale

	options := []BackendOption{{
		Backend:          CPU,
		EstimatedSpeedup: 1.0,
		EstimatedTimeMs:  cpuTime,
		EstimatedCostUSD: m.CPUCostUSD * scale,
		Available:        true,
	}}

	for _, acc := range m.Accelerators {
		b, err := ParseBackend(acc.Backend)
		if err != nil || b == CPU || !e.present(b) {
			continue
		}
		// Hand-built models skip costmodel validation.
		if !(acc.Speedup > 0) || math.IsInf(acc.Speedup, 0) {
			continue
		}
		options = append(options, BackendOption{
			Backend:          b,
			EstimatedSpeedup: acc.Speedup,
			EstimatedTimeMs:  cpuTime / acc.Speedup,
			EstimatedCostUSD: acc.CostUSD * scale,
			Available:        b != GPU || rows >= e.hw.GPUOffloadThresholdRows,
		})
	}
	return options
}

// present reports whether the hardware has the backend at all.
func (e *Engine) present(b Backend) bool {
	switch b {
	case CPU:
		return true
	case GPU:
		return e.hw.HasGPU()
	case FPGA:
		return e.hw.FPGAAvailable
	case NPU:
		return e.hw.NPUAvailable
	default:
		return false
	}
}

// chooseBackend picks the available option with the highest speedup,
// breaking ties by lower cost and then by position.
func chooseBackend(options []BackendOption) int {
	best := 0
	for i := 1; i < len(options); i++ {
		o := options[i]
		if !o.Available {
			continue
		}
		cur := options[best]
		if o.EstimatedSpeedup > cur.EstimatedSpeedup ||
			(o.EstimatedSpeedup == cur.EstimatedSpeedup && o.EstimatedCostUSD < cur.EstimatedCostUSD) {
			best = i
		}
	}
	return best
}

func (e *Engine) rationale(m costmodel.OpModel, rows int64, source rowSource, options []BackendOption, best int) string {
	threshold := e.hw.GPUOffloadThresholdRows
	var relation string
	switch {
	case rows > threshold:
		relation = "exceeds"
	case rows == threshold:
		relation = "meets"
	default:
		relation = "is below"
	}
	volume := fmt.Sprintf("%s rows (%s) %s GPU offload threshold (%s)",
		FormatRows(rows), source, relation, FormatRows(threshold))

	chosen := options[best]
	if chosen.Backend != CPU {
		technique := m.Technique
		if technique == "" {
			technique = chosen.Backend.Label()
		}
		return fmt.Sprintf("%s; %s provides %s speedup", volume, technique, FormatSpeedup(chosen.EstimatedSpeedup))
	}

	simd := fmt.Sprintf("CPU/SIMD (%s)", e.hw.SIMDLevel.Label())
	switch {
	case len(m.Accelerators) == 0:
		return fmt.Sprintf("%s; no accelerated implementation, %s is optimal", volume, simd)
	case len(options) == 1:
		return fmt.Sprintf("%s; no matching accelerator on this host, %s is optimal", volume, simd)
	case anyUnavailable(options):
		return fmt.Sprintf("%s; too few rows to offload, %s is optimal", volume, simd)
	default:
		return fmt.Sprintf("%s; no accelerator beats %s", volume, simd)
	}
}

func anyUnavailable(options []BackendOption) bool {
	for _, o := range options {
		if !o.Available {
			return true
		}
	}
	return false
}
