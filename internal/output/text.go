package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/hardware"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type palette struct {
	reset, red, green, yellow, cyan, bold, dim string
}

var ansi = palette{
	reset:  colorReset,
	red:    colorRed,
	green:  colorGreen,
	yellow: colorYellow,
	cyan:   colorCyan,
	bold:   colorBold,
	dim:    colorDim,
}

// Options controls text rendering.
type Options struct {
	NoColor bool
}

type textWriter struct {
	w   io.Writer
	err error
	c   palette
	num *message.Printer
}

func newTextWriter(w io.Writer, opts Options) *textWriter {
	tw := &textWriter{w: w, num: message.NewPrinter(language.English)}
	if !opts.NoColor {
		tw.c = ansi
	}
	return tw
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *textWriter) heading(title string) {
	tw.printf("%s%s%s%s\n\n", tw.c.bold, tw.c.cyan, title, tw.c.reset)
}

// count groups digits: 23400 -> "23,400".
func (tw *textWriter) count(v float64) string {
	return tw.num.Sprintf("%d", int64(math.Round(v)))
}

func RenderWorkbenchText(w io.Writer, result advisor.WorkbenchResult, opts Options) error {
	tw := newTextWriter(w, opts)

	tw.renderHardware(result.HardwareProfile)
	tw.renderOperators(result.OperatorAnalyses)
	tw.renderStrategies(result)
	tw.renderRecommendations(result.Recommendations)

	return tw.err
}

func (tw *textWriter) renderHardware(hw hardware.Profile) {
	tw.heading("Hardware Profile")

	tw.printf("  CPU:        %s SIMD, batch %s\n", hw.SIMDLevel.Label(), tw.count(float64(hw.CPUBatchSize)))
	if hw.HasGPU() {
		name := hw.GPUDeviceName
		if name == "" {
			name = "GPU"
		}
		tw.printf("  GPU:        %dx %s, %.1f GiB", hw.GPUCount, name, hw.VRAMGiB())
		if cc := hw.GPUComputeCapability; cc != nil {
			tw.printf(", sm_%d%d", cc[0], cc[1])
		}
		tw.printf(", batch %s\n", tw.count(float64(hw.GPUBatchSize)))
	} else {
		tw.printf("  GPU:        %snone%s\n", tw.c.dim, tw.c.reset)
	}
	tw.printf("  FPGA:       %s\n", tw.presence(hw.FPGAAvailable, hw.FPGADeviceName))
	tw.printf("  NPU:        %s\n", tw.presence(hw.NPUAvailable, ""))
	tw.printf("  Offload at: %s rows\n\n", tw.count(float64(hw.GPUOffloadThresholdRows)))
}

func (tw *textWriter) presence(ok bool, name string) string {
	switch {
	case !ok:
		return tw.c.dim + "none" + tw.c.reset
	case name != "":
		return name
	default:
		return "available"
	}
}

func (tw *textWriter) renderOperators(ops []advisor.OperatorAnalysis) {
	tw.heading(fmt.Sprintf("Operators (%d)", len(ops)))

	width := len("OPERATOR")
	for _, op := range ops {
		width = max(width, len(op.OperatorName))
	}

	tw.printf("  %s%-*s  %6s  %-7s  %8s  %7s%s\n", tw.c.dim, width, "OPERATOR", "ROWS", "BACKEND", "TIME", "SPEEDUP", tw.c.reset)
	for i := range ops {
		op := &ops[i]
		choice := op.Recommended()
		color := tw.c.green
		if op.RecommendedBackend == advisor.CPU {
			color = ""
		}
		badge := fmt.Sprintf("%-7s", op.RecommendedBackend.Badge())
		if color != "" {
			badge = color + badge + tw.c.reset
		}
		tw.printf("  %-*s  %6s  %s  %8s  %7s\n",
			width, op.OperatorName,
			advisor.FormatRows(op.EstimatedRows),
			badge,
			advisor.FormatTimeMs(choice.EstimatedTimeMs),
			advisor.FormatSpeedup(choice.EstimatedSpeedup))
		tw.printf("  %s→ %s%s\n", tw.c.dim, op.Rationale, tw.c.reset)
	}
	tw.printf("\n")
}

func (tw *textWriter) renderStrategies(result advisor.WorkbenchResult) {
	tw.heading("Strategies")

	width := 0
	for _, s := range result.Strategies {
		width = max(width, len(s.Name))
	}

	for i, s := range result.Strategies {
		marker := " "
		name := fmt.Sprintf("%-*s", width, s.Name)
		if i == result.RecommendedStrategyIndex {
			marker = "*"
			name = tw.c.bold + name + tw.c.reset
		}
		tw.printf("  %s %s  %9s ms  $%.4f  %6s\n", marker, name,
			tw.count(s.TotalEstimatedTimeMs), s.TotalEstimatedCostUSD,
			advisor.FormatSpeedup(s.OverallSpeedup))
		tw.printf("    %s%s%s\n", tw.c.dim, s.Description, tw.c.reset)
		if s.BreakEvenQueriesPerHour != nil {
			tw.printf("    %sbreak-even at %s queries/hour%s\n", tw.c.yellow, tw.count(*s.BreakEvenQueriesPerHour), tw.c.reset)
		}
	}
	tw.printf("\n")
}

func (tw *textWriter) renderRecommendations(recs []advisor.Recommendation) {
	if len(recs) == 0 {
		tw.printf("%s%sNo recommendations.%s\n", tw.c.bold, tw.c.green, tw.c.reset)
		return
	}

	tw.heading(fmt.Sprintf("Recommendations (%d)", len(recs)))

	for i, r := range recs {
		tw.printf("  %s%-22s%s %s\n", categoryColor(tw.c, r.Category), r.Category.Label(), tw.c.reset, r.Title)
		tw.printf("  %s→ %s%s\n", tw.c.dim, r.Description, tw.c.reset)
		if r.ActionableSQL != nil {
			tw.printf("    %s\n", *r.ActionableSQL)
		}
		if i < len(recs)-1 {
			tw.printf("\n")
		}
	}
}

func categoryColor(c palette, cat advisor.RecommendationCategory) string {
	switch cat {
	case advisor.HardwareAcceleration:
		return c.green
	case advisor.ScalingHint:
		return c.yellow
	case advisor.QueryRewrite:
		return c.red
	default:
		return c.cyan
	}
}

func indentLines(s, indent string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return indent + strings.Join(lines, "\n"+indent) + "\n"
}
