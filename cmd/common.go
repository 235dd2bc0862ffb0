/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/jacobarthurs/accelplan/internal/advisor"
	"github.com/jacobarthurs/accelplan/internal/costmodel"
	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/metrics"
	"github.com/jacobarthurs/accelplan/internal/output"
	"github.com/jacobarthurs/accelplan/internal/plan"
	"github.com/jacobarthurs/accelplan/internal/profile"
)

func outputFormat() (string, error) {
	format := viper.GetString("format")
	if format != "text" && format != "json" {
		return "", fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
	}
	return format, nil
}

func textOptions() output.Options {
	return output.Options{NoColor: viper.GetBool("no-color")}
}

// resolveTarget merges --db/--profile and the hardware and cost model
// settings with the named or default profile.
func resolveTarget(db, profileName string) (profile.Target, error) {
	return profile.ResolveTarget(db, profileName, viper.GetString("hardware"), viper.GetString("cost-model"))
}

func loadHardware(path string) (hardware.Profile, error) {
	if path == "" {
		hw := hardware.Detect()
		logger.Debug().Str("simd", hw.SIMDLevel.String()).Msg("no hardware profile, using detected CPU only")
		return hw, nil
	}
	hw, err := hardware.Load(path)
	if err != nil {
		return hardware.Profile{}, err
	}
	logger.Debug().Str("path", path).Int("gpus", hw.GPUCount).Msg("loaded hardware profile")
	return hw, nil
}

func loadCostModel(path string) (costmodel.Model, error) {
	if path == "" {
		return costmodel.Default(), nil
	}
	m, err := costmodel.Load(path)
	if err != nil {
		return costmodel.Model{}, err
	}
	logger.Debug().Str("path", path).Msg("loaded cost model")
	return m, nil
}

func newEngine(target profile.Target) (*advisor.Engine, error) {
	hw, err := loadHardware(target.Hardware)
	if err != nil {
		return nil, err
	}
	model, err := loadCostModel(target.CostModel)
	if err != nil {
		return nil, err
	}
	return advisor.New(hw, model), nil
}

// run collects metrics for one command invocation.
type run struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRun() *run {
	reg := prometheus.NewRegistry()
	return &run{registry: reg, metrics: metrics.New(reg)}
}

// analyze runs the engine over src and records what it saw.
func (r *run) analyze(engine *advisor.Engine, src plan.Source) advisor.WorkbenchResult {
	path := metrics.PathQuery
	if src.Plan != nil {
		r.metrics.ObserveParse(*src.Plan)
		logger.Info().Str("format", src.Plan.Format.String()).Msg("plan parsed")
		if src.Plan.Root != nil {
			path = metrics.PathPlan
		} else {
			logger.Warn().Msg("plan not recognised, falling back to query heuristics")
		}
	}

	result := engine.Analyze(src.SQL, src.Plan)
	r.metrics.ObserveAnalysis(path, result)

	strategy := result.RecommendedStrategy()
	logger.Info().
		Str("path", path).
		Int("operators", len(result.OperatorAnalyses)).
		Str("strategy", strategy.Name).
		Float64("speedup", strategy.OverallSpeedup).
		Int("recommendations", len(result.Recommendations)).
		Msg("analysis complete")

	return result
}

func (r *run) flush() error {
	path := viper.GetString("metrics-file")
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, r.registry); err != nil {
		return err
	}
	logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}

// readRaw reads a file verbatim, or stdin for "-".
func readRaw(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
