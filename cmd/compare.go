/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/accelplan/internal/comparator"
	"github.com/jacobarthurs/accelplan/internal/output"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare the recommendations for two plans",
	Long: `Analyze two plans on the same hardware and report how the recommended
strategy, per-operator backends, time and cost changed between them.

Inputs can be SQL files, JSON plans, or EXPLAIN text, and don't need to be
the same type. Either file (but not both) can be "-" to read from stdin.
If no files are provided, enters interactive mode.`,
	Example: `  # Compare two plans
  accelplan compare old.json new.json

  # Compare the same plan on two hardware profiles
  accelplan compare plan.json plan.json --hardware cpu.yaml --new-hardware gpu.yaml

  # Mix input types
  accelplan compare prod-plan.json new-query.sql --profile dev`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		newHardware, _ := cmd.Flags().GetString("new-hardware")

		format, err := outputFormat()
		if err != nil {
			return err
		}

		if len(args) == 2 && args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one input can be read from stdin")
		}

		target, err := resolveTarget(db, profileName)
		if err != nil {
			return err
		}

		files := make([]string, 2)
		copy(files, args)

		opts := plan.ResolveOptions{ConnStr: target.ConnStr}

		opts.Label = "first "
		oldSrc, err := plan.Resolve(cmd.Context(), files[0], opts)
		if err != nil {
			return err
		}
		opts.Label = "second "
		newSrc, err := plan.Resolve(cmd.Context(), files[1], opts)
		if err != nil {
			return err
		}

		baseEngine, err := newEngine(target)
		if err != nil {
			return err
		}
		candidateEngine := baseEngine
		if newHardware != "" {
			newTarget := target
			newTarget.Hardware = newHardware
			if candidateEngine, err = newEngine(newTarget); err != nil {
				return err
			}
		}

		r := newRun()
		oldResult := r.analyze(baseEngine, oldSrc)
		newResult := r.analyze(candidateEngine, newSrc)

		c := &comparator.Comparator{Threshold: threshold}
		result := c.Compare(oldResult, newResult)
		logger.Info().
			Int("backend_changes", result.Summary.BackendChanges).
			Str("verdict", result.Summary.Verdict).
			Msg("comparison complete")

		switch format {
		case "json":
			err = output.RenderJSON(os.Stdout, result)
		case "text":
			err = output.RenderComparisonText(os.Stdout, result, textOptions())
		}
		if err != nil {
			return err
		}

		return r.flush()
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string used to EXPLAIN SQL input")
	compareCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	compareCmd.Flags().Float64P("threshold", "t", comparator.SignificanceThresholdPct, "Percent change below which a difference is ignored")
	compareCmd.Flags().String("new-hardware", "", "Hardware profile for the second input (defaults to --hardware)")
	compareCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
