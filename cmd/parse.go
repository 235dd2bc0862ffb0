/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/accelplan/internal/output"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Show how a plan file is parsed",
	Long: `Parse a JSON or text EXPLAIN plan and print the resulting operator tree.

Content that matches neither shape is reported as raw text, exactly as the
analyze command would treat it. Reads stdin when no file (or "-") is given.`,
	Example: `  accelplan parse plan.json
  accelplan parse plan.txt --format json
  psql -XAtc "EXPLAIN SELECT 1" | accelplan parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}

		file := "-"
		if len(args) > 0 {
			file = args[0]
		}

		data, err := readRaw(file)
		if err != nil {
			return err
		}

		r := newRun()
		p := plan.Parse(data)
		r.metrics.ObserveParse(p)

		event := logger.Info().Str("format", p.Format.String())
		if p.Root != nil {
			event = event.Int("nodes", p.Root.Count())
		}
		event.Msg("plan parsed")

		switch format {
		case "json":
			err = output.RenderJSON(os.Stdout, p)
		case "text":
			err = output.RenderPlanText(os.Stdout, p, textOptions())
		}
		if err != nil {
			return err
		}

		return r.flush()
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
