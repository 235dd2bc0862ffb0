/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/accelplan/internal/output"
	"github.com/jacobarthurs/accelplan/internal/plan"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Recommend backends for a query or plan",
	Long: `Analyze a query plan and recommend a hardware backend for every operator.

Input can be a JSON EXPLAIN document, indented EXPLAIN text, or a SQL file.
Use "-" to read from stdin. If no file and no --query/--sql is provided,
enters interactive mode.

SQL input is explained against a live database when --db or a profile with a
connection string is configured; otherwise operators are inferred from the
query text.`,
	Example: `  # Heuristic analysis of inline SQL
  accelplan analyze --query "SELECT region, SUM(cost) FROM cur GROUP BY region"

  # Plan file with the query it came from
  accelplan analyze plan.json --sql query.sql

  # EXPLAIN a query on a saved profile's database
  accelplan analyze query.sql --profile prod

  # Read from stdin
  cat plan.txt | accelplan analyze -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		sqlFile, _ := cmd.Flags().GetString("sql")
		query, _ := cmd.Flags().GetString("query")
		explainAnalyze, _ := cmd.Flags().GetBool("analyze")

		format, err := outputFormat()
		if err != nil {
			return err
		}

		target, err := resolveTarget(db, profileName)
		if err != nil {
			return err
		}

		if sqlFile != "" {
			query, err = plan.ReadQuery(sqlFile)
			if err != nil {
				return err
			}
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		opts := plan.ResolveOptions{ConnStr: target.ConnStr, Analyze: explainAnalyze}
		src, err := resolveSource(cmd.Context(), file, query, opts)
		if err != nil {
			return err
		}

		engine, err := newEngine(target)
		if err != nil {
			return err
		}

		r := newRun()
		result := r.analyze(engine, src)

		switch format {
		case "json":
			err = output.RenderJSON(os.Stdout, result)
		case "text":
			err = output.RenderWorkbenchText(os.Stdout, result, textOptions())
		}
		if err != nil {
			return err
		}

		return r.flush()
	},
}

// resolveSource combines a plan or SQL file with query text given by flag.
func resolveSource(ctx context.Context, file, query string, opts plan.ResolveOptions) (plan.Source, error) {
	if file == "" && query != "" {
		if opts.ConnStr == "" {
			return plan.Source{SQL: query}, nil
		}
		doc, err := plan.Explain(ctx, opts.ConnStr, query, opts.Analyze)
		if err != nil {
			return plan.Source{}, err
		}
		p := plan.Parse(doc)
		logger.Debug().Int("bytes", len(doc)).Msg("explained query against database")
		return plan.Source{SQL: query, Plan: &p}, nil
	}

	src, err := plan.Resolve(ctx, file, opts)
	if err != nil {
		return plan.Source{}, err
	}
	if query != "" {
		if src.SQL != "" && src.SQL != query {
			return plan.Source{}, fmt.Errorf("query given twice: use either a SQL file argument or --query/--sql")
		}
		src.SQL = query
	}
	return src, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string used to EXPLAIN SQL input")
	analyzeCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	analyzeCmd.Flags().String("sql", "", "File holding the query text (\"-\" for stdin)")
	analyzeCmd.Flags().StringP("query", "q", "", "Query text")
	analyzeCmd.Flags().Bool("analyze", false, "Run EXPLAIN ANALYZE instead of EXPLAIN when explaining SQL")
	analyzeCmd.MarkFlagsMutuallyExclusive("db", "profile")
	analyzeCmd.MarkFlagsMutuallyExclusive("sql", "query")
}
