/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/profile"
)

const configTemplate = `# accelplan configuration. Every key can also be set with a flag or an
# ACCELPLAN_* environment variable (for example ACCELPLAN_LOG_LEVEL).

# Hardware profile used when neither --hardware nor a profile names one.
hardware: %s

# Optional cost model overriding the built-in per-operator constants.
# cost-model: /path/to/costs.yaml

# Output format: text or json.
format: text

# Log level: debug, info, warn, error.
log-level: warn

# Write Prometheus metrics here after each run (node-exporter textfile).
# metrics-file: /var/lib/node_exporter/textfile/accelplan.prom
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create config.yaml and hardware.yaml in the accelplan config directory.

The hardware file starts from the detected CPU with no accelerators; edit it
to describe the GPUs, FPGAs and NPUs of the target deployment. Existing files
are not overwritten unless --force is given.`,
	Example: `  # Create default config
  accelplan init

  # Overwrite existing config
  accelplan init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		dir, err := profile.ConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		hwPath := filepath.Join(dir, "hardware.yaml")
		hwData, err := yaml.Marshal(hardware.Detect())
		if err != nil {
			return fmt.Errorf("marshaling hardware profile: %w", err)
		}
		if err := writeTemplate(hwPath, hwData, force); err != nil {
			return err
		}

		cfgPath := filepath.Join(dir, "config.yaml")
		if err := writeTemplate(cfgPath, fmt.Appendf(nil, configTemplate, hwPath), force); err != nil {
			return err
		}

		return nil
	},
}

func writeTemplate(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("%s already exists, skipping (use --force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Created %s\n", path)
	logger.Debug().Str("path", path).Msg("template written")
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite existing config files")
}
