/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jacobarthurs/accelplan/internal/hardware"
	"github.com/jacobarthurs/accelplan/internal/output"
)

var hardwareCmd = &cobra.Command{
	Use:   "hardware",
	Short: "Print the effective hardware profile",
	Long: `Print the hardware profile analyze would use: the --hardware file, the
profile's hardware file, or the detected CPU with no accelerators.

Text output is YAML and can be saved as a starting point for a profile file.`,
	Example: `  # Profile from the default connection profile, or detected
  accelplan hardware

  # Ignore files and probe the CPU
  accelplan hardware --detect > node.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		detect, _ := cmd.Flags().GetBool("detect")
		profileName, _ := cmd.Flags().GetString("profile")

		format, err := outputFormat()
		if err != nil {
			return err
		}

		var hw hardware.Profile
		if detect {
			hw = hardware.Detect()
		} else {
			target, err := resolveTarget("", profileName)
			if err != nil {
				return err
			}
			if hw, err = loadHardware(target.Hardware); err != nil {
				return err
			}
		}

		if format == "json" {
			return output.RenderJSON(os.Stdout, hw)
		}

		data, err := yaml.Marshal(hw)
		if err != nil {
			return fmt.Errorf("marshaling hardware profile: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(hardwareCmd)
	hardwareCmd.Flags().Bool("detect", false, "Probe the running CPU instead of reading a profile file")
	hardwareCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
}
