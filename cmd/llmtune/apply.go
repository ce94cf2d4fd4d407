package main

import (
	"github.com/spf13/cobra"

	"github.com/llmtune/llmtune/pkg/tune"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Derive parameters and write them into the server config",
	Long: `Apply runs the full tuning pipeline: load the strategy file, snapshot
the host CPU topology, derive the parameter set for the selected mode, and
patch the managed server's YAML config. Keys llmtune does not manage are
left untouched.

This is the command the systemd ExecStartPre hook runs. Any failure exits
non-zero and blocks the managed server from starting.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p := tune.Pipeline{
		StrategyPath: cfg.StrategyPath,
		TargetPath:   cfg.TargetPath,
	}
	_, err = p.Run()
	return err
}
