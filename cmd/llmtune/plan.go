package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmtune/llmtune/pkg/tune"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what apply would write, without writing",
	Long: `Plan runs the pipeline against the live strategy file and topology but
skips the write, printing the derived parameters for review.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolP("json", "j", false, "output JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p := tune.Pipeline{
		StrategyPath: cfg.StrategyPath,
		TargetPath:   cfg.TargetPath,
		DryRun:       true,
	}
	result, err := p.Run()
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		out, err := json.MarshalIndent(result.Derived, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	d := result.Derived
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode:                %s\n", d.Mode)
	fmt.Fprintf(out, "Basis cores:         %d (usable after headroom: %d)\n", d.BasisCores, d.UsableCores)
	fmt.Fprintf(out, "Parallelism:         %d workers\n", d.Parallelism)
	fmt.Fprintf(out, "Threads per worker:  %d\n", d.ThreadsPerWorker)
	fmt.Fprintf(out, "Total thread budget: %d\n", d.TotalThreadBudget)
	fmt.Fprintf(out, "Request timeout:     %ds\n", d.TimeoutSeconds)
	fmt.Fprintf(out, "Batch size:          %d\n", d.BatchSize)
	fmt.Fprintf(out, "Memory-mapped load:  %v\n", d.UseMMap)
	fmt.Fprintf(out, "Would write:         %s\n", result.TargetPath)
	return nil
}
