package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llmtune/llmtune/pkg/tune/topology"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Show the detected CPU topology",
	Args:  cobra.NoArgs,
	RunE:  runTopology,
}

func init() {
	topologyCmd.Flags().BoolP("json", "j", false, "output JSON")
	rootCmd.AddCommand(topologyCmd)
}

func runTopology(cmd *cobra.Command, args []string) error {
	snap, err := topology.Detect()
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Physical cores: %d\n", snap.PhysicalCores)
	fmt.Fprintf(out, "Logical cores:  %d\n", snap.LogicalCores)
	fmt.Fprintf(out, "SMT:            %v\n", snap.SMT())
	fmt.Fprintf(out, "Total RAM:      %s\n", humanize.IBytes(uint64(snap.TotalRAM)))
	return nil
}
