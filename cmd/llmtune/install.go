package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Wire the systemd pre-start hook for the managed server",
	Long: `Install relocates any vendor-shipped unit file for the managed server
into /etc/systemd/system, adds a drop-in that runs "llmtune apply" before
every service start, and leaves a dead symlink at the vendor unit path so
a package upgrade cannot reinstate a conflicting unit.

Run "systemctl daemon-reload" afterwards. Requires write access to the
systemd unit directories, which normally means root.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().Bool("uninstall", false, "remove the drop-in and vendor-path mask")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	guard := cfg.Guard()

	if uninstall, _ := cmd.Flags().GetBool("uninstall"); uninstall {
		if err := guard.Uninstall(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed drop-in and vendor mask for %s.service\n", guard.ServiceName)
		fmt.Fprintln(cmd.OutOrStdout(), "Run: systemctl daemon-reload")
		return nil
	}

	if err := guard.Install(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wired %s to run before %s.service\n", guard.ExecStartPre, guard.ServiceName)
	fmt.Fprintf(cmd.OutOrStdout(), "Drop-in: %s\n", guard.DropInPath())
	fmt.Fprintln(cmd.OutOrStdout(), "Run: systemctl daemon-reload")
	return nil
}
