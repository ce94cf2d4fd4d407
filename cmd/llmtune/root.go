package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/llmtune/llmtune/pkg/tune/config"
	"github.com/llmtune/llmtune/pkg/tune/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "llmtune",
		Short: "Tune a local inference server to the host's CPU topology",
		Long: `llmtune derives inference-server parameters (worker parallelism,
per-worker threads, request timeout, batch size) from the host's CPU
topology and a named tuning strategy, then writes them into the server's
YAML config.

It is designed to run as a systemd ExecStartPre hook so every service
start picks up freshly computed parameters. A non-zero exit blocks the
server from starting with a stale or broken configuration.

Examples:
  llmtune apply              # Run the pipeline and update the server config
  llmtune plan               # Show what apply would write, without writing
  llmtune topology           # Show the detected CPU topology
  llmtune install            # Wire the systemd ExecStartPre hook`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: /etc/llmtune/config.yaml)")
	rootCmd.PersistentFlags().String("strategy", "", "strategy file path (overrides config)")
	rootCmd.PersistentFlags().String("target", "", "target server config path (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "errors only")

	_ = viper.BindPFlag("strategy_path", rootCmd.PersistentFlags().Lookup("strategy"))
	_ = viper.BindPFlag("target_path", rootCmd.PersistentFlags().Lookup("target"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the tool configuration, applies flag overrides, and
// initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if s := viper.GetString("strategy_path"); s != "" {
		cfg.StrategyPath = s
	}
	if t := viper.GetString("target_path"); t != "" {
		cfg.TargetPath = t
	}

	level := cfg.Logging.Level
	if viper.GetBool("verbose") {
		level = "debug"
	} else if viper.GetBool("quiet") {
		level = "error"
	}

	if err := logging.Init(logging.Config{
		Level:      level,
		Components: cfg.Logging.Components,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}
