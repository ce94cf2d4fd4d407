package config

// Default configuration values.
const (
	// DefaultStrategyPath is the well-known operator strategy file.
	DefaultStrategyPath = "/etc/llmtune/tune.conf"

	// DefaultTargetPath is the managed server's configuration file.
	DefaultTargetPath = "/etc/llama-server/config.yaml"

	// DefaultServiceName is the systemd unit (without .service) that
	// consumes the target file.
	DefaultServiceName = "llama-server"

	// DefaultBinaryPath is where the install guard expects this tool to
	// live when wiring the ExecStartPre hook.
	DefaultBinaryPath = "/usr/local/bin/llmtune"

	// DefaultLogLevel is the default logging verbosity.
	DefaultLogLevel = "info"
)
