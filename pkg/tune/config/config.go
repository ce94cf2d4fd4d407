// Package config loads llmtune's own configuration: where the strategy
// file lives, which file to write, and how the systemd wiring is laid out.
// This is distinct from the operator's strategy file — a missing tool
// config is fine (defaults apply), a missing strategy file is fatal.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/llmtune/llmtune/pkg/tune/systemd"
)

// ServiceConfig describes the systemd wiring for the managed server.
type ServiceConfig struct {
	Name          string `mapstructure:"name"`
	VendorUnitDir string `mapstructure:"vendor_unit_dir"`
	AdminUnitDir  string `mapstructure:"admin_unit_dir"`
	BinaryPath    string `mapstructure:"binary_path"`
}

// LoggingConfig configures pipeline logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Components map[string]string `mapstructure:"components"`
}

// Config is the tool configuration.
type Config struct {
	StrategyPath string        `mapstructure:"strategy_path"`
	TargetPath   string        `mapstructure:"target_path"`
	Service      ServiceConfig `mapstructure:"service"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// Load reads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - the explicit path, when non-empty
//   - /etc/llmtune/config.yaml
//   - $XDG_CONFIG_HOME/llmtune/config.yaml
//
// Environment variables are prefixed with LLMTUNE_
// (e.g. LLMTUNE_STRATEGY_PATH).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/llmtune")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "llmtune"))
	}

	v.SetEnvPrefix("LLMTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("strategy_path", DefaultStrategyPath)
	v.SetDefault("target_path", DefaultTargetPath)
	v.SetDefault("service.name", DefaultServiceName)
	v.SetDefault("service.vendor_unit_dir", systemd.DefaultVendorDir)
	v.SetDefault("service.admin_unit_dir", systemd.DefaultAdminDir)
	v.SetDefault("service.binary_path", DefaultBinaryPath)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.components", map[string]string{})

	// A missing file from the default search is fine (defaults apply),
	// but an explicit --config path must exist.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Guard builds the systemd wiring description from the configuration.
func (c *Config) Guard() systemd.Guard {
	return systemd.Guard{
		ServiceName:  c.Service.Name,
		VendorDir:    c.Service.VendorUnitDir,
		AdminDir:     c.Service.AdminUnitDir,
		ExecStartPre: c.Service.BinaryPath + " apply",
		MaskPath:     systemd.DefaultMaskPath,
	}
}
