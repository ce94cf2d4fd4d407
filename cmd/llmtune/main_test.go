package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/llmtune/llmtune/pkg/tune/calc"
	"github.com/llmtune/llmtune/pkg/tune/strategy"
	"github.com/llmtune/llmtune/pkg/tune/topology"
	"github.com/llmtune/llmtune/pkg/tune/writer"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing strategy", strategy.ErrMissingConfig, exitMissingStrategy},
		{"malformed strategy", strategy.ErrMalformed, exitMalformedStrategy},
		{"invalid mode", calc.ErrInvalidMode, exitInvalidMode},
		{"topology unavailable", topology.ErrUnavailable, exitNoTopology},
		{"write failed", writer.ErrNotWritable, exitWriteFailed},
		{"anything else", errors.New("boom"), 1},
		{"wrapped", fmt.Errorf("loading strategy: %w", strategy.ErrMissingConfig), exitMissingStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// writeToolConfig writes a tool config pointing every path into dir and
// returns its path plus the strategy and target paths.
func writeToolConfig(t *testing.T, dir string) (cfgPath, strategyPath, targetPath string) {
	t.Helper()
	strategyPath = filepath.Join(dir, "tune.conf")
	targetPath = filepath.Join(dir, "llama-server", "config.yaml")
	cfgPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("strategy_path: %s\ntarget_path: %s\n", strategyPath, targetPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, strategyPath, targetPath
}

func TestApplyCommand(t *testing.T) {
	cfgPath, strategyPath, targetPath := writeToolConfig(t, t.TempDir())
	require.NoError(t, os.WriteFile(strategyPath, []byte("MODE=balanced\n"), 0o644))

	rootCmd.SetArgs([]string{"apply", "--config", cfgPath})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	got := map[string]any{}
	require.NoError(t, yaml.Unmarshal(data, &got))

	for _, key := range []string{"num_parallel", "threads_per_worker", "request_timeout", "batch_size", "use_mmap"} {
		assert.Contains(t, got, key)
	}
}

func TestApplyCommand_MissingStrategy(t *testing.T) {
	cfgPath, _, targetPath := writeToolConfig(t, t.TempDir())

	rootCmd.SetArgs([]string{"apply", "--config", cfgPath})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, strategy.ErrMissingConfig), "error = %v", err)

	_, statErr := os.Stat(targetPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlanCommand_WritesNothing(t *testing.T) {
	cfgPath, strategyPath, targetPath := writeToolConfig(t, t.TempDir())
	require.NoError(t, os.WriteFile(strategyPath, []byte("MODE=conservative\n"), 0o644))

	rootCmd.SetArgs([]string{"plan", "--config", cfgPath})
	require.NoError(t, rootCmd.Execute())

	_, statErr := os.Stat(targetPath)
	assert.True(t, os.IsNotExist(statErr), "plan must not write the target")
}
