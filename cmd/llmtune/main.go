// Package main provides the llmtune CLI: a host-resource-aware tuning
// pipeline for a local inference server, meant to run from a systemd
// ExecStartPre hook.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/llmtune/llmtune/pkg/tune/calc"
	"github.com/llmtune/llmtune/pkg/tune/strategy"
	"github.com/llmtune/llmtune/pkg/tune/topology"
	"github.com/llmtune/llmtune/pkg/tune/writer"
)

// Exit codes, one per failure class, so unit journals show at a glance why
// the managed server was held back.
const (
	exitMissingStrategy   = 2
	exitMalformedStrategy = 3
	exitInvalidMode       = 4
	exitNoTopology        = 5
	exitWriteFailed       = 6
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "llmtune: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to its process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, strategy.ErrMissingConfig):
		return exitMissingStrategy
	case errors.Is(err, strategy.ErrMalformed):
		return exitMalformedStrategy
	case errors.Is(err, calc.ErrInvalidMode):
		return exitInvalidMode
	case errors.Is(err, topology.ErrUnavailable):
		return exitNoTopology
	case errors.Is(err, writer.ErrNotWritable):
		return exitWriteFailed
	}
	return 1
}
