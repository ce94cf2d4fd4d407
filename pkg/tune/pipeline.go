// Package tune runs the tuning pipeline for the managed inference server:
// load the operator strategy, snapshot CPU topology, derive parameters,
// write them into the server's config file. The pipeline is sequential
// and run-to-completion; the init system serializes invocations, so no
// locking happens here.
package tune

import (
	"fmt"

	"github.com/llmtune/llmtune/pkg/tune/calc"
	"github.com/llmtune/llmtune/pkg/tune/logging"
	"github.com/llmtune/llmtune/pkg/tune/strategy"
	"github.com/llmtune/llmtune/pkg/tune/topology"
	"github.com/llmtune/llmtune/pkg/tune/writer"
)

// Result carries everything a run produced, for logging and for the plan
// command's preview output.
type Result struct {
	Strategy strategy.Strategy
	Snapshot topology.Snapshot
	Derived  calc.Derived

	// TargetPath is where the derived parameters were (or would be)
	// written.
	TargetPath string
}

// Pipeline is one tuning run. Every error is fatal to the run: nothing is
// partially applied, and the correct recovery is to fix the cause and
// rerun.
type Pipeline struct {
	// StrategyPath is the operator strategy file. Must exist.
	StrategyPath string

	// TargetPath is the managed server's config file.
	TargetPath string

	// Detect overrides topology detection. Nil means topology.Detect;
	// tests inject fixed snapshots here.
	Detect func() (topology.Snapshot, error)

	// DryRun computes everything but skips the write.
	DryRun bool
}

// Run executes the pipeline.
func (p Pipeline) Run() (Result, error) {
	logger := logging.Get("pipeline")

	s, err := strategy.Load(p.StrategyPath)
	if err != nil {
		return Result{}, fmt.Errorf("loading strategy: %w", err)
	}
	logger.Debug("strategy loaded", "path", p.StrategyPath, "mode", s.Mode)

	detect := p.Detect
	if detect == nil {
		detect = topology.Detect
	}
	snap, err := detect()
	if err != nil {
		return Result{}, fmt.Errorf("detecting topology: %w", err)
	}
	logger.Debug("topology detected",
		"physical", snap.PhysicalCores,
		"logical", snap.LogicalCores)

	derived, err := calc.Derive(s, snap)
	if err != nil {
		return Result{}, err
	}
	logger.Info("derived parameters",
		"mode", derived.Mode,
		"parallelism", derived.Parallelism,
		"threads_per_worker", derived.ThreadsPerWorker,
		"timeout_s", derived.TimeoutSeconds)

	result := Result{
		Strategy:   s,
		Snapshot:   snap,
		Derived:    derived,
		TargetPath: p.TargetPath,
	}

	if p.DryRun {
		return result, nil
	}

	if err := writer.Apply(derived, p.TargetPath); err != nil {
		return Result{}, err
	}
	logger.Info("config updated", "path", p.TargetPath)

	return result, nil
}
