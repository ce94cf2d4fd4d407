// Package calc derives inference-server parameters from a tuning strategy
// and a CPU topology snapshot. It is a pure function of its inputs: it
// never queries the host and never writes anything.
package calc

import (
	"errors"
	"fmt"

	"github.com/llmtune/llmtune/pkg/tune/strategy"
	"github.com/llmtune/llmtune/pkg/tune/topology"
)

// ErrInvalidMode is returned when the strategy names a mode outside the
// formula table.
var ErrInvalidMode = errors.New("unrecognized tuning mode")

// Derived is the parameter set written to the managed server's config.
// Invariants: 1 <= ThreadsPerWorker <= basis cores, 1 <= Parallelism <=
// basis cores, where basis is the mode's core basis (physical or logical).
type Derived struct {
	// Mode records which strategy produced these values.
	Mode strategy.Mode

	// Parallelism is the number of concurrent inference workers.
	Parallelism int

	// ThreadsPerWorker is the thread count each worker runs with.
	ThreadsPerWorker int

	// TimeoutSeconds is the per-request timeout handed to the server.
	TimeoutSeconds int

	// BatchSize is the prompt-processing batch size.
	BatchSize int

	// UseMMap selects memory-mapped model loading.
	UseMMap bool

	// TotalThreadBudget is Parallelism * ThreadsPerWorker, written so the
	// server can sanity-check its own pool sizing.
	TotalThreadBudget int

	// BasisCores is the core count the mode's formula ran against.
	BasisCores int

	// UsableCores is BasisCores minus headroom, floored at 1. Diagnostic
	// for conservative mode, authoritative for the others.
	UsableCores int
}

// modeParams are the per-mode policy constants. The divisors are policy,
// not derived from hardware.
type modeParams struct {
	// useLogical selects logical cores as the basis instead of physical.
	useLogical bool

	// headroom is the default core count reserved for the OS.
	headroom int

	// threadDivisor sets per-worker threads to basis/threadDivisor.
	threadDivisor int

	// parallelFromTotal divides the full basis rather than the usable
	// remainder when computing parallelism.
	parallelFromTotal bool

	timeoutSeconds int
	batchSize      int
	useMMap        bool
}

// The formula table. Conservative keeps the largest headroom and longest
// timeout and sizes parallelism off the whole basis; balanced and
// aggressive size it off what headroom leaves behind. Aggressive is the
// only mode that counts SMT siblings.
var modes = map[strategy.Mode]modeParams{
	strategy.ModeConservative: {
		headroom:          4,
		threadDivisor:     4,
		parallelFromTotal: true,
		timeoutSeconds:    600,
		batchSize:         256,
		useMMap:           true,
	},
	strategy.ModeBalanced: {
		headroom:       3,
		threadDivisor:  6,
		timeoutSeconds: 300,
		batchSize:      512,
		useMMap:        true,
	},
	strategy.ModeAggressive: {
		useLogical:     true,
		headroom:       2,
		threadDivisor:  8,
		timeoutSeconds: 120,
		batchSize:      1024,
		useMMap:        false,
	},
}

// Derive computes the parameter set for the given strategy and topology.
// Strategy override fields replace the mode's constants before any
// arithmetic; clamping always runs after, so no input can push a value
// below 1 or past the basis core count.
func Derive(s strategy.Strategy, snap topology.Snapshot) (Derived, error) {
	params, ok := modes[s.Mode]
	if !ok {
		return Derived{}, fmt.Errorf("%w: %q", ErrInvalidMode, s.Mode)
	}

	basis := snap.PhysicalCores
	if params.useLogical {
		basis = snap.LogicalCores
	}

	headroom := params.headroom
	if s.HeadroomCores > 0 {
		headroom = s.HeadroomCores
	}
	usable := clamp(basis-headroom, 1, basis)

	threads := basis / params.threadDivisor
	if s.CoresPerWorker > 0 {
		threads = s.CoresPerWorker
	}
	threads = clamp(threads, 1, basis)

	numerator := usable
	if params.parallelFromTotal {
		numerator = basis
	}
	parallel := clamp(numerator/threads, 1, basis)

	timeout := params.timeoutSeconds
	if s.TimeoutSeconds > 0 {
		timeout = s.TimeoutSeconds
	}
	batch := params.batchSize
	if s.BatchSize > 0 {
		batch = s.BatchSize
	}

	return Derived{
		Mode:              s.Mode,
		Parallelism:       parallel,
		ThreadsPerWorker:  threads,
		TimeoutSeconds:    timeout,
		BatchSize:         batch,
		UseMMap:           params.useMMap,
		TotalThreadBudget: parallel * threads,
		BasisCores:        basis,
		UsableCores:       usable,
	}, nil
}

// Modes returns the recognized mode names, for help text and validation
// messages.
func Modes() []strategy.Mode {
	return []strategy.Mode{strategy.ModeConservative, strategy.ModeBalanced, strategy.ModeAggressive}
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
