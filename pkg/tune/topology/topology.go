// Package topology queries the host CPU inventory for the tuning pipeline.
// It reports physical cores (execution units, ignoring SMT siblings) and
// logical cores (schedulable hardware threads), plus total RAM as an
// informational figure for diagnostics.
//
// Detection is platform-specific via build tags. A snapshot is taken fresh
// on every run and never cached.
package topology

import "errors"

// ErrUnavailable is returned when the host does not expose the expected
// CPU inventory interface.
var ErrUnavailable = errors.New("cpu topology unavailable")

// Snapshot is the host CPU inventory at a point in time.
// Invariant: 1 <= PhysicalCores <= LogicalCores.
type Snapshot struct {
	// PhysicalCores is sockets x cores-per-socket, ignoring SMT siblings.
	PhysicalCores int

	// LogicalCores is the number of schedulable hardware threads.
	LogicalCores int

	// TotalRAM is total physical memory in bytes. Informational only: the
	// calculator never reads it, but plan output reports it.
	TotalRAM int64
}

// SMT reports whether the host exposes more hardware threads than
// physical cores.
func (s Snapshot) SMT() bool {
	return s.LogicalCores > s.PhysicalCores
}

// normalize enforces the snapshot invariant on raw detection results.
func normalize(s Snapshot) (Snapshot, error) {
	if s.PhysicalCores < 1 || s.LogicalCores < 1 {
		return Snapshot{}, ErrUnavailable
	}
	if s.LogicalCores < s.PhysicalCores {
		s.LogicalCores = s.PhysicalCores
	}
	return s, nil
}
