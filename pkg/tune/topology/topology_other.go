//go:build !linux && !darwin

package topology

import "runtime"

// defaultTotalRAM is the fallback when the platform offers no memory
// inventory. 8GB is a reasonable floor for machines running local inference.
const defaultTotalRAM = 8 * 1024 * 1024 * 1024

// Detect falls back to the Go scheduler's CPU count on platforms without a
// native inventory interface. Physical core count cannot be distinguished
// from logical here, so SMT-aware modes behave as if SMT were absent.
func Detect() (Snapshot, error) {
	n := runtime.NumCPU()
	return normalize(Snapshot{
		PhysicalCores: n,
		LogicalCores:  n,
		TotalRAM:      defaultTotalRAM,
	})
}
