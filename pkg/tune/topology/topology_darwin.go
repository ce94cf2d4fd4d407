//go:build darwin

package topology

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Detect reads the host CPU inventory via sysctl.
func Detect() (Snapshot, error) {
	physical, err := unix.SysctlUint32("hw.physicalcpu")
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: sysctl hw.physicalcpu: %v", ErrUnavailable, err)
	}

	logical, err := unix.SysctlUint32("hw.logicalcpu")
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: sysctl hw.logicalcpu: %v", ErrUnavailable, err)
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return Snapshot{}, fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	return normalize(Snapshot{
		PhysicalCores: int(physical),
		LogicalCores:  int(logical),
		TotalRAM:      int64(memsize),
	})
}
