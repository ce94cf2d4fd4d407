//go:build linux

package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// sysfsCPUDir is the kernel's per-CPU topology tree. A variable so tests
// can point detection at a fake tree.
var sysfsCPUDir = "/sys/devices/system/cpu"

// Detect reads the host CPU inventory from sysfs and total RAM from
// sysinfo(2).
func Detect() (Snapshot, error) {
	physical, logical, err := countCores(sysfsCPUDir)
	if err != nil {
		return Snapshot{}, err
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Snapshot{}, fmt.Errorf("sysinfo: %w", err)
	}

	return normalize(Snapshot{
		PhysicalCores: physical,
		LogicalCores:  logical,
		TotalRAM:      int64(info.Totalram) * int64(info.Unit),
	})
}

// countCores walks cpuDir counting logical CPUs and distinct
// (package, core) pairs. Offline CPUs have no topology directory and are
// skipped, matching what the scheduler can actually use.
func countCores(cpuDir string) (physical, logical int, err error) {
	cpus, err := filepath.Glob(filepath.Join(cpuDir, "cpu[0-9]*"))
	if err != nil || len(cpus) == 0 {
		return 0, 0, fmt.Errorf("%w: no cpu entries under %s", ErrUnavailable, cpuDir)
	}

	cores := make(map[string]struct{})
	for _, cpu := range cpus {
		pkg, err := os.ReadFile(filepath.Join(cpu, "topology", "physical_package_id"))
		if err != nil {
			continue
		}
		core, err := os.ReadFile(filepath.Join(cpu, "topology", "core_id"))
		if err != nil {
			continue
		}
		logical++
		key := strings.TrimSpace(string(pkg)) + ":" + strings.TrimSpace(string(core))
		cores[key] = struct{}{}
	}

	if logical == 0 {
		// Some minimal or containerized kernels omit the topology subtree.
		// Fall back to the scheduler's view rather than failing the run.
		n := runtime.NumCPU()
		return n, n, nil
	}

	return len(cores), logical, nil
}
