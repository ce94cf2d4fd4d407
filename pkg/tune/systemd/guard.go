// Package systemd installs the unit wiring that runs the tuning pipeline
// before the managed inference server starts, and defends that wiring
// against the server's own package scripts.
//
// The guard does three things, all idempotent:
//
//  1. Relocates a vendor-shipped unit file from the packager-writable
//     directory to the admin directory, where package upgrades cannot
//     touch it.
//  2. Drops in an ExecStartPre override so the init system runs
//     "llmtune apply" before every service start.
//  3. Leaves a dead symlink at the vendor path so a future package
//     upgrade cannot quietly reinstate a conflicting unit.
package systemd

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default locations on a systemd host.
const (
	DefaultVendorDir = "/usr/lib/systemd/system"
	DefaultAdminDir  = "/etc/systemd/system"
	DefaultMaskPath  = "/dev/null"
)

// dropInName sorts early so later operator drop-ins can override it.
const dropInName = "10-llmtune.conf"

// Guard describes the wiring for one managed service. Directory fields
// exist so tests can run against a scratch root without privileges.
type Guard struct {
	// ServiceName is the unit name without the .service suffix.
	ServiceName string

	// VendorDir is where the server's package installs its unit.
	VendorDir string

	// AdminDir is where administrator units and drop-ins live.
	AdminDir string

	// ExecStartPre is the full pre-start command line, typically
	// "/usr/local/bin/llmtune apply".
	ExecStartPre string

	// MaskPath is the symlink target that deadens the vendor unit path.
	MaskPath string
}

// NewGuard returns a Guard for serviceName with the standard systemd
// directories.
func NewGuard(serviceName, execStartPre string) Guard {
	return Guard{
		ServiceName:  serviceName,
		VendorDir:    DefaultVendorDir,
		AdminDir:     DefaultAdminDir,
		ExecStartPre: execStartPre,
		MaskPath:     DefaultMaskPath,
	}
}

func (g Guard) unitName() string       { return g.ServiceName + ".service" }
func (g Guard) vendorUnitPath() string { return filepath.Join(g.VendorDir, g.unitName()) }
func (g Guard) adminUnitPath() string  { return filepath.Join(g.AdminDir, g.unitName()) }
func (g Guard) dropInDir() string      { return filepath.Join(g.AdminDir, g.unitName()+".d") }

// DropInPath returns the path of the managed ExecStartPre drop-in.
func (g Guard) DropInPath() string { return filepath.Join(g.dropInDir(), dropInName) }

// Install applies the full wiring. Safe to run repeatedly: a second run on
// an already-wired host changes nothing.
func (g Guard) Install() error {
	if err := g.relocateVendorUnit(); err != nil {
		return err
	}
	if err := g.writeDropIn(); err != nil {
		return err
	}
	return g.maskVendorPath()
}

// Uninstall removes the drop-in and the dead symlink. The relocated unit
// stays in the admin directory; removing it would stop the service from
// existing at all.
func (g Guard) Uninstall() error {
	if err := os.Remove(g.DropInPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing drop-in: %w", err)
	}
	// Drop-in dir may hold operator files; only remove when empty.
	_ = os.Remove(g.dropInDir())

	fi, err := os.Lstat(g.vendorUnitPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting vendor unit: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(g.vendorUnitPath()); err != nil {
			return fmt.Errorf("removing vendor mask: %w", err)
		}
	}
	return nil
}

// relocateVendorUnit moves a regular vendor unit file into the admin
// directory. When an admin unit already exists, the admin copy wins and
// the vendor copy is discarded.
func (g Guard) relocateVendorUnit() error {
	fi, err := os.Lstat(g.vendorUnitPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting vendor unit: %w", err)
	}
	if !fi.Mode().IsRegular() {
		// Already a symlink (mask from an earlier run) or something odd
		// the operator set up on purpose.
		return nil
	}

	if _, err := os.Stat(g.adminUnitPath()); err == nil {
		if err := os.Remove(g.vendorUnitPath()); err != nil {
			return fmt.Errorf("discarding vendor unit: %w", err)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("inspecting admin unit: %w", err)
	}

	if err := os.MkdirAll(g.AdminDir, 0o755); err != nil {
		return fmt.Errorf("creating admin unit dir: %w", err)
	}
	// Copy then remove: /usr and /etc are commonly separate filesystems,
	// so a bare rename can fail with EXDEV.
	data, err := os.ReadFile(g.vendorUnitPath())
	if err != nil {
		return fmt.Errorf("reading vendor unit: %w", err)
	}
	if err := os.WriteFile(g.adminUnitPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing admin unit: %w", err)
	}
	if err := os.Remove(g.vendorUnitPath()); err != nil {
		return fmt.Errorf("removing vendor unit: %w", err)
	}
	return nil
}

// writeDropIn ensures the ExecStartPre override exists with the expected
// content. The empty ExecStartPre= line clears any pre-start commands the
// base unit may declare.
func (g Guard) writeDropIn() error {
	content := fmt.Sprintf(`# Managed by llmtune. Edit the strategy file instead; rerun "llmtune install" after upgrades.
[Service]
ExecStartPre=
ExecStartPre=%s
`, g.ExecStartPre)

	existing, err := os.ReadFile(g.DropInPath())
	if err == nil && string(existing) == content {
		return nil
	}

	if err := os.MkdirAll(g.dropInDir(), 0o755); err != nil {
		return fmt.Errorf("creating drop-in dir: %w", err)
	}
	if err := os.WriteFile(g.DropInPath(), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing drop-in: %w", err)
	}
	return nil
}

// maskVendorPath leaves a dead symlink at the vendor unit path.
func (g Guard) maskVendorPath() error {
	fi, err := os.Lstat(g.vendorUnitPath())
	if err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Readlink(g.vendorUnitPath()); err == nil && target == g.MaskPath {
				return nil
			}
		}
		if err := os.Remove(g.vendorUnitPath()); err != nil {
			return fmt.Errorf("clearing vendor unit path: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("inspecting vendor unit: %w", err)
	}

	if err := os.MkdirAll(g.VendorDir, 0o755); err != nil {
		return fmt.Errorf("creating vendor unit dir: %w", err)
	}
	if err := os.Symlink(g.MaskPath, g.vendorUnitPath()); err != nil {
		return fmt.Errorf("masking vendor unit path: %w", err)
	}
	return nil
}
