package systemd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vendorUnit = `[Unit]
Description=llama-server

[Service]
ExecStart=/usr/bin/llama-server
`

// testGuard builds a guard rooted in a scratch dir, with the mask target
// pointing at a file that exists there.
func testGuard(t *testing.T) Guard {
	t.Helper()
	root := t.TempDir()
	mask := filepath.Join(root, "null")
	require.NoError(t, os.WriteFile(mask, nil, 0o644))
	return Guard{
		ServiceName:  "llama-server",
		VendorDir:    filepath.Join(root, "usr", "lib", "systemd", "system"),
		AdminDir:     filepath.Join(root, "etc", "systemd", "system"),
		ExecStartPre: "/usr/local/bin/llmtune apply",
		MaskPath:     mask,
	}
}

func installVendorUnit(t *testing.T, g Guard) {
	t.Helper()
	require.NoError(t, os.MkdirAll(g.VendorDir, 0o755))
	require.NoError(t, os.WriteFile(g.vendorUnitPath(), []byte(vendorUnit), 0o644))
}

func TestInstall_RelocatesVendorUnit(t *testing.T) {
	g := testGuard(t)
	installVendorUnit(t, g)

	require.NoError(t, g.Install())

	data, err := os.ReadFile(g.adminUnitPath())
	require.NoError(t, err)
	assert.Equal(t, vendorUnit, string(data))

	fi, err := os.Lstat(g.vendorUnitPath())
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink, "vendor path should be a symlink")
	target, err := os.Readlink(g.vendorUnitPath())
	require.NoError(t, err)
	assert.Equal(t, g.MaskPath, target)
}

func TestInstall_WritesDropIn(t *testing.T) {
	g := testGuard(t)

	require.NoError(t, g.Install())

	data, err := os.ReadFile(g.DropInPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Service]")
	assert.Contains(t, string(data), "ExecStartPre=/usr/local/bin/llmtune apply")
}

func TestInstall_Idempotent(t *testing.T) {
	g := testGuard(t)
	installVendorUnit(t, g)

	require.NoError(t, g.Install())
	firstDropIn, err := os.ReadFile(g.DropInPath())
	require.NoError(t, err)
	firstUnit, err := os.ReadFile(g.adminUnitPath())
	require.NoError(t, err)

	require.NoError(t, g.Install())
	secondDropIn, err := os.ReadFile(g.DropInPath())
	require.NoError(t, err)
	secondUnit, err := os.ReadFile(g.adminUnitPath())
	require.NoError(t, err)

	assert.Equal(t, string(firstDropIn), string(secondDropIn))
	assert.Equal(t, string(firstUnit), string(secondUnit))
}

func TestInstall_AdminUnitWins(t *testing.T) {
	g := testGuard(t)
	installVendorUnit(t, g)

	adminEdited := vendorUnit + "Nice=5\n"
	require.NoError(t, os.MkdirAll(g.AdminDir, 0o755))
	require.NoError(t, os.WriteFile(g.adminUnitPath(), []byte(adminEdited), 0o644))

	require.NoError(t, g.Install())

	data, err := os.ReadFile(g.adminUnitPath())
	require.NoError(t, err)
	assert.Equal(t, adminEdited, string(data), "operator's admin unit must not be clobbered")

	// Vendor copy discarded and masked.
	fi, err := os.Lstat(g.vendorUnitPath())
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink)
}

func TestInstall_ReinstatedVendorUnitGetsMaskedAgain(t *testing.T) {
	g := testGuard(t)
	installVendorUnit(t, g)
	require.NoError(t, g.Install())

	// Simulate a package upgrade replacing the mask with a fresh unit.
	require.NoError(t, os.Remove(g.vendorUnitPath()))
	require.NoError(t, os.WriteFile(g.vendorUnitPath(), []byte(vendorUnit+"# v2\n"), 0o644))

	require.NoError(t, g.Install())

	// Admin unit keeps the original; vendor path is dead again.
	data, err := os.ReadFile(g.adminUnitPath())
	require.NoError(t, err)
	assert.Equal(t, vendorUnit, string(data))
	target, err := os.Readlink(g.vendorUnitPath())
	require.NoError(t, err)
	assert.Equal(t, g.MaskPath, target)
}

func TestInstall_NoVendorUnit(t *testing.T) {
	g := testGuard(t)

	require.NoError(t, g.Install())

	// Still masks the vendor path and writes the drop-in.
	target, err := os.Readlink(g.vendorUnitPath())
	require.NoError(t, err)
	assert.Equal(t, g.MaskPath, target)
	_, err = os.Stat(g.DropInPath())
	assert.NoError(t, err)
}

func TestUninstall(t *testing.T) {
	g := testGuard(t)
	installVendorUnit(t, g)
	require.NoError(t, g.Install())

	require.NoError(t, g.Uninstall())

	_, err := os.Stat(g.DropInPath())
	assert.True(t, os.IsNotExist(err), "drop-in should be gone")
	_, err = os.Lstat(g.vendorUnitPath())
	assert.True(t, os.IsNotExist(err), "vendor mask should be gone")

	// Relocated unit survives.
	_, err = os.Stat(g.adminUnitPath())
	assert.NoError(t, err)

	// Uninstall on a clean tree is a no-op.
	require.NoError(t, g.Uninstall())
}
