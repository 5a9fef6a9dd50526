package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheesejaguar/oxide-release/internal/config"
)

// testBinary writes a fake compiled binary and returns its path.
func testBinary(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "oxide-browser")
	require.NoError(t, os.WriteFile(path, []byte("\x7fELF fake"), 0o755))

	return path
}

// assemblerConfig points the icon directory somewhere empty so placeholder
// degradation is exercised.
func assemblerConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.IconDir = filepath.Join(t.TempDir(), "no-icons")

	return cfg
}

// TestDebRoot assembles a package root with control metadata and hooks.
func TestDebRoot(t *testing.T) {
	t.Parallel()

	cfg := assemblerConfig(t)

	tree, err := NewTree(t.TempDir(), "deb")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	require.NoError(t, NewAssembler(cfg).DebRoot(context.Background(), tree, testBinary(t), "amd64"))

	require.FileExists(t, tree.Path("usr", "bin", "oxide-browser"))
	require.FileExists(t, tree.Path("usr", "share", "applications", "oxide-browser.desktop"))
	require.FileExists(t, tree.Path("usr", "share", "metainfo", cfg.Identifier+".metainfo.xml"))
	require.FileExists(t, tree.Path("usr", "share", "doc", "oxide-browser", "copyright"))

	// Icons degrade to placeholders at every required size.
	for _, size := range IconSizes {
		require.FileExists(t, tree.Path("usr", "share", "icons", "hicolor",
			sizeDir(size), "apps", "oxide-browser.png"))
	}

	control, err := os.ReadFile(tree.Path("DEBIAN", "control"))
	require.NoError(t, err)
	require.Contains(t, string(control), "Installed-Size: ")
	require.Contains(t, string(control), "Architecture: amd64")

	// Maintainer scripts carry the executable bit.
	info, err := os.Stat(tree.Path("DEBIAN", "postinst"))
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o111)
}

// TestAppDir assembles an AppImage root with launcher and top-level entries.
func TestAppDir(t *testing.T) {
	t.Parallel()

	cfg := assemblerConfig(t)

	tree, err := NewTree(t.TempDir(), "appimage")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	require.NoError(t, NewAssembler(cfg).AppDir(context.Background(), tree, testBinary(t)))

	require.FileExists(t, tree.Path("AppRun"))
	require.FileExists(t, tree.Path("oxide-browser.desktop"))
	require.FileExists(t, tree.Path("oxide-browser.png"))
	require.FileExists(t, tree.Path(".DirIcon"))
	require.FileExists(t, tree.Path("usr", "bin", "oxide-browser"))

	info, err := os.Stat(tree.Path("AppRun"))
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o111)
}

// TestAppBundle assembles a .app bundle with a rewritten manifest.
func TestAppBundle(t *testing.T) {
	t.Parallel()

	cfg := assemblerConfig(t)

	tree, err := NewTree(t.TempDir(), "dmg")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	bundle, err := NewAssembler(cfg).AppBundle(context.Background(), tree, testBinary(t))
	require.NoError(t, err)
	require.Equal(t, tree.Path("Oxide Browser.app"), bundle)

	plist, err := os.ReadFile(filepath.Join(bundle, "Contents", "Info.plist"))
	require.NoError(t, err)
	require.Contains(t, string(plist), "<string>"+cfg.Identifier+"</string>")
	require.Contains(t, string(plist), "<string>"+cfg.Version+"</string>")
	require.NotContains(t, string(plist), "PLACEHOLDER")

	require.FileExists(t, filepath.Join(bundle, "Contents", "Resources", "app.icns"))
}

// TestPortableRoot assembles the self-contained archive tree.
func TestPortableRoot(t *testing.T) {
	t.Parallel()

	cfg := assemblerConfig(t)

	tree, err := NewTree(t.TempDir(), "portable")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	require.NoError(t, NewAssembler(cfg).PortableRoot(context.Background(), tree, testBinary(t), "oxide-browser"))

	require.FileExists(t, tree.Path("bin", "oxide-browser"))
	require.FileExists(t, tree.Path("PORTABLE"))
	require.FileExists(t, tree.Path("README.txt"))
}

// TestAssemblyFailureIsTyped surfaces a missing binary as ErrAssemblyFailed.
func TestAssemblyFailureIsTyped(t *testing.T) {
	t.Parallel()

	cfg := assemblerConfig(t)

	tree, err := NewTree(t.TempDir(), "deb")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	err = NewAssembler(cfg).DebRoot(context.Background(), tree, filepath.Join(t.TempDir(), "missing"), "amd64")
	require.Error(t, err)

	var assembly *ErrAssemblyFailed

	require.ErrorAs(t, err, &assembly)
	require.Equal(t, "deb", assembly.Format)
}

// sizeDir renders the hicolor directory name for a square icon size.
func sizeDir(size int) string {
	return fmt.Sprintf("%dx%d", size, size)
}
