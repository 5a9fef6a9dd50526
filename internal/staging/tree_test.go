package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTreeLifecycle covers creation, population and unconditional removal.
func TestTreeLifecycle(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()

	tree, err := NewTree(outputDir, "deb")
	require.NoError(t, err)
	require.DirExists(t, tree.Root)

	require.NoError(t, tree.WriteFile(filepath.Join("usr", "bin", "app"), []byte("x"), 0o755))
	require.NoError(t, tree.Require(filepath.Join("usr", "bin", "app")))

	tree.Remove()
	require.NoDirExists(t, tree.Root)

	// Second removal is harmless.
	tree.Remove()
}

// TestRequireReportsMissing lists every missing required file.
func TestRequireReportsMissing(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(t.TempDir(), "dmg")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	err = tree.Require("a", "b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "a")
	require.Contains(t, err.Error(), "b")
}

// TestDiskUsageKiB rounds up to whole kibibytes.
func TestDiskUsageKiB(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(t.TempDir(), "deb")
	require.NoError(t, err)

	t.Cleanup(tree.Remove)

	require.NoError(t, tree.WriteFile("one", make([]byte, 100), 0o644))
	require.NoError(t, tree.WriteFile("two", make([]byte, 2048), 0o644))

	size, err := tree.DiskUsageKiB()
	require.NoError(t, err)
	require.Equal(t, int64(3), size)
}

// TestRemoveStaleTrees only touches staging leftovers, not artifacts.
func TestRemoveStaleTrees(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()

	stale := filepath.Join(outputDir, ".staging-appimage-12345")
	require.NoError(t, os.MkdirAll(stale, 0o755))

	artifact := filepath.Join(outputDir, "oxide-browser_1.0.0_amd64.deb")
	require.NoError(t, os.WriteFile(artifact, []byte("pkg"), 0o644))

	require.NoError(t, RemoveStaleTrees(outputDir))
	require.NoDirExists(t, stale)
	require.FileExists(t, artifact)

	// Missing output dir is fine.
	require.NoError(t, RemoveStaleTrees(filepath.Join(outputDir, "nope")))
}
