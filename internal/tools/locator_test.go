package tools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFakeTool drops an executable file into dir and returns its path.
func writeFakeTool(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	return path
}

// TestProbePrefersEarliestCandidate ensures candidate order decides the
// winner and the variant tag follows the matched candidate.
func TestProbePrefersEarliestCandidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	newer := writeFakeTool(t, dir, "builder-v4")
	older := writeFakeTool(t, dir, "builder-v3")

	locator := NewLocator()
	handle := locator.Probe(context.Background(), "builder", []Candidate{
		{Path: newer, Variant: "v4"},
		{Path: older, Variant: "v3"},
	})

	require.True(t, handle.Found)
	require.Equal(t, newer, handle.Path)
	require.Equal(t, "v4", handle.Variant)
}

// TestProbeFallsThroughMissingCandidates ensures absent paths are skipped.
func TestProbeFallsThroughMissingCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := writeFakeTool(t, dir, "builder-v3")

	locator := NewLocator()
	handle := locator.Probe(context.Background(), "builder", []Candidate{
		{Path: filepath.Join(dir, "missing"), Variant: "v4"},
		{Path: older, Variant: "v3"},
	})

	require.True(t, handle.Found)
	require.Equal(t, "v3", handle.Variant)
}

// TestProbeAbsenceIsExplicit ensures a fully missing tool yields a non-error
// absence marker, not a zero-value surprise.
func TestProbeAbsenceIsExplicit(t *testing.T) {
	t.Parallel()

	locator := NewLocator()
	handle := locator.Probe(context.Background(), "ghost", []Candidate{
		{Path: filepath.Join(t.TempDir(), "nothing")},
	})

	require.False(t, handle.Found)
	require.Empty(t, handle.Path)
	require.Equal(t, "ghost", handle.Name)
}

// TestProbeMemoizes ensures a tool is never re-probed within a run, even if
// the filesystem changes after the first answer.
func TestProbeMemoizes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFakeTool(t, dir, "flaky")

	locator := NewLocator()

	first := locator.Probe(context.Background(), "flaky", []Candidate{{Path: path}})
	require.True(t, first.Found)

	require.NoError(t, os.Remove(path))

	second := locator.Probe(context.Background(), "flaky", []Candidate{{Path: path}})
	require.True(t, second.Found)
	require.Equal(t, first.Path, second.Path)
}

// TestSeed ensures pre-resolved handles short-circuit probing.
func TestSeed(t *testing.T) {
	t.Parallel()

	locator := NewLocator()
	locator.Seed(Handle{Name: ToolAppImage, Path: "/cache/appimagetool", Variant: "cached", Found: true})

	handle := locator.Locate(context.Background(), ToolAppImage)
	require.True(t, handle.Found)
	require.Equal(t, "cached", handle.Variant)
}

// TestDefaultCandidatesProbeInstallPathsFirst ensures every built-in
// candidate list checks well-known absolute install locations before
// falling back to the command search path, within each variant.
func TestDefaultCandidatesProbeInstallPathsFirst(t *testing.T) {
	t.Parallel()

	for name, candidates := range defaultCandidates {
		bareSeen := make(map[string]bool)

		for _, candidate := range candidates {
			if filepath.IsAbs(candidate.Path) {
				require.False(t, bareSeen[candidate.Variant],
					"%s: absolute candidate %s listed after a search-path fallback", name, candidate.Path)
			} else {
				bareSeen[candidate.Variant] = true
			}
		}
	}
}

// TestLocateInstallPathShadowsSearchPath ensures a copy of a tool on PATH
// does not win over the well-known install location.
func TestLocateInstallPathShadowsSearchPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH semantics differ on windows")
	}

	installDir := t.TempDir()
	installed := writeFakeTool(t, installDir, "compiler")

	pathDir := t.TempDir()
	writeFakeTool(t, pathDir, "compiler")
	t.Setenv("PATH", pathDir)

	locator := NewLocator()
	handle := locator.Probe(context.Background(), "compiler", []Candidate{
		{Path: installed},
		{Path: "compiler"},
	})

	require.True(t, handle.Found)
	require.Equal(t, installed, handle.Path)
}

// TestLocateUsesSearchPath resolves a name without built-in candidates
// through PATH.
func TestLocateUsesSearchPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH semantics differ on windows")
	}

	dir := t.TempDir()
	writeFakeTool(t, dir, "oxide-test-tool")
	t.Setenv("PATH", dir)

	locator := NewLocator()
	handle := locator.Locate(context.Background(), "oxide-test-tool")

	require.True(t, handle.Found)
	require.Equal(t, filepath.Join(dir, "oxide-test-tool"), handle.Path)
}
