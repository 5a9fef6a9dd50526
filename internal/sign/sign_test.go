package sign

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheesejaguar/oxide-release/internal/target"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// writeStub drops an executable stub script and returns its path.
func writeStub(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return path
}

// TestSignWithoutIdentityIsNoOp verifies the artifact bytes are untouched.
func TestSignWithoutIdentityIsNoOp(t *testing.T) {
	t.Parallel()

	artifact := filepath.Join(t.TempDir(), "app.dmg")
	require.NoError(t, os.WriteFile(artifact, []byte("image bytes"), 0o644))

	m := NewManager(tools.NewLocator(), target.PlatformMacOS)
	result := m.Sign(context.Background(), artifact, "")

	require.True(t, result.Skipped)
	require.NotEmpty(t, result.Reason)

	after, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.Equal(t, []byte("image bytes"), after)
}

// TestSignToolMissingSkipsWithReason keeps packaging alive without the tool.
func TestSignToolMissingSkipsWithReason(t *testing.T) {
	t.Parallel()

	locator := tools.NewLocator()
	locator.Seed(tools.Handle{Name: tools.ToolCodesign})

	m := NewManager(locator, target.PlatformMacOS)
	result := m.Sign(context.Background(), "whatever", "Developer ID Application: Example")

	require.True(t, result.Skipped)
	require.Contains(t, result.Reason, "codesign")
}

// TestSignSuccess drives a codesign stub.
func TestSignSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tools are shell scripts")
	}

	t.Parallel()

	locator := tools.NewLocator()
	locator.Seed(tools.Handle{
		Name:  tools.ToolCodesign,
		Path:  writeStub(t, "codesign", "exit 0\n"),
		Found: true,
	})

	m := NewManager(locator, target.PlatformMacOS)
	result := m.Sign(context.Background(), "bundle.app", "Developer ID Application: Example")

	require.True(t, result.Completed)
	require.False(t, result.Failed())
}

// TestSignFailureDegrades reports a warning-grade failure, not a panic or
// an abort.
func TestSignFailureDegrades(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tools are shell scripts")
	}

	t.Parallel()

	locator := tools.NewLocator()
	locator.Seed(tools.Handle{
		Name:  tools.ToolCodesign,
		Path:  writeStub(t, "codesign", "echo identity not found >&2\nexit 1\n"),
		Found: true,
	})

	m := NewManager(locator, target.PlatformMacOS)
	result := m.Sign(context.Background(), "bundle.app", "Bogus Identity")

	require.True(t, result.Failed())
	require.Contains(t, result.Reason, "identity not found")
}

// TestNotarizeIncompleteCredentialsIsNoOp covers the env-driven gate.
func TestNotarizeIncompleteCredentialsIsNoOp(t *testing.T) {
	t.Parallel()

	m := NewManager(tools.NewLocator(), target.PlatformMacOS)
	result := m.Notarize(context.Background(), "app.dmg", "", Credentials{AppleID: "only-this"})

	require.True(t, result.Skipped)
	require.Contains(t, result.Reason, "incomplete")
}

// TestNotarizeSubmitsAndStaplesBundle staples the bundle, not the archive.
func TestNotarizeSubmitsAndStaplesBundle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub tools are shell scripts")
	}

	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "calls.log")

	locator := tools.NewLocator()
	locator.Seed(tools.Handle{
		Name:  tools.ToolXcrun,
		Path:  writeStub(t, "xcrun", `echo "$@" >> `+logPath+"\nexit 0\n"),
		Found: true,
	})

	creds := Credentials{AppleID: "dev@example.com", TeamID: "TEAM123", Password: "secret"}

	m := NewManager(locator, target.PlatformMacOS)
	result := m.Notarize(context.Background(), "app.zip", "Oxide Browser.app", creds)

	require.True(t, result.Completed)

	calls, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(calls), "notarytool submit app.zip")
	require.Contains(t, string(calls), "--wait")
	require.Contains(t, string(calls), "stapler staple Oxide Browser.app")
}

// TestCredentialsFromEnv reads the three credential variables.
func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvNotaryAppleID, "dev@example.com")
	t.Setenv(EnvNotaryTeamID, "TEAM123")
	t.Setenv(EnvNotaryPassword, "secret")

	creds := CredentialsFromEnv()
	require.True(t, creds.Complete())

	t.Setenv(EnvNotaryPassword, "")
	require.False(t, CredentialsFromEnv().Complete())
}
