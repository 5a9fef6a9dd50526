package sign

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/target"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// timestampAuthority is the timestamp service used for Windows signatures.
const timestampAuthority = "http://timestamp.digicert.com"

// Result records how one signing or notarization attempt ended. Signing is a
// best-effort enhancement layer: a failure degrades the artifact to unsigned
// instead of failing the run, and a skip always carries its reason.
type Result struct {
	// Completed reports the operation ran and succeeded.
	Completed bool
	// Skipped reports the operation was not attempted.
	Skipped bool
	// Reason explains a skip or a failure; empty on success.
	Reason string
}

// Failed reports a requested attempt that ran and did not succeed.
func (r Result) Failed() bool {
	return !r.Completed && !r.Skipped
}

// Manager signs artifacts and drives the notarization service.
type Manager struct {
	// locator resolves the platform signing tools.
	locator *tools.Locator
	// platform selects which signing tool and invocation applies.
	platform target.Platform
}

// NewManager constructs a signing manager.
func NewManager(locator *tools.Locator, platform target.Platform) *Manager {
	return &Manager{locator: locator, platform: platform}
}

// Sign signs a file or bundle in place. With no identity configured it is a
// no-op: the artifact bytes are untouched. The identity is a keychain
// identity name on macOS and a certificate file path on Windows.
func (m *Manager) Sign(ctx context.Context, path, identity string) Result {
	if identity == "" {
		return Result{Skipped: true, Reason: "no signing identity configured"}
	}

	switch m.platform {
	case target.PlatformMacOS:
		return m.signMacOS(ctx, path, identity)
	case target.PlatformWindows:
		return m.signWindows(ctx, path, identity)
	default:
		return Result{Skipped: true, Reason: "signing not supported on " + string(m.platform)}
	}
}

// signMacOS invokes codesign with a secure timestamp and hardened runtime.
func (m *Manager) signMacOS(ctx context.Context, path, identity string) Result {
	codesign := m.locator.Locate(ctx, tools.ToolCodesign)
	if !codesign.Found {
		return Result{Skipped: true, Reason: "codesign not found"}
	}

	err := runSigner(ctx, codesign.Path,
		"--force", "--deep", "--options", "runtime", "--timestamp", "--sign", identity, path)
	if err != nil {
		return Result{Reason: err.Error()}
	}

	logger.InfoKV(ctx, "Signed", "path", path, "identity", identity)

	return Result{Completed: true}
}

// signWindows invokes signtool with SHA-256 digests and a timestamp service.
func (m *Manager) signWindows(ctx context.Context, path, certFile string) Result {
	signtool := m.locator.Locate(ctx, tools.ToolSigntool)
	if !signtool.Found {
		return Result{Skipped: true, Reason: "signtool not found"}
	}

	err := runSigner(ctx, signtool.Path,
		"sign", "/fd", "sha256", "/td", "sha256", "/tr", timestampAuthority, "/f", certFile, path)
	if err != nil {
		return Result{Reason: err.Error()}
	}

	logger.InfoKV(ctx, "Signed", "path", path, "cert", certFile)

	return Result{Completed: true}
}

// runSigner executes a signing tool, folding its output into the error.
func runSigner(ctx context.Context, path string, args ...string) error {
	cmd := exec.CommandContext(ctx, path, args...)

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", path, err, strings.TrimSpace(output.String()))
	}

	return nil
}
