package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/target"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// ErrBuildFailed reports a non-zero compiler exit for one architecture.
// The whole run aborts; binaries already built stay on disk but are not packaged.
type ErrBuildFailed struct {
	// Arch is the architecture whose build failed.
	Arch string
	// Err is the underlying process error.
	Err error
}

// Error implements the error interface.
func (e *ErrBuildFailed) Error() string {
	return fmt.Sprintf("build failed for %s: %v", e.Arch, e.Err)
}

// Unwrap exposes the underlying process error.
func (e *ErrBuildFailed) Unwrap() error { return e.Err }

// ErrCombineFailed reports a failure merging per-architecture binaries into
// one universal binary. Unlike optional packaging tools, the combine step is
// not skippable: the requested output depends on it.
type ErrCombineFailed struct {
	// Err is the underlying cause (absent combiner or non-zero exit).
	Err error
}

// Error implements the error interface.
func (e *ErrCombineFailed) Error() string {
	return fmt.Sprintf("combine architectures: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ErrCombineFailed) Unwrap() error { return e.Err }

// Invoker runs the native compiler toolchain, one architecture at a time.
// Builds mutate a shared build directory, so they are never interleaved.
type Invoker struct {
	// cfg is the immutable release configuration.
	cfg *config.Config
	// platform decides the executable suffix of produced binaries.
	platform target.Platform
	// compilerPath is the resolved compiler executable.
	compilerPath string
}

// NewInvoker constructs an invoker around a resolved compiler path.
func NewInvoker(cfg *config.Config, platform target.Platform, compilerPath string) *Invoker {
	return &Invoker{cfg: cfg, platform: platform, compilerPath: compilerPath}
}

// BuildAll compiles every target sequentially and fails fast on the first
// non-zero exit. On success each returned target carries its binary path.
func (inv *Invoker) BuildAll(ctx context.Context, targets []target.Target) ([]target.Target, error) {
	built := make([]target.Target, 0, len(targets))

	for _, tgt := range targets {
		logger.InfoKV(ctx, "Building", "arch", tgt.Arch, "triple", tgt.Triple)

		cmd := exec.CommandContext(ctx, inv.compilerPath,
			"build", "--release", "--target", tgt.Triple, "--package", inv.cfg.CompilerPackage)
		cmd.Dir = inv.cfg.SourceDir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return nil, &ErrBuildFailed{Arch: tgt.Arch, Err: err}
		}

		binary := inv.binaryPath(tgt.Triple)

		if err := ensureExecutable(binary); err != nil {
			return nil, &ErrBuildFailed{Arch: tgt.Arch, Err: err}
		}

		tgt.BinaryPath = binary
		built = append(built, tgt)
	}

	return built, nil
}

// Combine merges per-architecture binaries into one universal binary using
// the external combiner. The combiner being absent is fatal here.
func (inv *Invoker) Combine(ctx context.Context, targets []target.Target, combiner tools.Handle) (string, error) {
	if !combiner.Found {
		return "", &ErrCombineFailed{Err: fmt.Errorf("%s not found", tools.ToolLipo)}
	}

	outDir := filepath.Join(inv.cfg.BuildDir, "universal", "release")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &ErrCombineFailed{Err: err}
	}

	output := filepath.Join(outDir, inv.executableName())
	args := []string{"-create", "-output", output}

	for _, tgt := range targets {
		args = append(args, tgt.BinaryPath)
	}

	logger.InfoKV(ctx, "Combining architectures", "output", output, "count", len(targets))

	cmd := exec.CommandContext(ctx, combiner.Path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", &ErrCombineFailed{Err: err}
	}

	if err := ensureExecutable(output); err != nil {
		return "", &ErrCombineFailed{Err: err}
	}

	return output, nil
}

// binaryPath returns where the compiler writes the binary for a triple.
func (inv *Invoker) binaryPath(triple string) string {
	return filepath.Join(inv.cfg.BuildDir, triple, "release", inv.executableName())
}

// executableName appends the platform suffix to the configured binary name.
func (inv *Invoker) executableName() string {
	if inv.platform == target.PlatformWindows {
		return inv.cfg.Executable + ".exe"
	}

	return inv.cfg.Executable
}

// ensureExecutable verifies a produced binary exists and can be executed
// before any packaging step reads it.
func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("produced binary missing: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("produced binary %s is a directory", path)
	}

	// Windows has no executable bit; existence is the whole check there.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("produced binary %s is not executable", path)
	}

	return nil
}
