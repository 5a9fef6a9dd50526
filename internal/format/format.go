package format

import (
	"context"
	"fmt"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/target"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// Format tags one output type.
type Format string

const (
	// FormatDMG is the macOS disk image.
	FormatDMG Format = "dmg"
	// FormatZip is the macOS self-contained bundle archive.
	FormatZip Format = "zip"
	// FormatInstaller is the Windows installer.
	FormatInstaller Format = "installer"
	// FormatPortable is the portable archive: a zip on Windows, an
	// xz tarball on Linux. Nothing is installed on the system.
	FormatPortable Format = "portable"
	// FormatDeb is the Debian system package.
	FormatDeb Format = "deb"
	// FormatAppImage is the self-contained Linux application image.
	FormatAppImage Format = "appimage"
	// FormatTar is the Linux self-contained application tarball.
	FormatTar Format = "tar"
)

// ByPlatform lists every format a platform can produce, in generation order.
// The platform's full list is the --all default.
//
//nolint:gochecknoglobals // Static lookup table.
var ByPlatform = map[target.Platform][]Format{
	target.PlatformMacOS:   {FormatDMG, FormatZip},
	target.PlatformWindows: {FormatInstaller, FormatPortable},
	target.PlatformLinux:   {FormatDeb, FormatAppImage, FormatTar, FormatPortable},
}

// Artifact is a final produced distributable file. It is created by a
// generator, optionally signed in place afterwards, and never mutated again.
type Artifact struct {
	// Path is the artifact's location under the platform output directory.
	Path string
	// Format tags which generator produced it.
	Format Format
	// Signed records whether the signing manager completed on this artifact.
	Signed bool
	// Bundle is the assembled bundle the artifact was packed from, kept for
	// notarization stapling on macOS. Empty for formats without bundles.
	Bundle string
}

// ErrToolMissing reports that a generator's required external tool is
// absent. Orchestrator policy downgrades this to a per-format skip.
type ErrToolMissing struct {
	// Tool is the logical name of the missing tool.
	Tool string
}

// Error implements the error interface.
func (e *ErrToolMissing) Error() string {
	return fmt.Sprintf("required tool %q not found", e.Tool)
}

// Inputs carries everything a generator needs for one run.
type Inputs struct {
	// Cfg is the immutable release configuration.
	Cfg *config.Config
	// Platform is the operating system being packaged for.
	Platform target.Platform
	// BinaryPath is the final (possibly combined) application binary.
	BinaryPath string
	// Arch names the architecture for artifact file names
	// (a combined binary is named "universal").
	Arch string
	// OutputDir is the per-platform directory final artifacts land in.
	OutputDir string
	// Locator resolves external tools, memoized for the run.
	Locator *tools.Locator
	// Assembler populates staging trees.
	Assembler *staging.Assembler
}

// Generator turns a ready staging tree into one final artifact.
// Every generator deletes its staging tree on exit regardless of outcome.
type Generator interface {
	// Format returns the output type this generator produces.
	Format() Format
	// Generate assembles, packages and returns the artifact.
	Generate(ctx context.Context, in Inputs) (Artifact, error)
}

// ForFormat returns the generator for one output type.
func ForFormat(f Format) (Generator, error) {
	switch f {
	case FormatDMG:
		return DiskImage{}, nil
	case FormatZip:
		return BundleZip{}, nil
	case FormatInstaller:
		return Installer{}, nil
	case FormatPortable:
		return PortableArchive{}, nil
	case FormatDeb:
		return DebPackage{}, nil
	case FormatAppImage:
		return AppImage{}, nil
	case FormatTar:
		return AppTarball{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", string(f))
	}
}

// artifactBase names artifacts <package>-<version>-<arch>.
func artifactBase(cfg *config.Config, arch string) string {
	return fmt.Sprintf("%s-%s-%s", cfg.PackageName(), cfg.Version, arch)
}

// debArch maps short architecture names to Debian architecture names.
func debArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "arm64":
		return "arm64"
	default:
		return arch
	}
}
