package format

import (
	"context"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/target"
)

// PortableArchive produces the portable archive: a directory tree with the
// binary, a marker file stating no system install happened, and a usage
// note, compressed into a zip on Windows or an xz tarball elsewhere.
type PortableArchive struct{}

// Format implements Generator.
func (PortableArchive) Format() Format { return FormatPortable }

// Generate implements Generator.
func (PortableArchive) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	tree, err := staging.NewTree(in.OutputDir, string(FormatPortable))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	exeName := in.Cfg.Executable
	if in.Platform == target.PlatformWindows {
		exeName += ".exe"
	}

	if err := in.Assembler.PortableRoot(ctx, tree, in.BinaryPath, exeName); err != nil {
		return Artifact{}, err
	}

	base := artifactBase(in.Cfg, in.Arch) + "-portable"
	prefix := in.Cfg.PackageName() + "-" + in.Cfg.Version

	var outPath string

	if in.Platform == target.PlatformWindows {
		outPath = filepath.Join(in.OutputDir, base+".zip")
		err = zipDir(outPath, tree.Root, prefix)
	} else {
		outPath = filepath.Join(in.OutputDir, base+".tar.xz")
		err = tarXZDir(outPath, tree.Root, prefix)
	}

	if err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Portable archive created", "path", outPath)

	return Artifact{Path: outPath, Format: FormatPortable}, nil
}
