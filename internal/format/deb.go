package format

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// DebPackage produces the Debian system package via the external package
// builder. The package root carries computed control metadata and
// maintainer hooks that refresh desktop, icon and MIME caches.
type DebPackage struct{}

// Format implements Generator.
func (DebPackage) Format() Format { return FormatDeb }

// Generate implements Generator.
func (DebPackage) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	dpkgDeb := in.Locator.Locate(ctx, tools.ToolDpkgDeb)
	if !dpkgDeb.Found {
		return Artifact{}, &ErrToolMissing{Tool: tools.ToolDpkgDeb}
	}

	tree, err := staging.NewTree(in.OutputDir, string(FormatDeb))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	arch := debArch(in.Arch)

	if err := in.Assembler.DebRoot(ctx, tree, in.BinaryPath, arch); err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir,
		fmt.Sprintf("%s_%s_%s.deb", in.Cfg.PackageName(), in.Cfg.Version, arch))

	err = runTool(ctx, in.OutputDir, dpkgDeb.Path, "--build", "--root-owner-group", tree.Root, outPath)
	if err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Debian package created", "path", outPath)

	return Artifact{Path: outPath, Format: FormatDeb}, nil
}
