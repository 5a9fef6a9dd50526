package format

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// DiskImage produces the macOS .dmg: the assembled application bundle plus a
// convenience symbolic link to /Applications, snapshotted into a compressed
// disk image.
type DiskImage struct{}

// Format implements Generator.
func (DiskImage) Format() Format { return FormatDMG }

// Generate implements Generator.
func (DiskImage) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	hdiutil := in.Locator.Locate(ctx, tools.ToolHdiutil)
	if !hdiutil.Found {
		return Artifact{}, &ErrToolMissing{Tool: tools.ToolHdiutil}
	}

	tree, err := staging.NewTree(in.OutputDir, string(FormatDMG))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	bundle, err := in.Assembler.AppBundle(ctx, tree, in.BinaryPath)
	if err != nil {
		return Artifact{}, err
	}

	if err := os.Symlink("/Applications", tree.Path("Applications")); err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir, artifactBase(in.Cfg, in.Arch)+".dmg")
	_ = os.Remove(outPath)

	err = runTool(ctx, in.OutputDir, hdiutil.Path,
		"create", "-volname", in.Cfg.AppName, "-srcfolder", tree.Root, "-ov", "-format", "UDZO", outPath)
	if err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Disk image created", "path", outPath)

	// The bundle must outlive the staging tree for later notarization
	// stapling, so it is moved out before the deferred cleanup runs.
	keptBundle := filepath.Join(in.OutputDir, filepath.Base(bundle))
	_ = os.RemoveAll(keptBundle)

	if err := os.Rename(bundle, keptBundle); err != nil {
		return Artifact{}, err
	}

	return Artifact{Path: outPath, Format: FormatDMG, Bundle: keptBundle}, nil
}
