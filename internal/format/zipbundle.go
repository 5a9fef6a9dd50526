package format

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
)

// BundleZip produces the macOS self-contained archive: the assembled
// application bundle compressed into a zip, built without external tools.
type BundleZip struct{}

// Format implements Generator.
func (BundleZip) Format() Format { return FormatZip }

// Generate implements Generator.
func (BundleZip) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	tree, err := staging.NewTree(in.OutputDir, string(FormatZip))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	bundle, err := in.Assembler.AppBundle(ctx, tree, in.BinaryPath)
	if err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir, artifactBase(in.Cfg, in.Arch)+".zip")

	if err := zipDir(outPath, tree.Root, ""); err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Bundle archive created", "path", outPath)

	// Keep the bundle next to the artifact so notarization can staple the
	// ticket onto it rather than the submitted archive.
	keptBundle := filepath.Join(in.OutputDir, filepath.Base(bundle))
	_ = os.RemoveAll(keptBundle)

	if err := os.Rename(bundle, keptBundle); err != nil {
		return Artifact{}, err
	}

	return Artifact{Path: outPath, Format: FormatZip, Bundle: keptBundle}, nil
}
