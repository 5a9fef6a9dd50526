package format

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// AppImage produces the self-extracting Linux application image. The
// packing tool has no system package manager presence, so it is downloaded
// once into the user cache when not already installed; a failed download
// counts as tool absence and skips the format.
type AppImage struct{}

// Format implements Generator.
func (AppImage) Format() Format { return FormatAppImage }

// Generate implements Generator.
func (AppImage) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	packer, err := tools.EnsureAppImageTool(ctx, in.Locator)
	if err != nil {
		logger.WarnKV(ctx, "Could not provision appimagetool", "error", err)

		return Artifact{}, &ErrToolMissing{Tool: tools.ToolAppImage}
	}

	tree, err := staging.NewTree(in.OutputDir, string(FormatAppImage))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	if err := in.Assembler.AppDir(ctx, tree, in.BinaryPath); err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir,
		fmt.Sprintf("%s-%s-%s.AppImage", strings.ReplaceAll(in.Cfg.AppName, " ", "_"), in.Cfg.Version, appImageArch(in.Arch)))

	err = runToolEnv(ctx, in.OutputDir, packer.Path,
		[]string{"ARCH=" + appImageArch(in.Arch)}, tree.Root, outPath)
	if err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "AppImage created", "path", outPath)

	return Artifact{Path: outPath, Format: FormatAppImage}, nil
}

// appImageArch maps short architecture names to AppImage naming.
func appImageArch(arch string) string {
	if arch == "arm64" {
		return "aarch64"
	}

	return "x86_64"
}
