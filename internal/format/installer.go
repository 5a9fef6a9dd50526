package format

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// Installer produces the Windows installer through whichever installer
// builder variant is present: the modern toolset builds in one step, the
// legacy one compiles an object file and links it in a second step.
// Neither variant being installed skips the format.
type Installer struct{}

// Format implements Generator.
func (Installer) Format() Format { return FormatInstaller }

// Generate implements Generator.
func (Installer) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	builder := in.Locator.Locate(ctx, tools.ToolWix)
	if !builder.Found {
		return Artifact{}, &ErrToolMissing{Tool: tools.ToolWix}
	}

	tree, err := staging.NewTree(in.OutputDir, string(FormatInstaller))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	if err := in.Assembler.InstallerPayload(ctx, tree, in.BinaryPath); err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir, artifactBase(in.Cfg, in.Arch)+"-setup.msi")

	switch builder.Variant {
	case tools.VariantWix3:
		err = buildWithLegacyToolset(ctx, builder, tree, outPath)
	default:
		err = runTool(ctx, tree.Root, builder.Path, "build", "oxide.wxs", "-o", outPath)
	}

	if err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Installer created", "path", outPath, "variant", builder.Variant)

	return Artifact{Path: outPath, Format: FormatInstaller}, nil
}

// buildWithLegacyToolset runs the two-step compile-then-link flow of the
// legacy installer builder. The linker lives next to the compiler.
func buildWithLegacyToolset(ctx context.Context, builder tools.Handle, tree *staging.Tree, outPath string) error {
	object := tree.Path("oxide.wixobj")

	if err := runTool(ctx, tree.Root, builder.Path, "oxide.wxs", "-out", object); err != nil {
		return fmt.Errorf("compile installer object: %w", err)
	}

	linker := filepath.Join(filepath.Dir(builder.Path), linkerName(builder.Path))

	if err := runTool(ctx, tree.Root, linker, object, "-out", outPath); err != nil {
		return fmt.Errorf("link installer: %w", err)
	}

	return nil
}

// linkerName mirrors the compiler's file extension so stub toolchains in
// tests work without a .exe suffix.
func linkerName(compilerPath string) string {
	if filepath.Ext(compilerPath) == ".exe" {
		return "light.exe"
	}

	return "light"
}
