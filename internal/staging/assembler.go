package staging

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// ErrAssemblyFailed reports that a staging tree never became ready because a
// required file could not be produced. Fatal for that one format only.
type ErrAssemblyFailed struct {
	// Format is the output format whose assembly failed.
	Format string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ErrAssemblyFailed) Error() string {
	return fmt.Sprintf("assembly failed for %s: %v", e.Format, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ErrAssemblyFailed) Unwrap() error { return e.Err }

// Assembler populates staging trees with the binary and every platform-
// specific metadata file an output format requires.
type Assembler struct {
	// cfg is the immutable release configuration.
	cfg *config.Config
}

// NewAssembler constructs an assembler for the given configuration.
func NewAssembler(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// AppBundle assembles a macOS .app bundle inside the tree and returns the
// bundle's path. The bundle manifest is rewritten in place with the
// configured identifier and version after the copy.
func (a *Assembler) AppBundle(ctx context.Context, tree *Tree, binaryPath string) (string, error) {
	bundle := a.cfg.AppName + ".app"
	exeRel := filepath.Join(bundle, "Contents", "MacOS", a.cfg.Executable)

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return "", &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	plistRel := filepath.Join(bundle, "Contents", "Info.plist")
	if err := tree.WriteFile(plistRel, []byte(InfoPlist(a.cfg)), 0o644); err != nil {
		return "", &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := UpdatePlistFields(tree.Path(plistRel), a.cfg.Identifier, a.cfg.Version); err != nil {
		return "", &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	a.installBundleIcon(ctx, tree, filepath.Join(bundle, "Contents", "Resources", "app.icns"))

	if err := tree.Require(exeRel, plistRel); err != nil {
		return "", &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return tree.Path(bundle), nil
}

// DebRoot assembles the Debian package root inside the tree: the binary,
// desktop entry, AppStream manifest, icons, copyright, control block with
// computed installed size, and maintainer scripts.
func (a *Assembler) DebRoot(ctx context.Context, tree *Tree, binaryPath, arch string) error {
	pkg := a.cfg.PackageName()
	exeRel := filepath.Join("usr", "bin", a.cfg.Executable)

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := a.installLinuxMetadata(ctx, tree, "usr"); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	copyrightRel := filepath.Join("usr", "share", "doc", pkg, "copyright")
	if err := tree.WriteFile(copyrightRel, []byte(DebCopyright(a.cfg)), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	// Installed-Size covers the payload staged so far, before the control
	// directory itself is written.
	installedKiB, err := tree.DiskUsageKiB()
	if err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	control := DebianControl(a.cfg, arch, installedKiB)
	if err := tree.WriteFile(filepath.Join("DEBIAN", "control"), []byte(control), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	for name, body := range MaintainerScripts(a.cfg) {
		if err := tree.WriteFile(filepath.Join("DEBIAN", name), []byte(body), 0o755); err != nil {
			return &ErrAssemblyFailed{Format: tree.Format, Err: err}
		}
	}

	if err := tree.Require(exeRel, filepath.Join("DEBIAN", "control")); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return nil
}

// AppDir assembles the AppImage application directory: launcher script,
// top-level desktop entry and icon, and the usual usr/ tree.
func (a *Assembler) AppDir(ctx context.Context, tree *Tree, binaryPath string) error {
	pkg := a.cfg.PackageName()
	exeRel := filepath.Join("usr", "bin", a.cfg.Executable)

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.WriteFile("AppRun", []byte(AppRunScript(a.cfg)), 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	// appimagetool expects the desktop entry and icon at the AppDir root.
	if err := tree.WriteFile(pkg+".desktop", []byte(DesktopEntry(a.cfg)), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := a.installLinuxMetadata(ctx, tree, "usr"); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	rootIcon := filepath.Join("usr", "share", "icons", "hicolor", "256x256", "apps", pkg+".png")
	if err := tree.CopyFile(tree.Path(rootIcon), pkg+".png", 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.CopyFile(tree.Path(rootIcon), ".DirIcon", 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.Require(exeRel, "AppRun", pkg+".desktop"); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return nil
}

// LinuxRoot assembles a plain usr/-style application tree: the binary plus
// the desktop entry, AppStream manifest and icons, with no package manager
// control metadata. Used by the tarball snapshot format.
func (a *Assembler) LinuxRoot(ctx context.Context, tree *Tree, binaryPath string) error {
	exeRel := filepath.Join("usr", "bin", a.cfg.Executable)

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := a.installLinuxMetadata(ctx, tree, "usr"); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return tree.Require(exeRel)
}

// PortableRoot assembles the self-contained archive tree: the binary, a
// marker that no system install happened, and a plain-text usage note.
func (a *Assembler) PortableRoot(_ context.Context, tree *Tree, binaryPath, exeName string) error {
	exeRel := filepath.Join("bin", exeName)

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.WriteFile("PORTABLE", []byte("portable mode: no system install performed\n"), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.WriteFile("README.txt", []byte(PortableReadme(a.cfg)), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return tree.Require(exeRel, "PORTABLE", "README.txt")
}

// InstallerPayload assembles the Windows installer inputs: the binary next
// to the generated installer source document.
func (a *Assembler) InstallerPayload(_ context.Context, tree *Tree, binaryPath string) error {
	exeRel := a.cfg.Executable + ".exe"

	if err := tree.CopyFile(binaryPath, exeRel, 0o755); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	if err := tree.WriteFile("oxide.wxs", []byte(WixSource(a.cfg)), 0o644); err != nil {
		return &ErrAssemblyFailed{Format: tree.Format, Err: err}
	}

	return tree.Require(exeRel, "oxide.wxs")
}

// installLinuxMetadata stages the desktop entry, AppStream manifest and icon
// set under the given prefix (usr for both deb roots and AppDirs).
func (a *Assembler) installLinuxMetadata(ctx context.Context, tree *Tree, prefix string) error {
	pkg := a.cfg.PackageName()

	desktopRel := filepath.Join(prefix, "share", "applications", pkg+".desktop")
	if err := tree.WriteFile(desktopRel, []byte(DesktopEntry(a.cfg)), 0o644); err != nil {
		return err
	}

	metainfoRel := filepath.Join(prefix, "share", "metainfo", a.cfg.Identifier+".metainfo.xml")
	if err := tree.WriteFile(metainfoRel, []byte(MetainfoXML(a.cfg)), 0o644); err != nil {
		return err
	}

	placeholders, err := InstallIcons(ctx, a.cfg, tree, func(size int) string {
		return filepath.Join(prefix, "share", "icons", "hicolor",
			fmt.Sprintf("%dx%d", size, size), "apps", pkg+".png")
	})
	if err != nil {
		return err
	}

	if placeholders > 0 {
		logger.WarnKV(ctx, "Icon sources missing, placeholders generated", "count", placeholders, "icon_dir", a.cfg.IconDir)
	}

	return nil
}

// installBundleIcon stages the macOS bundle icon, degrading to a placeholder
// when no pre-rendered icns exists.
func (a *Assembler) installBundleIcon(ctx context.Context, tree *Tree, dest string) {
	src := filepath.Join(a.cfg.IconDir, "app.icns")

	if err := tree.CopyFile(src, dest, 0o644); err == nil {
		return
	}

	logger.WarnKV(ctx, "Bundle icon missing, using placeholder", "src", src)

	if data, err := placeholderPNG(512); err == nil {
		_ = tree.WriteFile(dest, data, 0o644)
	}
}
