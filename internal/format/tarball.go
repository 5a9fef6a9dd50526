package format

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/staging"
)

// AppTarball produces the Linux self-contained archive: a snapshot of the
// assembled usr/-style application tree as a gzip tarball. Gzip is done with
// parallel compression since browser binaries run large.
type AppTarball struct{}

// Format implements Generator.
func (AppTarball) Format() Format { return FormatTar }

// Generate implements Generator.
func (AppTarball) Generate(ctx context.Context, in Inputs) (Artifact, error) {
	tree, err := staging.NewTree(in.OutputDir, string(FormatTar))
	if err != nil {
		return Artifact{}, err
	}
	defer tree.Remove()

	if err := in.Assembler.LinuxRoot(ctx, tree, in.BinaryPath); err != nil {
		return Artifact{}, err
	}

	outPath := filepath.Join(in.OutputDir, artifactBase(in.Cfg, in.Arch)+".tar.gz")
	prefix := in.Cfg.PackageName() + "-" + in.Cfg.Version

	if err := tarGzDir(outPath, tree.Root, prefix); err != nil {
		return Artifact{}, err
	}

	logger.InfoKV(ctx, "Application tarball created", "path", outPath)

	return Artifact{Path: outPath, Format: FormatTar}, nil
}

// tarGzDir writes the contents of rootDir into a gzip tarball at outPath,
// storing entries under prefix with stable root ownership.
func tarGzDir(outPath, rootDir, prefix string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	gzw := pgzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	err = filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		var linkTarget string
		if info.Mode()&fs.ModeSymlink != 0 {
			if linkTarget, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		header.Uid = 0
		header.Gid = 0
		header.Uname = "root"
		header.Gname = "root"

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}

		_, err = io.Copy(tw, in)
		in.Close()

		return err
	})
	if err != nil {
		tw.Close()
		gzw.Close()

		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}

	return gzw.Close()
}
