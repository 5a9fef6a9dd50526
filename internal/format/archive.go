package format

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
)

// zipDir writes the contents of rootDir into a zip archive at outPath,
// storing entries under prefix. Permission bits survive the roundtrip so
// extracted binaries stay executable.
func zipDir(outPath, rootDir, prefix string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)

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

		name := filepath.ToSlash(filepath.Join(prefix, rel))

		if info.IsDir() {
			_, err := zw.Create(name + "/")

			return err
		}

		if !info.Mode().IsRegular() {
			// Staged trees contain no symlinks; skip anything exotic.
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = name
		header.Method = zip.Deflate

		writer, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}

		_, err = io.Copy(writer, in)
		in.Close()

		return err
	})
	if err != nil {
		zw.Close()

		return err
	}

	return zw.Close()
}

// tarXZDir writes the contents of rootDir into an xz-compressed tarball at
// outPath, storing entries under prefix with stable root ownership.
func tarXZDir(outPath, rootDir, prefix string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	xzw, err := xz.NewWriter(out)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(xzw)

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
				return fmt.Errorf("readlink %s: %w", path, err)
			}
		}

		header, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		if info.IsDir() && !strings.HasSuffix(header.Name, "/") {
			header.Name += "/"
		}

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
		xzw.Close()

		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}

	return xzw.Close()
}
