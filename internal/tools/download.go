package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/schollz/progressbar/v3"

	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// appImageToolURL is the upstream release URL pattern for appimagetool.
// The tool has no system package manager presence, so it is fetched once
// into the user cache and reused across runs.
const appImageToolURL = "https://github.com/AppImage/appimagetool/releases/download/continuous/appimagetool-%s.AppImage"

// cacheSubdir is the directory under the XDG cache home holding downloaded tools.
const cacheSubdir = "oxide-release"

// EnsureAppImageTool resolves appimagetool, downloading it into the user
// cache when no installed copy exists. The downloaded handle is seeded into
// the locator so later lookups within the run hit the memo.
func EnsureAppImageTool(ctx context.Context, locator *Locator) (Handle, error) {
	handle := locator.Locate(ctx, ToolAppImage)
	if handle.Found {
		return handle, nil
	}

	cachePath := filepath.Join(xdg.CacheHome, cacheSubdir, "appimagetool")

	if info, err := os.Stat(cachePath); err == nil && !info.IsDir() {
		handle = Handle{Name: ToolAppImage, Path: cachePath, Variant: "cached", Found: true}
		locator.Seed(handle)

		return handle, nil
	}

	url := fmt.Sprintf(appImageToolURL, appImageArch())

	logger.InfoKV(ctx, "Downloading appimagetool", "url", url, "dest", cachePath)

	if err := downloadFile(ctx, url, cachePath); err != nil {
		return Handle{Name: ToolAppImage}, fmt.Errorf("download appimagetool: %w", err)
	}

	if err := os.Chmod(cachePath, 0o755); err != nil {
		return Handle{Name: ToolAppImage}, fmt.Errorf("mark appimagetool executable: %w", err)
	}

	handle = Handle{Name: ToolAppImage, Path: cachePath, Variant: "downloaded", Found: true}
	locator.Seed(handle)

	return handle, nil
}

// appImageArch maps the process architecture to upstream release naming.
func appImageArch() string {
	if runtime.GOARCH == "arm64" {
		return "aarch64"
	}

	return "x86_64"
}

// downloadFile fetches a URL into a destination path, writing through a
// temporary file so an interrupted download never leaves a half-written tool
// behind. Progress is rendered to stderr for interactive runs.
func downloadFile(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "download-*")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")

	_, err = io.Copy(io.MultiWriter(tmp, bar), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return err
	}

	return os.Rename(tmpPath, dest)
}
