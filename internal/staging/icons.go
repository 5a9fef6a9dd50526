package staging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// IconSizes is the fixed set of sizes every icon theme entry ships at.
//
//nolint:gochecknoglobals // Static lookup table.
var IconSizes = []int{16, 32, 48, 64, 128, 256, 512}

// placeholderColor fills generated placeholder icons.
//
//nolint:gochecknoglobals // Static constant-like value.
var placeholderColor = color.RGBA{R: 0x3a, G: 0x3a, B: 0x52, A: 0xff}

// InstallIcons stages one icon per required size. A missing source file
// degrades to a generated placeholder and is never fatal; the number of
// placeholders used is returned so the caller can warn once.
func InstallIcons(ctx context.Context, cfg *config.Config, tree *Tree, destFor func(size int) string) (int, error) {
	placeholders := 0

	for _, size := range IconSizes {
		src := filepath.Join(cfg.IconDir, fmt.Sprintf("icon-%d.png", size))
		dest := destFor(size)

		if _, err := os.Stat(src); err == nil {
			if err := tree.CopyFile(src, dest, 0o644); err != nil {
				return placeholders, err
			}

			continue
		}

		logger.DebugKV(ctx, "Icon source missing, using placeholder", "size", size, "src", src)

		data, err := placeholderPNG(size)
		if err != nil {
			return placeholders, err
		}

		if err := tree.WriteFile(dest, data, 0o644); err != nil {
			return placeholders, err
		}

		placeholders++
	}

	return placeholders, nil
}

// placeholderPNG renders a flat square icon of the given size.
func placeholderPNG(size int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, placeholderColor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
