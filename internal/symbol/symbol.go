// Package symbol draws the project icon.
package symbol

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/colornames"
)

const (
	Size     = 32
	FileName = "test.png"
)

// Image returns the icon: a red cross three pixels thick on black.
func Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(colornames.Black), image.Point{}, draw.Src)
	red := colornames.Red
	for a := 15; a <= 17; a++ {
		for b := 8; b < 24; b++ {
			img.SetRGBA(a, b, red)
			img.SetRGBA(b, a, red)
		}
	}
	return img
}

func Encode(w io.Writer) error {
	return png.Encode(w, Image())
}

// Write draws the icon to docPath/test.png and returns the file path.
func Write(docPath string) (string, error) {
	if err := os.MkdirAll(docPath, 0o755); err != nil {
		return "", fmt.Errorf("symbol dir create failed (%s): %w", docPath, err)
	}
	path := filepath.Join(docPath, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("symbol create failed (%s): %w", path, err)
	}
	if err := Encode(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("symbol encode failed (%s): %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("symbol close failed (%s): %w", path, err)
	}
	return path, nil
}
