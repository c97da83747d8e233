package symbol

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func TestImageDrawsCross(t *testing.T) {
	testlog.Start(t)
	img := Image()
	red := func(x, y int) bool {
		c := img.RGBAAt(x, y)
		return c.R == 0xff && c.G == 0 && c.B == 0 && c.A == 0xff
	}
	for _, p := range [][2]int{{15, 8}, {17, 23}, {8, 15}, {23, 17}, {16, 16}} {
		if !red(p[0], p[1]) {
			t.Fatalf("pixel %v must be red, got %v", p, img.RGBAAt(p[0], p[1]))
		}
	}
	for _, p := range [][2]int{{0, 0}, {14, 8}, {15, 7}, {15, 24}, {24, 16}, {31, 31}} {
		c := img.RGBAAt(p[0], p[1])
		if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0xff {
			t.Fatalf("pixel %v must be black, got %v", p, c)
		}
	}
}

func TestWriteCreatesPNG(t *testing.T) {
	testlog.Start(t)
	dir := filepath.Join(t.TempDir(), "doc")
	path, err := Write(dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("path = %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		t.Fatalf("bounds = %v", b)
	}
}
