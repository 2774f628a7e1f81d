package integrate

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapIconSize(t *testing.T) {
	cases := map[int]int{
		16:   16,
		20:   16,
		21:   24,
		100:  96,
		128:  128,
		300:  256,
		1024: 512,
	}
	for dim, want := range cases {
		if got := snapIconSize(dim); got != want {
			t.Errorf("snapIconSize(%d) = %d, want %d", dim, got, want)
		}
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
}

func iconDims(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

func TestInstallIconResizesToSupportedSquare(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 100, 100)

	if err := installIcon(src, dst); err != nil {
		t.Fatalf("installIcon: %v", err)
	}
	w, h := iconDims(t, dst)
	if w != 96 || h != 96 {
		t.Errorf("processed icon = %dx%d, want 96x96", w, h)
	}
}

// A non-square source whose larger dimension already matches a
// supported size must still come out square.
func TestInstallIconSquaresNonSquareSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 128, 100)

	if err := installIcon(src, dst); err != nil {
		t.Fatalf("installIcon: %v", err)
	}
	w, h := iconDims(t, dst)
	if w != 128 || h != 128 {
		t.Errorf("processed icon = %dx%d, want 128x128", w, h)
	}
}

func TestInstallIconKeepsExactSupportedSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 64, 64)

	if err := installIcon(src, dst); err != nil {
		t.Fatalf("installIcon: %v", err)
	}
	w, h := iconDims(t, dst)
	if w != 64 || h != 64 {
		t.Errorf("processed icon = %dx%d, want 64x64 untouched", w, h)
	}
}
