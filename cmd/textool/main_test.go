package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/Faultbox/marionette/internal/engine/texture"
)

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, texture.Magenta)
	img.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	path := filepath.Join(dir, "sprite.bmp")
	if err := texture.Save(path, img); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func TestConvertWithColorKey(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	outDir := filepath.Join(dir, "out")

	if _, err := convert(src, convertOptions{format: texture.FormatTGA, outDir: outDir}); err == nil {
		t.Fatal("expected error for missing output directory")
	}

	out, err := convert(src, convertOptions{format: texture.FormatTGA, outDir: dir, colorKey: true, tolerance: 4})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if want := filepath.Join(dir, "sprite.tga"); out != want {
		t.Errorf("output: got %s, want %s", out, want)
	}

	img, format, err := texture.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != texture.FormatTGA {
		t.Errorf("format: got %q", format)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("keyed pixel alpha: got %#x, want 0", a)
	}
	if _, _, _, a := img.At(1, 0).RGBA(); a != 0xffff {
		t.Errorf("other pixel alpha: got %#x, want opaque", a)
	}
}

func TestConvertRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)

	if _, err := convert(src, convertOptions{format: texture.FormatBMP}); err == nil {
		t.Error("expected error converting a file onto itself")
	}
}
