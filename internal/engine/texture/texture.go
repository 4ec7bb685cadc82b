// Package texture decodes and encodes the image formats a model's textures
// may ship in.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files no decoder or encoder handles.
var ErrUnsupportedFormat = errors.New("texture: unsupported format")

// Format names a file format by its canonical extension without the dot.
type Format string

const (
	FormatTGA  Format = "tga"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
	FormatGIF  Format = "gif"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "tga":
		return FormatTGA, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "webp":
		return FormatWebP, nil
	case "gif":
		return FormatGIF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// CanEncode reports whether Encode supports f.
func (f Format) CanEncode() bool {
	switch f {
	case FormatTGA, FormatPNG, FormatJPEG, FormatBMP, FormatTIFF:
		return true
	default:
		return false
	}
}

// Load reads and decodes an image file.
func Load(path string) (image.Image, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	img, format, err := Decode(data, path)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, format, nil
}

// Decode decodes data. TGA has no signature, so it is chosen by the
// extension of name; every other format is sniffed.
func Decode(data []byte, name string) (image.Image, Format, error) {
	if f, err := FormatFromPath(name); err == nil && f == FormatTGA {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, "", err
		}
		return img, FormatTGA, nil
	}
	img, kind, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		}
		return nil, "", err
	}
	return img, Format(kind), nil
}

// DecodeConfig returns the format and dimensions of an image file without
// decoding its pixels.
func DecodeConfig(path string) (image.Config, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	if format, err := FormatFromPath(path); err == nil && format == FormatTGA {
		cfg, err := DecodeTGAConfig(f)
		return cfg, FormatTGA, err
	}
	cfg, kind, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return image.Config{}, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return image.Config{}, "", err
	}
	return cfg, Format(kind), nil
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatTGA:
		return EncodeTGA(w, img)
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, f)
	}
}

// Save encodes img to path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return out.Close()
}

// IsColorKey checks if an RGB color is within tolerance of key.
func IsColorKey(c, key color.NRGBA, tolerance uint8) bool {
	return within(c.R, key.R, tolerance) && within(c.G, key.G, tolerance) && within(c.B, key.B, tolerance)
}

func within(a, b, tol uint8) bool {
	if a > b {
		return a-b <= tol
	}
	return b-a <= tol
}

// ApplyColorKey returns a copy of img where pixels matching key are
// transparent black, so they do not bleed into neighbors when filtered.
func ApplyColorKey(img image.Image, key color.NRGBA, tolerance uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if IsColorKey(out.NRGBAAt(x, y), key, tolerance) {
				out.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return out
}

// Magenta is the classic sprite transparency key.
var Magenta = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
