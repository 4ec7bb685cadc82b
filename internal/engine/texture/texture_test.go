package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 128})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func tgaHeaderBytes(imageType byte, w, h, bpp int, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = byte(bpp)
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	// 1x2, 24 bpp, bottom row first: blue then red.
	data := tgaHeaderBytes(TGATypeUncompressed, 1, 2, 24, 0)
	data = append(data, 255, 0, 0, 0, 0, 255)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if c := img.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("top pixel: got %+v, want red", c)
	}
	if c := img.NRGBAAt(0, 1); c != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("bottom pixel: got %+v, want blue", c)
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1, 32 bpp, top-to-bottom: run of 2 green, then 1 raw white.
	data := tgaHeaderBytes(TGATypeRLE, 3, 1, 32, 0x28)
	data = append(data,
		0x81, 0, 255, 0, 200,
		0x00, 255, 255, 255, 255,
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	want := []color.NRGBA{{G: 255, A: 200}, {G: 255, A: 200}, {R: 255, G: 255, B: 255, A: 255}}
	for x, w := range want {
		if c := img.NRGBAAt(x, 0); c != w {
			t.Errorf("pixel %d: got %+v, want %+v", x, c, w)
		}
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	colorMapped := tgaHeaderBytes(TGATypeUncompressed, 1, 1, 24, 0)
	colorMapped[1] = 1

	tests := []struct {
		name        string
		data        []byte
		unsupported bool
	}{
		{"short", []byte{1, 2, 3}, false},
		{"color mapped", colorMapped, true},
		{"grayscale", tgaHeaderBytes(3, 1, 1, 8, 0), true},
		{"16 bit", tgaHeaderBytes(TGATypeUncompressed, 1, 1, 16, 0), true},
		{"truncated pixels", tgaHeaderBytes(TGATypeUncompressed, 2, 2, 32, 0), false},
		{"truncated rle", append(tgaHeaderBytes(TGATypeRLE, 4, 1, 24, 0), 0x81, 1, 2, 3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrUnsupportedFormat); got != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupportedFormat) = %v, want %v (%v)", got, tt.unsupported, err)
			}
		})
	}
}

func TestTGARoundTrip(t *testing.T) {
	src := testImage()
	var buf bytes.Buffer
	if err := EncodeTGA(&buf, src); err != nil {
		t.Fatalf("EncodeTGA: %v", err)
	}

	cfg, err := DecodeTGAConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeTGAConfig: %v", err)
	}
	if cfg.Width != 3 || cfg.Height != 2 {
		t.Errorf("config: %dx%d, want 3x2", cfg.Width, cfg.Height)
	}

	got, err := DecodeTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Errorf("pixels differ after round trip")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.TGA":     FormatTGA,
		"b.jpg":     FormatJPEG,
		"dir/c.tif": FormatTIFF,
		"d.webp":    FormatWebP,
		"e.PNG":     FormatPNG,
		"f.bmp":     FormatBMP,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("model.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestSaveLoadFormats(t *testing.T) {
	dir := t.TempDir()
	src := testImage()

	for _, name := range []string{"x.png", "x.bmp", "x.tiff", "x.tga"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save: %v", err)
			}
			img, format, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			want, _ := FormatFromPath(name)
			if format != want {
				t.Errorf("format: got %q, want %q", format, want)
			}
			if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
				t.Errorf("bounds: got %v", img.Bounds())
			}
			_, _, _, a := img.At(0, 0).RGBA()
			if a != 0xffff {
				t.Errorf("alpha at (0,0): got %#x, want opaque", a)
			}

			cfg, cf, err := DecodeConfig(path)
			if err != nil || cf != want || cfg.Width != 3 {
				t.Errorf("DecodeConfig: %+v %q %v", cfg, cf, err)
			}
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	if FormatWebP.CanEncode() {
		t.Error("webp should not be encodable")
	}
	if err := Encode(&bytes.Buffer{}, testImage(), FormatWebP); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode webp: got %v", err)
	}
}

func TestDecodeUnknownData(t *testing.T) {
	_, _, err := Decode([]byte("not an image"), "x.png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestApplyColorKey(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 252, G: 4, B: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out := ApplyColorKey(img, Magenta, 5)
	if c := out.NRGBAAt(0, 0); c != (color.NRGBA{}) {
		t.Errorf("keyed pixel: got %+v, want transparent", c)
	}
	if c := out.NRGBAAt(1, 0); c.A != 255 || c.R != 10 {
		t.Errorf("other pixel changed: %+v", c)
	}
	if img.NRGBAAt(0, 0).A != 255 {
		t.Error("source should be untouched")
	}
}
