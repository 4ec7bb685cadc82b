package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

type tgaHeader struct {
	idLength    int
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("TGA data too short")
	}
	h := tgaHeader{
		idLength:  int(data[0]),
		imageType: data[2],
		width:     int(data[12]) | int(data[13])<<8,
		height:    int(data[14]) | int(data[15])<<8,
		bpp:       int(data[16]),
		// Bit 5 of the descriptor marks top-to-bottom row order.
		topToBottom: data[17]&0x20 != 0,
	}
	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedFormat)
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("%w: TGA type %d", ErrUnsupportedFormat, h.imageType)
	}
	if h.bpp != 24 && h.bpp != 32 {
		return h, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedFormat, h.bpp)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("TGA has no pixels")
	}
	return h, nil
}

// DecodeTGAConfig returns the dimensions of a TGA image without decoding
// its pixels.
func DecodeTGAConfig(r io.Reader) (image.Config, error) {
	var hdr [tgaHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return image.Config{}, fmt.Errorf("reading TGA header: %w", err)
	}
	h, err := parseTGAHeader(hdr[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// data. Alpha is straight, so the result is an *image.NRGBA.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}
	pixelData := data[offset:]

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	bytesPerPixel := h.bpp / 8

	if h.imageType == TGATypeUncompressed {
		if len(pixelData) < h.width*h.height*bytesPerPixel {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for i := range h.width * h.height {
			h.set(img, i, tgaPixel(pixelData[i*bytesPerPixel:], bytesPerPixel))
		}
		return img, nil
	}

	if err := decodeTGARLE(img, h, pixelData, bytesPerPixel); err != nil {
		return nil, err
	}
	return img, nil
}

// set stores the pixel with file index i, honoring the row order.
func (h tgaHeader) set(img *image.NRGBA, i int, c color.NRGBA) {
	x, y := i%h.width, i/h.width
	if !h.topToBottom {
		y = h.height - 1 - y
	}
	img.SetNRGBA(x, y, c)
}

func tgaPixel(p []byte, bytesPerPixel int) color.NRGBA {
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

func decodeTGARLE(img *image.NRGBA, h tgaHeader, pixelData []byte, bytesPerPixel int) error {
	pixelCount := h.width * h.height
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < pixelCount {
		if dataIdx >= len(pixelData) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
		}
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated.
			if dataIdx+bytesPerPixel > len(pixelData) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
			}
			c := tgaPixel(pixelData[dataIdx:], bytesPerPixel)
			dataIdx += bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				h.set(img, pixelIdx, c)
				pixelIdx++
			}
			continue
		}

		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+bytesPerPixel > len(pixelData) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixelIdx)
			}
			h.set(img, pixelIdx, tgaPixel(pixelData[dataIdx:], bytesPerPixel))
			dataIdx += bytesPerPixel
			pixelIdx++
		}
	}

	return nil
}

// EncodeTGA writes img as an uncompressed 32-bit top-to-bottom TGA.
func EncodeTGA(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() > 0xFFFF || b.Dy() > 0xFFFF {
		return fmt.Errorf("image too large for TGA: %dx%d", b.Dx(), b.Dy())
	}

	var hdr [tgaHeaderSize]byte
	hdr[2] = TGATypeUncompressed
	hdr[12], hdr[13] = byte(b.Dx()), byte(b.Dx()>>8)
	hdr[14], hdr[15] = byte(b.Dy()), byte(b.Dy()>>8)
	hdr[16] = 32
	hdr[17] = 0x20 | 8 // top-to-bottom, 8 alpha bits

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, err := bw.Write([]byte{c.B, c.G, c.R, c.A}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
