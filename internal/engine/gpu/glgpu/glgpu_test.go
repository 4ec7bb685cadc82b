package glgpu

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

func TestToRGBAPassThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	if got := ToRGBA(src); got != src {
		t.Error("packed RGBA at origin should be used as is")
	}
}

func TestToRGBAPremultiplies(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})

	got := ToRGBA(src)
	c := got.RGBAAt(0, 0)
	if c.A != 128 || c.R != 128 {
		t.Errorf("premultiplied pixel: got %+v, want R=128 A=128", c)
	}
}

func TestToRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(2, 2, color.RGBA{R: 9, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	got := ToRGBA(sub)
	if got.Rect != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds: got %v", got.Rect)
	}
	if c := got.RGBAAt(0, 0); c.R != 9 {
		t.Errorf("pixel (0,0): got %+v, want R=9", c)
	}
}

func TestBlendFactorMapping(t *testing.T) {
	tests := map[gpu.BlendFactor]uint32{
		gpu.BlendZero:             gl.ZERO,
		gpu.BlendOne:              gl.ONE,
		gpu.BlendSrcAlpha:         gl.SRC_ALPHA,
		gpu.BlendOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
		gpu.BlendDstColor:         gl.DST_COLOR,
		gpu.BlendOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	}
	for f, want := range tests {
		if got := blendFactor(f); got != want {
			t.Errorf("blendFactor(%v) = 0x%x, want 0x%x", f, got, want)
		}
	}
	if blendOp(gpu.BlendOpAdd) != gl.FUNC_ADD || blendOp(gpu.BlendOpSubtract) != gl.FUNC_SUBTRACT {
		t.Error("unexpected blend op mapping")
	}
}
