package puppet

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

const textureSize = 64

// Bezier control distance for a quarter circle.
const kappa = 0.5522848

// disc rasterizes an anti-aliased filled ellipse touching the texture edges.
func disc(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, textureSize, textureSize))

	r := vector.NewRasterizer(textureSize, textureSize)
	cx, cy := float32(textureSize)/2, float32(textureSize)/2
	rad := float32(textureSize)/2 - 1
	k := rad * kappa

	r.MoveTo(cx+rad, cy)
	r.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	r.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	r.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	r.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	r.ClosePath()
	r.DrawOp = draw.Src
	r.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
	return img
}

// radial is a soft glow: full color at the center, fading to transparent at
// the edge.
func radial(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, textureSize, textureSize))
	half := float64(textureSize) / 2
	for y := range textureSize {
		for x := range textureSize {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			f := 1 - math.Sqrt(dx*dx+dy*dy)
			if f <= 0 {
				continue
			}
			px := c
			px.A = uint8(float64(c.A) * f * f)
			img.SetNRGBA(x, y, px)
		}
	}
	return img
}
