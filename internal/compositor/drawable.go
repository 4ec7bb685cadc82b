package compositor

import (
	"go.uber.org/multierr"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/model"
)

// Drawable mirrors one model part on the GPU.
type Drawable struct {
	// Index is the part index in the model.
	Index int

	VertexCount int
	IndexCount  int

	TextureIndex int
	// Masks are indices of drawables in the same table whose geometry
	// clips this one. Non-owning.
	Masks   []int
	Culling bool
	Blend   model.BlendMode

	Opacity float32
	Visible bool

	positions gpu.Buffer
	uvs       gpu.Buffer
	indices   gpu.Buffer
	opacity   gpu.Buffer

	maskTarget gpu.RenderTarget
}

// MaskCount returns the number of drawables masking this one.
func (d *Drawable) MaskCount() int {
	return len(d.Masks)
}

// PositionBuffer returns the vertex position buffer, nil for empty parts.
func (d *Drawable) PositionBuffer() gpu.Buffer { return d.positions }

// UVBuffer returns the texture coordinate buffer, nil for empty parts.
func (d *Drawable) UVBuffer() gpu.Buffer { return d.uvs }

// IndexBuffer returns the triangle index buffer, nil when there are no indices.
func (d *Drawable) IndexBuffer() gpu.Buffer { return d.indices }

// OpacityBuffer returns the one-float opacity buffer.
func (d *Drawable) OpacityBuffer() gpu.Buffer { return d.opacity }

// MaskTarget returns the mask render target, nil unless MaskCount > 0.
func (d *Drawable) MaskTarget() gpu.RenderTarget { return d.maskTarget }

// setOpacity updates the CPU value and the GPU copy together.
func (d *Drawable) setOpacity(v float32) error {
	d.Opacity = v
	if d.opacity == nil {
		return nil
	}
	return d.opacity.Write(0, gpu.Float32Bytes([]float32{v}))
}

// writePositions copies the deformed vertices into the position buffer.
func (d *Drawable) writePositions(positions []float32) error {
	if d.positions == nil {
		return nil
	}
	n := 2 * d.VertexCount
	if len(positions) < n {
		n = len(positions)
	}
	if n == 0 {
		return nil
	}
	return d.positions.Write(0, gpu.Float32Bytes(positions[:n]))
}

// release frees every GPU resource the drawable owns.
func (d *Drawable) release() error {
	var err error
	for _, b := range []*gpu.Buffer{&d.positions, &d.uvs, &d.indices, &d.opacity} {
		if *b != nil {
			err = multierr.Append(err, (*b).Release())
			*b = nil
		}
	}
	err = multierr.Append(err, d.releaseMaskTarget())
	return err
}

func (d *Drawable) releaseMaskTarget() error {
	if d.maskTarget == nil {
		return nil
	}
	err := d.maskTarget.Release()
	d.maskTarget = nil
	return err
}
