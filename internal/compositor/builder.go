package compositor

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/model"
)

// buildResources creates every GPU resource of the current model. The caller
// has released the previous model's resources.
func (r *Renderer) buildResources() {
	m := r.model
	n := m.PartCount()

	r.textures = r.buildTextures(m.TextureImages())

	buf, err := r.device.NewBuffer("transform", gpu.BufferUniform, gpu.Float32Bytes(r.transform[:]))
	if err != nil {
		r.log.Error("transform buffer", zap.Error(err))
	}
	r.transformBuf = buf

	r.drawables = make([]*Drawable, n)
	for i := range n {
		r.drawables[i] = r.buildDrawable(m, i, n)
	}
	r.allocMaskTargets()
	r.sortDrawOrder()

	r.log.Debug("model resources built",
		zap.Int("parts", n),
		zap.Int("textures", len(r.textures)),
	)
}

func (r *Renderer) buildTextures(images []image.Image) []gpu.Texture {
	textures := make([]gpu.Texture, len(images))
	for i, img := range images {
		tex, err := r.device.NewTexture(fmt.Sprintf("texture%d", i), img)
		if err != nil {
			r.log.Error("texture upload failed", zap.Int("texture", i), zap.Error(err))
			continue
		}
		textures[i] = tex
	}
	return textures
}

func (r *Renderer) buildDrawable(m model.Model, i, n int) *Drawable {
	positions := m.VertexPositions(i)
	d := &Drawable{
		Index:        i,
		VertexCount:  len(positions) / 2,
		TextureIndex: m.TextureIndex(i),
		Masks:        r.validMasks(i, n, m.MaskIndices(i)),
		Culling:      m.CullingEnabled(i),
		Blend:        m.BlendMode(i),
		Opacity:      m.Opacity(i),
		Visible:      m.Visible(i),
	}
	if d.VertexCount == 0 {
		r.log.Debug("part has no vertices", zap.Int("part", i))
		return d
	}

	d.positions = r.newBuffer(fmt.Sprintf("part%d.position", i), gpu.BufferVertex,
		gpu.Float32Bytes(positions[:2*d.VertexCount]))

	uvs := make([]float32, 2*d.VertexCount)
	copy(uvs, m.VertexUVs(i))
	d.uvs = r.newBuffer(fmt.Sprintf("part%d.uv", i), gpu.BufferVertex, gpu.Float32Bytes(uvs))

	if indices := m.VertexIndices(i); len(indices) > 0 {
		d.indices = r.newBuffer(fmt.Sprintf("part%d.index", i), gpu.BufferIndex, gpu.Uint16Bytes(indices))
		if d.indices != nil {
			d.IndexCount = len(indices)
		}
	}

	d.opacity = r.newBuffer(fmt.Sprintf("part%d.opacity", i), gpu.BufferVertex,
		gpu.Float32Bytes([]float32{d.Opacity}))
	return d
}

func (r *Renderer) newBuffer(label string, kind gpu.BufferKind, data []byte) gpu.Buffer {
	b, err := r.device.NewBuffer(label, kind, data)
	if err != nil {
		r.log.Error("buffer allocation failed", zap.String("buffer", label), zap.Error(err))
		return nil
	}
	return b
}

// validMasks drops mask indices that point outside the part table or at the
// part itself.
func (r *Renderer) validMasks(part, n int, masks []int) []int {
	var out []int
	for _, idx := range masks {
		if idx < 0 || idx >= n || idx == part {
			r.log.Warn("dropping invalid mask index",
				zap.Int("part", part),
				zap.Int("mask", idx),
				zap.Int("parts", n),
			)
			continue
		}
		out = append(out, idx)
	}
	return out
}

// allocMaskTargets gives every masked drawable a target of the current
// surface size. Targets that already match are kept.
func (r *Renderer) allocMaskTargets() {
	for _, d := range r.drawables {
		if d.MaskCount() == 0 {
			continue
		}
		if t := d.maskTarget; t != nil && t.Width() == r.width && t.Height() == r.height {
			continue
		}
		if err := d.releaseMaskTarget(); err != nil {
			r.log.Warn("mask target release failed", zap.Int("part", d.Index), zap.Error(err))
		}
		t, err := r.device.NewRenderTarget(fmt.Sprintf("part%d.mask", d.Index), r.width, r.height, r.format)
		if err != nil {
			r.log.Error("mask target allocation failed", zap.Int("part", d.Index), zap.Error(err))
			continue
		}
		d.maskTarget = t
	}
}

// sortDrawOrder rebuilds the draw order list from the model's render orders.
// Parts without an order value sort by their own index.
func (r *Renderer) sortDrawOrder() {
	orders := r.model.RenderOrders()
	key := func(i int) int {
		if i < len(orders) {
			return orders[i]
		}
		return i
	}

	n := len(r.drawables)
	if cap(r.drawOrder) < n {
		r.drawOrder = make([]int, n)
	}
	r.drawOrder = r.drawOrder[:n]
	for i := range r.drawOrder {
		r.drawOrder[i] = i
	}
	slices.SortStableFunc(r.drawOrder, func(a, b int) int {
		return cmp.Compare(key(a), key(b))
	})
}

func (r *Renderer) texture(idx int) gpu.Texture {
	if idx < 0 || idx >= len(r.textures) {
		return nil
	}
	return r.textures[idx]
}
