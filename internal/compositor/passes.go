package compositor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// renderMasks draws, for every masked drawable, the geometry of its masks
// into its own mask target. It runs before the main pass samples them.
func (r *Renderer) renderMasks(seq gpu.CommandSequence, vp gpu.Viewport) {
	normal := r.pipelines.Get(PipelineNormal)

	for _, d := range r.drawables {
		if d.MaskCount() == 0 || d.maskTarget == nil {
			continue
		}
		enc := seq.BeginPass(gpu.PassDescriptor{
			Label:  "mask",
			Target: d.maskTarget,
			Load:   gpu.LoadActionClear,
			Clear:  gpu.Transparent,
		})
		if enc == nil {
			r.log.Debug("mask pass unavailable", zap.Int("part", d.Index))
			continue
		}

		if normal != nil {
			enc.SetPipeline(normal)
			enc.SetViewport(vp)
			enc.SetVertexBuffer(gpu.SlotTransform, r.transformBuf)
			for _, idx := range d.Masks {
				if idx < 0 || idx >= len(r.drawables) {
					continue
				}
				r.drawGeometry(enc, r.drawables[idx])
			}
		}
		enc.End()
	}
}

// drawGeometry issues one mask draw with md's buffers and texture.
func (r *Renderer) drawGeometry(enc gpu.PassEncoder, md *Drawable) {
	if md.positions == nil || md.indices == nil {
		return
	}
	tex := r.texture(md.TextureIndex)
	if tex == nil {
		return
	}
	enc.SetVertexBuffer(gpu.SlotPosition, md.positions)
	enc.SetVertexBuffer(gpu.SlotUV, md.uvs)
	enc.SetVertexBuffer(gpu.SlotOpacity, md.opacity)
	enc.SetFragmentTexture(gpu.TextureBase, tex)
	enc.DrawIndexed(md.indices, md.IndexCount)
}

// renderDrawables composes every drawable in draw order over target.
func (r *Renderer) renderDrawables(seq gpu.CommandSequence, vp gpu.Viewport, target gpu.RenderTarget) {
	enc := seq.BeginPass(gpu.PassDescriptor{
		Label:  "main",
		Target: target,
		Load:   gpu.LoadActionLoad,
	})
	if enc == nil {
		r.log.Debug("main pass unavailable")
		return
	}
	defer enc.End()

	enc.SetViewport(vp)
	enc.SetVertexBuffer(gpu.SlotTransform, r.transformBuf)

	for _, idx := range r.drawOrder {
		d := r.drawables[idx]
		if d.positions == nil {
			continue
		}
		enc.SetVertexBuffer(gpu.SlotPosition, d.positions)
		enc.SetVertexBuffer(gpu.SlotUV, d.uvs)
		enc.SetVertexBuffer(gpu.SlotOpacity, d.opacity)

		cull := gpu.CullNone
		if d.Culling {
			cull = gpu.CullBack
		}
		enc.SetCullMode(cull)

		masked := d.MaskCount() > 0
		p := r.pipelines.Get(SelectPipeline(d.Blend, masked))
		if p == nil {
			continue
		}
		enc.SetPipeline(p)
		if masked {
			if d.maskTarget == nil {
				continue
			}
			enc.SetFragmentTexture(gpu.TextureMask, d.maskTarget.Texture())
		}

		if !d.Visible {
			continue
		}
		tex := r.texture(d.TextureIndex)
		if tex == nil {
			continue
		}
		enc.SetFragmentTexture(gpu.TextureBase, tex)
		if d.indices != nil {
			enc.DrawIndexed(d.indices, d.IndexCount)
		}
	}
}
