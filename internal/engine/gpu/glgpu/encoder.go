package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

type sequence struct {
	dev      *Device
	presents []gpu.RenderTarget
}

func (s *sequence) BeginPass(desc gpu.PassDescriptor) gpu.PassEncoder {
	switch t := desc.Target.(type) {
	case *renderTarget:
		if t.fb.Destroyed() {
			return nil
		}
		t.fb.Bind()
	case *screenTarget:
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	default:
		return nil
	}
	w, h := desc.Target.Width(), desc.Target.Height()

	gl.BindVertexArray(s.dev.vao)
	if desc.Load == gpu.LoadActionClear {
		c := desc.Clear
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(c.R, c.G, c.B, c.A)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	return &encoder{height: h}
}

func (s *sequence) Present(target gpu.RenderTarget) {
	s.presents = append(s.presents, target)
}

func (s *sequence) Submit() error {
	gl.Flush()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glgpu: frame error 0x%x", code)
	}
	for _, t := range s.presents {
		if p, ok := t.(gpu.Presentable); ok {
			p.Present()
		}
	}
	s.presents = nil
	return nil
}

type encoder struct {
	height   int
	pipeline *pipeline
	vbufs    [gpu.SlotOpacity + 1]*buffer
}

func (e *encoder) SetPipeline(p gpu.Pipeline) {
	pl, ok := p.(*pipeline)
	if !ok || pl.program == 0 {
		e.pipeline = nil
		return
	}
	e.pipeline = pl
	gl.UseProgram(pl.program)
	applyBlend(pl.desc.Blend)
}

// SetViewport converts the top-left origin of v to GL's bottom-left.
func (e *encoder) SetViewport(v gpu.Viewport) {
	y := float64(e.height) - (v.Y + v.Height)
	gl.Viewport(int32(v.X), int32(y), int32(v.Width), int32(v.Height))
	gl.DepthRange(v.ZNear, v.ZFar)
}

func (e *encoder) SetCullMode(mode gpu.CullMode) {
	if mode == gpu.CullBack {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		return
	}
	gl.Disable(gl.CULL_FACE)
}

func (e *encoder) SetVertexBuffer(slot gpu.BufferSlot, b gpu.Buffer) {
	buf, _ := b.(*buffer)
	if slot == gpu.SlotTransform {
		if buf != nil {
			gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(gpu.SlotTransform), buf.id)
		}
		return
	}
	if slot >= 0 && int(slot) < len(e.vbufs) {
		e.vbufs[slot] = buf
	}
}

func (e *encoder) SetFragmentTexture(slot gpu.TextureSlot, t gpu.Texture) {
	var id uint32
	if tex, ok := t.(*texture); ok {
		id = tex.id
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// DrawIndexed resolves the pipeline's vertex layout against the bound
// buffers. Constant-stepped attributes use a divisor of 1 so every vertex
// of the single instance reads element 0.
func (e *encoder) DrawIndexed(indices gpu.Buffer, indexCount int) {
	ib, ok := indices.(*buffer)
	if !ok || ib.id == 0 || e.pipeline == nil || indexCount <= 0 {
		return
	}

	layout := e.pipeline.desc.Layout
	for _, a := range layout.Attributes {
		bl, ok := layout.Buffer(a.Slot)
		if !ok || int(a.Slot) >= len(e.vbufs) {
			return
		}
		vb := e.vbufs[a.Slot]
		if vb == nil || vb.id == 0 {
			return
		}
		loc := uint32(a.Location)
		gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(a.Format.Components()), gl.FLOAT, false, int32(bl.Stride), uintptr(a.Offset))
		var divisor uint32
		if bl.Step == gpu.StepConstant {
			divisor = 1
		}
		gl.VertexAttribDivisor(loc, divisor)
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.id)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_SHORT, 0)
}

func (e *encoder) End() {
	gl.Disable(gl.CULL_FACE)
}

func applyBlend(s gpu.BlendState) {
	if !s.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendEquationSeparate(blendOp(s.Color.Op), blendOp(s.Alpha.Op))
	gl.BlendFuncSeparate(
		blendFactor(s.Color.Src), blendFactor(s.Color.Dst),
		blendFactor(s.Alpha.Src), blendFactor(s.Alpha.Dst),
	)
}

func blendFactor(f gpu.BlendFactor) uint32 {
	switch f {
	case gpu.BlendZero:
		return gl.ZERO
	case gpu.BlendOne:
		return gl.ONE
	case gpu.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case gpu.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.BlendDstColor:
		return gl.DST_COLOR
	case gpu.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	default:
		return gl.ONE
	}
}

func blendOp(op gpu.BlendOp) uint32 {
	switch op {
	case gpu.BlendOpSubtract:
		return gl.FUNC_SUBTRACT
	case gpu.BlendOpReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	default:
		return gl.FUNC_ADD
	}
}
