package headless

import (
	"github.com/Faultbox/marionette/internal/engine/gpu"
)

type sequence struct {
	dev       *Device
	presents  []gpu.RenderTarget
	submitted bool
}

func (s *sequence) BeginPass(desc gpu.PassDescriptor) gpu.PassEncoder {
	if desc.Target == nil {
		return nil
	}
	label := labelOf(desc.Target)
	if s.dev.FailPasses[label] {
		return nil
	}
	s.dev.passes++
	e := &encoder{dev: s.dev, pass: s.dev.passes, vbufs: map[gpu.BufferSlot]string{}, textures: map[gpu.TextureSlot]string{}}
	s.dev.record(Command{Op: OpBeginPass, Pass: e.pass, Target: label, Load: desc.Load})
	return e
}

func (s *sequence) Present(target gpu.RenderTarget) {
	s.presents = append(s.presents, target)
	s.dev.record(Command{Op: OpPresent, Target: labelOf(target)})
}

func (s *sequence) Submit() error {
	s.submitted = true
	s.dev.record(Command{Op: OpSubmit})
	for _, t := range s.presents {
		if p, ok := t.(gpu.Presentable); ok {
			p.Present()
		}
	}
	return nil
}

type encoder struct {
	dev      *Device
	pass     int
	pipeline string
	vbufs    map[gpu.BufferSlot]string
	textures map[gpu.TextureSlot]string
	ended    bool
}

func (e *encoder) SetPipeline(p gpu.Pipeline) {
	e.pipeline = labelOf(p)
	e.dev.record(Command{Op: OpSetPipeline, Pass: e.pass, Pipeline: e.pipeline})
}

func (e *encoder) SetViewport(v gpu.Viewport) {
	e.dev.record(Command{Op: OpSetViewport, Pass: e.pass, Viewport: v})
}

func (e *encoder) SetCullMode(mode gpu.CullMode) {
	e.dev.record(Command{Op: OpSetCullMode, Pass: e.pass, Cull: mode})
}

func (e *encoder) SetVertexBuffer(slot gpu.BufferSlot, b gpu.Buffer) {
	label := labelOf(b)
	e.vbufs[slot] = label
	e.dev.record(Command{Op: OpSetVertexBuffer, Pass: e.pass, Slot: int(slot), Resource: label})
}

func (e *encoder) SetFragmentTexture(slot gpu.TextureSlot, t gpu.Texture) {
	label := labelOf(t)
	e.textures[slot] = label
	e.dev.record(Command{Op: OpSetFragmentTexture, Pass: e.pass, Slot: int(slot), Resource: label})
}

func (e *encoder) DrawIndexed(indices gpu.Buffer, indexCount int) {
	e.dev.record(Command{
		Op:         OpDrawIndexed,
		Pass:       e.pass,
		Pipeline:   e.pipeline,
		Resource:   labelOf(indices),
		IndexCount: indexCount,
		Position:   e.vbufs[gpu.SlotPosition],
		Opacity:    e.vbufs[gpu.SlotOpacity],
		Texture:    e.textures[gpu.TextureBase],
		Mask:       e.textures[gpu.TextureMask],
	})
}

func (e *encoder) End() {
	if e.ended {
		return
	}
	e.ended = true
	e.dev.record(Command{Op: OpEndPass, Pass: e.pass})
}
