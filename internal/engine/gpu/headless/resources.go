package headless

import (
	"fmt"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// Buffer is CPU-backed buffer memory.
type Buffer struct {
	dev      *Device
	label    string
	kind     gpu.BufferKind
	data     []byte
	released bool
}

func (b *Buffer) Kind() gpu.BufferKind { return b.kind }
func (b *Buffer) Len() int             { return len(b.data) }

// Label returns the name the buffer was created with.
func (b *Buffer) Label() string { return b.label }

// Bytes returns the current contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Floats decodes the contents as float32 values.
func (b *Buffer) Floats() []float32 { return gpu.BytesToFloat32(b.data) }

// Released reports whether Release was called.
func (b *Buffer) Released() bool { return b.released }

// Write implements gpu.Buffer.
func (b *Buffer) Write(offset int, data []byte) error {
	if b.released {
		return gpu.ErrReleased
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("buffer %s: write [%d,%d) out of range (len %d)", b.label, offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	b.dev.bufferWrites++
	return nil
}

// Release implements gpu.Buffer.
func (b *Buffer) Release() error {
	if b.released {
		return fmt.Errorf("buffer %s: %w", b.label, gpu.ErrReleased)
	}
	b.released = true
	b.dev.live--
	return nil
}

// Texture is a sized placeholder for image data.
type Texture struct {
	dev      *Device
	label    string
	width    int
	height   int
	released bool
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Label returns the name the texture was created with.
func (t *Texture) Label() string { return t.label }

// Released reports whether Release was called.
func (t *Texture) Released() bool { return t.released }

// Release implements gpu.Texture.
func (t *Texture) Release() error {
	if t.released {
		return fmt.Errorf("texture %s: %w", t.label, gpu.ErrReleased)
	}
	t.released = true
	t.dev.live--
	return nil
}

// Target is an offscreen render target.
type Target struct {
	tex     *Texture
	format  gpu.PixelFormat
	present func()
}

func (t *Target) Texture() gpu.Texture { return t.tex }
func (t *Target) Width() int           { return t.tex.width }
func (t *Target) Height() int          { return t.tex.height }

// Label returns the name the target was created with.
func (t *Target) Label() string { return t.tex.label }

// Released reports whether Release was called.
func (t *Target) Released() bool { return t.tex.released }

// Release implements gpu.RenderTarget.
func (t *Target) Release() error {
	return t.tex.Release()
}

// Present implements gpu.Presentable for surface targets.
func (t *Target) Present() {
	if t.present != nil {
		t.present()
	}
}

// Pipeline is a recorded pipeline description.
type Pipeline struct {
	dev      *Device
	desc     gpu.PipelineDescriptor
	released bool
}

func (p *Pipeline) Label() string { return p.desc.Label }

// Descriptor returns what the pipeline was built from.
func (p *Pipeline) Descriptor() gpu.PipelineDescriptor { return p.desc }

// Release implements gpu.Pipeline.
func (p *Pipeline) Release() error {
	if p.released {
		return fmt.Errorf("pipeline %s: %w", p.desc.Label, gpu.ErrReleased)
	}
	p.released = true
	p.dev.live--
	return nil
}

func labelOf(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case *Buffer:
		if r == nil {
			return ""
		}
		return r.label
	case *Texture:
		if r == nil {
			return ""
		}
		return r.label
	case *Target:
		if r == nil {
			return ""
		}
		return r.tex.label
	case *Pipeline:
		if r == nil {
			return ""
		}
		return r.desc.Label
	default:
		return fmt.Sprintf("%T", v)
	}
}
