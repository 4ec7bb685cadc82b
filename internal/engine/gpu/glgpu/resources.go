package glgpu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/marionette/internal/engine/framebuffer"
	"github.com/Faultbox/marionette/internal/engine/gpu"
)

type buffer struct {
	label string
	id    uint32
	kind  gpu.BufferKind
	size  int
}

func (b *buffer) Kind() gpu.BufferKind { return b.kind }
func (b *buffer) Len() int             { return b.size }

func (b *buffer) Write(offset int, data []byte) error {
	if b.id == 0 {
		return gpu.ErrReleased
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("buffer %s: write [%d,%d) out of range (len %d)", b.label, offset, offset+len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return nil
}

func (b *buffer) Release() error {
	if b.id == 0 {
		return fmt.Errorf("buffer %s: %w", b.label, gpu.ErrReleased)
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
	return nil
}

type texture struct {
	label  string
	id     uint32
	width  int
	height int
	// owned is false for render target attachments, which the target frees.
	owned bool
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

func (t *texture) Release() error {
	if !t.owned {
		return nil
	}
	if t.id == 0 {
		return fmt.Errorf("texture %s: %w", t.label, gpu.ErrReleased)
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
	return nil
}

type renderTarget struct {
	label string
	fb    *framebuffer.Framebuffer
	tex   *texture
}

func (t *renderTarget) Texture() gpu.Texture { return t.tex }
func (t *renderTarget) Width() int           { return t.tex.width }
func (t *renderTarget) Height() int          { return t.tex.height }

func (t *renderTarget) Release() error {
	if t.fb.Destroyed() {
		return fmt.Errorf("render target %s: %w", t.label, gpu.ErrReleased)
	}
	t.fb.Destroy()
	t.tex.id = 0
	return nil
}

// screenTarget is the default framebuffer.
type screenTarget struct {
	size func() (int, int)
	swap func()
}

func (s *screenTarget) Texture() gpu.Texture { return nil }

func (s *screenTarget) Width() int {
	w, _ := s.size()
	return w
}

func (s *screenTarget) Height() int {
	_, h := s.size()
	return h
}

func (s *screenTarget) Release() error { return nil }

func (s *screenTarget) Present() {
	if s.swap != nil {
		s.swap()
	}
}

type pipeline struct {
	program uint32
	desc    gpu.PipelineDescriptor
}

func (p *pipeline) Label() string { return p.desc.Label }

func (p *pipeline) Release() error {
	if p.program == 0 {
		return fmt.Errorf("pipeline %s: %w", p.desc.Label, gpu.ErrReleased)
	}
	gl.DeleteProgram(p.program)
	p.program = 0
	return nil
}

// ToRGBA returns img as a tightly packed *image.RGBA with its origin at
// (0, 0). image.RGBA stores premultiplied color, which the compositor's
// blend factors expect.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
