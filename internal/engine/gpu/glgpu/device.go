// Package glgpu implements the gpu interfaces on OpenGL 4.1 core. Commands
// execute immediately as they are encoded; a command sequence only defers
// presentation to Submit. All calls must happen on the thread that owns the
// GL context.
package glgpu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/framebuffer"
	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/engine/shader"
)

// Device is an OpenGL gpu.Device bound to the current context.
type Device struct {
	log    *zap.Logger
	name   string
	vao    uint32
	screen *screenTarget
}

var _ gpu.Device = (*Device)(nil)

// New creates a device on the current GL context. gl.Init must have been
// called. size reports the default framebuffer size in pixels and swap
// presents it.
func New(log *zap.Logger, size func() (int, int), swap func()) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Device{
		log:    log,
		name:   "opengl " + gl.GoStr(gl.GetString(gl.RENDERER)),
		screen: &screenTarget{size: size, swap: swap},
	}

	gl.GenVertexArrays(1, &d.vao)
	if d.vao == 0 {
		return nil, fmt.Errorf("glgpu: vertex array allocation failed")
	}
	gl.BindVertexArray(d.vao)

	gl.Disable(gl.DEPTH_TEST)
	gl.FrontFace(gl.CCW)

	log.Info("OpenGL device created",
		zap.String("renderer", d.name),
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
	)
	return d, nil
}

// Name implements gpu.Device.
func (d *Device) Name() string { return d.name }

// Screen returns the default framebuffer as a presentation target.
func (d *Device) Screen() gpu.RenderTarget { return d.screen }

// Release deletes the device's own GL objects.
func (d *Device) Release() {
	if d.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// NewBuffer implements gpu.Device.
func (d *Device) NewBuffer(label string, kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("buffer %s: empty data", label)
	}
	b := &buffer{label: label, kind: kind, size: len(data)}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, len(data), gl.Ptr(data), usage(kind))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return b, nil
}

// NewTexture implements gpu.Device. The image is converted to
// premultiplied RGBA before upload.
func (d *Device) NewTexture(label string, img image.Image) (gpu.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture %s: nil image", label)
	}
	rgba := ToRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture %s: empty image", label)
	}

	t := &texture{label: label, width: w, height: h, owned: true}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.log.Debug("texture uploaded",
		zap.String("texture", label),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return t, nil
}

// NewRenderTarget implements gpu.Device.
func (d *Device) NewRenderTarget(label string, width, height int, format gpu.PixelFormat) (gpu.RenderTarget, error) {
	fb, err := framebuffer.New(int32(width), int32(height))
	if err != nil {
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	return &renderTarget{
		label: label,
		fb:    fb,
		tex:   &texture{label: label, id: fb.ColorTexture(), width: width, height: height},
	}, nil
}

// NewPipeline implements gpu.Device.
func (d *Device) NewPipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	program, err := shader.CompileStages(desc.Vertex, desc.Fragment)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", desc.Label, err)
	}
	if !shader.BindUniformBlock(program, "Transform", uint32(gpu.SlotTransform)) {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("pipeline %s: Transform block missing", desc.Label)
	}

	gl.UseProgram(program)
	if loc := shader.GetUniform(program, "baseTexture"); loc >= 0 {
		gl.Uniform1i(loc, int32(gpu.TextureBase))
	}
	if loc := shader.GetUniform(program, "maskTexture"); loc >= 0 {
		gl.Uniform1i(loc, int32(gpu.TextureMask))
	}
	gl.UseProgram(0)

	return &pipeline{program: program, desc: desc}, nil
}

// NewCommandSequence implements gpu.Device.
func (d *Device) NewCommandSequence() gpu.CommandSequence {
	if d.vao == 0 {
		return nil
	}
	return &sequence{dev: d}
}

func usage(kind gpu.BufferKind) uint32 {
	if kind == gpu.BufferIndex {
		return gl.STATIC_DRAW
	}
	return gl.DYNAMIC_DRAW
}
