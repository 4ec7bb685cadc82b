// Package gpu defines the backend-neutral GPU surface the compositor draws
// through. Backends (glgpu for OpenGL, headless for tests and batch runs)
// translate these calls into real work.
//
// The model follows an explicit-API shape: resources are created from a
// Device, a frame records render passes into a CommandSequence, and each pass
// is driven through a PassEncoder. Every handle may be nil; callers check
// before use.
package gpu

import (
	"errors"
	"image"
)

// ErrReleased is returned when a released resource is used or released again.
var ErrReleased = errors.New("gpu: resource already released")

// BufferKind tells a backend how a buffer will be bound.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferUniform
)

func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// BufferSlot is a vertex-stage binding slot.
type BufferSlot int

const (
	SlotTransform BufferSlot = 0
	SlotPosition  BufferSlot = 1
	SlotUV        BufferSlot = 2
	SlotOpacity   BufferSlot = 3
)

// TextureSlot is a fragment-stage texture unit.
type TextureSlot int

const (
	TextureBase TextureSlot = 0
	TextureMask TextureSlot = 1
)

// PixelFormat is the color format of textures and render targets.
type PixelFormat int

const (
	FormatRGBA8 PixelFormat = iota
	FormatBGRA8
)

// CullMode selects face culling for subsequent draws.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
)

// LoadAction says what a render pass does with existing target contents.
type LoadAction int

const (
	LoadActionLoad LoadAction = iota
	LoadActionClear
)

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float32
}

// Transparent is the zero clear color.
var Transparent = Color{}

// Viewport is a rectangle in target pixels with the origin at the top-left
// corner. Origins may be negative when the viewport overflows the target.
type Viewport struct {
	X, Y          float64
	Width, Height float64
	ZNear, ZFar   float64
}

// Buffer is GPU memory holding vertex, index or uniform data.
type Buffer interface {
	Kind() BufferKind
	// Len returns the size in bytes.
	Len() int
	// Write copies data into the buffer starting at offset bytes.
	Write(offset int, data []byte) error
	Release() error
}

// Texture is a sampled 2D image.
type Texture interface {
	Width() int
	Height() int
	Release() error
}

// RenderTarget is a texture that render passes can draw into. Presentation
// targets returned by a surface are render targets too.
type RenderTarget interface {
	Texture() Texture
	Width() int
	Height() int
	Release() error
}

// Presentable is implemented by targets that can be shown on screen.
type Presentable interface {
	Present()
}

// Pipeline is a compiled render state: shader stages, vertex layout, blend.
type Pipeline interface {
	Label() string
	Release() error
}

// PassDescriptor configures a render pass.
type PassDescriptor struct {
	Label  string
	Target RenderTarget
	Load   LoadAction
	Clear  Color
}

// PassEncoder records draw state and draw calls for one render pass.
type PassEncoder interface {
	SetPipeline(p Pipeline)
	SetViewport(v Viewport)
	SetCullMode(mode CullMode)
	SetVertexBuffer(slot BufferSlot, b Buffer)
	SetFragmentTexture(slot TextureSlot, t Texture)
	// DrawIndexed draws triangles with uint16 indices.
	DrawIndexed(indices Buffer, indexCount int)
	End()
}

// CommandSequence collects the passes of one frame.
type CommandSequence interface {
	// BeginPass opens a render pass. It returns nil when the pass cannot be
	// created; callers skip that unit of work.
	BeginPass(desc PassDescriptor) PassEncoder
	// Present schedules target to be shown once the sequence is submitted.
	Present(target RenderTarget)
	Submit() error
}

// Device creates GPU resources.
type Device interface {
	Name() string
	NewBuffer(label string, kind BufferKind, data []byte) (Buffer, error)
	NewTexture(label string, img image.Image) (Texture, error)
	NewRenderTarget(label string, width, height int, format PixelFormat) (RenderTarget, error)
	NewPipeline(desc PipelineDescriptor) (Pipeline, error)
	// NewCommandSequence returns nil when no sequence can be created.
	NewCommandSequence() CommandSequence
}

// Surface is the part of a host surface a renderer needs when it starts:
// the device it is linked to and its drawable size in pixels.
type Surface interface {
	// Device returns nil while the surface is not linked to a device.
	Device() Device
	DrawableSize() (width, height int)
}
