// Package model defines what the compositor needs from an animation engine:
// per-part geometry and render state plus per-tick dirty flags.
//
// The engine owns topology and every value here; the compositor mirrors it
// onto the GPU. Dirty queries are only meaningful for the current tick.
package model

import (
	"image"
)

// BlendMode is how a part is combined with what is already drawn.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiplicative
)

func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	case BlendMultiplicative:
		return "multiplicative"
	default:
		return "unknown"
	}
}

// Model is one loaded character instance.
type Model interface {
	PartCount() int

	// VertexPositions returns 2 floats per vertex, or nil when absent.
	VertexPositions(part int) []float32
	// VertexUVs returns 2 floats per vertex, or nil when absent.
	VertexUVs(part int) []float32
	// VertexIndices returns triangle indices, or nil when absent.
	VertexIndices(part int) []uint16

	TextureIndex(part int) int
	MaskIndices(part int) []int
	BlendMode(part int) BlendMode
	CullingEnabled(part int) bool

	Opacity(part int) float32
	Visible(part int) bool
	// RenderOrders returns one order value per part.
	RenderOrders() []int

	OpacityChanged(part int) bool
	VisibilityChanged(part int) bool
	OrderChanged(part int) bool
	VertexPositionsChanged(part int) bool

	// TextureImages returns the decoded textures referenced by TextureIndex.
	TextureImages() []image.Image
}

// Ticker is implemented by models that advance physics and deformation
// themselves once per frame. The compositor calls Tick before reading
// dirty flags.
type Ticker interface {
	Tick(dt float64)
}

// ParameterSetter is implemented by models driven by named parameters.
type ParameterSetter interface {
	SetParameter(name string, value float32)
}

// Standard parameter names.
const (
	ParamAngleX = "ParamAngleX"
	ParamAngleY = "ParamAngleY"
)
