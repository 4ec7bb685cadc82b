// Package memory is an in-memory model.Model. Setters record changes and
// Tick publishes them as the dirty flags of the next frame, the way a
// skeletal animation runtime reports per-drawable dynamic flags.
package memory

import (
	"fmt"
	"image"
	"slices"

	"github.com/Faultbox/marionette/internal/model"
)

// Part is the initial description of one drawable part.
type Part struct {
	Name      string
	Positions []float32
	UVs       []float32
	Indices   []uint16
	Texture   int
	Masks     []int
	Blend     model.BlendMode
	Culling   bool
	Opacity   float32
	Visible   bool
	Order     int
}

type dirty uint8

const (
	dirtyOpacity dirty = 1 << iota
	dirtyVisibility
	dirtyOrder
	dirtyPositions
)

// Animator advances the model once per tick, before flags are published.
type Animator func(m *Model, dt float64)

// Model holds parts and their per-tick change flags.
type Model struct {
	ctx      *model.Context
	parts    []Part
	orders   []int
	textures []image.Image
	params   map[string]float32

	pending []dirty
	current []dirty

	animator Animator
	elapsed  float64
	closed   bool
}

var (
	_ model.Model           = (*Model)(nil)
	_ model.Ticker          = (*Model)(nil)
	_ model.ParameterSetter = (*Model)(nil)
)

// New creates a model attached to ctx. Part slices are copied.
func New(ctx *model.Context, parts []Part, textures []image.Image) (*Model, error) {
	if ctx == nil {
		return nil, fmt.Errorf("memory model: nil context")
	}
	m := &Model{
		ctx:      ctx,
		parts:    make([]Part, len(parts)),
		orders:   make([]int, len(parts)),
		textures: slices.Clone(textures),
		params:   make(map[string]float32),
		pending:  make([]dirty, len(parts)),
		current:  make([]dirty, len(parts)),
	}
	for i, p := range parts {
		if len(p.Positions)%2 != 0 {
			return nil, fmt.Errorf("part %d (%s): odd position count %d", i, p.Name, len(p.Positions))
		}
		p.Positions = slices.Clone(p.Positions)
		p.UVs = slices.Clone(p.UVs)
		p.Indices = slices.Clone(p.Indices)
		p.Masks = slices.Clone(p.Masks)
		m.parts[i] = p
		m.orders[i] = p.Order
	}
	if err := ctx.Attach(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetAnimator installs the per-tick animation callback.
func (m *Model) SetAnimator(a Animator) {
	m.animator = a
}

// Elapsed returns the accumulated tick time in seconds.
func (m *Model) Elapsed() float64 {
	return m.elapsed
}

// Close detaches the model from its context.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.ctx.Detach(m)
	return nil
}

// Tick runs the animator and publishes changes made since the previous tick.
func (m *Model) Tick(dt float64) {
	m.elapsed += dt
	if m.animator != nil {
		m.animator(m, dt)
	}
	m.current, m.pending = m.pending, m.current
	clear(m.pending)
}

// PartIndex returns the index of the part with the given name, or -1.
func (m *Model) PartIndex(name string) int {
	for i, p := range m.parts {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (m *Model) valid(part int) bool {
	return part >= 0 && part < len(m.parts)
}

// SetOpacity changes a part's opacity.
func (m *Model) SetOpacity(part int, v float32) {
	if !m.valid(part) || m.parts[part].Opacity == v {
		return
	}
	m.parts[part].Opacity = v
	m.pending[part] |= dirtyOpacity
}

// SetVisible changes a part's visibility.
func (m *Model) SetVisible(part int, v bool) {
	if !m.valid(part) || m.parts[part].Visible == v {
		return
	}
	m.parts[part].Visible = v
	m.pending[part] |= dirtyVisibility
}

// SetOrder changes a part's render order.
func (m *Model) SetOrder(part int, order int) {
	if !m.valid(part) || m.orders[part] == order {
		return
	}
	m.orders[part] = order
	m.pending[part] |= dirtyOrder
}

// SetPositions replaces a part's vertex positions. The vertex count must not
// change.
func (m *Model) SetPositions(part int, positions []float32) error {
	if !m.valid(part) {
		return fmt.Errorf("part %d out of range", part)
	}
	if len(positions) != len(m.parts[part].Positions) {
		return fmt.Errorf("part %d: got %d position floats, want %d", part, len(positions), len(m.parts[part].Positions))
	}
	copy(m.parts[part].Positions, positions)
	m.pending[part] |= dirtyPositions
	return nil
}

// SetParameter implements model.ParameterSetter.
func (m *Model) SetParameter(name string, value float32) {
	m.params[name] = value
}

// Parameter returns a named parameter value, zero if unset.
func (m *Model) Parameter(name string) float32 {
	return m.params[name]
}

func (m *Model) PartCount() int { return len(m.parts) }

func (m *Model) VertexPositions(part int) []float32 {
	if !m.valid(part) {
		return nil
	}
	return m.parts[part].Positions
}

func (m *Model) VertexUVs(part int) []float32 {
	if !m.valid(part) {
		return nil
	}
	return m.parts[part].UVs
}

func (m *Model) VertexIndices(part int) []uint16 {
	if !m.valid(part) {
		return nil
	}
	return m.parts[part].Indices
}

func (m *Model) TextureIndex(part int) int {
	if !m.valid(part) {
		return -1
	}
	return m.parts[part].Texture
}

func (m *Model) MaskIndices(part int) []int {
	if !m.valid(part) {
		return nil
	}
	return m.parts[part].Masks
}

func (m *Model) BlendMode(part int) model.BlendMode {
	if !m.valid(part) {
		return model.BlendNormal
	}
	return m.parts[part].Blend
}

func (m *Model) CullingEnabled(part int) bool {
	return m.valid(part) && m.parts[part].Culling
}

func (m *Model) Opacity(part int) float32 {
	if !m.valid(part) {
		return 0
	}
	return m.parts[part].Opacity
}

func (m *Model) Visible(part int) bool {
	return m.valid(part) && m.parts[part].Visible
}

func (m *Model) RenderOrders() []int { return m.orders }

func (m *Model) OpacityChanged(part int) bool {
	return m.valid(part) && m.current[part]&dirtyOpacity != 0
}

func (m *Model) VisibilityChanged(part int) bool {
	return m.valid(part) && m.current[part]&dirtyVisibility != 0
}

func (m *Model) OrderChanged(part int) bool {
	return m.valid(part) && m.current[part]&dirtyOrder != 0
}

func (m *Model) VertexPositionsChanged(part int) bool {
	return m.valid(part) && m.current[part]&dirtyPositions != 0
}

func (m *Model) TextureImages() []image.Image { return m.textures }
