// Package puppet builds the demo character: a small procedural rig on top of
// the in-memory model that breathes, blinks and turns its head toward the
// ParamAngleX/ParamAngleY parameters.
package puppet

import (
	"image"
	"image/color"
	"math"

	"github.com/Faultbox/marionette/internal/model"
	"github.com/Faultbox/marionette/internal/model/memory"
)

// Part names, in creation order.
const (
	PartShadow = "shadow"
	PartBody   = "body"
	PartHead   = "head"
	PartEyeL   = "eye_l"
	PartEyeR   = "eye_r"
	PartGlow   = "glow"
)

const (
	texShadow = iota
	texBody
	texHead
	texEye
	texGlow
)

// Motion constants.
const (
	breathPeriod  = 3.5  // seconds
	breathDepth   = 0.02 // fraction of body height
	blinkPeriod   = 4.0
	blinkDuration = 0.12
	glowPeriod    = 2.0
	headTravel    = 0.08 // model units at 30 degrees
	eyeTravel     = 0.14
	maxAngle      = 30
)

type rect struct{ x0, y0, x1, y1 float32 }

var layout = []struct {
	name    string
	rect    rect
	texture int
	blend   model.BlendMode
	order   int
	opacity float32
	culling bool
}{
	{PartShadow, rect{-0.55, -1.0, 0.55, -0.8}, texShadow, model.BlendMultiplicative, 0, 0.8, false},
	{PartBody, rect{-0.45, -0.9, 0.45, 0.1}, texBody, model.BlendNormal, 1, 1, false},
	{PartHead, rect{-0.4, 0.0, 0.4, 0.8}, texHead, model.BlendNormal, 2, 1, true},
	{PartEyeL, rect{-0.22, 0.3, -0.06, 0.46}, texEye, model.BlendNormal, 3, 1, false},
	{PartEyeR, rect{0.06, 0.3, 0.22, 0.46}, texEye, model.BlendNormal, 3, 1, false},
	{PartGlow, rect{-0.9, -0.5, 0.9, 1.0}, texGlow, model.BlendAdditive, 4, 0.5, false},
}

// Textures returns the rig's procedural textures, indexed by part texture.
func Textures() []image.Image {
	return []image.Image{
		texShadow: disc(color.NRGBA{R: 90, G: 80, B: 100, A: 200}),
		texBody:   disc(color.NRGBA{R: 70, G: 110, B: 190, A: 255}),
		texHead:   disc(color.NRGBA{R: 250, G: 214, B: 180, A: 255}),
		texEye:    disc(color.NRGBA{R: 30, G: 30, B: 40, A: 255}),
		texGlow:   radial(color.NRGBA{R: 255, G: 220, B: 140, A: 160}),
	}
}

// Parts returns the initial part table. The eyes are clipped by the head.
func Parts() []memory.Part {
	parts := make([]memory.Part, len(layout))
	head := -1
	for i, l := range layout {
		if l.name == PartHead {
			head = i
		}
		parts[i] = memory.Part{
			Name:      l.name,
			Positions: quad(l.rect),
			UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
			Indices:   []uint16{0, 1, 2, 0, 2, 3},
			Texture:   l.texture,
			Blend:     l.blend,
			Culling:   l.culling,
			Opacity:   l.opacity,
			Visible:   true,
			Order:     l.order,
		}
	}
	for i := range parts {
		if parts[i].Name == PartEyeL || parts[i].Name == PartEyeR {
			parts[i].Masks = []int{head}
		}
	}
	return parts
}

func quad(r rect) []float32 {
	return []float32{r.x0, r.y0, r.x1, r.y0, r.x1, r.y1, r.x0, r.y1}
}

// Rig animates a puppet model.
type Rig struct {
	model *memory.Model
	base  [][]float32
	idx   map[string]int

	blinking bool
	scratch  []float32
}

// New creates the puppet model on ctx with its animator installed.
func New(ctx *model.Context) (*memory.Model, error) {
	m, err := memory.New(ctx, Parts(), Textures())
	if err != nil {
		return nil, err
	}
	NewRig(m)
	return m, nil
}

// NewRig installs the puppet animator on m. m must have been built from
// Parts.
func NewRig(m *memory.Model) *Rig {
	r := &Rig{
		model: m,
		base:  make([][]float32, m.PartCount()),
		idx:   make(map[string]int, m.PartCount()),
	}
	for _, l := range layout {
		i := m.PartIndex(l.name)
		r.idx[l.name] = i
		if i >= 0 {
			r.base[i] = append([]float32(nil), m.VertexPositions(i)...)
		}
	}
	m.SetAnimator(r.animate)
	return r
}

func (r *Rig) animate(m *memory.Model, _ float64) {
	t := m.Elapsed()

	ax := clampAngle(m.Parameter(model.ParamAngleX)) / maxAngle
	ay := clampAngle(m.Parameter(model.ParamAngleY)) / maxAngle

	breath := float32(math.Sin(2*math.Pi*t/breathPeriod)) * breathDepth
	r.stretch(PartBody, 1+breath)

	r.shift(PartHead, ax*headTravel, ay*headTravel+breath*0.5)
	r.shift(PartEyeL, ax*eyeTravel, ay*eyeTravel+breath*0.5)
	r.shift(PartEyeR, ax*eyeTravel, ay*eyeTravel+breath*0.5)

	blink := math.Mod(t, blinkPeriod) > blinkPeriod-blinkDuration
	if blink != r.blinking {
		r.blinking = blink
		m.SetVisible(r.idx[PartEyeL], !blink)
		m.SetVisible(r.idx[PartEyeR], !blink)
	}

	glow := 0.5 + 0.3*math.Sin(2*math.Pi*t/glowPeriod)
	// Quantized so opacity is not rewritten every frame.
	m.SetOpacity(r.idx[PartGlow], float32(math.Round(glow*20)/20))
}

// shift translates a part from its rest pose.
func (r *Rig) shift(name string, dx, dy float32) {
	i, ok := r.idx[name]
	if !ok || i < 0 {
		return
	}
	base := r.base[i]
	r.scratch = append(r.scratch[:0], base...)
	for v := 0; v+1 < len(base); v += 2 {
		r.scratch[v] += dx
		r.scratch[v+1] += dy
	}
	r.write(i)
}

// stretch scales a part vertically about its lowest point.
func (r *Rig) stretch(name string, sy float32) {
	i, ok := r.idx[name]
	if !ok || i < 0 {
		return
	}
	base := r.base[i]
	bottom := float32(math.MaxFloat32)
	for v := 1; v < len(base); v += 2 {
		bottom = min(bottom, base[v])
	}
	r.scratch = append(r.scratch[:0], base...)
	for v := 1; v < len(base); v += 2 {
		r.scratch[v] = bottom + (base[v]-bottom)*sy
	}
	r.write(i)
}

func (r *Rig) write(i int) {
	cur := r.model.VertexPositions(i)
	for v := range cur {
		if cur[v] != r.scratch[v] {
			// Same vertex count, cannot fail.
			_ = r.model.SetPositions(i, r.scratch)
			return
		}
	}
}

func clampAngle(v float32) float32 {
	return max(-maxAngle, min(maxAngle, v))
}
