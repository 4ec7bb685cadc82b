// Package compositor renders a layered, deformable character model. It keeps
// one Drawable per model part with GPU copies of its geometry and opacity,
// patches only what the model reports as changed each tick, and draws every
// frame in two passes: mask generation, then masked and blended composition.
package compositor

import (
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/logger"
	"github.com/Faultbox/marionette/internal/model"
	"github.com/Faultbox/marionette/pkg/math"
)

// ErrNoDevice is returned by Start when the surface is not linked.
var ErrNoDevice = errors.New("compositor: surface has no device")

// UpdateHook runs at the start of every Update, before the model ticks.
type UpdateHook func(dt float64)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithColorFormat sets the color format the pipelines are built for.
func WithColorFormat(f gpu.PixelFormat) Option {
	return func(r *Renderer) {
		r.format = f
	}
}

// Renderer composites one model onto a host surface.
type Renderer struct {
	log    *zap.Logger
	format gpu.PixelFormat
	hooks  []UpdateHook

	model model.Model

	device    gpu.Device
	pipelines *Pipelines
	width     int
	height    int

	drawables []*Drawable
	drawOrder []int
	textures  []gpu.Texture

	origin       math.Vec2
	scale        float32
	transform    math.Mat4
	transformBuf gpu.Buffer
}

// New creates a renderer with no model and no device.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		log:       logger.Named("compositor"),
		format:    gpu.FormatRGBA8,
		scale:     1,
		transform: math.Identity(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnUpdate registers a hook run at the start of every Update.
func (r *Renderer) OnUpdate(h UpdateHook) {
	r.hooks = append(r.hooks, h)
}

// Model returns the current model, nil when none is set.
func (r *Renderer) Model() model.Model {
	return r.model
}

// SetModel replaces the model. Resources of the previous model are released
// before the new ones are built. Passing nil unloads.
func (r *Renderer) SetModel(m model.Model) {
	if err := r.releaseModelResources(); err != nil {
		r.log.Warn("release of previous model resources failed", zap.Error(err))
	}
	r.model = m
	if m != nil && r.device != nil {
		r.buildResources()
	}
}

// Start binds the renderer to the surface's device and builds pipelines and
// model resources. Calling Start again rebuilds everything on the new device.
func (r *Renderer) Start(s gpu.Surface) error {
	dev := s.Device()
	if dev == nil {
		return ErrNoDevice
	}
	if r.device != nil {
		if err := r.Release(); err != nil {
			r.log.Warn("release before restart failed", zap.Error(err))
		}
	}

	r.device = dev
	r.width, r.height = s.DrawableSize()
	r.pipelines = BuildPipelines(dev, r.format, r.log)
	if r.model != nil {
		r.buildResources()
	}

	r.log.Info("renderer started",
		zap.String("device", dev.Name()),
		zap.Int("width", r.width),
		zap.Int("height", r.height),
	)
	return nil
}

// Resize records the new drawable size and reallocates mask targets whose
// size no longer matches.
func (r *Renderer) Resize(s gpu.Surface, width, height int) {
	r.width, r.height = width, height
	if r.device == nil {
		return
	}
	r.allocMaskTargets()
}

// Update advances the model by dt and patches changed GPU state.
func (r *Renderer) Update(dt float64) {
	for _, h := range r.hooks {
		h(dt)
	}
	if t, ok := r.model.(model.Ticker); ok {
		t.Tick(dt)
	}
	r.updateDrawables()
}

// Render draws the mask pass and then the main pass into target.
func (r *Renderer) Render(dt float64, vp gpu.Viewport, seq gpu.CommandSequence, target gpu.RenderTarget) {
	if seq == nil || r.drawables == nil {
		return
	}
	r.renderMasks(seq, vp)
	r.renderDrawables(seq, vp, target)
}

// Release frees every GPU resource the renderer owns and detaches it from
// its device. The model is kept.
func (r *Renderer) Release() error {
	err := r.releaseModelResources()
	err = multierr.Append(err, r.pipelines.Release())
	r.pipelines = nil
	r.device = nil
	return err
}

// Drawables returns the drawable table indexed by part.
func (r *Renderer) Drawables() []*Drawable {
	return r.drawables
}

// DrawOrder returns the current draw order list.
func (r *Renderer) DrawOrder() []int {
	return r.drawOrder
}

// Textures returns the texture table. Failed uploads are nil.
func (r *Renderer) Textures() []gpu.Texture {
	return r.textures
}

// TransformBuffer returns the GPU copy of the transform.
func (r *Renderer) TransformBuffer() gpu.Buffer {
	return r.transformBuf
}

// Origin returns the model origin in clip space.
func (r *Renderer) Origin() math.Vec2 { return r.origin }

// Scale returns the uniform model scale.
func (r *Renderer) Scale() float32 { return r.scale }

// Transform returns the current model transform.
func (r *Renderer) Transform() math.Mat4 { return r.transform }

// SetOrigin moves the model and recomputes the transform.
func (r *Renderer) SetOrigin(x, y float32) {
	r.origin = math.Vec2{X: x, Y: y}
	r.recomputeTransform()
}

// SetScale scales the model and recomputes the transform.
func (r *Renderer) SetScale(s float32) {
	r.scale = s
	r.recomputeTransform()
}

// SetTransform replaces the transform with m. Origin and scale are left as
// they were and overwrite m on their next change.
func (r *Renderer) SetTransform(m math.Mat4) {
	r.transform = m
	r.uploadTransform()
}

func (r *Renderer) recomputeTransform() {
	r.transform = math.Translate(r.origin.X, r.origin.Y, 0).Mul(math.Scale(r.scale, r.scale, 1))
	r.uploadTransform()
}

func (r *Renderer) uploadTransform() {
	if r.transformBuf == nil {
		return
	}
	if err := r.transformBuf.Write(0, gpu.Float32Bytes(r.transform[:])); err != nil {
		r.log.Warn("transform upload failed", zap.Error(err))
	}
}

func (r *Renderer) releaseModelResources() error {
	var err error
	for _, d := range r.drawables {
		err = multierr.Append(err, d.release())
	}
	r.drawables = nil
	r.drawOrder = nil

	for _, t := range r.textures {
		if t != nil {
			err = multierr.Append(err, t.Release())
		}
	}
	r.textures = nil

	if r.transformBuf != nil {
		err = multierr.Append(err, r.transformBuf.Release())
		r.transformBuf = nil
	}
	return err
}
