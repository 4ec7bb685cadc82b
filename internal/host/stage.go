package host

import (
	"io"

	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/compositor"
	"github.com/Faultbox/marionette/internal/model"
	"github.com/Faultbox/marionette/pkg/math"
)

// MaxAngle bounds the head angles produced by pointer tracking, in degrees.
const MaxAngle = 30

// Stage shows one model at a time on a driver and points its head at the
// pointer.
type Stage struct {
	log    *zap.Logger
	driver *Driver
	opts   []compositor.Option

	renderer *compositor.Renderer
	model    model.Model

	origin math.Vec2
	scale  float32

	pointer    math.Vec2
	hasPointer bool
}

// NewStage creates a stage on d. opts are applied to every renderer the
// stage builds.
func NewStage(d *Driver, opts ...compositor.Option) *Stage {
	return &Stage{
		log:    d.log.Named("stage"),
		driver: d,
		opts:   opts,
		scale:  1,
	}
}

// Renderer returns the renderer of the current model, nil before Load.
func (s *Stage) Renderer() *compositor.Renderer { return s.renderer }

// Model returns the current model.
func (s *Stage) Model() model.Model { return s.model }

// Load replaces the shown model. The previous renderer is detached and
// released, and the previous model closed if it can be, before the new
// renderer is built.
func (s *Stage) Load(m model.Model) error {
	s.Unload()

	r := compositor.New(s.opts...)
	r.SetModel(m)
	r.SetOrigin(s.origin.X, s.origin.Y)
	r.SetScale(s.scale)
	r.OnUpdate(s.track)

	if err := s.driver.AddRenderer(r); err != nil {
		if rerr := r.Release(); rerr != nil {
			s.log.Warn("release failed", zap.Error(rerr))
		}
		return err
	}
	s.renderer = r
	s.model = m
	s.log.Info("model loaded", zap.Int("parts", m.PartCount()))
	return nil
}

// Unload detaches and releases the current renderer and closes its model.
func (s *Stage) Unload() {
	if s.renderer == nil {
		return
	}
	s.driver.RemoveRenderer(s.renderer)
	if err := s.renderer.Release(); err != nil {
		s.log.Warn("renderer release failed", zap.Error(err))
	}
	if c, ok := s.model.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("model close failed", zap.Error(err))
		}
	}
	s.renderer = nil
	s.model = nil
}

// SetOrigin places the model center in clip space.
func (s *Stage) SetOrigin(x, y float32) {
	s.origin = math.Vec2{X: x, Y: y}
	if s.renderer != nil {
		s.renderer.SetOrigin(x, y)
	}
}

// SetScale sets the model scale.
func (s *Stage) SetScale(v float32) {
	s.scale = v
	if s.renderer != nil {
		s.renderer.SetScale(v)
	}
}

// PointerMoved records the pointer position in surface pixels, origin at
// the top-left corner.
func (s *Stage) PointerMoved(x, y float64) {
	s.pointer = math.Vec2{X: float32(x), Y: float32(y)}
	s.hasPointer = true
}

// HeadAngles converts the pointer position into ParamAngleX/Y values. The
// model center is the origin mapped through the current viewport.
func (s *Stage) HeadAngles() (float32, float32) {
	vp := s.driver.Viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0, 0
	}
	cx := float32(vp.X + vp.Width*0.5*(1+float64(s.origin.X)))
	cy := float32(vp.Y + vp.Height*0.5*(1-float64(s.origin.Y)))

	ax := 2 * (s.pointer.X - cx) / float32(vp.Width) * MaxAngle
	ay := 2 * (cy - s.pointer.Y) / float32(vp.Height) * MaxAngle
	return math.Clamp(ax, -MaxAngle, MaxAngle), math.Clamp(ay, -MaxAngle, MaxAngle)
}

// track runs before every model tick.
func (s *Stage) track(float64) {
	if !s.hasPointer {
		return
	}
	p, ok := s.model.(model.ParameterSetter)
	if !ok {
		return
	}
	ax, ay := s.HeadAngles()
	p.SetParameter(model.ParamAngleX, ax)
	p.SetParameter(model.ParamAngleY, ay)
}
