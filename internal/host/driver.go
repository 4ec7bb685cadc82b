// Package host connects renderers to a presentation surface. The Driver runs
// the fixed-timestep frame loop and the Stage swaps models at runtime.
package host

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/logger"
)

// DefaultFPS is used when a surface reports no preferred frame rate.
const DefaultFPS = 60

// Surface is a presentation surface the driver can link to a device.
type Surface interface {
	gpu.Surface
	// Link attaches the surface to its device and starts producing frames.
	Link() error
	// Unlink stops frames and releases the device link.
	Unlink()
	Paused() bool
	PreferredFPS() int
	// NextTarget returns this frame's presentation target, or nil when
	// none is available.
	NextTarget() gpu.RenderTarget
}

// Renderer is anything the driver can update and render every frame.
type Renderer interface {
	Start(s gpu.Surface) error
	Resize(s gpu.Surface, width, height int)
	Update(dt float64)
	Render(dt float64, vp gpu.Viewport, seq gpu.CommandSequence, target gpu.RenderTarget)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithFit sets the viewport fit mode.
func WithFit(f Fit) Option {
	return func(d *Driver) {
		d.fit = f
	}
}

// WithClearColor sets the color the presentation target is cleared to.
func WithClearColor(c gpu.Color) Option {
	return func(d *Driver) {
		d.clear = c
	}
}

// WithPacing makes Run sleep between frames to hold the preferred rate.
// Hosts whose present call already waits for vsync leave it off.
func WithPacing(on bool) Option {
	return func(d *Driver) {
		d.paced = on
	}
}

// Driver owns the renderers of one surface and ticks them.
type Driver struct {
	log     *zap.Logger
	surface Surface
	fit     Fit
	clear   gpu.Color
	paced   bool

	renderers []Renderer
	viewport  gpu.Viewport
	frames    uint64
}

// NewDriver creates a driver for s.
func NewDriver(s Surface, opts ...Option) *Driver {
	d := &Driver{
		log:     logger.Named("host"),
		surface: s,
	}
	for _, opt := range opts {
		opt(d)
	}
	w, h := s.DrawableSize()
	d.viewport = ComputeViewport(w, h, d.fit)
	return d
}

// Surface returns the driven surface.
func (d *Driver) Surface() Surface { return d.surface }

// Viewport returns the viewport of the last tick or resize.
func (d *Driver) Viewport() gpu.Viewport { return d.viewport }

// Frames returns the number of frames submitted.
func (d *Driver) Frames() uint64 { return d.frames }

// Renderers returns the registered renderers in registration order.
func (d *Driver) Renderers() []Renderer { return d.renderers }

// DT returns the fixed timestep in seconds.
func (d *Driver) DT() float64 {
	fps := d.surface.PreferredFPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return 1 / float64(fps)
}

// AddRenderer registers r. Adding the first renderer to a paused surface
// links it and starts every renderer; adding to a running surface starts r
// right away.
func (d *Driver) AddRenderer(r Renderer) error {
	if slices.Contains(d.renderers, r) {
		return nil
	}
	d.renderers = append(d.renderers, r)

	if d.surface.Paused() {
		if len(d.renderers) > 1 {
			return nil
		}
		if err := d.surface.Link(); err != nil {
			d.renderers = d.renderers[:0]
			return fmt.Errorf("link surface: %w", err)
		}
		d.log.Info("surface linked")
	}

	if err := r.Start(d.surface); err != nil {
		d.removeAt(len(d.renderers) - 1)
		if len(d.renderers) == 0 {
			d.surface.Unlink()
		}
		return fmt.Errorf("start renderer: %w", err)
	}
	return nil
}

// RemoveRenderer unregisters r. Removing the last renderer unlinks the
// surface. The caller releases r.
func (d *Driver) RemoveRenderer(r Renderer) {
	i := slices.Index(d.renderers, r)
	if i < 0 {
		return
	}
	d.removeAt(i)
	if len(d.renderers) == 0 {
		d.surface.Unlink()
		d.log.Info("surface unlinked")
	}
}

func (d *Driver) removeAt(i int) {
	d.renderers = slices.Delete(d.renderers, i, i+1)
}

// Resize recomputes the viewport and forwards the new size to every
// renderer. Hosts call it before the next Tick.
func (d *Driver) Resize(width, height int) {
	d.viewport = ComputeViewport(width, height, d.fit)
	for _, r := range d.renderers {
		r.Resize(d.surface, width, height)
	}
	d.log.Debug("surface resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Tick runs one frame. Missing targets or sequences skip the frame.
func (d *Driver) Tick() {
	if d.surface.Paused() {
		return
	}

	w, h := d.surface.DrawableSize()
	d.viewport = ComputeViewport(w, h, d.fit)

	dt := d.DT()
	for _, r := range d.renderers {
		r.Update(dt)
	}

	target := d.surface.NextTarget()
	if target == nil {
		d.log.Debug("no presentation target, frame skipped")
		return
	}
	dev := d.surface.Device()
	if dev == nil {
		return
	}
	seq := dev.NewCommandSequence()
	if seq == nil {
		d.log.Debug("no command sequence, frame skipped")
		return
	}

	if enc := seq.BeginPass(gpu.PassDescriptor{
		Label:  "clear",
		Target: target,
		Load:   gpu.LoadActionClear,
		Clear:  d.clear,
	}); enc != nil {
		enc.End()
	}

	for _, r := range d.renderers {
		r.Render(dt, d.viewport, seq, target)
	}

	seq.Present(target)
	if err := seq.Submit(); err != nil {
		d.log.Warn("submit failed", zap.Error(err))
		return
	}
	d.frames++
}

// Run ticks until ctx is cancelled, pump returns false, or maxTicks ticks
// have run (0 means no limit). pump is called before every frame to
// deliver window events; it may be nil.
func (d *Driver) Run(ctx context.Context, pump func() bool, maxTicks uint64) {
	frame := time.Duration(d.DT() * float64(time.Second))
	next := time.Now()

	d.log.Info("frame loop started",
		zap.Float64("dt", d.DT()),
		zap.Stringer("fit", d.fit),
	)
	defer d.log.Info("frame loop stopped", zap.Uint64("frames", d.frames))

	for tick := uint64(0); maxTicks == 0 || tick < maxTicks; tick++ {
		if ctx.Err() != nil {
			return
		}
		if pump != nil && !pump() {
			return
		}

		d.Tick()

		if d.paced {
			next = next.Add(frame)
			if wait := time.Until(next); wait > 0 {
				time.Sleep(wait)
			} else {
				next = time.Now()
			}
		}
	}
}
