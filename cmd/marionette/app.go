package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/compositor"
	"github.com/Faultbox/marionette/internal/config"
	"github.com/Faultbox/marionette/internal/engine/gpu"
	"github.com/Faultbox/marionette/internal/engine/gpu/headless"
	"github.com/Faultbox/marionette/internal/engine/input"
	"github.com/Faultbox/marionette/internal/engine/window"
	"github.com/Faultbox/marionette/internal/engine/window/glfwwindow"
	"github.com/Faultbox/marionette/internal/host"
	"github.com/Faultbox/marionette/internal/logger"
	"github.com/Faultbox/marionette/internal/model"
	"github.com/Faultbox/marionette/internal/model/puppet"
)

const (
	scaleStep = 1.1
	minScale  = 0.1
	maxScale  = 10
	// statsEvery is how often frame statistics are logged.
	statsEvery = 5 * time.Second
)

// app wires a window backend, the frame driver and the demo model.
type app struct {
	cfg *config.Config
	log *zap.Logger

	models *model.Context
	driver *host.Driver
	stage  *host.Stage

	poll        func() *input.Queue
	afterTick   func()
	closeWindow func()
	setTitle    func(string)

	scale     float32
	lastStats time.Time
	lastCount uint64
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:       cfg,
		log:       logger.Named("app"),
		scale:     cfg.Model.Scale,
		afterTick: func() {},
		setTitle:  func(string) {},
	}

	surface, err := a.openSurface()
	if err != nil {
		return nil, err
	}

	fit, err := host.ParseFit(cfg.Render.Fit)
	if err != nil {
		a.closeWindow()
		return nil, err
	}
	c := cfg.Render.ClearColor
	a.driver = host.NewDriver(surface,
		host.WithLogger(logger.Named("driver")),
		host.WithFit(fit),
		host.WithClearColor(gpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
		host.WithPacing(cfg.Render.Paced || cfg.Headless()),
	)
	a.stage = host.NewStage(a.driver, compositor.WithLogger(logger.Named("compositor")))
	a.stage.SetOrigin(cfg.Model.Origin[0], cfg.Model.Origin[1])
	a.stage.SetScale(a.scale)

	a.models = model.NewContext(logger.Named("model"))
	if err := a.loadPuppet(); err != nil {
		multierr.AppendInto(&err, a.models.Close())
		a.closeWindow()
		return nil, err
	}
	return a, nil
}

// openSurface creates the configured window backend.
func (a *app) openSurface() (host.Surface, error) {
	wc := window.Config{
		Title:      a.cfg.Window.Title,
		Width:      a.cfg.Window.Width,
		Height:     a.cfg.Window.Height,
		Fullscreen: a.cfg.Window.Fullscreen,
		VSync:      a.cfg.Window.VSync,
		FPS:        a.cfg.Window.FPS,
	}

	switch a.cfg.Window.Backend {
	case config.BackendSDL:
		w, err := window.New(wc)
		if err != nil {
			return nil, err
		}
		in := input.New(w.PixelScale)
		a.poll = func() *input.Queue {
			in.Update()
			return in.Queue
		}
		a.closeWindow = w.Close
		a.setTitle = w.SetTitle
		return w, nil

	case config.BackendGLFW:
		w, err := glfwwindow.New(wc)
		if err != nil {
			return nil, err
		}
		a.poll = w.Poll
		a.closeWindow = w.Close
		a.setTitle = w.SetTitle
		return w, nil

	case config.BackendHeadless:
		fps := wc.FPS
		if fps <= 0 {
			fps = host.DefaultFPS
		}
		dev := headless.New()
		events := input.NewQueue()
		a.poll = func() *input.Queue { return events }
		// The recording device keeps every command; drop them each frame.
		a.afterTick = dev.Reset
		a.closeWindow = func() {}
		a.log.Info("running headless",
			zap.Int("width", wc.Width),
			zap.Int("height", wc.Height),
			zap.Int("fps", fps),
		)
		return headless.NewSurface(dev, wc.Width, wc.Height, fps), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", a.cfg.Window.Backend)
	}
}

func (a *app) loadPuppet() error {
	m, err := puppet.New(a.models)
	if err != nil {
		return fmt.Errorf("building puppet: %w", err)
	}
	if err := a.stage.Load(m); err != nil {
		m.Close()
		return fmt.Errorf("loading puppet: %w", err)
	}
	return nil
}

func (a *app) run(ctx context.Context) {
	a.lastStats = time.Now()
	a.driver.Run(ctx, a.pump, a.cfg.Render.Frames)
}

// pump handles window events before each tick. It returns false to stop.
func (a *app) pump() bool {
	a.afterTick()
	a.stats()

	q := a.poll()
	if q.Quit() {
		return false
	}

	for _, e := range q.Events() {
		switch e.Type {
		case input.EventWindowResize:
			a.driver.Resize(e.Width, e.Height)
		case input.EventPointerMove:
			if a.cfg.Model.Tracking {
				a.stage.PointerMoved(e.X, e.Y)
			}
		case input.EventKeyDown:
			if !a.key(e.Key) {
				return false
			}
		}
	}
	return true
}

// key handles a key press. It returns false on quit keys.
func (a *app) key(k input.Key) bool {
	switch k {
	case input.KeyEscape, input.KeyQ:
		return false
	case input.KeyR:
		if err := a.loadPuppet(); err != nil {
			a.log.Error("reload failed", zap.Error(err))
			return false
		}
	case input.KeyEquals:
		a.setScale(a.scale * scaleStep)
	case input.KeyMinus:
		a.setScale(a.scale / scaleStep)
	case input.KeySpace:
		a.setScale(a.cfg.Model.Scale)
	}
	return true
}

func (a *app) setScale(v float32) {
	a.scale = max(minScale, min(maxScale, v))
	a.stage.SetScale(a.scale)
	a.log.Debug("scale changed", zap.Float32("scale", a.scale))
}

func (a *app) stats() {
	elapsed := time.Since(a.lastStats)
	if elapsed < statsEvery {
		return
	}
	frames := a.driver.Frames()
	fps := float64(frames-a.lastCount) / elapsed.Seconds()
	a.setTitle(fmt.Sprintf("%s - %.0f fps", a.cfg.Window.Title, fps))
	a.log.Debug("frame stats", zap.Uint64("frames", frames), zap.Float64("fps", fps))
	a.lastStats = time.Now()
	a.lastCount = frames
}

func (a *app) close() error {
	a.stage.Unload()
	err := a.models.Close()
	a.closeWindow()
	return err
}
