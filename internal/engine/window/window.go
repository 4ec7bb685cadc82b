// Package window handles SDL2 window and OpenGL context creation and exposes
// the window as a presentation surface.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu/glgpu"
	"github.com/Faultbox/marionette/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	// FPS is the frame rate reported to the host. Zero uses the display
	// refresh rate.
	FPS int
}

// Window wraps an SDL2 window and its OpenGL context.
type Window struct {
	*glgpu.Surface

	log       *zap.Logger
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	device    *glgpu.Device
}

// New creates a window with an OpenGL 4.1 core context.
func New(cfg Config) (*Window, error) {
	w := &Window{
		log:    logger.Named("window"),
		config: cfg,
	}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// 4.1 core is the newest profile macOS provides.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if cfg.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			w.log.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}

	w.device, err = glgpu.New(logger.Named("glgpu"), w.drawableSize, w.SwapBuffers)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.Surface = glgpu.NewSurface(w.device, w.drawableSize, w.fps())

	dw, dh := w.drawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("fps", w.PreferredFPS()),
	)

	return w, nil
}

func (w *Window) fps() int {
	if w.config.FPS > 0 {
		return w.config.FPS
	}
	idx, err := w.sdlWindow.GetDisplayIndex()
	if err != nil {
		return 0
	}
	mode, err := sdl.GetCurrentDisplayMode(idx)
	if err != nil {
		return 0
	}
	return int(mode.RefreshRate)
}

func (w *Window) drawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// PixelScale returns drawable pixels per window point on each axis.
func (w *Window) PixelScale() (float64, float64) {
	ww, wh := w.sdlWindow.GetSize()
	dw, dh := w.drawableSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(dw) / float64(ww), float64(dh) / float64(wh)
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.device != nil {
		w.device.Release()
	}
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// SwapBuffers swaps the OpenGL buffers.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
