// Package glfwwindow is a GLFW alternative to the SDL window. It creates an
// OpenGL 4.1 core context and reports input through an input.Queue.
package glfwwindow

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/marionette/internal/engine/gpu/glgpu"
	"github.com/Faultbox/marionette/internal/engine/input"
	"github.com/Faultbox/marionette/internal/engine/window"
	"github.com/Faultbox/marionette/internal/logger"
)

func init() {
	runtime.LockOSThread()
}

// Window is a GLFW window presenting an OpenGL surface.
type Window struct {
	*glgpu.Surface

	log    *zap.Logger
	window *glfw.Window
	device *glgpu.Device
	events *input.Queue
}

// New creates the window. The SDL window.Config is reused.
func New(cfg window.Config) (*Window, error) {
	w := &Window{
		log:    logger.Named("glfw"),
		events: input.NewQueue(),
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	w.window = win
	win.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}

	w.device, err = glgpu.New(logger.Named("glgpu"), win.GetFramebufferSize, win.SwapBuffers)
	if err != nil {
		w.Close()
		return nil, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		if vm := glfw.GetPrimaryMonitor().GetVideoMode(); vm != nil {
			fps = vm.RefreshRate
		}
	}
	w.Surface = glgpu.NewSurface(w.device, win.GetFramebufferSize, fps)
	w.installCallbacks()

	fw, fh := win.GetFramebufferSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("drawable_width", fw),
		zap.Int("drawable_height", fh),
		zap.Int("fps", fps),
	)
	return w, nil
}

func (w *Window) installCallbacks() {
	w.window.SetCloseCallback(func(_ *glfw.Window) {
		w.events.Push(input.Event{Type: input.EventQuit})
	})

	// Framebuffer size is in pixels, which differs from the window size on
	// high-DPI displays.
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.Push(input.Event{Type: input.EventWindowResize, Width: width, Height: height})
	})

	w.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		sx, sy := w.window.GetContentScale()
		w.events.Push(input.Event{Type: input.EventPointerMove, X: x * float64(sx), Y: y * float64(sy)})
	})

	w.window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		x, y := w.window.GetCursorPos()
		sx, sy := w.window.GetContentScale()
		t := input.EventPointerDown
		if action == glfw.Release {
			t = input.EventPointerUp
		}
		w.events.Push(input.Event{Type: t, X: x * float64(sx), Y: y * float64(sy), Button: uint8(button) + 1})
	})

	w.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			w.events.Push(input.Event{Type: input.EventKeyDown, Key: keyFromGLFW(key)})
		case glfw.Release:
			w.events.Push(input.Event{Type: input.EventKeyUp, Key: keyFromGLFW(key)})
		}
	})
}

// Poll processes pending window events into the queue and returns it.
func (w *Window) Poll() *input.Queue {
	w.events.Reset()
	glfw.PollEvents()
	return w.events
}

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	w.log.Info("closing window")
	if w.device != nil {
		w.device.Release()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	glfw.Terminate()
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.window.SetTitle(title)
}

func keyFromGLFW(k glfw.Key) input.Key {
	switch k {
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeyQ:
		return input.KeyQ
	case glfw.KeyR:
		return input.KeyR
	case glfw.KeySpace:
		return input.KeySpace
	case glfw.KeyEqual, glfw.KeyKPAdd:
		return input.KeyEquals
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		return input.KeyMinus
	case glfw.KeyUp:
		return input.KeyArrowUp
	case glfw.KeyDown:
		return input.KeyArrowDown
	case glfw.KeyLeft:
		return input.KeyArrowLeft
	case glfw.KeyRight:
		return input.KeyArrowRight
	default:
		return input.KeyUnknown
	}
}
