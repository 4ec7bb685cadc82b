package glgpu

import (
	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// Surface presents the default framebuffer of a window. Window packages
// embed it to satisfy the host surface contract.
type Surface struct {
	dev    *Device
	size   func() (int, int)
	fps    int
	linked bool
}

// NewSurface wraps dev. size reports the drawable size in pixels.
func NewSurface(dev *Device, size func() (int, int), fps int) *Surface {
	return &Surface{dev: dev, size: size, fps: fps}
}

// Device returns the GL device, nil while unlinked.
func (s *Surface) Device() gpu.Device {
	if !s.linked {
		return nil
	}
	return s.dev
}

// DrawableSize returns the default framebuffer size in pixels.
func (s *Surface) DrawableSize() (int, int) {
	return s.size()
}

// Link starts producing frames.
func (s *Surface) Link() error {
	s.linked = true
	return nil
}

// Unlink stops producing frames.
func (s *Surface) Unlink() {
	s.linked = false
}

// Paused reports whether frames are stopped.
func (s *Surface) Paused() bool {
	return !s.linked
}

// PreferredFPS returns the target frame rate.
func (s *Surface) PreferredFPS() int {
	return s.fps
}

// NextTarget returns the default framebuffer while linked.
func (s *Surface) NextTarget() gpu.RenderTarget {
	if !s.linked {
		return nil
	}
	return s.dev.Screen()
}
