package headless

import (
	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// Surface is an offscreen presentation surface backed by a recording Device.
// It satisfies the host adapter's surface contract without a window.
type Surface struct {
	dev    *Device
	width  int
	height int
	fps    int

	linked bool
	paused bool
	screen *Target

	// Presented counts frames that reached Present.
	Presented int
	// NoTarget makes NextTarget return nil, as when the swapchain has no
	// drawable available.
	NoTarget bool
}

// NewSurface creates a paused surface of the given pixel size.
func NewSurface(dev *Device, width, height, fps int) *Surface {
	return &Surface{dev: dev, width: width, height: height, fps: fps, paused: true}
}

// Device returns the recording device, or nil while unlinked.
func (s *Surface) Device() gpu.Device {
	if !s.linked {
		return nil
	}
	return s.dev
}

// DrawableSize returns the surface size in pixels.
func (s *Surface) DrawableSize() (int, int) {
	return s.width, s.height
}

// SetDrawableSize changes the pixel size. The host driver is expected to
// forward the resize to its renderers.
func (s *Surface) SetDrawableSize(width, height int) {
	s.width, s.height = width, height
	s.screen = nil
}

// PreferredFPS returns the target refresh rate.
func (s *Surface) PreferredFPS() int { return s.fps }

// Paused reports whether the surface is not producing frames.
func (s *Surface) Paused() bool { return s.paused }

// Link attaches the device and unpauses the surface.
func (s *Surface) Link() error {
	s.linked = true
	s.paused = false
	return nil
}

// Unlink pauses the surface and detaches the device.
func (s *Surface) Unlink() {
	s.paused = true
	s.linked = false
	s.screen = nil
}

// NextTarget returns the presentation target for this frame.
func (s *Surface) NextTarget() gpu.RenderTarget {
	if !s.linked || s.NoTarget {
		return nil
	}
	if s.screen == nil {
		s.screen = &Target{
			tex:     &Texture{dev: s.dev, label: "screen", width: s.width, height: s.height},
			present: func() { s.Presented++ },
		}
	}
	return s.screen
}
