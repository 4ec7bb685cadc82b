package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Input polls SDL2 events into a Queue.
type Input struct {
	*Queue
	// scale converts window points to drawable pixels.
	scale func() (float64, float64)
}

// New creates an SDL input handler. scale returns the pixel-per-point
// ratio of the window; nil means 1.
func New(scale func() (float64, float64)) *Input {
	if scale == nil {
		scale = func() (float64, float64) { return 1, 1 }
	}
	return &Input{Queue: NewQueue(), scale: scale}
}

// Update polls SDL events and converts them to host events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.Reset()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.Push(Event{Type: EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				sx, sy := i.scale()
				i.Push(Event{
					Type:   EventWindowResize,
					Width:  int(float64(e.Data1) * sx),
					Height: int(float64(e.Data2) * sy),
				})
			}

		case *sdl.KeyboardEvent:
			t := EventKeyDown
			if e.Type == sdl.KEYUP {
				t = EventKeyUp
			}
			i.Push(Event{Type: t, Key: keyFromScancode(e.Keysym.Scancode)})

		case *sdl.MouseMotionEvent:
			sx, sy := i.scale()
			i.Push(Event{
				Type: EventPointerMove,
				X:    float64(e.X) * sx,
				Y:    float64(e.Y) * sy,
			})

		case *sdl.MouseButtonEvent:
			t := EventPointerDown
			if e.Type == sdl.MOUSEBUTTONUP {
				t = EventPointerUp
			}
			sx, sy := i.scale()
			i.Push(Event{
				Type:   t,
				X:      float64(e.X) * sx,
				Y:      float64(e.Y) * sy,
				Button: e.Button,
			})
		}
	}

	return i.Quit()
}

func keyFromScancode(sc sdl.Scancode) Key {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		return KeyEscape
	case sdl.SCANCODE_Q:
		return KeyQ
	case sdl.SCANCODE_R:
		return KeyR
	case sdl.SCANCODE_SPACE:
		return KeySpace
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		return KeyEquals
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		return KeyMinus
	case sdl.SCANCODE_UP:
		return KeyArrowUp
	case sdl.SCANCODE_DOWN:
		return KeyArrowDown
	case sdl.SCANCODE_LEFT:
		return KeyArrowLeft
	case sdl.SCANCODE_RIGHT:
		return KeyArrowRight
	default:
		return KeyUnknown
	}
}
