package host

import (
	"fmt"
	"strings"

	"github.com/Faultbox/marionette/internal/engine/gpu"
)

// Fit selects how the square viewport is fitted into the surface.
type Fit int

const (
	// FitContain uses the shorter side so the whole square is visible.
	FitContain Fit = iota
	// FitCover uses the longer side and crops the overflow.
	FitCover
)

func (f Fit) String() string {
	switch f {
	case FitContain:
		return "contain"
	case FitCover:
		return "cover"
	default:
		return fmt.Sprintf("fit(%d)", int(f))
	}
}

// ParseFit parses "contain" or "cover".
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contain":
		return FitContain, nil
	case "cover":
		return FitCover, nil
	default:
		return FitContain, fmt.Errorf("unknown viewport fit %q", s)
	}
}

// ComputeViewport returns a square viewport centered in a width x height
// surface.
func ComputeViewport(width, height int, fit Fit) gpu.Viewport {
	w, h := float64(width), float64(height)
	side := min(w, h)
	if fit == FitCover {
		side = max(w, h)
	}
	return gpu.Viewport{
		X:      (w - side) / 2,
		Y:      (h - side) / 2,
		Width:  side,
		Height: side,
		ZNear:  0,
		ZFar:   1,
	}
}
