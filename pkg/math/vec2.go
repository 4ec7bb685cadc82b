package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
