package math

import (
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		x, lo, hi, want float32
	}{
		{-45, -30, 30, -30},
		{12, -30, 30, 12},
		{99, -30, 30, 30},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
		}
	}
}
