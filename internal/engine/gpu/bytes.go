package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Float32Bytes views a float slice as bytes without copying.
func Float32Bytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}

// Uint16Bytes views a uint16 slice as bytes without copying.
func Uint16Bytes(u []uint16) []byte {
	if len(u) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&u[0])), len(u)*2)
}

// BytesToFloat32 decodes native little-endian float data. Used by the
// headless backend and tests to read buffer contents back.
func BytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
