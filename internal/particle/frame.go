package particle

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the per-frame output consumed by a renderer. Positions are in
// world space with the rotation already applied; Scale is the uniform zoom
// the renderer applies to the whole cloud.
type Frame struct {
	Positions []mgl32.Vec3
	Colors    []mgl32.Vec3
	Sizes     []float32
	Rotation  float64
	Scale     float64
}

// Len returns the particle count.
func (f *Frame) Len() int {
	return len(f.Positions)
}

// Clone returns a deep copy that is safe to keep after the next Evaluate.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Positions: make([]mgl32.Vec3, len(f.Positions)),
		Colors:    make([]mgl32.Vec3, len(f.Colors)),
		Sizes:     make([]float32, len(f.Sizes)),
		Rotation:  f.Rotation,
		Scale:     f.Scale,
	}
	copy(c.Positions, f.Positions)
	copy(c.Colors, f.Colors)
	copy(c.Sizes, f.Sizes)
	return c
}

// ErrShortFrame is returned when binary frame data is truncated.
var ErrShortFrame = errors.New("frame data too short")

// floatsPerParticle is xyz + rgb + size.
const floatsPerParticle = 7

// MarshalBinary encodes the frame as little-endian float32s: all positions,
// then all colors, then all sizes.
func (f *Frame) MarshalBinary() ([]byte, error) {
	n := f.Len()
	buf := make([]byte, 0, n*floatsPerParticle*4)
	for _, p := range f.Positions {
		buf = appendFloats(buf, p[:]...)
	}
	for _, c := range f.Colors {
		buf = appendFloats(buf, c[:]...)
	}
	buf = appendFloats(buf, f.Sizes...)
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary. Rotation and Scale
// travel out of band and are left untouched.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data)%(floatsPerParticle*4) != 0 {
		return ErrShortFrame
	}
	n := len(data) / (floatsPerParticle * 4)
	f.Positions = make([]mgl32.Vec3, n)
	f.Colors = make([]mgl32.Vec3, n)
	f.Sizes = make([]float32, n)

	next := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data))
		data = data[4:]
		return v
	}
	for i := range f.Positions {
		f.Positions[i] = mgl32.Vec3{next(), next(), next()}
	}
	for i := range f.Colors {
		f.Colors[i] = mgl32.Vec3{next(), next(), next()}
	}
	for i := range f.Sizes {
		f.Sizes[i] = next()
	}
	return nil
}

func appendFloats(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}
