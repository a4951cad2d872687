// Package particle evaluates the live position, color and size of every
// particle from the static shapes, the morph state and the gesture state.
package particle

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/shape"
)

// Field constants.
const (
	// CameraDistance is how far the viewing camera sits from the origin on +z.
	CameraDistance = 15.0
	// PointScale converts base size into screen size at unit depth.
	PointScale = 400.0

	explosionGain    = 5.0
	explosionFalloff = 0.4
	epsilon          = 1e-4
)

// Input is everything one frame of evaluation depends on.
type Input struct {
	Morph          morph.State
	Gesture        gesture.State
	Elapsed        float64
	RotationFollow bool
}

// Params are the per-frame uniforms shared by every particle.
type Params struct {
	Previous  shape.ID
	Target    shape.ID
	Eased     float64
	Angle     float64
	Explosion float64
	Anchor    mgl32.Vec3
	Time      float64
	Scale     float64
}

// Field evaluates particles against one shape Set. It owns the rotation
// state and the output buffers, which are reused every frame.
type Field struct {
	set      *shape.Set
	rotation Rotation
	land     []bool
	frame    Frame
}

// NewField prepares a field for set.
func NewField(set *shape.Set) *Field {
	n := set.Len()
	f := &Field{
		set:  set,
		land: make([]bool, n),
		frame: Frame{
			Positions: make([]mgl32.Vec3, n),
			Colors:    make([]mgl32.Vec3, n),
			Sizes:     make([]float32, n),
		},
	}
	for i, p := range set.Points(shape.Earth) {
		f.land[i] = IsLand(p)
	}
	return f
}

// Rotation returns the current field angle.
func (f *Field) Rotation() float64 {
	return f.rotation.Angle()
}

// IsLand reports whether an Earth base position is speckled green.
func IsLand(p mgl32.Vec3) bool {
	v := float64(p.X())*10 + float64(p.Y())*10
	return v-math.Floor(v) > 0.6
}

// Anchor maps a normalized hand position into world space.
func Anchor(hand [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hand[0] - 0.5) * 20),
		float32(-(hand[1] - 0.5) * 15),
		float32((hand[2] - 0.5) * 10),
	}
}

// FieldScale is the uniform zoom applied to the whole cloud.
func FieldScale(handScale float64) float64 {
	return 0.6 + handScale*1.2
}

// Evaluate updates the rotation once and renders the frame. The returned
// Frame is owned by the Field and overwritten by the next call.
func (f *Field) Evaluate(in Input) *Frame {
	g := in.Gesture
	angle := f.rotation.Update(in.RotationFollow && g.HandDetected, g.HandPosition[0])
	return f.Render(paramsFor(in, angle))
}

// Peek renders in at the current angle without advancing the rotation.
func (f *Field) Peek(in Input) *Frame {
	return f.Render(paramsFor(in, f.rotation.Angle()))
}

func paramsFor(in Input, angle float64) Params {
	g := in.Gesture
	return Params{
		Previous:  in.Morph.Previous,
		Target:    in.Morph.Target,
		Eased:     in.Morph.Eased(),
		Angle:     angle,
		Explosion: g.FlickIntensity,
		Anchor:    Anchor(g.HandPosition),
		Time:      in.Elapsed,
		Scale:     FieldScale(g.HandScale),
	}
}

// Render computes every particle for p without touching the rotation state.
func (f *Field) Render(p Params) *Frame {
	from := f.set.Points(p.Previous)
	to := f.set.Points(p.Target)
	eased := float32(p.Eased)

	hanuman := p.Previous == shape.HanumanFigure || p.Target == shape.HanumanFigure
	var motion, breath float64
	if hanuman {
		motion = p.Eased
		if p.Target != shape.HanumanFigure {
			motion = 1 - p.Eased
		}
		breath = 1 + math.Sin(p.Time*1.5)*0.04*motion
	}

	// Positive angles turn +x toward -z, a right-handed turn about +y.
	rot := mgl32.Rotate2D(float32(-p.Angle))
	base, land := blendColors(p)
	speckle := p.Target == shape.Earth

	for i := range f.frame.Positions {
		pos := lerp(from[i], to[i], eased)

		if hanuman {
			if pos.X() < -2 {
				pos[1] += float32(math.Sin(p.Time*2+float64(pos.X())*0.5) * 0.4 * motion)
			}
			pos[0] *= float32(breath)
			pos[1] *= float32(breath)
		}

		xz := rot.Mul2x1(mgl32.Vec2{pos.X(), pos.Z()})
		pos[0], pos[2] = xz[0], xz[1]

		if p.Explosion > 0 {
			pos = explode(pos, p.Anchor, p.Explosion)
		}

		f.frame.Positions[i] = pos
		if speckle && f.land[i] {
			f.frame.Colors[i] = land
		} else {
			f.frame.Colors[i] = base
		}

		depth := float64(pos.Z())*p.Scale - CameraDistance
		f.frame.Sizes[i] = float32(float64(f.set.Sizes[i]) * PointScale / math.Max(1, -depth))
	}

	f.frame.Rotation = p.Angle
	f.frame.Scale = p.Scale
	return &f.frame
}

// lerp blends a toward b. t=1 yields b exactly.
func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	s := 1 - t
	return mgl32.Vec3{a[0]*s + b[0]*t, a[1]*s + b[1]*t, a[2]*s + b[2]*t}
}

// explode pushes pos away from anchor with exponential falloff.
func explode(pos, anchor mgl32.Vec3, intensity float64) mgl32.Vec3 {
	diff := pos.Sub(anchor)
	dist := float64(diff.Len())
	dir := diff.Add(mgl32.Vec3{epsilon, epsilon, epsilon})
	l := dir.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return pos
	}
	force := intensity * math.Exp(-dist*explosionFalloff) * explosionGain
	return pos.Add(dir.Mul(float32(force) / l))
}

// blendColors returns the shared particle color and the speckled land color.
func blendColors(p Params) (base, land mgl32.Vec3) {
	c := p.Previous.Color().BlendRgb(p.Target.Color(), p.Eased)
	g := c.BlendRgb(shape.Land, p.Eased)
	return rgb(c), rgb(g)
}

func rgb(c colorful.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
