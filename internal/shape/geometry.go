package shape

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleCount is the number of particles in every shape.
const ParticleCount = 4096

// Set holds the static destination of every particle in every shape.
// Positions[s][i] and Sizes[i] describe the same particle i for all s; the
// arrays are never reordered or mutated after generation.
type Set struct {
	Positions [Count][]mgl32.Vec3
	Sizes     []float32
}

// Position returns particle i's destination in shape id.
func (s *Set) Position(id ID, i int) mgl32.Vec3 {
	return s.Positions[id.normalize()][i]
}

// Points returns every destination of shape id. Out-of-range ids wrap.
func (s *Set) Points(id ID) []mgl32.Vec3 {
	return s.Positions[id.normalize()]
}

// Len returns the particle count.
func (s *Set) Len() int {
	return len(s.Sizes)
}

// Bounds returns the axis-aligned bounding box of shape id.
func (s *Set) Bounds(id ID) (lo, hi mgl32.Vec3) {
	pts := s.Positions[id.normalize()]
	if len(pts) == 0 {
		return lo, hi
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

var (
	sharedOnce sync.Once
	sharedSet  *Set
)

// Shared returns the process-wide geometry, generating it on first use.
// Regenerating would break the index correspondence between shapes that a
// running field depends on, so everything rendering live should use this.
func Shared() *Set {
	sharedOnce.Do(func() {
		seed := uint64(time.Now().UnixNano())
		sharedSet = Generate(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	})
	return sharedSet
}

// FromSeed generates a Set from a fixed seed.
func FromSeed(seed uint64) *Set {
	return Generate(rand.New(rand.NewPCG(seed, seed)))
}

// Generate builds all five shapes from rng. The same rng state always yields
// the same Set.
func Generate(rng *rand.Rand) *Set {
	s := &Set{Sizes: make([]float32, ParticleCount)}
	for id := range s.Positions {
		s.Positions[id] = make([]mgl32.Vec3, ParticleCount)
	}

	for i := 0; i < ParticleCount; i++ {
		s.Sizes[i] = float32(rng.Float64()*0.12 + 0.05)
		s.Positions[Earth][i] = earthPoint(rng)
		s.Positions[Heart][i] = heartPoint(rng, i)
		s.Positions[Gada][i] = gadaPoint(rng, i)
		s.Positions[HanumanFigure][i] = hanumanPoint(rng, i)
		s.Positions[DivineAura][i] = auraPoint(rng, i)
	}
	return s
}

// sweep maps particle index i onto [0, 2π).
func sweep(i int) float64 {
	return float64(i) / ParticleCount * 2 * math.Pi
}

// spread returns a uniform value in [-width/2, width/2).
func spread(rng *rand.Rand, width float64) float64 {
	return (rng.Float64() - 0.5) * width
}

func vec(x, y, z float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// sphere returns a uniformly distributed point on a sphere of radius r.
func sphere(rng *rand.Rand, r float64) (x, y, z float64) {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	return r * math.Sin(phi) * math.Cos(theta),
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi)
}

func earthPoint(rng *rand.Rand) mgl32.Vec3 {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	r := 5.0 + spread(rng, 0.2)
	return vec(
		r*math.Sin(phi)*math.Cos(theta),
		r*math.Sin(phi)*math.Sin(theta),
		r*math.Cos(phi),
	)
}

func heartPoint(rng *rand.Rand, i int) mgl32.Vec3 {
	const scale = 0.35
	t := sweep(i)
	st := math.Sin(t)
	x := 16 * st * st * st
	y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	return vec(x*scale, y*scale+1.0, spread(rng, 2.0))
}

func gadaPoint(rng *rand.Rand, i int) mgl32.Vec3 {
	if i%5 == 0 {
		// handle
		return vec(spread(rng, 0.6), spread(rng, 10.0)-2.0, spread(rng, 0.6))
	}
	// head: a shell of radius 3.2 around y=5, with y taken from the polar axis
	x, z, y := sphere(rng, 3.2)
	return vec(x, y+5.0, z)
}

func hanumanPoint(rng *rand.Rand, i int) mgl32.Vec3 {
	switch section := i % 10; {
	case section < 2:
		x, z, y := sphere(rng, 1.6)
		return vec(x, y+6.0, z)
	case section < 7:
		// torso narrows with height; sqrt keeps the disk density uniform
		y := spread(rng, 6.0)
		w := 2.8 - y*0.3
		a := rng.Float64() * 2 * math.Pi
		d := math.Sqrt(rng.Float64()) * w
		return vec(d*math.Cos(a), y+2.0, d*math.Sin(a)*0.6)
	default:
		t := rng.Float64()
		return vec(
			-2.5-t*5.0+math.Sin(t*4.0),
			-1.5+math.Cos(t*3.0)*3.0,
			math.Sin(t*6.0),
		)
	}
}

func auraPoint(rng *rand.Rand, i int) mgl32.Vec3 {
	a := sweep(i)
	r := 8.5 + spread(rng, 2.0)
	return vec(r*math.Cos(a), r*math.Sin(a), spread(rng, 3.0))
}
