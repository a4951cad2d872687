package preview

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ayusman/hanuman/internal/particle"
)

// Viewing constants shared by every preview.
const (
	FieldOfView = 60
	Near        = 0.1
	Far         = 100
)

// Projector maps world positions onto a width x height viewport seen from
// (0, 0, CameraDistance) looking at the origin.
type Projector struct {
	width, height int
	view, proj    mgl32.Mat4
}

// NewProjector returns a Projector for the viewport. aspect scales the
// horizontal axis; pass 1 for square pixels and about 0.5 for terminal cells.
func NewProjector(width, height int, aspect float32) *Projector {
	ratio := float32(width) / float32(height) * aspect
	return &Projector{
		width:  width,
		height: height,
		view: mgl32.LookAtV(
			mgl32.Vec3{0, 0, particle.CameraDistance},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 1, 0},
		),
		proj: mgl32.Perspective(mgl32.DegToRad(FieldOfView), ratio, Near, Far),
	}
}

// Point is one projected particle in viewport coordinates, y pointing down.
type Point struct {
	X, Y  float32
	Depth float32
	Size  float32
	Color mgl32.Vec3
}

// Project returns the position of pos after the field scale, and whether it
// lands inside the viewport and the depth range.
func (p *Projector) Project(pos mgl32.Vec3, scale float64) (x, y, depth float32, ok bool) {
	s := float32(scale)
	modelView := p.view.Mul4(mgl32.Scale3D(s, s, s))
	win := mgl32.Project(pos, modelView, p.proj, 0, 0, p.width, p.height)

	x, y, depth = win.X(), float32(p.height)-win.Y(), win.Z()
	ok = depth > 0 && depth < 1 &&
		x >= 0 && x < float32(p.width) &&
		y >= 0 && y < float32(p.height)
	return x, y, depth, ok
}

// Points projects a whole frame and returns the visible points sorted far
// to near, so painting in order leaves near particles on top.
func (p *Projector) Points(frame *particle.Frame) []Point {
	points := make([]Point, 0, frame.Len())
	for i, pos := range frame.Positions {
		x, y, depth, ok := p.Project(pos, frame.Scale)
		if !ok {
			continue
		}
		points = append(points, Point{
			X:     x,
			Y:     y,
			Depth: depth,
			Size:  frame.Sizes[i],
			Color: frame.Colors[i],
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Depth > points[j].Depth
	})
	return points
}
