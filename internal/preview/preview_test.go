package preview

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ayusman/hanuman/internal/detector"
	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/particle"
	"github.com/ayusman/hanuman/internal/session"
	"github.com/ayusman/hanuman/internal/shape"
)

func testFrame() *particle.Frame {
	f := particle.NewField(shape.FromSeed(7))
	return f.Evaluate(particle.Input{
		Morph:   morph.NewController().State(),
		Gesture: gesture.Neutral(0),
	}).Clone()
}

func TestProjector_Project(t *testing.T) {
	p := NewProjector(800, 600, 1)

	x, y, depth, ok := p.Project(mgl32.Vec3{0, 0, 0}, 1)
	if !ok {
		t.Fatal("origin should be visible")
	}
	if math.Abs(float64(x)-400) > 0.5 || math.Abs(float64(y)-300) > 0.5 {
		t.Errorf("origin projected to (%f, %f), want viewport center", x, y)
	}

	_, yUp, _, _ := p.Project(mgl32.Vec3{0, 2, 0}, 1)
	if yUp >= y {
		t.Errorf("+y should project above the center: %f >= %f", yUp, y)
	}

	_, _, nearDepth, _ := p.Project(mgl32.Vec3{0, 0, 5}, 1)
	if nearDepth >= depth {
		t.Errorf("a nearer point should have smaller depth: %f >= %f", nearDepth, depth)
	}

	if _, _, _, ok := p.Project(mgl32.Vec3{0, 0, 20}, 1); ok {
		t.Error("a point behind the camera should be clipped")
	}

	x1, _, _, _ := p.Project(mgl32.Vec3{2, 0, 0}, 1)
	x2, _, _, _ := p.Project(mgl32.Vec3{2, 0, 0}, 1.5)
	if x2 <= x1 {
		t.Errorf("a larger field scale should spread points: %f <= %f", x2, x1)
	}
}

func TestProjector_PointsSortedFarToNear(t *testing.T) {
	points := NewProjector(320, 240, 1).Points(testFrame())
	if len(points) == 0 {
		t.Fatal("expected visible points")
	}
	for i := 1; i < len(points); i++ {
		if points[i].Depth > points[i-1].Depth {
			t.Fatalf("point %d is farther than point %d", i, i-1)
		}
	}
}

func TestStatus_Lines(t *testing.T) {
	snap := session.Snapshot{
		Gesture: gesture.State{HandDetected: true, PinchCount: 3},
		Morph:   morph.State{Previous: shape.Gada, Target: shape.HanumanFigure, Progress: 1},
	}
	got := strings.Join(StatusOf(snap, true).Lines(), "\n")
	for _, want := range []string{"Tracking: OK", "HANUMAN", "ROTATE MOOD: ACTIVE", "Pinches: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("status %q missing %q", got, want)
		}
	}

	idle := strings.Join(Status{Title: "MOTHER EARTH", Summoning: true}.Lines(), "\n")
	for _, want := range []string{"Tracking: Searching", "ROTATE MOOD: INACTIVE", "SUMMONING"} {
		if !strings.Contains(idle, want) {
			t.Errorf("status %q missing %q", idle, want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testFrame(), Status{Title: "MOTHER EARTH"}, 320, 240); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("image is %dx%d, want 320x240", b.Dx(), b.Dy())
	}

	lit := 0
	for y := 60; y < 180; y++ {
		for x := 100; x < 220; x++ {
			if r, g, _, _ := img.At(x, y).RGBA(); r+g > 0x4000 {
				lit++
			}
		}
	}
	if lit < 100 {
		t.Errorf("only %d lit pixels around the center", lit)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SavePNG(path, testFrame(), Status{}, 64, 48); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("PNG not written: %v", err)
	}
}

func TestTerminal_Draw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init() error = %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 24)

	NewTerminal(screen).Draw(testFrame(), Status{Title: "MOTHER EARTH", Tracking: true})

	w, h := screen.Size()
	if w != 80 || h != 24 {
		t.Fatalf("screen is %dx%d", w, h)
	}

	particles := 0
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			if r, _, _, _ := screen.GetContent(x, y); r != ' ' && r != 0 {
				particles++
			}
		}
	}
	if particles == 0 {
		t.Error("no particles drawn")
	}

	var status strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, h-1)
		status.WriteRune(r)
	}
	if !strings.HasPrefix(status.String(), "Tracking: OK | MOTHER EARTH") {
		t.Errorf("status line = %q", status.String())
	}
}

func TestGlyphAndChannel(t *testing.T) {
	if glyph(1) != '·' || glyph(5) != '•' || glyph(20) != '●' {
		t.Error("unexpected glyphs by size")
	}
	if channel(-1) != 0 || channel(2) != 255 || channel(0.5) != 127 {
		t.Error("unexpected color channel clamping")
	}
}

func TestPuppet(t *testing.T) {
	key := func(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

	p := NewPuppet()
	in := gesture.NewInterpreter()
	in.Interpret(p.Hand())

	if p.HandleKey(key('p')) != KeyHandled {
		t.Fatal("p should be handled")
	}
	if s := in.Interpret(p.Hand()); !s.IsPinching || s.PinchCount != 1 {
		t.Errorf("after p: %+v, want one pinch", s)
	}
	if s := in.Interpret(p.Hand()); s.IsPinching {
		t.Error("the pinch should last one frame")
	}

	p.HandleKey(key('f'))
	if s := in.Interpret(p.Hand()); s.FlickIntensity <= 0 {
		t.Error("f should produce a flick")
	}

	before := p.Hand().PalmSpan()
	p.HandleKey(key('+'))
	if after := p.Hand().PalmSpan(); after <= before {
		t.Errorf("+ should widen the palm: %f <= %f", after, before)
	}

	x := p.Hand().Points[detector.Wrist].X
	p.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if got := p.Hand().Points[detector.Wrist].X; got >= x {
		t.Errorf("left should move the wrist left: %f >= %f", got, x)
	}

	p.HandleKey(key('h'))
	if p.Hand() != nil {
		t.Error("h should hide the hand")
	}

	if p.HandleKey(key('r')) != KeyToggleRotation {
		t.Error("r should toggle rotation")
	}
	if p.HandleKey(key('q')) != KeyQuit || p.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) != KeyQuit {
		t.Error("q and Esc should quit")
	}
	if p.HandleKey(key('z')) != KeyNone {
		t.Error("unbound keys should be ignored")
	}
}
