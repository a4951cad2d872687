// Package gesture turns per-frame hand landmarks into pinch events and
// continuous control signals.
package gesture

import (
	"github.com/ayusman/hanuman/internal/detector"
)

// Interpretation constants.
const (
	// PinchThreshold is the thumb-to-index distance below which the hand is pinching.
	PinchThreshold = 0.05
	// SpanNear and SpanFar bound the palm span mapped onto HandScale.
	SpanFar  = 0.10
	SpanNear = 0.30
	// FlickThreshold is the per-frame planar wrist velocity that counts as a flick.
	FlickThreshold = 0.04
	// FlickGain converts flick velocity into explosion intensity.
	FlickGain = 15.0
)

// State is the gesture record emitted once per frame.
type State struct {
	IsPinching     bool       `json:"is_pinching"`
	FlickIntensity float64    `json:"flick_intensity"`
	HandDetected   bool       `json:"hand_detected"`
	PinchCount     int        `json:"pinch_count"`
	HandPosition   [3]float64 `json:"hand_position"`
	HandScale      float64    `json:"hand_scale"`
}

// Neutral is the resting state reported while no hand is visible.
func Neutral(pinchCount int) State {
	return State{
		PinchCount:   pinchCount,
		HandPosition: [3]float64{0.5, 0.5, 0},
		HandScale:    0.5,
	}
}

// Interpreter carries the little memory gesture detection needs between
// frames. It is not safe for concurrent use.
type Interpreter struct {
	wasPinching bool
	lastWrist   detector.Point3D
	pinchCount  int
}

// NewInterpreter returns an Interpreter with no pinches counted.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// PinchCount returns the number of pinch edges seen so far.
func (in *Interpreter) PinchCount() int {
	return in.pinchCount
}

// Interpret evaluates one landmark frame. A nil hand means no hand was
// detected; the pinch and wrist memory survive the gap, so a hand that comes
// back still pinching does not count twice. The wrist memory is not cleared
// either, which means the first frame after a gap can read as a flick.
func (in *Interpreter) Interpret(hand *detector.HandLandmarks) State {
	if hand == nil {
		return Neutral(in.pinchCount)
	}

	isPinching := hand.PinchDistance() < PinchThreshold
	if isPinching && !in.wasPinching {
		in.pinchCount++
	}
	in.wasPinching = isPinching

	wrist := hand.Points[detector.Wrist]
	velocity := wrist.PlanarDistance(in.lastWrist)
	in.lastWrist = wrist

	flick := 0.0
	if velocity > FlickThreshold {
		flick = velocity * FlickGain
	}

	return State{
		IsPinching:     isPinching,
		FlickIntensity: flick,
		HandDetected:   true,
		PinchCount:     in.pinchCount,
		HandPosition:   [3]float64{wrist.X, wrist.Y, wrist.Z},
		HandScale:      Scale(hand.PalmSpan()),
	}
}

// Scale maps a palm span onto [0,1], 0 being far from the camera.
func Scale(span float64) float64 {
	s := (span - SpanFar) / (SpanNear - SpanFar)
	if !(s > 0) {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
