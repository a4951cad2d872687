package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a Detector whose results are set by the caller.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector that reports no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// openPalm holds landmark offsets from the wrist for a relaxed open right
// hand whose wrist to middle-knuckle span is openPalmSpan.
var openPalm = [NumLandmarks]Point3D{
	Wrist:     {0, 0, 0},
	ThumbCMC:  {0.05, -0.05, 0.02},
	ThumbMCP:  {0.12, -0.10, 0.03},
	ThumbIP:   {0.18, -0.15, 0.03},
	ThumbTip:  {0.23, -0.20, 0.03},
	IndexMCP:  {0.05, -0.12, 0},
	IndexPIP:  {0.07, -0.25, 0},
	IndexDIP:  {0.08, -0.35, 0},
	IndexTip:  {0.08, -0.45, 0},
	MiddleMCP: {0, -0.14, 0},
	MiddlePIP: {0, -0.28, 0},
	MiddleDIP: {0, -0.40, 0},
	MiddleTip: {0, -0.52, 0},
	RingMCP:   {-0.05, -0.12, 0},
	RingPIP:   {-0.07, -0.25, 0},
	RingDIP:   {-0.08, -0.35, 0},
	RingTip:   {-0.08, -0.45, 0},
	PinkyMCP:  {-0.10, -0.10, 0},
	PinkyPIP:  {-0.13, -0.20, 0},
	PinkyDIP:  {-0.15, -0.30, 0},
	PinkyTip:  {-0.16, -0.38, 0},
}

const openPalmSpan = 0.14

// PoseOptions describes a synthetic hand.
type PoseOptions struct {
	// Wrist is the wrist landmark position.
	Wrist Point3D
	// Span is the planar wrist to middle-knuckle distance. Zero means 0.14.
	Span float64
	// Pinch closes the thumb tip onto the index fingertip.
	Pinch bool
}

// Pose builds a synthetic right hand. Used by tests and the terminal demo in
// place of a real detector.
func Pose(opts PoseOptions) HandLandmarks {
	span := opts.Span
	if span <= 0 {
		span = openPalmSpan
	}
	k := span / openPalmSpan

	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i, off := range openPalm {
		h.Points[i] = Point3D{
			X: opts.Wrist.X + off.X*k,
			Y: opts.Wrist.Y + off.Y*k,
			Z: opts.Wrist.Z + off.Z*k,
		}
	}

	if opts.Pinch {
		tip := h.Points[IndexTip]
		h.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y, Z: tip.Z}
	}
	return h
}
