// Package fixtures provides landmark frames and frame sequences for tests.
package fixtures

import "github.com/ayusman/hanuman/internal/detector"

// Hand returns an open hand with its wrist at (x, y).
func Hand(x, y float64) *detector.HandLandmarks {
	h := detector.Pose(detector.PoseOptions{Wrist: detector.Point3D{X: x, Y: y}})
	return &h
}

// HandWithGap returns an open hand at (x, y) whose thumb tip sits exactly gap
// away from the index fingertip.
func HandWithGap(x, y, gap float64) *detector.HandLandmarks {
	h := Hand(x, y)
	tip := h.Points[detector.IndexTip]
	h.Points[detector.ThumbTip] = detector.Point3D{X: tip.X + gap, Y: tip.Y, Z: tip.Z}
	return h
}

// HandWithSpan returns an open hand at (x, y) with the given palm span.
func HandWithSpan(x, y, span float64) *detector.HandLandmarks {
	h := detector.Pose(detector.PoseOptions{Wrist: detector.Point3D{X: x, Y: y}, Span: span})
	return &h
}

// Pinched returns a pinching hand at (x, y).
func Pinched(x, y float64) *detector.HandLandmarks {
	return HandWithGap(x, y, 0.03)
}

// PinchScenario is an open hand (gap 0.10) followed by a pinch (gap 0.03) at
// a fixed wrist position.
func PinchScenario() []*detector.HandLandmarks {
	return []*detector.HandLandmarks{
		HandWithGap(0.5, 0.6, 0.10),
		HandWithGap(0.5, 0.6, 0.03),
	}
}

// FlickScenario moves the wrist from (0.40, 0.50) to (0.47, 0.50) in one frame.
func FlickScenario() []*detector.HandLandmarks {
	return []*detector.HandLandmarks{
		Hand(0.40, 0.50),
		Hand(0.47, 0.50),
	}
}

// Pinches returns a still hand that opens and closes n times, producing n
// pinch edges. The sequence starts open and ends open.
func Pinches(n int) []*detector.HandLandmarks {
	frames := []*detector.HandLandmarks{Hand(0.5, 0.6)}
	for i := 0; i < n; i++ {
		frames = append(frames, Pinched(0.5, 0.6), Hand(0.5, 0.6))
	}
	return frames
}
