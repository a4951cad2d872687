package app

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/hanuman/internal/capture"
	"github.com/ayusman/hanuman/internal/detector"
	"github.com/ayusman/hanuman/internal/fixtures"
	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/shape"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestApp_CapturePipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cam := capture.NewMockCamera(64, 48, 0, 255)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{*fixtures.Hand(0.3, 0.6)})

	a := New(Config{
		Camera:      cam,
		Detector:    det,
		Set:         shape.FromSeed(3),
		RenderFPS:   120,
		IdleFPS:     50,
		ActiveFPS:   100,
		IdleTimeout: time.Second,
	})
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitFor(t, "hand detection", func() bool {
		return a.Snapshot().Gesture.HandDetected
	})

	if got := a.Snapshot().Gesture.HandPosition[0]; got != 0.3 {
		t.Errorf("hand x = %f, want 0.3", got)
	}
	if a.MotionGate().Mode() != capture.Active {
		t.Error("alternating frames should keep the gate active")
	}
	if a.LatestJPEG() == nil {
		t.Error("LatestJPEG() should hold the last camera frame")
	}

	history := cam.FPSHistory()
	if len(history) == 0 || history[0] != 50 {
		t.Fatalf("FPSHistory() = %v, want idle fps first", history)
	}
	waitFor(t, "active fps", func() bool {
		h := cam.FPSHistory()
		return h[len(h)-1] == 100
	})
}

func TestApp_CapturePipeline_IdleHoldsGesture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	// A static scene never leaves idle, so detection never runs.
	cam := capture.NewMockCamera(64, 48, 128)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{*fixtures.Hand(0.3, 0.6)})

	a := New(Config{Camera: cam, Detector: det, Set: shape.FromSeed(3), IdleFPS: 100})
	a.Feed(fixtures.Hand(0.7, 0.4))
	a.Tick(0)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	a.Stop()

	if det.Calls() != 0 {
		t.Errorf("detector ran %d times in idle mode", det.Calls())
	}
	if got := a.Snapshot().Gesture.HandPosition[0]; got != 0.7 {
		t.Errorf("hand x = %f, want the fed 0.7 held", got)
	}
}

func TestApp_CapturePipeline_FailuresFallBackToNeutral(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tests := []struct {
		name string
		fail func(cam *capture.MockCamera, det *detector.MockDetector)
	}{
		{
			name: "detector error",
			fail: func(cam *capture.MockCamera, det *detector.MockDetector) {
				det.SetError(errors.New("mediapipe exited"))
			},
		},
		{
			name: "camera read error",
			fail: func(cam *capture.MockCamera, det *detector.MockDetector) {
				cam.SetReadError(errors.New("device unplugged"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := capture.NewMockCamera(64, 48, 0, 255)
			det := detector.NewMockDetector()

			a := New(Config{
				Camera:    cam,
				Detector:  det,
				Set:       shape.FromSeed(3),
				RenderFPS: 120,
				IdleFPS:   100,
				ActiveFPS: 100,
			})

			// The first detected frame jumps from the resting wrist, so it flicks.
			det.SetHands([]detector.HandLandmarks{*fixtures.Hand(0.3, 0.6)})
			if err := a.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer a.Stop()

			waitFor(t, "hand detection", func() bool {
				return a.Snapshot().Gesture.HandDetected
			})

			tt.fail(cam, det)

			waitFor(t, "neutral gesture", func() bool {
				g := a.Snapshot().Gesture
				return g == gesture.Neutral(g.PinchCount)
			})
			if g := a.Snapshot().Gesture; g.FlickIntensity != 0 || g.HandDetected {
				t.Errorf("gesture after failure = %+v", g)
			}
		})
	}
}

func TestApp_Start_CameraError(t *testing.T) {
	cam := capture.NewMockCamera(8, 8)
	cam.SetOpenError(errors.New("no device"))

	a := New(Config{Camera: cam, Detector: detector.NewMockDetector(), Set: shape.FromSeed(1)})
	if err := a.Start(); err == nil {
		t.Fatal("Start() should fail when the camera cannot open")
	}
	if a.Running() {
		t.Error("Running() should be false after a failed Start")
	}
}

func TestApp_Start_ResetsMotionGate(t *testing.T) {
	a := New(Config{Camera: capture.NewMockCamera(8, 8), Set: shape.FromSeed(1), RenderFPS: 200})

	a.MotionGate().Update(true, time.Now())
	if a.MotionGate().Mode() != capture.Active {
		t.Fatal("gate should be active after motion")
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	if a.MotionGate().Mode() != capture.Idle {
		t.Error("Start should return the gate to idle")
	}
}
