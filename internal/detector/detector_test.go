package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPoint3D_Distance(t *testing.T) {
	a := Point3D{X: 0.1, Y: 0.2, Z: 0.3}
	b := Point3D{X: 0.4, Y: 0.6, Z: 0.3}

	if got := a.Distance(b); math.Abs(got-0.5) > epsilon {
		t.Errorf("Distance() = %f, want 0.5", got)
	}

	t.Run("planar ignores depth", func(t *testing.T) {
		c := Point3D{X: 0.4, Y: 0.6, Z: 5}
		if got := a.PlanarDistance(c); math.Abs(got-0.5) > epsilon {
			t.Errorf("PlanarDistance() = %f, want 0.5", got)
		}
	})
}

func TestHandLandmarks_PinchDistance(t *testing.T) {
	hand := HandLandmarks{}
	hand.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.40, Z: 0}
	hand.Points[IndexTip] = Point3D{X: 0.53, Y: 0.44, Z: 0}

	if got := hand.PinchDistance(); math.Abs(got-0.05) > epsilon {
		t.Errorf("PinchDistance() = %f, want 0.05", got)
	}
}

func TestHandLandmarks_PalmSpan(t *testing.T) {
	hand := HandLandmarks{}
	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}
	hand.Points[MiddleMCP] = Point3D{X: 0.5, Y: 0.6, Z: -0.3}

	if got := hand.PalmSpan(); math.Abs(got-0.2) > epsilon {
		t.Errorf("PalmSpan() = %f, want 0.2", got)
	}
}

func TestPose(t *testing.T) {
	t.Run("default span", func(t *testing.T) {
		hand := Pose(PoseOptions{Wrist: Point3D{X: 0.5, Y: 0.8}})

		if hand.Points[Wrist] != (Point3D{X: 0.5, Y: 0.8}) {
			t.Errorf("wrist = %+v, want (0.5, 0.8, 0)", hand.Points[Wrist])
		}
		if got := hand.PalmSpan(); math.Abs(got-openPalmSpan) > epsilon {
			t.Errorf("PalmSpan() = %f, want %f", got, openPalmSpan)
		}
		if hand.PinchDistance() < 0.1 {
			t.Errorf("open hand pinch distance = %f, expected fingers apart", hand.PinchDistance())
		}
	})

	t.Run("custom span scales the hand", func(t *testing.T) {
		hand := Pose(PoseOptions{Wrist: Point3D{X: 0.5, Y: 0.8}, Span: 0.28})
		if got := hand.PalmSpan(); math.Abs(got-0.28) > epsilon {
			t.Errorf("PalmSpan() = %f, want 0.28", got)
		}
	})

	t.Run("pinch closes thumb and index", func(t *testing.T) {
		hand := Pose(PoseOptions{Wrist: Point3D{X: 0.5, Y: 0.8}, Pinch: true})
		if got := hand.PinchDistance(); got >= 0.05 {
			t.Errorf("PinchDistance() = %f, want < 0.05", got)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{
			Pose(PoseOptions{Wrist: Point3D{X: 0.4, Y: 0.7}}),
			Pose(PoseOptions{Wrist: Point3D{X: 0.6, Y: 0.7}}),
		})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestFirst(t *testing.T) {
	if First(nil) != nil {
		t.Error("First(nil) should be nil")
	}

	hands := []HandLandmarks{
		Pose(PoseOptions{Wrist: Point3D{X: 0.1}}),
		Pose(PoseOptions{Wrist: Point3D{X: 0.9}}),
	}
	got := First(hands)
	if got == nil || got.Points[Wrist].X != 0.1 {
		t.Fatalf("First() = %+v, want the first hand", got)
	}

	got.Points[Wrist].X = 0.7
	if hands[0].Points[Wrist].X != 0.1 {
		t.Error("First() should return a copy")
	}
}

func TestParseResponse(t *testing.T) {
	full := `{"x":0.1,"y":0.2,"z":0}`
	points := full
	for i := 1; i < NumLandmarks; i++ {
		points += "," + full
	}

	tests := []struct {
		name     string
		line     string
		maxHands int
		want     int
		wantErr  bool
	}{
		{name: "no hands", line: `{"hands":[]}`, maxHands: 1, want: 0},
		{name: "one hand", line: `{"hands":[{"points":[` + points + `],"handedness":"Left","score":0.9}]}`, maxHands: 1, want: 1},
		{name: "extra hands trimmed", line: `{"hands":[{"points":[` + points + `]},{"points":[` + points + `]}]}`, maxHands: 1, want: 1},
		{name: "short hand dropped", line: `{"hands":[{"points":[` + full + `]}]}`, maxHands: 1, want: 0},
		{name: "invalid json", line: `not json`, maxHands: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseResponse([]byte(tt.line), tt.maxHands)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(hands) != tt.want {
				t.Errorf("parseResponse() returned %d hands, want %d", len(hands), tt.want)
			}
		})
	}
}
