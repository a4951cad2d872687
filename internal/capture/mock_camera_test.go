package capture

import (
	"errors"
	"testing"
)

func TestMockCamera_ReadFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(64, 48, 0, 255)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() before Open = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i, want := range []uint8{0, 255, 0} {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: ReadFrame() error = %v", i, err)
		}
		if frame.Cols() != 64 || frame.Rows() != 48 {
			t.Errorf("frame %d is %dx%d, want 64x48", i, frame.Cols(), frame.Rows())
		}
		if got := frame.GetVecbAt(0, 0)[0]; got != want {
			t.Errorf("frame %d level = %d, want %d", i, got, want)
		}
		frame.Close()
	}
}

func TestMockCamera_FPSHistory(t *testing.T) {
	cam := NewMockCamera(8, 8)

	if cam.FPS() != DefaultIdleFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultIdleFPS)
	}

	cam.SetFPS(30)
	cam.SetFPS(0)
	cam.SetFPS(5)

	got := cam.FPSHistory()
	if len(got) != 2 || got[0] != 30 || got[1] != 5 {
		t.Errorf("FPSHistory() = %v, want [30 5]", got)
	}
	if cam.FPS() != 5 {
		t.Errorf("FPS() = %d, want 5", cam.FPS())
	}
}

func TestMockCamera_OpenClose(t *testing.T) {
	cam := NewMockCamera(8, 8)
	var _ Camera = cam

	cam.Open()
	if !cam.IsOpen() {
		t.Error("IsOpen() should be true after Open")
	}
	cam.Close()
	if cam.IsOpen() {
		t.Error("IsOpen() should be false after Close")
	}
}
