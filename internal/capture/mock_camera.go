package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera serves synthetic frames. Each call to ReadFrame returns a new
// solid frame whose brightness follows the configured sequence, so tests can
// script motion (a brightness change) or stillness (a repeat).
type MockCamera struct {
	mu         sync.Mutex
	width      int
	height     int
	levels     []float64
	index      int
	fps        int
	fpsHistory []int
	open       bool
	openErr    error
	readErr    error
}

// NewMockCamera returns a camera cycling through the given brightness levels
// (0..255). With no levels every frame is black.
func NewMockCamera(width, height int, levels ...float64) *MockCamera {
	if len(levels) == 0 {
		levels = []float64{0}
	}
	return &MockCamera{
		width:  width,
		height: height,
		levels: levels,
		fps:    DefaultIdleFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, fmt.Errorf("invalid mock frame size %dx%d", c.width, c.height)
	}

	level := c.levels[c.index%len(c.levels)]
	c.index++

	mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(level, level, level, 0))
	return &mat, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
	c.fpsHistory = append(c.fpsHistory, fps)
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// FPSHistory returns every rate passed to SetFPS, in order.
func (c *MockCamera) FPSHistory() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.fpsHistory...)
}

// SetLevels replaces the brightness sequence and restarts it.
func (c *MockCamera) SetLevels(levels ...float64) {
	if len(levels) == 0 {
		levels = []float64{0}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels = levels
	c.index = 0
}

// SetOpenError makes the next calls to Open fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// SetReadError makes ReadFrame fail with err until it is set back to nil.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}
