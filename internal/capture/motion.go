package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// Mode is the capture cadence chosen by the motion gate.
type Mode int

const (
	// Idle polls slowly and skips hand detection.
	Idle Mode = iota
	// Active runs detection on every frame.
	Active
)

func (m Mode) String() string {
	if m == Active {
		return "active"
	}
	return "idle"
}

// MotionGate decides when hand detection is worth running. Any frame whose
// changed-pixel percentage exceeds the threshold switches to Active; the gate
// falls back to Idle after idleTimeout without motion.
type MotionGate struct {
	mu          sync.Mutex
	threshold   float64
	idleTimeout time.Duration
	baseline    gocv.Mat
	primed      bool
	mode        Mode
	lastMotion  time.Time
}

// NewMotionGate returns a gate in Idle mode. threshold is a percentage of
// pixels, e.g. 1.0 means 1% of the frame must change.
func NewMotionGate(threshold float64, idleTimeout time.Duration) *MotionGate {
	return &MotionGate{
		threshold:   threshold,
		idleTimeout: idleTimeout,
		baseline:    gocv.NewMat(),
	}
}

// Observe feeds one frame taken at now. It returns the resulting mode and
// whether the mode changed on this frame.
func (g *MotionGate) Observe(frame *gocv.Mat, now time.Time) (Mode, bool) {
	moved, _ := g.Detect(frame)
	return g.Update(moved, now)
}

// Update applies a motion reading without a frame.
func (g *MotionGate) Update(moved bool, now time.Time) (Mode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.mode
	switch {
	case moved:
		g.lastMotion = now
		g.mode = Active
	case g.mode == Active && now.Sub(g.lastMotion) > g.idleTimeout:
		g.mode = Idle
	}
	return g.mode, g.mode != prev
}

// Mode returns the current mode.
func (g *MotionGate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Detect compares frame with the previous one: grayscale, 21x21 Gaussian
// blur, absolute difference, binary threshold at 25. It reports whether the
// changed share exceeds the threshold, and the share itself in percent. The
// first frame only primes the baseline.
func (g *MotionGate) Detect(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.baseline)
		g.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100
	blurred.CopyTo(&g.baseline)

	return changed > g.threshold, changed
}

// Reset drops the baseline and returns to Idle.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
	g.mode = Idle
}

// Close releases the baseline frame. The gate re-primes if used again.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *MotionGate) release() {
	if !g.baseline.Empty() {
		g.baseline.Close()
		g.baseline = gocv.NewMat()
	}
	g.primed = false
}
