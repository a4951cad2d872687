// Package morph tracks which two shapes the particles are blending between
// and how far along the blend is.
package morph

import (
	"sync"

	"github.com/ayusman/hanuman/internal/shape"
)

// Step is the progress added per tick; a morph settles after 20 ticks.
const Step = 0.05

// State is a snapshot of the controller.
type State struct {
	Previous shape.ID `json:"previous"`
	Target   shape.ID `json:"target"`
	Progress float64  `json:"progress"`
}

// Settled reports whether the morph has reached its target.
func (s State) Settled() bool {
	return s.Progress >= 1
}

// Eased returns the eased blend factor for the state's progress.
func (s State) Eased() float64 {
	return Ease(s.Progress)
}

// Ease is cubic ease-out: fast at first, slowing into the target.
func Ease(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	f := p - 1
	return f*f*f + 1
}

// Controller owns the morph state. It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	previous shape.ID
	target   shape.ID
	ticks    int
	lastSeen int
}

// NewController returns a controller settled on Earth.
func NewController() *Controller {
	return &Controller{
		previous: shape.Earth,
		target:   shape.Earth,
		ticks:    settledTicks,
	}
}

const settledTicks = 20

func progress(ticks int) float64 {
	return min(1, float64(ticks)*Step)
}

// Observe feeds the interpreter's pinch count. When the count has grown since
// the last observation the controller advances once, no matter how much it
// grew. It returns the new target and true when an advance happened.
func (c *Controller) Observe(pinchCount int) (shape.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pinchCount <= c.lastSeen {
		return c.target, false
	}
	c.lastSeen = pinchCount
	c.advance()
	return c.target, true
}

// advance moves the target to the next shape in the cycle, starting the new
// blend from the current target even if the previous blend had not settled.
func (c *Controller) advance() {
	c.previous = c.target
	c.target = c.target.Next()
	c.ticks = 0
}

// Tick moves progress one step toward 1 and returns the new state.
func (c *Controller) Tick() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticks < settledTicks {
		c.ticks++
	}
	return c.state()
}

// State returns the current state without ticking.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller) state() State {
	return State{
		Previous: c.previous,
		Target:   c.target,
		Progress: progress(c.ticks),
	}
}
