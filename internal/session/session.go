// Package session holds the mutable per-session state of the engine and
// advances it one frame at a time.
package session

import (
	"github.com/ayusman/hanuman/internal/detector"
	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/particle"
	"github.com/ayusman/hanuman/internal/shape"
)

// Input is one frame's worth of external input.
type Input struct {
	// Hand is the newest landmark frame, nil when no hand was detected.
	Hand *detector.HandLandmarks
	// Fresh is false when no new observation arrived since the last step;
	// the previous gesture state is then reused and Hand is ignored.
	Fresh bool
	// Elapsed is seconds since the session started.
	Elapsed float64
	// RotationFollow is the user's rotation-follow toggle, read every frame.
	RotationFollow bool
}

// Output is the result of one step. Frame is owned by the Context and is
// only valid until the next Step; use Snapshot to keep it.
type Output struct {
	Gesture gesture.State
	Morph   morph.State
	Frame   *particle.Frame
}

// Snapshot is a copy of an Output that is safe to share across goroutines.
type Snapshot struct {
	Gesture gesture.State
	Morph   morph.State
	Eased   float64
	Frame   *particle.Frame
}

// Snapshot copies the output.
func (o Output) Snapshot() Snapshot {
	s := Snapshot{
		Gesture: o.Gesture,
		Morph:   o.Morph,
		Eased:   o.Morph.Eased(),
	}
	if o.Frame != nil {
		s.Frame = o.Frame.Clone()
	}
	return s
}

// ShapeChangeFunc is called once per advance with the new target shape.
type ShapeChangeFunc func(shape.ID)

// Context is the explicit state of one running session: gesture memory,
// morph state and rotation. It is driven from a single goroutine.
type Context struct {
	interpreter *gesture.Interpreter
	controller  *morph.Controller
	field       *particle.Field
	last        gesture.State
	listeners   []ShapeChangeFunc
}

// New starts a session over the given shape set.
func New(set *shape.Set) *Context {
	return &Context{
		interpreter: gesture.NewInterpreter(),
		controller:  morph.NewController(),
		field:       particle.NewField(set),
		last:        gesture.Neutral(0),
	}
}

// OnShapeChange registers fn to be called on every advance. Listeners run
// synchronously inside Step and must not block.
func (c *Context) OnShapeChange(fn ShapeChangeFunc) {
	c.listeners = append(c.listeners, fn)
}

// Gesture returns the most recent gesture state.
func (c *Context) Gesture() gesture.State {
	return c.last
}

// Morph returns the current morph state.
func (c *Context) Morph() morph.State {
	return c.controller.State()
}

// Rotation returns the current field angle.
func (c *Context) Rotation() float64 {
	return c.field.Rotation()
}

// Step interprets the input, advances and ticks the morph, then evaluates
// the particle field, in that order.
func (c *Context) Step(in Input) Output {
	if in.Fresh {
		c.last = c.interpreter.Interpret(in.Hand)
	}

	if target, advanced := c.controller.Observe(c.last.PinchCount); advanced {
		for _, fn := range c.listeners {
			fn(target)
		}
	}

	state := c.controller.Tick()
	frame := c.field.Evaluate(particle.Input{
		Morph:          state,
		Gesture:        c.last,
		Elapsed:        in.Elapsed,
		RotationFollow: in.RotationFollow,
	})

	return Output{Gesture: c.last, Morph: state, Frame: frame}
}

// Current renders the present state at elapsed without interpreting input,
// ticking the morph or turning the field.
func (c *Context) Current(elapsed float64) Output {
	state := c.controller.State()
	frame := c.field.Peek(particle.Input{
		Morph:   state,
		Gesture: c.last,
		Elapsed: elapsed,
	})
	return Output{Gesture: c.last, Morph: state, Frame: frame}
}
