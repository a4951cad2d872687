package preview

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/hanuman/internal/detector"
)

// Puppet key handling results.
type KeyAction int

const (
	KeyNone KeyAction = iota
	KeyHandled
	KeyToggleRotation
	KeyQuit
)

// Puppet limits and steps.
const (
	puppetMove    = 0.02
	puppetZoom    = 0.02
	puppetFlick   = 0.07
	puppetMinSpan = 0.08
	puppetMaxSpan = 0.32
)

// Puppet is a keyboard-driven synthetic hand for the terminal demo.
type Puppet struct {
	x, y    float64
	span    float64
	hidden  bool
	pulse   int
	flickUp bool
}

// NewPuppet returns an open hand in the middle of the frame.
func NewPuppet() *Puppet {
	return &Puppet{x: 0.5, y: 0.5, span: 0.2}
}

// HandleKey applies one key press: p pinch, f flick, arrows move, +/- zoom,
// h hide or show the hand, r rotation follow, q or Esc quit.
func (p *Puppet) HandleKey(ev *tcell.EventKey) KeyAction {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyQuit
	case tcell.KeyLeft:
		p.x = clamp(p.x-puppetMove, 0, 1)
	case tcell.KeyRight:
		p.x = clamp(p.x+puppetMove, 0, 1)
	case tcell.KeyUp:
		p.y = clamp(p.y-puppetMove, 0, 1)
	case tcell.KeyDown:
		p.y = clamp(p.y+puppetMove, 0, 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return KeyQuit
		case 'r':
			return KeyToggleRotation
		case 'p':
			p.pulse = 1
		case 'f':
			p.Flick()
		case 'h':
			p.hidden = !p.hidden
		case '+', '=':
			p.span = clamp(p.span+puppetZoom, puppetMinSpan, puppetMaxSpan)
		case '-':
			p.span = clamp(p.span-puppetZoom, puppetMinSpan, puppetMaxSpan)
		default:
			return KeyNone
		}
	default:
		return KeyNone
	}
	return KeyHandled
}

// Flick jumps the wrist sideways, alternating direction.
func (p *Puppet) Flick() {
	if p.flickUp || p.x+puppetFlick > 1 {
		p.x -= puppetFlick
	} else {
		p.x += puppetFlick
	}
	p.flickUp = !p.flickUp
}

// Hand returns this frame's hand, or nil while hidden. A pinch lasts exactly
// one frame.
func (p *Puppet) Hand() *detector.HandLandmarks {
	if p.hidden {
		return nil
	}
	h := detector.Pose(detector.PoseOptions{
		Wrist: detector.Point3D{X: p.x, Y: p.y},
		Span:  p.span,
		Pinch: p.pulse > 0,
	})
	if p.pulse > 0 {
		p.pulse--
	}
	return &h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
