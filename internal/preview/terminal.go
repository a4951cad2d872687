package preview

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/hanuman/internal/particle"
)

// cellAspect compensates for terminal cells being about twice as tall as wide.
const cellAspect = 0.5

// Terminal draws frames as colored glyphs on a tcell screen. The bottom row
// holds the status line.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal wraps an initialized screen.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Screen returns the wrapped screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Draw renders one frame and shows it.
func (t *Terminal) Draw(frame *particle.Frame, status Status) {
	t.screen.Clear()
	w, h := t.screen.Size()
	if w <= 0 || h <= 1 {
		t.screen.Show()
		return
	}

	proj := NewProjector(w, h-1, cellAspect)
	for _, pt := range proj.Points(frame) {
		style := tcell.StyleDefault.
			Background(tcell.ColorBlack).
			Foreground(tcell.NewRGBColor(channel(pt.Color[0]), channel(pt.Color[1]), channel(pt.Color[2])))
		t.screen.SetContent(int(pt.X), int(pt.Y), glyph(pt.Size), nil, style)
	}

	line := strings.Join(status.Lines(), " | ")
	style := tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	for i, r := range []rune(line) {
		if i >= w {
			break
		}
		t.screen.SetContent(i, h-1, r, nil, style)
	}

	t.screen.Show()
}

func glyph(size float32) rune {
	switch {
	case size < 4:
		return '·'
	case size < 8:
		return '•'
	default:
		return '●'
	}
}

func channel(v float32) int32 {
	c := int32(v * 255)
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}
