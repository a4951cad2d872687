// Package tray shows the Hanuman status menu in the system tray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: a rotation-follow toggle, the current shape,
// a link to the viewer and quit.
type Tray struct {
	mu             sync.RWMutex
	rotationFollow bool
	shape          string
	onToggle       func(follow bool)
	onOpen         func()
	onQuit         func()

	menuFollow *systray.MenuItem
	menuShape  *systray.MenuItem
}

// New returns a tray showing the given initial state.
func New(rotationFollow bool, shape string) *Tray {
	return &Tray{rotationFollow: rotationFollow, shape: shape}
}

// OnRotationToggle sets the callback for the rotation-follow item.
func (t *Tray) OnRotationToggle(fn func(follow bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenViewer sets the callback for the open-viewer item.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Hanuman")
	systray.SetTooltip("Hanuman particle manifestation")

	t.mu.Lock()
	t.menuShape = systray.AddMenuItem(shapeLabel(t.shape), "Current shape")
	t.menuShape.Disable()
	systray.AddSeparator()
	t.menuFollow = systray.AddMenuItem(followLabel(t.rotationFollow), "Rotate the field with your hand")
	t.mu.Unlock()

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the viewer in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Hanuman")

	go func() {
		for {
			select {
			case <-t.menuFollow.ClickedCh:
				t.SetRotationFollow(!t.RotationFollow(), true)
			case <-menuOpen.ClickedCh:
				t.call(t.onOpen)
			case <-menuQuit.ClickedCh:
				t.call(t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) call(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fn != nil {
		go fn()
	}
}

// SetRotationFollow updates the toggle. When notify is set the toggle
// callback runs, as it does for a menu click.
func (t *Tray) SetRotationFollow(follow, notify bool) {
	t.mu.Lock()
	t.rotationFollow = follow
	if t.menuFollow != nil {
		t.menuFollow.SetTitle(followLabel(follow))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if notify && callback != nil {
		callback(follow)
	}
}

// RotationFollow returns the toggle state.
func (t *Tray) RotationFollow() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rotationFollow
}

// SetShape updates the shape label.
func (t *Tray) SetShape(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shape = title
	if t.menuShape != nil {
		t.menuShape.SetTitle(shapeLabel(title))
	}
}

// Shape returns the shape label text.
func (t *Tray) Shape() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shape
}

func followLabel(follow bool) string {
	if follow {
		return "● Rotation follows hand"
	}
	return "○ Rotation follows hand"
}

func shapeLabel(title string) string {
	if title == "" {
		return "Shape: none"
	}
	return "Shape: " + title
}
