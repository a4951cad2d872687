// Package app runs the Hanuman engine: a capture loop that turns camera
// frames into hand observations and a render loop that steps the session.
package app

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/hanuman/internal/capture"
	"github.com/ayusman/hanuman/internal/detector"
	"github.com/ayusman/hanuman/internal/session"
	"github.com/ayusman/hanuman/internal/shape"
	"github.com/ayusman/hanuman/internal/store"
)

// Loop defaults.
const (
	DefaultRenderFPS       = 60
	DefaultMotionThreshold = 1.0
	DefaultIdleTimeout     = 2 * time.Second
)

// ErrRunning is returned by Start when the loops are already running.
var ErrRunning = errors.New("app is already running")

// Config holds the collaborators and timing of an App. Every field is
// optional: without a Camera only the render loop runs and observations
// come from Feed.
type Config struct {
	Camera          capture.Camera
	Detector        detector.Detector
	Set             *shape.Set
	Settings        *store.SettingsRepository
	RenderFPS       int
	IdleFPS         int
	ActiveFPS       int
	MotionThreshold float64
	IdleTimeout     time.Duration
	RotationFollow  bool
}

// App owns the session and the loops that drive it.
type App struct {
	config  Config
	mailbox *capture.Mailbox
	motion  *capture.MotionGate

	stepMu  sync.Mutex
	session *session.Context
	started time.Time

	snapMu   sync.RWMutex
	snapshot session.Snapshot
	frames   uint64

	jpegMu sync.RWMutex
	jpeg   []byte

	rotationFollow atomic.Bool

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New returns an App for config. The persisted rotation-follow setting, when
// present, wins over config.RotationFollow.
func New(config Config) *App {
	if config.Set == nil {
		config.Set = shape.Shared()
	}
	if config.RenderFPS <= 0 {
		config.RenderFPS = DefaultRenderFPS
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = capture.DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = capture.DefaultActiveFPS
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = DefaultMotionThreshold
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}

	a := &App{
		config:  config,
		mailbox: capture.NewMailbox(),
		motion:  capture.NewMotionGate(config.MotionThreshold, config.IdleTimeout),
		session: session.New(config.Set),
		started: time.Now(),
	}

	follow := config.RotationFollow
	if config.Settings != nil {
		stored, err := config.Settings.GetBool(store.SettingRotationFollow, follow)
		if err != nil {
			log.Printf("Failed to read rotation setting: %v", err)
		} else {
			follow = stored
		}
	}
	a.rotationFollow.Store(follow)

	a.snapshot = a.session.Current(0).Snapshot()
	return a
}

// OnShapeChange registers fn to run on every advance. Register before Start;
// fn runs on the render goroutine and must not block.
func (a *App) OnShapeChange(fn session.ShapeChangeFunc) {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	a.session.OnShapeChange(fn)
}

// Start opens the camera, if any, and starts the loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return ErrRunning
	}

	if a.config.Camera != nil {
		if err := a.config.Camera.Open(); err != nil {
			return err
		}
		a.config.Camera.SetFPS(a.config.IdleFPS)
		a.motion.Reset()
	}

	a.stopCh = make(chan struct{})
	if a.config.Camera != nil && a.config.Detector != nil {
		a.wg.Add(1)
		go a.runCapture(a.stopCh)
		log.Println("Capture loop started")
	}
	a.wg.Add(1)
	go a.runRender(a.stopCh)

	log.Printf("Render loop started at %d fps", a.config.RenderFPS)
	return nil
}

// Stop halts the loops and releases the camera, motion gate and detector.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()
	a.wg.Wait()

	if a.config.Camera != nil {
		if err := a.config.Camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	a.motion.Close()
	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Printf("Engine stopped (%d stale observations dropped)", a.mailbox.Dropped())
}

// Running reports whether Start has been called without Stop.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// Feed hands an observation to the render loop as if the capture loop had
// produced it. hand may be nil for "no hand detected".
func (a *App) Feed(hand *detector.HandLandmarks) {
	a.mailbox.Put(hand)
}

// Tick runs one render step at elapsed seconds since start and publishes
// the result.
func (a *App) Tick(elapsed float64) session.Snapshot {
	snap := a.step(elapsed)

	a.snapMu.Lock()
	a.snapshot = snap
	a.frames++
	a.snapMu.Unlock()

	return snap
}

func (a *App) step(elapsed float64) session.Snapshot {
	obs, fresh := a.mailbox.Take()

	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	out := a.session.Step(session.Input{
		Hand:           obs.Hand,
		Fresh:          fresh,
		Elapsed:        elapsed,
		RotationFollow: a.rotationFollow.Load(),
	})
	return out.Snapshot()
}

// Snapshot returns the most recently published step.
func (a *App) Snapshot() session.Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Frames returns how many render steps have been published.
func (a *App) Frames() uint64 {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.frames
}

// RotationFollow reports whether the field follows the hand.
func (a *App) RotationFollow() bool {
	return a.rotationFollow.Load()
}

// SetRotationFollow changes the toggle and persists it when a settings
// repository is configured. The next render step reads the new value.
func (a *App) SetRotationFollow(follow bool) error {
	a.rotationFollow.Store(follow)
	if a.config.Settings == nil {
		return nil
	}
	return a.config.Settings.SetBool(store.SettingRotationFollow, follow)
}

// Uptime returns the time since New.
func (a *App) Uptime() time.Duration {
	return time.Since(a.started)
}

// Camera returns the configured camera, or nil.
func (a *App) Camera() capture.Camera {
	return a.config.Camera
}

// Mailbox returns the observation mailbox.
func (a *App) Mailbox() *capture.Mailbox {
	return a.mailbox
}

// MotionGate returns the capture motion gate.
func (a *App) MotionGate() *capture.MotionGate {
	return a.motion
}

// LatestJPEG returns the last camera frame encoded as JPEG, or nil before
// the first frame.
func (a *App) LatestJPEG() []byte {
	a.jpegMu.RLock()
	defer a.jpegMu.RUnlock()
	return a.jpeg
}
