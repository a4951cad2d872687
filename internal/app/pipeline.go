package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/hanuman/internal/capture"
	"github.com/ayusman/hanuman/internal/detector"
)

// readFailureLimit is how many reads in a row may fail before the render
// loop is told the hand is gone.
const readFailureLimit = 3

// runCapture reads camera frames and feeds the mailbox.
//
// Capture logic:
// 1. Start in idle mode at the idle fps
// 2. On motion, switch to active mode at the active fps
// 3. In active mode run hand detection and put the first hand, or nil
// 4. After the idle timeout without motion, switch back to idle
//
// Idle frames put nothing, so the render loop keeps the last gesture. A
// failed detection, or readFailureLimit failed reads in a row, puts nil so
// the gesture falls back to neutral instead of freezing.
func (a *App) runCapture(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(frameInterval(a.config.IdleFPS))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			failures++
			if failures == readFailureLimit {
				log.Printf("Error reading frame: %v", err)
				a.mailbox.Put(nil)
			}
			continue
		}
		failures = 0
		a.keepJPEG(frame)

		mode, changed := a.motion.Observe(frame, time.Now())
		if changed {
			fps := a.config.IdleFPS
			if mode == capture.Active {
				fps = a.config.ActiveFPS
			}
			a.config.Camera.SetFPS(fps)
			ticker.Reset(frameInterval(fps))
			log.Printf("Switched to %s mode", mode)
		}

		if mode != capture.Active {
			frame.Close()
			continue
		}

		hands, err := a.config.Detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			a.mailbox.Put(nil)
			continue
		}
		a.mailbox.Put(detector.First(hands))
	}
}

// runRender steps the session at the render fps.
func (a *App) runRender(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(frameInterval(a.config.RenderFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.Tick(time.Since(a.started).Seconds())
		}
	}
}

func (a *App) keepJPEG(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.jpegMu.Lock()
	a.jpeg = data
	a.jpegMu.Unlock()
}

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}
