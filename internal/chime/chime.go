// Package chime plays a short tone whenever the field morphs to a new shape.
package chime

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/ayusman/hanuman/internal/shape"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneLength = 400 * time.Millisecond
	baseFreq   = 220.0
)

// Pentatonic steps above baseFreq, one per shape in cycle order.
var steps = [shape.Count]int{0, 3, 5, 7, 10}

// Frequency returns the tone for a shape.
func Frequency(id shape.ID) float64 {
	if !id.Valid() {
		return baseFreq
	}
	return baseFreq * math.Pow(2, float64(steps[id])/12)
}

// Chime owns the speaker and plays one tone per shape change.
type Chime struct {
	mu          sync.Mutex
	initialized bool
	play        func(beep.Streamer)
}

// New returns a Chime that plays through the default speaker.
func New() *Chime {
	return &Chime{play: speaker.Play}
}

// Initialize opens the speaker. It is safe to call more than once.
func (c *Chime) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	c.initialized = true
	return nil
}

// Play queues the tone for id. It does nothing before Initialize.
func (c *Chime) Play(id shape.ID) error {
	c.mu.Lock()
	ready := c.initialized
	c.mu.Unlock()
	if !ready {
		return nil
	}

	tone, err := Tone(id)
	if err != nil {
		return err
	}
	c.play(tone)
	return nil
}

// Close stops playback and releases the speaker.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	c.initialized = false
}

// Tone builds the finite streamer for id: a sine at Frequency(id), quieted
// and faded out over toneLength.
func Tone(id shape.ID) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, Frequency(id))
	if err != nil {
		return nil, err
	}
	n := sampleRate.N(toneLength)
	quiet := &effects.Gain{Streamer: beep.Take(n, sine), Gain: -0.75}
	return fadeOut(quiet, n), nil
}

// fadeOut scales s linearly from full to silent over n samples.
func fadeOut(s beep.Streamer, n int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		got, ok := s.Stream(samples)
		for i := range samples[:got] {
			level := 1 - float64(pos)/float64(n)
			if level < 0 {
				level = 0
			}
			samples[i][0] *= level
			samples[i][1] *= level
			pos++
		}
		return got, ok
	})
}
