package capture

import (
	"sync"

	"github.com/ayusman/hanuman/internal/detector"
)

// Observation is one detection result. Hand is nil when the frame had no hand.
type Observation struct {
	Hand *detector.HandLandmarks
	Seq  uint64
}

// Mailbox is a single-slot, non-blocking hand-off from the capture loop to
// the render loop. A newer Put overwrites an unread observation.
type Mailbox struct {
	mu    sync.Mutex
	slot  Observation
	full  bool
	seq   uint64
	drops uint64
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Put stores hand as the latest observation. It never blocks.
func (m *Mailbox) Put(hand *detector.HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.full {
		m.drops++
	}
	m.seq++
	m.slot = Observation{Hand: hand, Seq: m.seq}
	m.full = true
}

// Take removes and returns the pending observation, if any. It never blocks.
func (m *Mailbox) Take() (Observation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		return Observation{}, false
	}
	obs := m.slot
	m.slot = Observation{}
	m.full = false
	return obs, true
}

// Dropped returns how many observations were overwritten before being read.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}
