// Package preview draws particle frames without a GPU: a perspective PNG
// and a terminal view.
package preview

import (
	"fmt"

	"github.com/ayusman/hanuman/internal/session"
)

// Status is the overlay text drawn over a preview.
type Status struct {
	Title          string
	Tracking       bool
	RotationFollow bool
	PinchCount     int
	Summoning      bool
}

// StatusOf builds the overlay for a snapshot.
func StatusOf(snap session.Snapshot, rotationFollow bool) Status {
	return Status{
		Title:          snap.Morph.Target.Title(),
		Tracking:       snap.Gesture.HandDetected,
		RotationFollow: rotationFollow,
		PinchCount:     snap.Gesture.PinchCount,
	}
}

// Lines returns the overlay, one entry per line.
func (s Status) Lines() []string {
	tracking := "Searching"
	if s.Tracking {
		tracking = "OK"
	}
	rotate := "INACTIVE"
	if s.RotationFollow {
		rotate = "ACTIVE"
	}

	lines := []string{
		"Tracking: " + tracking,
		s.Title,
		"ROTATE MOOD: " + rotate,
		fmt.Sprintf("Pinches: %d", s.PinchCount),
	}
	if s.Summoning {
		lines = append(lines, "SUMMONING")
	}
	return lines
}
