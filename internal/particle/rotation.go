package particle

import "math"

// Rotation constants.
const (
	// FollowGain is the per-frame smoothing factor toward the hand-driven angle.
	FollowGain = 0.06
	// AutoStep is the per-frame increment when not following the hand.
	AutoStep = 0.006
	// FollowRange is the total angle swept as the hand crosses the frame.
	FollowRange = 4 * math.Pi
)

// Rotation is the cumulative orbital angle of the field. Both regimes start
// from the last angle, so toggling between them never jumps.
type Rotation struct {
	angle float64
}

// Angle returns the current angle in radians.
func (r *Rotation) Angle() float64 {
	return r.angle
}

// Update advances the angle by one frame. When follow is set the angle eases
// toward the target for handX; otherwise it creeps forward by AutoStep.
func (r *Rotation) Update(follow bool, handX float64) float64 {
	if follow {
		target := (handX - 0.5) * FollowRange
		r.angle += (target - r.angle) * FollowGain
	} else {
		r.angle += AutoStep
	}
	return r.angle
}
