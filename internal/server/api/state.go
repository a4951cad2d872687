package api

import (
	"net/http"

	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/session"
)

// Engine is the read side of a running engine.
type Engine interface {
	Snapshot() session.Snapshot
	RotationFollow() bool
}

// StateHandler serves GET /api/state.
type StateHandler struct {
	engine Engine
}

// NewStateHandler returns a StateHandler reading from engine.
func NewStateHandler(engine Engine) *StateHandler {
	return &StateHandler{engine: engine}
}

type stateResponse struct {
	Gesture        gesture.State `json:"gesture"`
	Morph          morph.State   `json:"morph"`
	Eased          float64       `json:"eased"`
	PreviousTitle  string        `json:"previous_title"`
	TargetTitle    string        `json:"target_title"`
	Rotation       float64       `json:"rotation"`
	Scale          float64       `json:"scale"`
	RotationFollow bool          `json:"rotation_follow"`
	Particles      int           `json:"particles"`
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.engine.Snapshot()
	resp := stateResponse{
		Gesture:        snap.Gesture,
		Morph:          snap.Morph,
		Eased:          snap.Eased,
		PreviousTitle:  snap.Morph.Previous.Title(),
		TargetTitle:    snap.Morph.Target.Title(),
		RotationFollow: h.engine.RotationFollow(),
	}
	if snap.Frame != nil {
		resp.Rotation = snap.Frame.Rotation
		resp.Scale = snap.Frame.Scale
		resp.Particles = snap.Frame.Len()
	}

	writeJSON(w, http.StatusOK, resp)
}
