package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// RotationControl reads and changes the rotation-follow toggle.
type RotationControl interface {
	RotationFollow() bool
	SetRotationFollow(follow bool) error
}

// RotationFollowHandler serves GET and PUT /api/settings/rotation-follow.
type RotationFollowHandler struct {
	control  RotationControl
	onChange func(follow bool)
}

// NewRotationFollowHandler returns a handler over control. onChange, when
// set, runs after every successful PUT.
func NewRotationFollowHandler(control RotationControl, onChange func(follow bool)) *RotationFollowHandler {
	return &RotationFollowHandler{control: control, onChange: onChange}
}

type rotationFollowBody struct {
	Enabled *bool `json:"enabled"`
}

type rotationFollowResponse struct {
	Enabled bool `json:"enabled"`
}

func (h *RotationFollowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rotationFollowResponse{Enabled: h.control.RotationFollow()})
	case http.MethodPut:
		var body rotationFollowBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if body.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.control.SetRotationFollow(*body.Enabled); err != nil {
			log.Printf("Failed to save rotation setting: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save setting")
			return
		}
		if h.onChange != nil {
			h.onChange(*body.Enabled)
		}
		writeJSON(w, http.StatusOK, rotationFollowResponse{Enabled: *body.Enabled})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
