package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/ayusman/hanuman/internal/gesture"
	"github.com/ayusman/hanuman/internal/imagegen"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/particle"
	"github.com/ayusman/hanuman/internal/session"
	"github.com/ayusman/hanuman/internal/shape"
	"github.com/ayusman/hanuman/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeEngine struct {
	snap   session.Snapshot
	follow bool
	err    error
}

func (e *fakeEngine) Snapshot() session.Snapshot { return e.snap }
func (e *fakeEngine) RotationFollow() bool       { return e.follow }
func (e *fakeEngine) SetRotationFollow(follow bool) error {
	if e.err != nil {
		return e.err
	}
	e.follow = follow
	return nil
}

type fakeSummoner struct {
	store *store.Store
	busy  bool
	err   error
	calls []shape.ID
}

func (s *fakeSummoner) Notify(id shape.ID) bool {
	s.calls = append(s.calls, id)
	return !s.busy
}

func (s *fakeSummoner) Generate(ctx context.Context) (*store.Manifestation, error) {
	if s.busy {
		return nil, imagegen.ErrBusy
	}
	if s.err != nil {
		return nil, s.err
	}
	m := &store.Manifestation{Shape: shape.DivineAura.String(), Prompt: "aura", MimeType: "image/png", Image: []byte("generated")}
	if err := s.store.Manifestations().Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *fakeSummoner) Busy() bool { return s.busy }

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStateHandler(t *testing.T) {
	engine := &fakeEngine{
		snap: session.Snapshot{
			Gesture: gesture.State{HandDetected: true, PinchCount: 2, HandScale: 0.5},
			Morph:   morph.State{Previous: shape.Heart, Target: shape.Gada, Progress: 0.5},
			Eased:   0.875,
			Frame:   &particle.Frame{Positions: make([]mgl32.Vec3, 3), Rotation: 1.25, Scale: 1.2},
		},
		follow: true,
	}

	rec := do(t, NewStateHandler(engine), http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Gesture struct {
			HandDetected bool `json:"hand_detected"`
			PinchCount   int  `json:"pinch_count"`
		} `json:"gesture"`
		Morph struct {
			Previous string  `json:"previous"`
			Target   string  `json:"target"`
			Progress float64 `json:"progress"`
		} `json:"morph"`
		Eased          float64 `json:"eased"`
		TargetTitle    string  `json:"target_title"`
		Rotation       float64 `json:"rotation"`
		Scale          float64 `json:"scale"`
		RotationFollow bool    `json:"rotation_follow"`
		Particles      int     `json:"particles"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	if !resp.Gesture.HandDetected || resp.Gesture.PinchCount != 2 {
		t.Errorf("gesture = %+v", resp.Gesture)
	}
	if resp.Morph.Previous != "HEART" || resp.Morph.Target != "GADA" || resp.Morph.Progress != 0.5 {
		t.Errorf("morph = %+v", resp.Morph)
	}
	if resp.TargetTitle != "SACRED GADA" || resp.Eased != 0.875 {
		t.Errorf("title %q eased %f", resp.TargetTitle, resp.Eased)
	}
	if resp.Rotation != 1.25 || resp.Scale != 1.2 || !resp.RotationFollow || resp.Particles != 3 {
		t.Errorf("resp = %+v", resp)
	}

	if rec := do(t, NewStateHandler(engine), http.MethodPost, "/api/state", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestRotationFollowHandler(t *testing.T) {
	engine := &fakeEngine{}
	var changed []bool
	h := NewRotationFollowHandler(engine, func(f bool) { changed = append(changed, f) })

	rec := do(t, h, http.MethodGet, "/api/settings/rotation-follow", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"enabled\":false}\n" {
		t.Errorf("GET = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPut, "/api/settings/rotation-follow", []byte(`{"enabled":true}`))
	if rec.Code != http.StatusOK || !engine.follow {
		t.Errorf("PUT = %d, follow = %v", rec.Code, engine.follow)
	}
	if len(changed) != 1 || !changed[0] {
		t.Errorf("onChange calls = %v", changed)
	}

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
		{name: "missing field", body: `{}`, want: http.StatusBadRequest},
		{name: "save fails", body: `{"enabled":false}`, err: errors.New("disk full"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine.err = tt.err
			rec := do(t, h, http.MethodPut, "/api/settings/rotation-follow", []byte(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	engine.err = nil

	if rec := do(t, h, http.MethodDelete, "/api/settings/rotation-follow", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestManifestationHandler(t *testing.T) {
	s := newTestStore(t)
	summoner := &fakeSummoner{store: s}
	h := NewManifestationHandler(s, summoner)

	m := &store.Manifestation{Shape: "DIVINE_AURA", Prompt: "aura", MimeType: "image/png", Image: []byte("png-data")}
	if err := s.Manifestations().Create(m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/manifestations", nil)
		var resp listManifestationsResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if rec.Code != http.StatusOK || len(resp.Manifestations) != 1 {
			t.Fatalf("list = %d %+v", rec.Code, resp)
		}
		got := resp.Manifestations[0]
		if got.ID != m.ID || got.Size != 8 || got.ImageURL != "/api/manifestations/"+m.ID+"/image" {
			t.Errorf("item = %+v", got)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/manifestations/"+m.ID, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("image", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/manifestations/"+m.ID+"/image", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != "png-data" {
			t.Errorf("image = %d %q", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("errors", func(t *testing.T) {
		missing := uuid.New().String()
		cases := []struct {
			method, path string
			want         int
		}{
			{http.MethodGet, "/api/manifestations/not-a-uuid", http.StatusBadRequest},
			{http.MethodGet, "/api/manifestations/" + missing, http.StatusNotFound},
			{http.MethodGet, "/api/manifestations/" + missing + "/image", http.StatusNotFound},
			{http.MethodGet, "/api/manifestations/" + m.ID + "/other", http.StatusNotFound},
			{http.MethodDelete, "/api/manifestations/" + missing, http.StatusNotFound},
			{http.MethodPut, "/api/manifestations/" + m.ID, http.StatusMethodNotAllowed},
			{http.MethodPatch, "/api/manifestations", http.StatusMethodNotAllowed},
		}
		for _, c := range cases {
			if rec := do(t, h, c.method, c.path, nil); rec.Code != c.want {
				t.Errorf("%s %s = %d, want %d", c.method, c.path, rec.Code, c.want)
			}
		}
	})

	t.Run("summon", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/manifestations", nil)
		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rec.Code)
		}
		if len(summoner.calls) != 1 || summoner.calls[0] != shape.DivineAura {
			t.Errorf("Notify calls = %v", summoner.calls)
		}

		summoner.busy = true
		if rec := do(t, h, http.MethodPost, "/api/manifestations", nil); rec.Code != http.StatusConflict {
			t.Errorf("busy status = %d, want 409", rec.Code)
		}

		rec = do(t, h, http.MethodGet, "/api/manifestations", nil)
		var listed listManifestationsResponse
		json.NewDecoder(rec.Body).Decode(&listed)
		if !listed.Summoning {
			t.Error("summoning = false while a request is in flight")
		}
		summoner.busy = false

		disabled := NewManifestationHandler(s, nil)
		if rec := do(t, disabled, http.MethodPost, "/api/manifestations", nil); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("disabled status = %d, want 503", rec.Code)
		}
	})

	t.Run("summon and wait", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/manifestations?wait=1", nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		var created manifestationResponse
		json.NewDecoder(rec.Body).Decode(&created)
		if created.Shape != "DIVINE_AURA" || created.Size != len("generated") {
			t.Errorf("created = %+v", created)
		}
		if _, err := s.Manifestations().GetByID(created.ID); err != nil {
			t.Errorf("GetByID(%s) error = %v", created.ID, err)
		}

		summoner.busy = true
		if rec := do(t, h, http.MethodPost, "/api/manifestations?wait=1", nil); rec.Code != http.StatusConflict {
			t.Errorf("busy status = %d, want 409", rec.Code)
		}
		summoner.busy = false

		summoner.err = errors.New("plugin crashed")
		if rec := do(t, h, http.MethodPost, "/api/manifestations?wait=true", nil); rec.Code != http.StatusBadGateway {
			t.Errorf("failure status = %d, want 502", rec.Code)
		}
		summoner.err = nil
	})

	t.Run("delete", func(t *testing.T) {
		if rec := do(t, h, http.MethodDelete, "/api/manifestations/"+m.ID, nil); rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if _, err := s.Manifestations().GetByID(m.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("GetByID() after delete = %v", err)
		}
	})
}
