package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/hanuman/internal/imagegen"
	"github.com/ayusman/hanuman/internal/shape"
	"github.com/ayusman/hanuman/internal/store"
)

// Summoner requests divine aura images, in the background through Notify or
// synchronously through Generate.
type Summoner interface {
	Notify(id shape.ID) bool
	Generate(ctx context.Context) (*store.Manifestation, error)
	Busy() bool
}

// ManifestationHandler handles HTTP requests for generated images.
type ManifestationHandler struct {
	store    *store.Store
	summoner Summoner
}

// NewManifestationHandler returns a handler over s. summoner may be nil, in
// which case POST is not allowed.
func NewManifestationHandler(s *store.Store, summoner Summoner) *ManifestationHandler {
	return &ManifestationHandler{store: s, summoner: summoner}
}

// ServeHTTP routes /api/manifestations, /api/manifestations/{id} and
// /api/manifestations/{id}/image.
func (h *ManifestationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/manifestations")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.summon(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid manifestation ID")
		return
	}

	switch {
	case rest == "image" && r.Method == http.MethodGet:
		h.image(w, r, id)
	case rest != "":
		writeError(w, http.StatusNotFound, "Not found")
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type manifestationResponse struct {
	ID        string `json:"id"`
	Shape     string `json:"shape"`
	Prompt    string `json:"prompt"`
	MimeType  string `json:"mime_type"`
	Size      int    `json:"size"`
	CreatedAt string `json:"created_at"`
	ImageURL  string `json:"image_url"`
}

type listManifestationsResponse struct {
	Manifestations []manifestationResponse `json:"manifestations"`
	Summoning      bool                    `json:"summoning"`
}

func toResponse(m *store.Manifestation) manifestationResponse {
	return manifestationResponse{
		ID:        m.ID,
		Shape:     m.Shape,
		Prompt:    m.Prompt,
		MimeType:  m.MimeType,
		Size:      m.Size,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		ImageURL:  "/api/manifestations/" + m.ID + "/image",
	}
}

// list handles GET /api/manifestations, newest first.
func (h *ManifestationHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Manifestations().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list manifestations")
		return
	}

	resp := listManifestationsResponse{
		Manifestations: make([]manifestationResponse, 0, len(items)),
		Summoning:      h.summoner != nil && h.summoner.Busy(),
	}
	for _, m := range items {
		resp.Manifestations = append(resp.Manifestations, toResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// summon handles POST /api/manifestations by starting a background request.
// With ?wait=1 it blocks until the image is saved and returns it.
func (h *ManifestationHandler) summon(w http.ResponseWriter, r *http.Request) {
	if h.summoner == nil {
		writeError(w, http.StatusServiceUnavailable, "Image generation is disabled")
		return
	}
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		m, err := h.summoner.Generate(r.Context())
		switch {
		case errors.Is(err, imagegen.ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
		case err != nil:
			writeError(w, http.StatusBadGateway, "Image generation failed: "+err.Error())
		default:
			writeJSON(w, http.StatusCreated, toResponse(m))
		}
		return
	}
	if !h.summoner.Notify(shape.DivineAura) {
		writeError(w, http.StatusConflict, imagegen.ErrBusy.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "summoning"})
}

func (h *ManifestationHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Manifestations().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get manifestation")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

func (h *ManifestationHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Manifestations().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get manifestation")
		return
	}
	w.Header().Set("Content-Type", m.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(m.Image)))
	w.Header().Set("Cache-Control", "max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(m.Image)
}

func (h *ManifestationHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Manifestations().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete manifestation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManifestationHandler) storeError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Manifestation not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
