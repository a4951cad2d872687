// Package server provides the HTTP server for the Hanuman engine.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/hanuman/internal/preview"
	"github.com/ayusman/hanuman/internal/server/api"
	"github.com/ayusman/hanuman/internal/store"
)

// Engine is what the server needs from a running engine.
type Engine interface {
	api.Engine
	api.RotationControl
	JPEGSource
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    Engine
	Summoner  api.Summoner
	// Stream enables the MJPEG camera preview.
	Stream bool
	// OnRotationChange runs after the toggle is changed over HTTP.
	OnRotationChange func(follow bool)
}

// Server represents the HTTP server for the Hanuman engine.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	frames *FramesHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Engine != nil {
		s.mux.Handle("/api/state", api.NewStateHandler(s.config.Engine))
		s.mux.Handle("/api/settings/rotation-follow",
			api.NewRotationFollowHandler(s.config.Engine, s.config.OnRotationChange))
		s.mux.HandleFunc("/api/snapshot.png", s.handleSnapshot)

		s.frames = NewFramesHandler(s.config.Engine, s.config.Engine.RotationFollow)
		s.mux.Handle("/api/frames", s.frames)

		if s.config.Stream {
			s.mux.Handle("/api/stream", NewStreamHandler(s.config.Engine))
		}
	}

	if s.config.Store != nil {
		h := api.NewManifestationHandler(s.config.Store, s.config.Summoner)
		s.mux.Handle("/api/manifestations", h)
		s.mux.Handle("/api/manifestations/", h)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the websocket broadcast.
func (s *Server) Close() {
	if s.frames != nil {
		s.frames.Close()
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleSnapshot renders the current frame as a PNG. Optional w and h query
// parameters set the size.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	width := queryInt(r, "w", preview.DefaultWidth, 16, 4096)
	height := queryInt(r, "h", preview.DefaultHeight, 16, 4096)

	snap := s.config.Engine.Snapshot()
	if snap.Frame == nil {
		http.Error(w, "No frame yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	status := preview.StatusOf(snap, s.config.Engine.RotationFollow())
	if err := preview.WritePNG(w, snap.Frame, status, width, height); err != nil {
		log.Printf("Failed to render snapshot: %v", err)
	}
}

func queryInt(r *http.Request, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
