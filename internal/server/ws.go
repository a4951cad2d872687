package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/hanuman/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// SnapshotSource supplies the most recent render step.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// frameHeader precedes every binary frame on the websocket.
type frameHeader struct {
	Seq            uint64  `json:"seq"`
	Particles      int     `json:"particles"`
	Previous       string  `json:"previous"`
	Target         string  `json:"target"`
	Title          string  `json:"title"`
	Progress       float64 `json:"progress"`
	Eased          float64 `json:"eased"`
	HandDetected   bool    `json:"hand_detected"`
	PinchCount     int     `json:"pinch_count"`
	Rotation       float64 `json:"rotation"`
	Scale          float64 `json:"scale"`
	RotationFollow bool    `json:"rotation_follow"`
}

// FramesHandler broadcasts particle frames to websocket clients. Each tick
// sends a JSON header as a text message followed by the frame as a binary
// message of little-endian float32 positions, colors and sizes.
type FramesHandler struct {
	source   SnapshotSource
	follow   func() bool
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewFramesHandler starts broadcasting snapshots from source at about 30 Hz.
// follow reports the rotation-follow toggle and may be nil.
func NewFramesHandler(source SnapshotSource, follow func() bool) *FramesHandler {
	h := &FramesHandler{
		source:   source,
		follow:   follow,
		interval: 33 * time.Millisecond,
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *FramesHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop.
func (h *FramesHandler) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *FramesHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		snap := h.source.Snapshot()
		if snap.Frame == nil {
			continue
		}
		seq++

		header, err := json.Marshal(h.header(seq, snap))
		if err != nil {
			continue
		}
		body, err := snap.Frame.MarshalBinary()
		if err != nil {
			continue
		}

		// A connection has one writer: this loop, under the read lock.
		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, header); err != nil {
				continue
			}
			conn.WriteMessage(websocket.BinaryMessage, body)
		}
		h.mu.RUnlock()
	}
}

func (h *FramesHandler) header(seq uint64, snap session.Snapshot) frameHeader {
	hdr := frameHeader{
		Seq:          seq,
		Particles:    snap.Frame.Len(),
		Previous:     snap.Morph.Previous.String(),
		Target:       snap.Morph.Target.String(),
		Title:        snap.Morph.Target.Title(),
		Progress:     snap.Morph.Progress,
		Eased:        snap.Eased,
		HandDetected: snap.Gesture.HandDetected,
		PinchCount:   snap.Gesture.PinchCount,
		Rotation:     snap.Frame.Rotation,
		Scale:        snap.Frame.Scale,
	}
	if h.follow != nil {
		hdr.RotationFollow = h.follow()
	}
	return hdr
}
