// Package livereload serves server-sent events announcing new document
// fingerprints to connected browsers.
package livereload

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
)

// DefaultHeartbeat is the interval of keep-alive comments.
const DefaultHeartbeat = 30 * time.Second

// Hub manages SSE clients for fingerprint broadcasts.
type Hub struct {
	mu        sync.RWMutex
	nextID    int
	clients   map[int]*client
	recorder  metrics.Recorder
	heartbeat time.Duration
	closed    bool
	lastHash  string
}

type client struct {
	id   int
	ch   chan string
	done chan struct{}
}

type event struct {
	Hash string `json:"hash"`
}

// NewHub creates a hub. A nil recorder records nothing.
func NewHub(recorder metrics.Recorder) *Hub {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Hub{clients: map[int]*client{}, recorder: recorder, heartbeat: DefaultHeartbeat}
}

// SetHeartbeat changes the keep-alive interval for clients connecting later.
func (h *Hub) SetHeartbeat(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.heartbeat = d
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP implements the SSE endpoint. A connecting client first receives
// the current fingerprint, then one event per Broadcast.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	c := &client{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	c.id = h.nextID
	h.nextID++
	h.clients[c.id] = c
	current := h.lastHash
	heartbeat := h.heartbeat
	n := len(h.clients)
	h.mu.Unlock()
	h.recorder.SetLiveReloadClients(n)
	slog.Debug("Live reload client connected", logfields.RemoteAddr(r.RemoteAddr), logfields.Clients(n))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	send := func(payload string) bool {
		if _, err := bw.WriteString(payload); err != nil {
			slog.Debug("Live reload write failed", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first := ": connected\n\n"
	if current != "" {
		first += data(current)
	}
	if !send(first) {
		h.removeClient(c.id)
		return
	}

	hb := time.NewTicker(heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.removeClient(c.id)
			return
		case <-c.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				h.removeClient(c.id)
				return
			}
		case hash := <-c.ch:
			if !send(data(hash)) {
				h.removeClient(c.id)
				return
			}
		}
	}
}

func data(hash string) string {
	b, _ := json.Marshal(event{Hash: hash})
	return "data: " + string(b) + "\n\n"
}

func (h *Hub) removeClient(id int) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.done)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.recorder.SetLiveReloadClients(n)
	}
}

// Broadcast sends hash to every client. Empty and repeated hashes are
// ignored; clients whose buffers are full are dropped.
func (h *Hub) Broadcast(hash string) {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.lastHash {
		h.mu.Unlock()
		return
	}
	h.lastHash = hash
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- hash:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	slog.Debug("Live reload broadcast", logfields.Hash(hash), logfields.Clients(len(snapshot)), slog.Int("dropped", dropped))
}

// Shutdown disconnects every client and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*client{}
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
	}
	h.recorder.SetLiveReloadClients(0)
}
