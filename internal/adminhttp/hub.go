package adminhttp

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MaxSpectators caps concurrent spectator connections, same bounded-total
// discipline the teacher's WebSocketHub applies (no per-connection label
// leaks into metrics, and the server never accepts unbounded fan-out).
const MaxSpectators = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans a periodic Status snapshot out to every connected spectator.
// It never receives game input back from a client — this feed is
// read-only (§1 treats administrative chat commands, not spectating, as
// the writeable surface).
type Hub struct {
	provider StatusProvider

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub builds a spectator hub backed by provider.
func NewHub(provider StatusProvider) *Hub {
	return &Hub{
		provider: provider,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades and registers a new spectator connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= MaxSpectators {
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("adminhttp: spectate upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.drainReads(conn)
}

// drainReads discards anything the spectator sends (the feed is
// read-only) and deregisters the connection once it closes.
func (h *Hub) drainReads(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Run periodically broadcasts the provider's status to every spectator
// until ctx-equivalent stop is signalled via the returned stop function.
func (h *Hub) Run(period time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *Hub) broadcast() {
	if h.ClientCount() == 0 {
		return
	}
	payload, err := json.Marshal(h.provider.Status())
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
		}
	}
}
