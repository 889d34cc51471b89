package httpapi

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shadowline/mevwatch/swaptypes"
)

// WSBroadcaster is a minimal Broadcaster implementation republishing
// opportunities to connected browser clients as JSON frames. Its internal
// fan-out logic is intentionally unsophisticated: spec §1 treats the
// browser-facing broadcaster as an opaque sink, so this exists only to give
// the Hub something concrete to drive in a standalone deployment.
type WSBroadcaster struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewWSBroadcaster() *WSBroadcaster {
	return &WSBroadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the connection and registers it under a fresh client
// id, logged for connect/disconnect correlation.
func (b *WSBroadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "err", err)
		return
	}
	clientID := uuid.NewString()

	b.mu.Lock()
	b.clients[clientID] = conn
	b.mu.Unlock()
	log.Info("ws client connected", "clientId", clientID)

	defer func() {
		b.mu.Lock()
		delete(b.clients, clientID)
		b.mu.Unlock()
		conn.Close()
		log.Info("ws client disconnected", "clientId", clientID)
	}()

	// Drain and discard inbound frames; this sink is publish-only. The read
	// loop exists purely to detect client-initiated close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast writes o as JSON to every connected client, dropping any
// connection that errors on write.
func (b *WSBroadcaster) Broadcast(o *swaptypes.Opportunity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, conn := range b.clients {
		if err := conn.WriteJSON(o); err != nil {
			log.Warn("ws write failed, dropping client", "clientId", id, "err", err)
			conn.Close()
			delete(b.clients, id)
		}
	}
}
