package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"robowar/internal/metrics"
)

const (
	// MaxWSConnectionsTotal caps concurrent spectator connections.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps connections from any one address.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		metrics.ConnectionsRejected.WithLabelValues("origin").Inc()
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP.
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub fans a battle's snapshots out to every connected
// spectator, grounded on the teacher's internal/api/websocket.go hub.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter

	// broadcastBudget caps outbound messages per second regardless of
	// how fast the simulation produces snapshots; excess broadcasts
	// are dropped, never queued.
	broadcastBudget *rate.Limiter
}

// NewWebSocketHub builds a hub with per-IP connection limiting and a
// bounded outbound broadcast budget.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:         make(map[*websocket.Conn]*wsClient),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *wsClient),
		unregister:      make(chan *websocket.Conn),
		wsLimiter:       NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		broadcastBudget: rate.NewLimiter(rate.Limit(30), 60),
	}
}

// Run drives the hub's register/unregister/broadcast event loop. It
// must be started in its own goroutine by the caller.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()
			count := len(h.clients)
			log.Printf("📡 spectator connected from %s (%d total)", client.ip, count)
			metrics.WSConnections.Set(float64(count))

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			count := h.ClientCount()
			log.Printf("📡 spectator disconnected (%d remaining)", count)
			metrics.WSConnections.Set(float64(count))

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			metrics.WSMessagesTotal.Inc()
		}
	}
}

// Broadcast sends event+data as JSON to every connected spectator,
// dropping the message (rather than blocking) if the send buffer is
// full.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	if !h.broadcastBudget.Allow() {
		return
	}
	msg := map[string]interface{}{"event": event, "data": data}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// ClientCount returns the number of connected spectators.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes battle:state snapshots to every spectator
// ten times a second, skipping entirely when nobody is connected.
func (h *WebSocketHub) StartBroadcastLoop(battle BattleView) {
	ticker := time.NewTicker(100 * time.Millisecond)
	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 || battle == nil {
				continue
			}
			h.Broadcast("battle:state", battle.GetState())
		}
	}()
}

// HandleWebSocket upgrades a spectator connection, enforcing the
// total and per-IP connection caps before the handshake completes.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		metrics.ConnectionsRejected.WithLabelValues("ws_total_limit").Inc()
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		metrics.ConnectionsRejected.WithLabelValues("ws_ip_limit").Inc()
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			// Spectators are read-only; inbound frames are drained and
			// discarded so the connection stays alive.
		}
	}()
}
