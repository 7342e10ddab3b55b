package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 100

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// StateBroadcastInterval is the scene:state rate (10 Hz)
	StateBroadcastInterval = 100 * time.Millisecond

	// Inbound input per connection: a pointer stream at display rate
	wsInputRate  = 120
	wsInputBurst = 240

	wsWriteTimeout  = time.Second
	wsMaxMessageLen = 1024
)

// inputAck answers one inbound message with its result label.
type inputAck struct {
	Result string `json:"result"`
}

// directMessage is a reply addressed to a single connection.
type directMessage struct {
	conn *websocket.Conn
	data []byte
}

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn     *websocket.Conn
	ip       string
	canInput bool
	limiter  *rate.Limiter
}

// WebSocketHub broadcasts frame snapshots and queues inbound input.
type WebSocketHub struct {
	engine EngineInterface
	token  string

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *wsClient
	unregister chan *websocket.Conn
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	upgrader  websocket.Upgrader
	slots     *ConnectionSlots
}

// NewWebSocketHub creates a hub. origins follows the CORS list; token, when
// set, is required for inbound input (watching needs no token).
func NewWebSocketHub(engine EngineInterface, origins []string, token string) *WebSocketHub {
	if origins == nil {
		origins = DefaultCORSOrigins
	}
	checker := OriginChecker(origins)

	return &WebSocketHub{
		engine:     engine,
		token:      token,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 64),
		direct:     make(chan directMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		slots:      NewConnectionSlots(MaxWSConnectionsPerIP),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if checker.Allowed(origin) {
					return true
				}
				log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
				RecordConnectionRejected("origin")
				return false
			},
		},
	}
}

// Run owns the client set. It is the only goroutine writing to connections.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.slots.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.remove(conn)
				}
			}
			IncrementWSMessages()

		case msg := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[msg.conn]
			h.mu.RUnlock()
			if !ok {
				continue
			}
			msg.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := msg.conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				h.remove(msg.conn)
			}
		}
	}
}

// remove closes conn and frees its slot. Safe to call twice.
func (h *WebSocketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		h.slots.Release(client.ip)
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	if ok {
		log.Printf("📱 Client disconnected (%d remaining)", count)
		UpdateWSConnections(count)
	}
}

// Stop disconnects every client and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

// Broadcast sends an event to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop publishes the latest snapshot as scene:state every interval.
func (h *WebSocketHub) StartBroadcastLoop(interval time.Duration) {
	if interval <= 0 {
		interval = StateBroadcastInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				if h.ClientCount() == 0 {
					continue
				}
				h.Broadcast("scene:state", h.engine.GetSnapshot())
			}
		}
	}()
}

// HandleWebSocket upgrades the request and reads input messages until the
// client goes away.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.slots.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	canInput := Authorized(r, h.token)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.slots.Release(ip)
		return
	}
	conn.SetReadLimit(wsMaxMessageLen)

	client := &wsClient{
		conn:     conn,
		ip:       ip,
		canInput: canInput,
		limiter:  rate.NewLimiter(wsInputRate, wsInputBurst),
	}

	select {
	case h.register <- client:
	case <-h.stop:
		h.slots.Release(ip)
		conn.Close()
		return
	}

	go h.readLoop(client)
}

func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client.conn:
		case <-h.stop:
		}
	}()

	source := "ws:" + client.ip
	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		result := h.handleInput(client, source, message)
		RecordWSInput(result)
		h.reply(client.conn, "input:ack", inputAck{Result: result})
	}
}

// reply queues a message for one client. Replies are dropped when the
// writer is behind.
func (h *WebSocketHub) reply(conn *websocket.Conn, event string, data interface{}) {
	jsonBytes, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return
	}

	select {
	case h.direct <- directMessage{conn: conn, data: jsonBytes}:
	default:
	}
}

// handleInput queues one inbound message and returns the metric result label.
func (h *WebSocketHub) handleInput(client *wsClient, source string, message []byte) string {
	if !client.canInput {
		return "unauthorized"
	}
	if !client.limiter.Allow() {
		return "throttled"
	}

	var req inputRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return "invalid"
	}
	ev, err := req.toEvent(source)
	if err != nil {
		return "invalid"
	}
	if !h.engine.PushInput(ev) {
		return "full"
	}
	return "queued"
}
