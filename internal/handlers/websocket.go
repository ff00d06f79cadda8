// -----------------------------------------------------------------------
// WebSocket Handler - lifecycle event and log streaming
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// LogEntry is one log line broadcast to connected clients.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// wsMessage is the envelope for everything sent over the socket.
type wsMessage struct {
	Type      string      `json:"type"` // "event" or "log"
	Event     string      `json:"event,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Log       *LogEntry   `json:"log,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient wraps a connection with a write lock; gorilla connections do
// not allow concurrent writers.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(msg wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(msg)
}

// WebSocketHandler upgrades connections and broadcasts analysis lifecycle
// events and filtered log lines to every connected client.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	logger   arbor.ILogger

	mu      sync.RWMutex
	clients map[*wsClient]bool
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local tool; cross-origin pages may host the UI
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*wsClient]bool),
	}
}

// HandleWebSocket handles GET /ws.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	// Read loop only detects disconnects; clients do not send commands.
	go func() {
		defer h.removeClient(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHandler) removeClient(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	client.conn.Close()
	h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}

// BindEvents subscribes the handler to every analysis lifecycle event so
// they stream to connected clients.
func (h *WebSocketHandler) BindEvents(events interfaces.EventService) error {
	for _, eventType := range []interfaces.EventType{
		interfaces.EventDocumentUploaded,
		interfaces.EventDocumentDeleted,
		interfaces.EventAnalysisStarted,
		interfaces.EventAnalysisCompleted,
		interfaces.EventAnalysisFailed,
	} {
		et := eventType
		if err := events.Subscribe(et, func(ctx context.Context, event interfaces.Event) error {
			h.BroadcastEvent(string(event.Type), event.Payload)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastEvent sends a lifecycle event to all connected clients.
func (h *WebSocketHandler) BroadcastEvent(event string, payload interface{}) {
	h.broadcast(wsMessage{
		Type:      "event",
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// BroadcastLog sends a log line to all connected clients.
func (h *WebSocketHandler) BroadcastLog(entry LogEntry) {
	h.broadcast(wsMessage{
		Type:      "log",
		Log:       &entry,
		Timestamp: time.Now().UTC(),
	})
}

func (h *WebSocketHandler) broadcast(msg wsMessage) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(msg); err != nil {
			h.removeClient(client)
		}
	}
}

// ClientCount returns how many clients are connected.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*wsClient]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}
