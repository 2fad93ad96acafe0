// Package simhub is a local stand-in for the panel backend: the full
// REST surface, the push channel, and a fake per-node hunting loop
// that produces the same log vocabulary and ticket artifacts as the
// real automation engine. It exists so the console can be exercised
// end-to-end without touching the external booking service.
package simhub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	clientSendBuffer = 256
	writeWait        = 10 * time.Second
)

// Hub fans every log line out to all connected panel clients. Slow
// clients drop lines rather than stalling the broadcast.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*panelClient
	closed  bool
}

type panelClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]*panelClient),
	}
}

// Register adopts an upgraded connection and starts its pumps. The
// hub owns the connection from here on.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &panelClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	metricPanelClients.Inc()
	h.logger.Info("panel client connected", zap.String("client_id", client.id))

	go h.writePump(client)
	go h.readPump(client)
}

// Broadcast queues one log line for every connected client.
func (h *Hub) Broadcast(line string) {
	payload := []byte(line)

	h.mu.Lock()
	clients := make([]*panelClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("panel client send buffer full, dropping line",
				zap.String("client_id", client.id))
		}
	}
	metricEventsBroadcast.Inc()
}

// Close disconnects every client and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*panelClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[string]*panelClient)
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

func (h *Hub) writePump(client *panelClient) {
	defer h.unregister(client)

	for {
		select {
		case <-client.done:
			return
		case payload := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames. The panel never sends anything
// meaningful; reading is only how we notice the peer went away.
func (h *Hub) readPump(client *panelClient) {
	defer h.unregister(client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) unregister(client *panelClient) {
	h.mu.Lock()
	_, present := h.clients[client.id]
	delete(h.clients, client.id)
	h.mu.Unlock()

	client.close()
	if present {
		metricPanelClients.Dec()
		h.logger.Info("panel client disconnected", zap.String("client_id", client.id))
	}
}

func (c *panelClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
