// Package gateway exposes cards over HTTP and pushes card updates to
// WebSocket subscribers.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tokencard/internal/domain"
	"tokencard/internal/observability"
)

// HubConfig configures WebSocket hub behavior.
type HubConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading client messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SendBuffer is the per-client outbound queue size. A client that
	// cannot drain its queue is disconnected.
	SendBuffer int
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   64,
	}
}

// cardMessage is pushed to every subscriber on a card state change.
type cardMessage struct {
	Type string       `json:"type"`
	Card *domain.Card `json:"card,omitempty"`
	ID   string       `json:"card_id,omitempty"`
}

// clientAction is what subscribers send back over the socket.
type clientAction struct {
	Action string `json:"action"`
	CardID string `json:"card_id"`
}

// Hub fans card updates out to connected WebSocket clients and feeds
// client actions into the refresh engine.
type Hub struct {
	config  HubConfig
	engine  Engine
	metrics *observability.Metrics
	logger  *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// Engine is the card surface the hub needs.
type Engine interface {
	Refresh(ctx context.Context, cardID string, trigger string) (*domain.Card, error)
	CloseCard(ctx context.Context, cardID string) error
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. Config zero values fall back to defaults.
func NewHub(engine Engine, config *HubConfig, logger *log.Logger) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		config:  cfg,
		engine:  engine,
		metrics: observability.DefaultMetrics,
		logger:  logger,
		clients: make(map[*client]struct{}),
		done:    make(chan struct{}),
	}
}

// BroadcastUpdate pushes a card state change to all connected clients.
// Intended as the engine's OnUpdate callback.
func (h *Hub) BroadcastUpdate(card *domain.Card) {
	h.broadcast(cardMessage{Type: "card_update", Card: card})
}

// BroadcastClosed tells clients a card is gone.
func (h *Hub) BroadcastClosed(cardID string) {
	h.broadcast(cardMessage{Type: "card_closed", ID: cardID})
}

func (h *Hub) broadcast(msg cardMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("[gateway] encode broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			h.metrics.WSMessagesSent.Inc()
		default:
			// Slow consumer. Drop the connection, not the hub.
			h.removeLocked(c)
		}
	}
}

// Serve takes ownership of an upgraded connection and runs its read and
// write loops until the client disconnects or the hub shuts down.
func (h *Hub) Serve(conn *websocket.Conn) {
	if h.closed.Load() {
		conn.Close()
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.WSConnections.Inc()

	h.wg.Add(2)
	go h.writeLoop(c)
	go h.readLoop(c)
}

// Close disconnects all clients and stops the hub.
func (h *Hub) Close() {
	if h.closed.Swap(true) {
		return
	}
	close(h.done)

	h.mu.Lock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// removeLocked drops a client. Caller holds h.mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.WSConnections.Dec()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// writeLoop drains the client's send queue and keeps the connection alive
// with periodic pings.
func (h *Hub) writeLoop(c *client) {
	defer h.wg.Done()
	defer c.conn.Close()

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		case <-h.done:
			return
		}
	}
}

// readLoop consumes client actions until the connection drops.
func (h *Hub) readLoop(c *client) {
	defer h.wg.Done()
	defer h.remove(c)

	c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
		h.handleAction(message)
	}
}

func (h *Hub) handleAction(message []byte) {
	var action clientAction
	if err := json.Unmarshal(message, &action); err != nil {
		h.logger.Printf("[gateway] malformed client message: %v", err)
		return
	}
	if action.CardID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch action.Action {
	case "refresh":
		if _, err := h.engine.Refresh(ctx, action.CardID, "manual"); err != nil {
			h.logger.Printf("[gateway] refresh %s: %v", action.CardID, err)
		}
	case "close":
		if err := h.engine.CloseCard(ctx, action.CardID); err != nil {
			h.logger.Printf("[gateway] close %s: %v", action.CardID, err)
			return
		}
		h.BroadcastClosed(action.CardID)
	default:
		h.logger.Printf("[gateway] unknown action %q", action.Action)
	}
}
