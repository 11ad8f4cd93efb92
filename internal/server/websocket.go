package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/game"
)

// Outbound message types.
const (
	MsgFrame = "frame"
	MsgEvent = "event"
	MsgError = "error"
)

const maxCommandSize = 4096

// Message is the envelope of everything the server writes to a renderer.
// Inbound messages are plain game.Command values.
type Message struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Hub tracks connected renderers. Each one gets the snapshot feed, gameplay
// events and a channel for its input.
type Hub struct {
	sim      Simulation
	cfg      config.ServerConfig
	logger   log.Log
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// queue hands data to the write pump, dropping it if the client is behind.
func (c *client) queue(data []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		return false
	}
}

func newHub(sim Simulation, cfg config.ServerConfig, logger log.Log) *Hub {
	return &Hub{
		sim:    sim,
		cfg:    cfg,
		logger: logger.With(log.String("component", "hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origins are checked by websocketOriginCheck before the upgrade.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("Client connected", log.String("client_id", c.id), log.Int("total_clients", n))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("Client disconnected", log.String("client_id", c.id), log.Int("total_clients", n))
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close()
	}
}

// broadcast queues msg for every client. Slow clients miss it.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message", log.String("type", msg.Type), log.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.queue(data) {
			h.logger.Debug("Client send buffer full, dropping message", log.String("client_id", c.id))
		}
	}
}

// forwardEvent is subscribed to the match event bus. It runs on the
// simulation goroutine and never blocks.
func (h *Hub) forwardEvent(e bus.Event) error {
	h.broadcast(Message{Type: MsgEvent, Event: e.Type(), Data: e.Data()})
	return nil
}

func (h *Hub) handleWebSocket(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, max(h.cfg.FrameBuffer, 1)),
		done: make(chan struct{}),
	}
	h.register(c)

	frames, cancel := h.sim.Frames()
	go h.writePump(c, frames, cancel)
	h.readPump(c)
}

// readPump turns inbound messages into simulation commands until the
// connection fails.
func (h *Hub) readPump(c *client) {
	defer c.close()

	c.conn.SetReadLimit(maxCommandSize)
	if wait := h.pongWait(); wait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", log.String("client_id", c.id), log.Error(err))
			}
			return
		}

		var cmd game.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.sendError(c, fmt.Errorf("%w: %v", ErrInvalidMessage, err))
			continue
		}
		if err := h.sim.Submit(cmd); err != nil {
			h.sendError(c, err)
		}
	}
}

func (h *Hub) sendError(c *client, err error) {
	data, mErr := json.Marshal(Message{Type: MsgError, Error: err.Error()})
	if mErr != nil {
		return
	}
	c.queue(data)
}

// writePump is the only writer on the connection. It sends the latest
// snapshot at once, then every snapshot whose digest changed.
func (h *Hub) writePump(c *client, frames <-chan game.Snapshot, cancel func()) {
	ping := h.cfg.PingInterval
	if ping <= 0 {
		ping = time.Hour
	}
	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		cancel()
		c.close()
		_ = c.conn.Close()
		h.unregister(c)
	}()

	latest := h.sim.Latest()
	if err := h.writeJSON(c, Message{Type: MsgFrame, Data: latest}); err != nil {
		return
	}
	lastDigest := latest.Digest

	for {
		select {
		case <-c.done:
			h.writeClose(c)
			return

		case snap, ok := <-frames:
			if !ok {
				h.writeClose(c)
				return
			}
			if snap.Digest == lastDigest {
				continue
			}
			lastDigest = snap.Digest
			if err := h.writeJSON(c, Message{Type: MsgFrame, Data: snap}); err != nil {
				return
			}

		case data := <-c.send:
			if err := h.write(c, websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := h.write(c, websocket.PingMessage, nil); err != nil {
				h.logger.Debug("WebSocket ping error", log.String("client_id", c.id), log.Error(err))
				return
			}
		}
	}
}

func (h *Hub) writeJSON(c *client, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message", log.String("type", msg.Type), log.Error(err))
		return err
	}
	return h.write(c, websocket.TextMessage, data)
}

func (h *Hub) write(c *client, kind int, data []byte) error {
	if h.cfg.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	}
	err := c.conn.WriteMessage(kind, data)
	if err != nil {
		h.logger.Debug("WebSocket write error", log.String("client_id", c.id), log.Error(err))
	}
	return err
}

// writeClose sends a best-effort close frame.
func (h *Hub) writeClose(c *client) {
	_ = h.write(c, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (h *Hub) pongWait() time.Duration {
	if h.cfg.PingInterval <= 0 {
		return 0
	}
	return h.cfg.PingInterval * 2
}
