package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game/rules"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

const greetingType = "WATCHING"

type watchGreeting struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
}

// feedMessage is one encoded event addressed to a game's watchers.
type feedMessage struct {
	gameID string
	data   []byte
}

// Hub fans engine events out to websocket watchers grouped by game.
type Hub struct {
	logger *zap.Logger

	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan feedMessage
	done       chan struct{}

	bus    *rules.EventBus
	handle int
	once   sync.Once
}

// Client is a single websocket watcher of one game.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	gameID string
	send   chan []byte
}

// NewHub creates a hub fed by bus. Run must be started for delivery.
func NewHub(bus *rules.EventBus, logger *zap.Logger) *Hub {
	h := &Hub{
		logger:     logger.Named("hub"),
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan feedMessage, 256),
		done:       make(chan struct{}),
		bus:        bus,
	}
	h.handle = bus.Subscribe(h.onEvent)
	return h
}

func (h *Hub) onEvent(evt rules.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("type", string(evt.Type)), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- feedMessage{gameID: evt.GameID, data: data}:
	case <-h.done:
	default:
		h.logger.Warn("event feed backlog full, dropping event",
			zap.String("game_id", evt.GameID),
			zap.String("type", string(evt.Type)),
		)
	}
}

// Run delivers events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			if h.clients[c.gameID] == nil {
				h.clients[c.gameID] = make(map[*Client]struct{})
			}
			h.clients[c.gameID][c] = struct{}{}
			h.logger.Debug("watcher joined", zap.String("game_id", c.gameID), zap.Int("watchers", len(h.clients[c.gameID])))
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			for c := range h.clients[msg.gameID] {
				select {
				case c.send <- msg.data:
				default:
					h.logger.Warn("watcher too slow, disconnecting", zap.String("game_id", c.gameID))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	watchers, ok := h.clients[c.gameID]
	if !ok {
		return
	}
	if _, ok := watchers[c]; !ok {
		return
	}
	delete(watchers, c)
	close(c.send)
	if len(watchers) == 0 {
		delete(h.clients, c.gameID)
	}
}

func (h *Hub) shutdown() {
	h.once.Do(func() {
		close(h.done)
		h.bus.Unsubscribe(h.handle)
		for _, watchers := range h.clients {
			for c := range watchers {
				close(c.send)
			}
		}
		h.clients = make(map[string]map[*Client]struct{})
	})
}

// Serve upgrades the request and attaches the connection to gameID.
func (h *Hub) Serve(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &Client{hub: h, conn: conn, gameID: gameID, send: make(chan []byte, sendBuffer)}
	// the greeting is only flushed once the hub has accepted the client, so
	// a watcher that has read it will see every later event
	if greeting, err := json.Marshal(watchGreeting{Type: greetingType, GameID: gameID}); err == nil {
		c.send <- greeting
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames and notices when the peer goes away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("watcher read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
