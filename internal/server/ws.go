package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/3jesters/opentcg-server-go/internal/config"
	"github.com/3jesters/opentcg-server-go/internal/game"
)

// Hub fans match updates out to connected spectating players. Each
// client subscribes to one match as one player and receives that
// player's redacted view after every state change.
type Hub struct {
	upgrader websocket.Upgrader
	cfg      config.WebSocketConfig
	logger   *zap.Logger

	mu    sync.RWMutex
	rooms map[string]map[*wsClient]struct{}
}

type wsClient struct {
	matchID  string
	playerID string
	conn     *websocket.Conn
	send     chan []byte
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		cfg:    cfg,
		logger: logger,
		rooms:  make(map[string]map[*wsClient]struct{}),
	}
}

// HandleConnection upgrades a match subscription request. The playerId
// query parameter selects whose view the client receives.
func (h *Hub) HandleConnection(c *gin.Context) {
	matchID := c.Param("id")
	playerID := c.Query("playerId")
	if matchID == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchId and playerId are required"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
		}
		return
	}
	client := &wsClient{
		matchID:  matchID,
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, 16),
	}
	h.register(client)
	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.matchID]
	if !ok {
		room = make(map[*wsClient]struct{})
		h.rooms[client.matchID] = room
	}
	room[client] = struct{}{}
	if h.logger != nil {
		h.logger.Debug("websocket client joined",
			zap.String("match_id", client.matchID),
			zap.String("player_id", client.playerID))
	}
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.matchID]
	if !ok {
		return
	}
	if _, connected := room[client]; !connected {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.matchID)
	}
}

// BroadcastMatch sends each subscribed client its own redacted view of
// the match. Clients too slow to drain their buffer are dropped.
func (h *Hub) BroadcastMatch(m *game.Match) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.rooms[m.ID]))
	for client := range h.rooms[m.ID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		view, err := game.ViewFor(m, client.playerID)
		if err != nil {
			continue
		}
		payload, err := json.Marshal(view)
		if err != nil {
			if h.logger != nil {
				h.logger.Error("failed to encode match view", zap.Error(err))
			}
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.unregister(client)
			client.conn.Close()
		}
	}
}

func (h *Hub) readPump(client *wsClient) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()
	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(3 * h.cfg.PingInterval))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(3 * h.cfg.PingInterval))
	})
	for {
		// Clients only listen; any inbound payload besides control
		// frames is discarded.
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
