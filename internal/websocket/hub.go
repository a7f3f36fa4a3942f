package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks connected clients and routes game events to them.
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// players and games may each have several live connections
	playerClients map[uint][]*Client
	playerMu      sync.RWMutex

	gameClients map[uint][]*Client
	gameMu      sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message is the wire envelope for every frame.
type Message struct {
	Type      string          `json:"type"`
	PlayerID  uint            `json:"player_id,omitempty"`
	GameID    uint            `json:"game_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Message types.
const (
	MessageTypeConnected    = "connected"
	MessageTypeDisconnected = "disconnected"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"

	MessageTypeSubscribeGame  = "subscribe_game"
	MessageTypePlayerAction   = "player_action"
	MessageTypeGameEvent      = "game_event"
	MessageTypeOracleDefeated = "oracle_defeated"
	MessageTypePhaseChanged   = "phase_changed"
	MessageTypeNotification   = "notification"
)

// NewHub creates the hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		playerClients: make(map[uint][]*Client),
		gameClients:   make(map[uint][]*Client),
		broadcast:     make(chan *Message, 256),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		logger:        logger,
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	go h.runHeartbeat()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	if client.PlayerID > 0 {
		h.playerMu.Lock()
		h.playerClients[client.PlayerID] = append(h.playerClients[client.PlayerID], client)
		h.playerMu.Unlock()
	}

	h.logger.Info("websocket client connected",
		zap.String("client_id", client.ID),
		zap.Uint("player_id", client.PlayerID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"connected"}`),
	}
	h.SendToClient(client.ID, msg)
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	if client.PlayerID > 0 {
		h.playerMu.Lock()
		h.playerClients[client.PlayerID] = removeClient(h.playerClients[client.PlayerID], client.ID)
		if len(h.playerClients[client.PlayerID]) == 0 {
			delete(h.playerClients, client.PlayerID)
		}
		h.playerMu.Unlock()
	}

	if client.GameID > 0 {
		h.gameMu.Lock()
		h.gameClients[client.GameID] = removeClient(h.gameClients[client.GameID], client.ID)
		if len(h.gameClients[client.GameID]) == 0 {
			delete(h.gameClients, client.GameID)
		}
		h.gameMu.Unlock()
	}

	h.logger.Info("websocket client disconnected",
		zap.String("client_id", client.ID),
		zap.Uint("player_id", client.PlayerID))
}

func removeClient(clients []*Client, id string) []*Client {
	for i, c := range clients {
		if c.ID == id {
			return append(clients[:i], clients[i+1:]...)
		}
	}
	return clients
}

// subscribeGame binds a client to a game's event stream.
func (h *Hub) subscribeGame(client *Client, gameID uint) {
	h.gameMu.Lock()
	if client.GameID > 0 && client.GameID != gameID {
		h.gameClients[client.GameID] = removeClient(h.gameClients[client.GameID], client.ID)
	}
	client.GameID = gameID
	h.gameClients[gameID] = append(h.gameClients[gameID], client)
	h.gameMu.Unlock()

	h.logger.Debug("client subscribed to game",
		zap.String("client_id", client.ID),
		zap.Uint("game_id", gameID))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("client send buffer full",
				zap.String("client_id", client.ID))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient delivers a message to one client.
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToPlayer delivers a message to every connection of one player.
func (h *Hub) SendToPlayer(playerID uint, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.playerMu.RLock()
	clients := h.playerClients[playerID]
	h.playerMu.RUnlock()

	if len(clients) == 0 {
		return ErrPlayerNotConnected
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("player send buffer full",
				zap.String("client_id", client.ID),
				zap.Uint("player_id", playerID))
		}
	}

	return nil
}

// SendToGame delivers a message to every client watching a game.
func (h *Hub) SendToGame(gameID uint, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.gameMu.RLock()
	clients := h.gameClients[gameID]
	h.gameMu.RUnlock()

	if len(clients) == 0 {
		return ErrGameNotWatched
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("game send buffer full",
				zap.String("client_id", client.ID),
				zap.Uint("game_id", gameID))
		}
	}

	return nil
}

// BroadcastGameEvent pushes a named event to a game's watchers. This is
// the hook the game service calls after state changes.
func (h *Hub) BroadcastGameEvent(gameID uint, event string, data map[string]interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal game event",
			zap.String("event", event),
			zap.Error(err))
		return
	}

	msg := &Message{
		Type:      event,
		GameID:    gameID,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}

	if err := h.SendToGame(gameID, msg); err != nil {
		h.logger.Debug("game event dropped, no watchers",
			zap.Uint("game_id", gameID),
			zap.String("event", event))
	}
}

// GetOnlinePlayers lists the currently connected player ids.
func (h *Hub) GetOnlinePlayers() []uint {
	h.playerMu.RLock()
	defer h.playerMu.RUnlock()

	players := make([]uint, 0, len(h.playerClients))
	for playerID := range h.playerClients {
		players = append(players, playerID)
	}
	return players
}

// GetOnlineCount returns the number of live connections.
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		ping := &Message{
			Type:      MessageTypePing,
			Timestamp: time.Now().Unix(),
		}
		h.broadcast <- ping
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
