package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrPlayerNotConnected = errors.New("player not connected")
	ErrGameNotWatched     = errors.New("no clients watching game")
	ErrSendBufferFull     = errors.New("send buffer full")
	ErrInvalidMessage     = errors.New("invalid message format")
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

// Client is one live websocket connection.
type Client struct {
	ID       string
	PlayerID uint
	GameID   uint
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, playerID uint) *Client {
	return &Client{
		ID:       uuid.New().String(),
		PlayerID: playerID,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}
}

// ReadPump reads frames until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("websocket read error",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump flushes outbound frames and keeps the connection pinged.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// drain anything else already queued
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound frame. Malformed frames are
// logged and dropped without touching the connection.
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		// malformed frames are dropped, the connection survives
		c.Hub.logger.Warn("dropping malformed websocket message",
			zap.String("client_id", c.ID),
			zap.Error(err))
		return
	}

	if msg.Type == "" {
		c.Hub.logger.Warn("dropping message without type",
			zap.String("client_id", c.ID))
		return
	}

	msg.PlayerID = c.PlayerID
	msg.Timestamp = time.Now().Unix()

	switch msg.Type {
	case MessageTypePong:
		c.Hub.logger.Debug("pong received",
			zap.String("client_id", c.ID))

	case MessageTypePing:
		c.SendMessage(MessageTypePong, nil)

	case MessageTypeSubscribeGame:
		if msg.GameID > 0 {
			c.Hub.subscribeGame(c, msg.GameID)
		} else {
			c.sendError("subscribe_game requires a game_id")
		}

	case MessageTypePlayerAction:
		// echoed to everyone watching the same game
		if c.GameID > 0 {
			msg.GameID = c.GameID
			if err := c.Hub.SendToGame(c.GameID, &msg); err != nil {
				c.Hub.logger.Debug("player action echo failed",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
		} else {
			c.sendError("player_action requires a game subscription")
		}

	default:
		c.Hub.logger.Warn("unsupported message type",
			zap.String("client_id", c.ID),
			zap.String("type", msg.Type))
		c.sendError("unsupported message type: " + msg.Type)
		c.Close()
	}
}

func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	errorMsg := &Message{
		Type:      MessageTypeError,
		Timestamp: time.Now().Unix(),
		Data:      payload,
	}
	c.Hub.SendToClient(c.ID, errorMsg)
}

// SendMessage marshals and queues a typed message for this client.
func (c *Client) SendMessage(msgType string, data interface{}) error {
	var payload json.RawMessage
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = jsonData
	}

	msg := &Message{
		Type:      msgType,
		PlayerID:  c.PlayerID,
		GameID:    c.GameID,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}

	return c.Hub.SendToClient(c.ID, msg)
}

// Close asks the hub to drop this client.
func (c *Client) Close() {
	c.Hub.unregister <- c
}
