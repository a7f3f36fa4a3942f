package api

import (
	"net/http"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/middleware"
	ws "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler upgrades connections and hands them to the hub.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the web client's host is fixed
				return true
			},
		},
		logger: logger,
	}
}

// GameWebSocket upgrades the request and starts the client pumps.
func (h *WebSocketHandler) GameWebSocket(c *gin.Context) {
	playerID, ok := middleware.GetPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "not logged in",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Uint("player_id", playerID),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, playerID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket connection established",
		zap.String("client_id", client.ID),
		zap.Uint("player_id", playerID))
}

// GetOnlineCount reports connection counts.
func (h *WebSocketHandler) GetOnlineCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online_count":   h.hub.GetOnlineCount(),
		"online_players": h.hub.GetOnlinePlayers(),
	})
}
