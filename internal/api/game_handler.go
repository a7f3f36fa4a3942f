package api

import (
	"net/http"
	"strconv"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/middleware"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/gin-gonic/gin"
)

// GameHandler exposes campaign endpoints.
type GameHandler struct {
	gameService service.GameService
}

// NewGameHandler creates the game handler.
func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// CreateGameRequest is the new-campaign payload.
type CreateGameRequest struct {
	Difficulty string `json:"difficulty"`
}

// InsightRequest is the insight token payload.
type InsightRequest struct {
	Question string `json:"question"`
}

func requirePlayer(c *gin.Context) (uint, bool) {
	playerID, ok := middleware.GetPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "not logged in",
		})
	}
	return playerID, ok
}

func gameIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("gameId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid game id",
		})
		return 0, false
	}
	return uint(id), true
}

// CreateGame starts a new campaign
// @Summary New game
// @Description Start a fresh thirteen-oracle campaign
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body CreateGameRequest false "difficulty"
// @Success 200 {object} service.GameSnapshot
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/new [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}

	var req CreateGameRequest
	// body is optional, difficulty defaults to normal
	_ = c.ShouldBindJSON(&req)

	snapshot, err := h.gameService.CreateGame(c.Request.Context(), playerID, req.Difficulty)
	if err != nil {
		respondError(c, "CREATE_GAME_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetGame returns the full campaign snapshot
// @Summary Game state
// @Description Load the full campaign snapshot
// @Tags Game
// @Security Bearer
// @Produce json
// @Param gameId path int true "game id"
// @Success 200 {object} service.GameSnapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/game/{gameId} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.gameService.GetGame(c.Request.Context(), gameID, playerID)
	if err != nil {
		respondError(c, "GET_GAME_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetInventory returns the resource view
// @Summary Inventory
// @Description Gold, tokens, weapons and potions for a run
// @Tags Game
// @Security Bearer
// @Produce json
// @Param gameId path int true "game id"
// @Success 200 {object} service.Inventory
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/inventory [get]
func (h *GameHandler) GetInventory(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	inventory, err := h.gameService.GetInventory(c.Request.Context(), gameID, playerID)
	if err != nil {
		respondError(c, "GET_INVENTORY_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, inventory)
}

// SaveGame stamps the save marker
// @Summary Save game
// @Tags Game
// @Security Bearer
// @Param gameId path int true "game id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/save [post]
func (h *GameHandler) SaveGame(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	if err := h.gameService.SaveGame(c.Request.Context(), gameID, playerID); err != nil {
		respondError(c, "SAVE_GAME_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "game saved",
	})
}

// UseInsight spends one insight token
// @Summary Use insight token
// @Description Spend an insight token in exchange for guidance
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param gameId path int true "game id"
// @Param request body InsightRequest false "question"
// @Success 200 {object} service.InsightResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/insight [post]
func (h *GameHandler) UseInsight(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	var req InsightRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.gameService.UseInsightToken(c.Request.Context(), gameID, playerID, req.Question)
	if err != nil {
		respondError(c, "INSIGHT_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
