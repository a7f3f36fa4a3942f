package api

import (
	"net/http"
	"strconv"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"github.com/gin-gonic/gin"
)

// OracleHandler exposes encounter endpoints: challenges, puzzles and
// battles.
type OracleHandler struct {
	gameService   service.GameService
	puzzleService service.PuzzleService
	combatService service.CombatService
}

// NewOracleHandler creates the oracle handler.
func NewOracleHandler(
	gameService service.GameService,
	puzzleService service.PuzzleService,
	combatService service.CombatService,
) *OracleHandler {
	return &OracleHandler{
		gameService:   gameService,
		puzzleService: puzzleService,
		combatService: combatService,
	}
}

// ChallengeRequest names the oracle to confront.
type ChallengeRequest struct {
	OracleName string `json:"oracle_name" binding:"required"`
}

// BattleActionRequest is one combat order.
type BattleActionRequest struct {
	Action string `json:"action" binding:"required"`
}

func oracleIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("oracleId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid oracle id",
		})
		return 0, false
	}
	return uint(id), true
}

// Challenge opens an encounter
// @Summary Challenge an oracle
// @Description Enter an oracle's domain, starting the exploration phase
// @Tags Oracle
// @Security Bearer
// @Accept json
// @Produce json
// @Param gameId path int true "game id"
// @Param request body ChallengeRequest true "oracle name"
// @Success 200 {object} service.ChallengeResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/challenge [post]
func (h *OracleHandler) Challenge(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.gameService.ChallengeOracle(c.Request.Context(), gameID, playerID, req.OracleName)
	if err != nil {
		respondError(c, "CHALLENGE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPuzzle returns the oracle's active puzzle
// @Summary Get puzzle
// @Description Return the oracle's riddle, generating it on first request
// @Tags Oracle
// @Security Bearer
// @Produce json
// @Param gameId path int true "game id"
// @Param oracleId path int true "oracle id"
// @Success 200 {object} service.Puzzle
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/{oracleId}/puzzle [get]
func (h *OracleHandler) GetPuzzle(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	oracleID, ok := oracleIDParam(c)
	if !ok {
		return
	}

	puzzle, err := h.puzzleService.GetPuzzle(c.Request.Context(), gameID, playerID, oracleID)
	if err != nil {
		respondError(c, "GET_PUZZLE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, puzzle)
}

// SolvePuzzle submits a solution
// @Summary Solve puzzle
// @Description Submit a solution attempt for the active puzzle
// @Tags Oracle
// @Security Bearer
// @Accept json
// @Produce json
// @Param gameId path int true "game id"
// @Param request body service.PuzzleSolutionRequest true "solution"
// @Success 200 {object} service.PuzzleResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/puzzle/solve [post]
func (h *OracleHandler) SolvePuzzle(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	var req service.PuzzleSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.puzzleService.SolvePuzzle(c.Request.Context(), gameID, playerID, &req)
	if err != nil {
		respondError(c, "SOLVE_PUZZLE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// StartBattle opens combat
// @Summary Start battle
// @Description Roll enemy forces and open the battle phase
// @Tags Oracle
// @Security Bearer
// @Produce json
// @Param gameId path int true "game id"
// @Param oracleId path int true "oracle id"
// @Success 200 {object} service.BattleStart
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/{oracleId}/battle [post]
func (h *OracleHandler) StartBattle(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	oracleID, ok := oracleIDParam(c)
	if !ok {
		return
	}

	start, err := h.combatService.StartBattle(c.Request.Context(), gameID, playerID, oracleID)
	if err != nil {
		respondError(c, "START_BATTLE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, start)
}

// BattleAction resolves one combat turn
// @Summary Battle action
// @Description Execute one combat turn: attack, defend or special_ability
// @Tags Oracle
// @Security Bearer
// @Accept json
// @Produce json
// @Param gameId path int true "game id"
// @Param oracleId path int true "oracle id"
// @Param request body BattleActionRequest true "action"
// @Success 200 {object} service.BattleTurn
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/{oracleId}/battle/action [post]
func (h *OracleHandler) BattleAction(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	oracleID, ok := oracleIDParam(c)
	if !ok {
		return
	}

	var req BattleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "invalid request payload",
			Details: err.Error(),
		})
		return
	}

	turn, err := h.combatService.ExecuteTurn(c.Request.Context(), gameID, playerID, oracleID, req.Action)
	if err != nil {
		respondError(c, "BATTLE_ACTION_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, turn)
}

// Defeat confirms an oracle's defeat
// @Summary Confirm defeat
// @Description Finalize a won encounter and collect rewards
// @Tags Oracle
// @Security Bearer
// @Produce json
// @Param gameId path int true "game id"
// @Param oracleId path int true "oracle id"
// @Success 200 {object} service.DefeatResult
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/game/{gameId}/oracle/{oracleId}/defeat [post]
func (h *OracleHandler) Defeat(c *gin.Context) {
	playerID, ok := requirePlayer(c)
	if !ok {
		return
	}
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	oracleID, ok := oracleIDParam(c)
	if !ok {
		return
	}

	result, err := h.gameService.DefeatOracle(c.Request.Context(), gameID, playerID, oracleID)
	if err != nil {
		respondError(c, "DEFEAT_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
