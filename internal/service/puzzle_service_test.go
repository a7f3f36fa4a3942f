package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PuzzleServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	gameService   GameService
	puzzleService PuzzleService
	player        *models.Player
	game          *GameSnapshot
}

func (suite *PuzzleServiceTestSuite) SetupSuite() {
	db, err := openTestDB()
	assert.NoError(suite.T(), err)
	suite.db = db

	config := DefaultConfig()
	log, _ := zap.NewDevelopment()

	services := NewServices(db, config, log, nil)
	suite.gameService = services.Game
	suite.puzzleService = services.Puzzle
}

func (suite *PuzzleServiceTestSuite) SetupTest() {
	resetGameTables(suite.db)

	suite.player = &models.Player{
		Username:       "seeker",
		Email:          "seeker@example.com",
		HashedPassword: "x",
		IsActive:       true,
	}
	assert.NoError(suite.T(), suite.db.Create(suite.player).Error)

	game, err := suite.gameService.CreateGame(context.Background(), suite.player.ID, models.DifficultyNormal)
	assert.NoError(suite.T(), err)
	suite.game = game
}

func (suite *PuzzleServiceTestSuite) oracleID(name string) uint {
	var oracle models.Oracle
	assert.NoError(suite.T(), suite.db.Where("name = ?", name).First(&oracle).Error)
	return oracle.ID
}

// challenge moves the oracle out of the locked phase so a puzzle can
// be requested.
func (suite *PuzzleServiceTestSuite) challenge(name string) uint {
	_, err := suite.gameService.ChallengeOracle(context.Background(), suite.game.GameID, suite.player.ID, name)
	assert.NoError(suite.T(), err)
	return suite.oracleID(name)
}

func (suite *PuzzleServiceTestSuite) TestGetPuzzleRequiresChallenge() {
	oracleID := suite.oracleID("Chronos")

	_, err := suite.puzzleService.GetPuzzle(context.Background(), suite.game.GameID, suite.player.ID, oracleID)
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrOracleNotChallenged, appErr.Code)
}

func (suite *PuzzleServiceTestSuite) TestGetPuzzleChronos() {
	ctx := context.Background()
	oracleID := suite.challenge("Chronos")

	puzzle, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Chronos", puzzle.OracleName)
	assert.Equal(suite.T(), "riddle", puzzle.PuzzleType)
	assert.NotEmpty(suite.T(), puzzle.Description)
	assert.Len(suite.T(), puzzle.Hints, 3)
	assert.Equal(suite.T(), 180, puzzle.TimeLimit)
	assert.Equal(suite.T(), 0, puzzle.Attempts)

	// the solution is never handed to the caller
	assert.NotContains(suite.T(), puzzle.Hints, "tomorrow")

	// the encounter moved into the puzzle phase
	refreshed, err := suite.gameService.GetGame(ctx, suite.game.GameID, suite.player.ID)
	assert.NoError(suite.T(), err)
	for _, oracle := range refreshed.Oracles {
		if oracle.Name == "Chronos" {
			assert.Equal(suite.T(), models.PhasePuzzle, oracle.CurrentPhase)
		}
	}
}

func (suite *PuzzleServiceTestSuite) TestGetPuzzleIsStable() {
	ctx := context.Background()
	oracleID := suite.challenge("Selene")

	first, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)

	// asking again returns the same riddle, not a fresh one
	second, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.Description, second.Description)
	assert.Equal(suite.T(), first.Hints, second.Hints)
}

func (suite *PuzzleServiceTestSuite) TestNyxFalseClues() {
	puzzle, err := suite.puzzleService.GetPuzzle(context.Background(), suite.game.GameID, suite.player.ID, suite.challenge("Nyx"))
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), puzzle.FalseClues)
	assert.Equal(suite.T(), 0, puzzle.TimeLimit)
}

func (suite *PuzzleServiceTestSuite) TestSolvePuzzleWrongAnswer() {
	ctx := context.Background()
	oracleID := suite.challenge("Chronos")

	puzzle, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)

	result, err := suite.puzzleService.SolvePuzzle(ctx, suite.game.GameID, suite.player.ID, &PuzzleSolutionRequest{
		OracleStateID: puzzle.OracleStateID,
		Solution:      "yesterday",
	})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Correct)
	assert.Equal(suite.T(), 1, result.Attempts)
	assert.NotEqual(suite.T(), models.PhaseBattle, result.NextPhase)

	// wrong answers still count against the tally
	result, err = suite.puzzleService.SolvePuzzle(ctx, suite.game.GameID, suite.player.ID, &PuzzleSolutionRequest{
		OracleStateID: puzzle.OracleStateID,
		Solution:      "never",
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, result.Attempts)
}

func (suite *PuzzleServiceTestSuite) TestSolvePuzzleCorrect() {
	ctx := context.Background()
	oracleID := suite.challenge("Chronos")

	puzzle, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)

	result, err := suite.puzzleService.SolvePuzzle(ctx, suite.game.GameID, suite.player.ID, &PuzzleSolutionRequest{
		OracleStateID: puzzle.OracleStateID,
		Solution:      "  The TOMORROW ",
	})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Correct)
	assert.Equal(suite.T(), 1, result.Attempts)
	assert.Equal(suite.T(), models.PhaseBattle, result.NextPhase)
}

func (suite *PuzzleServiceTestSuite) TestSolvePuzzleExpired() {
	ctx := context.Background()
	oracleID := suite.challenge("Chronos")

	puzzle, err := suite.puzzleService.GetPuzzle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)

	// backdate the issue stamp past the time limit
	var state models.OracleState
	assert.NoError(suite.T(), suite.db.First(&state, puzzle.OracleStateID).Error)
	state.PuzzleState["issued_at"] = time.Now().Add(-200 * time.Second).Unix()
	assert.NoError(suite.T(), suite.db.Save(&state).Error)

	_, err = suite.puzzleService.SolvePuzzle(ctx, suite.game.GameID, suite.player.ID, &PuzzleSolutionRequest{
		OracleStateID: puzzle.OracleStateID,
		Solution:      "tomorrow",
	})
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrPuzzleExpired, appErr.Code)
}

func (suite *PuzzleServiceTestSuite) TestSolvePuzzleNotIssued() {
	ctx := context.Background()
	oracleID := suite.challenge("Chronos")

	var state models.OracleState
	assert.NoError(suite.T(), suite.db.Where("game_state_id = ? AND oracle_id = ?", suite.game.GameID, oracleID).First(&state).Error)

	_, err := suite.puzzleService.SolvePuzzle(ctx, suite.game.GameID, suite.player.ID, &PuzzleSolutionRequest{
		OracleStateID: state.ID,
		Solution:      "tomorrow",
	})
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrPuzzleNotFound, appErr.Code)
}

func TestRunPuzzleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PuzzleServiceTestSuite))
}
