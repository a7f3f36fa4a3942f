package service

import (
	"context"
	"testing"

	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CombatServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	gameService   GameService
	combatService CombatService
	player        *models.Player
	game          *GameSnapshot
}

func (suite *CombatServiceTestSuite) SetupSuite() {
	db, err := openTestDB()
	assert.NoError(suite.T(), err)
	suite.db = db

	config := DefaultConfig()
	log, _ := zap.NewDevelopment()

	services := NewServices(db, config, log, nil)
	suite.gameService = services.Game
	suite.combatService = services.Combat
}

func (suite *CombatServiceTestSuite) SetupTest() {
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

func (suite *CombatServiceTestSuite) oracleID(name string) uint {
	var oracle models.Oracle
	assert.NoError(suite.T(), suite.db.Where("name = ?", name).First(&oracle).Error)
	return oracle.ID
}

func (suite *CombatServiceTestSuite) startBattle(name string) (uint, *BattleStart) {
	ctx := context.Background()
	_, err := suite.gameService.ChallengeOracle(ctx, suite.game.GameID, suite.player.ID, name)
	assert.NoError(suite.T(), err)

	oracleID := suite.oracleID(name)
	start, err := suite.combatService.StartBattle(ctx, suite.game.GameID, suite.player.ID, oracleID)
	assert.NoError(suite.T(), err)
	return oracleID, start
}

// setBattleHealth rewrites the persisted pools to force an outcome.
func (suite *CombatServiceTestSuite) setBattleHealth(oracleID uint, playerHealth, enemyHealth int) {
	var state models.OracleState
	assert.NoError(suite.T(), suite.db.Where("game_state_id = ? AND oracle_id = ?", suite.game.GameID, oracleID).First(&state).Error)
	state.BattleState["player_health"] = playerHealth
	state.BattleState["enemy_health"] = enemyHealth
	assert.NoError(suite.T(), suite.db.Save(&state).Error)
}

func (suite *CombatServiceTestSuite) TestCalculateCombatPower() {
	units := []BattleUnit{
		{Name: "Novice Soldiers", Quantity: 10, Attack: 10, Defense: 10, Health: 100, Morale: 1.0},
	}
	power := CalculateCombatPower(units)
	assert.Equal(suite.T(), 100.0, power.Attack)
	assert.Equal(suite.T(), 100.0, power.Defense)
	assert.Equal(suite.T(), 1000, power.Health)
	assert.Equal(suite.T(), 2000.0, power.PowerScore)
}

func (suite *CombatServiceTestSuite) TestGenerateEnemyArmyScaling() {
	army := GenerateEnemyArmy("Chronos", 0.8)
	assert.Len(suite.T(), army, 2)
	assert.Equal(suite.T(), "Time Wraiths", army[0].Name)
	assert.Equal(suite.T(), 12, army[0].Attack)
	assert.Equal(suite.T(), 8, army[0].Defense)
	assert.Equal(suite.T(), 64, army[0].Health)
	assert.Equal(suite.T(), 8, army[0].Quantity)
	assert.Equal(suite.T(), 1.0, army[0].Morale)

	// oracles without a themed roster fall back to generic guards
	fallback := GenerateEnemyArmy("Selene", 2.0)
	assert.Len(suite.T(), fallback, 1)
	assert.Equal(suite.T(), "Oracle Guards", fallback[0].Name)
	assert.Equal(suite.T(), 36, fallback[0].Attack)
}

func (suite *CombatServiceTestSuite) TestStartBattle() {
	ctx := context.Background()
	oracleID, start := suite.startBattle("Chronos")

	assert.True(suite.T(), start.BattleInitiated)
	assert.Equal(suite.T(), 1000, start.PlayerHealth)
	assert.Greater(suite.T(), start.EnemyHealth, 0)
	assert.NotEmpty(suite.T(), start.EnemyUnits)

	// the encounter moved into the battle phase
	refreshed, err := suite.gameService.GetGame(ctx, suite.game.GameID, suite.player.ID)
	assert.NoError(suite.T(), err)
	for _, oracle := range refreshed.Oracles {
		if oracle.OracleID == oracleID {
			assert.Equal(suite.T(), models.PhaseBattle, oracle.CurrentPhase)
		}
	}
}

func (suite *CombatServiceTestSuite) TestExecuteTurnAttack() {
	ctx := context.Background()
	oracleID, start := suite.startBattle("Chronos")

	turn, err := suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, oracleID, ActionAttack)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, turn.Turn)
	assert.Equal(suite.T(), BattleInProgress, turn.Status)
	assert.NotEmpty(suite.T(), turn.BattleLog)
	assert.LessOrEqual(suite.T(), len(turn.BattleLog), 5)

	playerDamage := start.EnemyHealth - turn.EnemyHealth
	assert.GreaterOrEqual(suite.T(), playerDamage, 50)
	assert.LessOrEqual(suite.T(), playerDamage, 150)

	enemyDamage := start.PlayerHealth - turn.PlayerHealth
	assert.GreaterOrEqual(suite.T(), enemyDamage, 40)
	assert.LessOrEqual(suite.T(), enemyDamage, 120)
}

func (suite *CombatServiceTestSuite) TestExecuteTurnDefend() {
	ctx := context.Background()
	oracleID, start := suite.startBattle("Chronos")

	turn, err := suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, oracleID, ActionDefend)
	assert.NoError(suite.T(), err)

	// defending deals nothing but halves the counterattack
	assert.Equal(suite.T(), start.EnemyHealth, turn.EnemyHealth)
	enemyDamage := start.PlayerHealth - turn.PlayerHealth
	assert.GreaterOrEqual(suite.T(), enemyDamage, 20)
	assert.LessOrEqual(suite.T(), enemyDamage, 60)
}

func (suite *CombatServiceTestSuite) TestExecuteTurnVictory() {
	ctx := context.Background()
	oracleID, _ := suite.startBattle("Chronos")
	suite.setBattleHealth(oracleID, 1000, 10)

	turn, err := suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, oracleID, ActionAttack)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), BattleVictory, turn.Status)
	assert.Equal(suite.T(), models.PhaseConfrontation, turn.NextPhase)
	assert.Contains(suite.T(), turn.BattleLog, "Victory! Enemy defeated!")

	// a decided battle takes no further turns
	_, err = suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, oracleID, ActionAttack)
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrBattleFinished, appErr.Code)
}

func (suite *CombatServiceTestSuite) TestExecuteTurnDefeat() {
	ctx := context.Background()
	oracleID, _ := suite.startBattle("Chronos")
	suite.setBattleHealth(oracleID, 10, 5000)

	turn, err := suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, oracleID, ActionAttack)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), BattleDefeat, turn.Status)
	assert.Contains(suite.T(), turn.BattleLog, "Defeat! Your army has fallen!")
	assert.LessOrEqual(suite.T(), turn.PlayerHealth, 0)
}

func (suite *CombatServiceTestSuite) TestExecuteTurnBeforeStart() {
	ctx := context.Background()
	_, err := suite.gameService.ChallengeOracle(ctx, suite.game.GameID, suite.player.ID, "Chronos")
	assert.NoError(suite.T(), err)

	_, err = suite.combatService.ExecuteTurn(ctx, suite.game.GameID, suite.player.ID, suite.oracleID("Chronos"), ActionAttack)
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrBattleNotStarted, appErr.Code)
}

func (suite *CombatServiceTestSuite) TestExecuteTurnUnknownAction() {
	oracleID, _ := suite.startBattle("Chronos")

	_, err := suite.combatService.ExecuteTurn(context.Background(), suite.game.GameID, suite.player.ID, oracleID, "flee")
	assert.Error(suite.T(), err)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), apperrors.ErrInvalidBattleAction, appErr.Code)
}

func (suite *CombatServiceTestSuite) TestStartBattleWrongOwner() {
	ctx := context.Background()
	_, err := suite.gameService.ChallengeOracle(ctx, suite.game.GameID, suite.player.ID, "Chronos")
	assert.NoError(suite.T(), err)

	_, err = suite.combatService.StartBattle(ctx, suite.game.GameID, suite.player.ID+1, suite.oracleID("Chronos"))
	assert.Error(suite.T(), err)
}

func TestRunCombatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CombatServiceTestSuite))
}
