package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/database"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	ws "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	engine *gin.Engine
	token  string
	gameID uint
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(suite.T(), err)

	err = db.AutoMigrate(
		&models.Player{},
		&models.PlayerSession{},
		&models.GameState{},
		&models.DominionState{},
		&models.Oracle{},
		&models.OracleState{},
		&models.ArmyUnit{},
		&models.PlayerArmy{},
	)
	require.NoError(suite.T(), err)

	for i, pair := range database.DominionNames {
		oracle := models.Oracle{
			Name:            pair[1],
			Domain:          pair[1],
			Title:           "Oracle of " + pair[1],
			DifficultyLevel: i + 1,
			UnlockOrder:     i + 1,
		}
		require.NoError(suite.T(), db.Create(&oracle).Error)
	}
	require.NoError(suite.T(), db.Create(&models.ArmyUnit{
		Name: "Novice Soldiers", UnitType: models.UnitTypeInfantry,
		Attack: 10, Defense: 10, Health: 100, Speed: 5, Rarity: "common",
	}).Error)

	suite.db = db

	log := zap.NewNop()
	hub := ws.NewHub(log)
	go hub.Run()

	services := service.NewServices(db, service.DefaultConfig(), log, hub)
	router := NewRouter(db, services, hub, log)
	suite.engine = router.GetEngine()
}

func (suite *APITestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), out))
}

// TestCampaignFlow walks the whole API surface in order: register,
// start a game, challenge Chronos, solve the puzzle, fight, collect.
func (suite *APITestSuite) TestCampaignFlow() {
	// health
	w := suite.request("GET", "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// register
	w = suite.request("POST", "/api/v1/auth/register", map[string]string{
		"username": "seeker",
		"email":    "seeker@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var auth struct {
		AccessToken string `json:"access_token"`
		Player      struct {
			ID uint `json:"id"`
		} `json:"player"`
	}
	suite.decode(w, &auth)
	require.NotEmpty(suite.T(), auth.AccessToken)
	suite.token = auth.AccessToken

	// profile
	w = suite.request("GET", "/api/v1/auth/me", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// unauthenticated requests bounce
	w = suite.request("POST", "/api/v1/game/new", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	// new game
	w = suite.request("POST", "/api/v1/game/new", map[string]string{"difficulty": "normal"}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var snapshot struct {
		GameID  uint `json:"game_id"`
		Gold    int  `json:"gold"`
		Oracles []struct {
			OracleID uint   `json:"oracle_id"`
			Name     string `json:"name"`
		} `json:"oracles"`
	}
	suite.decode(w, &snapshot)
	assert.Equal(suite.T(), 100, snapshot.Gold)
	require.Len(suite.T(), snapshot.Oracles, 13)
	suite.gameID = snapshot.GameID

	var chronosID uint
	for _, oracle := range snapshot.Oracles {
		if oracle.Name == "Chronos" {
			chronosID = oracle.OracleID
		}
	}
	require.NotZero(suite.T(), chronosID)

	base := fmt.Sprintf("/api/v1/game/%d", suite.gameID)

	// inventory
	w = suite.request("GET", base+"/inventory", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// puzzle before challenge is refused
	w = suite.request("GET", fmt.Sprintf("%s/oracle/%d/puzzle", base, chronosID), nil, suite.token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	// challenge
	w = suite.request("POST", base+"/oracle/challenge", map[string]string{"oracle_name": "Chronos"}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	// puzzle
	w = suite.request("GET", fmt.Sprintf("%s/oracle/%d/puzzle", base, chronosID), nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var puzzle struct {
		OracleStateID uint     `json:"oracle_state_id"`
		Hints         []string `json:"hints"`
		TimeLimit     int      `json:"time_limit"`
	}
	suite.decode(w, &puzzle)
	assert.Equal(suite.T(), 180, puzzle.TimeLimit)
	require.NotZero(suite.T(), puzzle.OracleStateID)

	// wrong solution counts an attempt
	w = suite.request("POST", base+"/oracle/puzzle/solve", map[string]interface{}{
		"oracle_state_id": puzzle.OracleStateID,
		"solution":        "yesterday",
	}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var attempt struct {
		Correct  bool `json:"correct"`
		Attempts int  `json:"attempts"`
	}
	suite.decode(w, &attempt)
	assert.False(suite.T(), attempt.Correct)
	assert.Equal(suite.T(), 1, attempt.Attempts)

	// correct solution
	w = suite.request("POST", base+"/oracle/puzzle/solve", map[string]interface{}{
		"oracle_state_id": puzzle.OracleStateID,
		"solution":        "tomorrow",
	}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &attempt)
	assert.True(suite.T(), attempt.Correct)
	assert.Equal(suite.T(), 2, attempt.Attempts)

	// battle
	w = suite.request("POST", fmt.Sprintf("%s/oracle/%d/battle", base, chronosID), nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var battle struct {
		BattleInitiated bool `json:"battle_initiated"`
		EnemyHealth     int  `json:"enemy_health"`
	}
	suite.decode(w, &battle)
	assert.True(suite.T(), battle.BattleInitiated)
	assert.Greater(suite.T(), battle.EnemyHealth, 0)

	// one combat turn
	w = suite.request("POST", fmt.Sprintf("%s/oracle/%d/battle/action", base, chronosID), map[string]string{
		"action": "attack",
	}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var turn struct {
		Turn   int    `json:"turn"`
		Status string `json:"status"`
	}
	suite.decode(w, &turn)
	assert.Equal(suite.T(), 2, turn.Turn)

	// confirm defeat (allowed regardless of battle outcome here)
	w = suite.request("POST", fmt.Sprintf("%s/oracle/%d/defeat", base, chronosID), nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var defeat struct {
		Progress struct {
			OraclesDefeated int `json:"oracles_defeated"`
		} `json:"progress"`
	}
	suite.decode(w, &defeat)
	assert.Equal(suite.T(), 1, defeat.Progress.OraclesDefeated)

	// save
	w = suite.request("POST", base+"/save", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// logout kills the session
	w = suite.request("POST", "/api/v1/auth/logout", nil, suite.token)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	w = suite.request("GET", "/api/v1/auth/me", nil, suite.token)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestUnknownRoute() {
	w := suite.request("GET", "/api/v1/nothing", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestRunAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
