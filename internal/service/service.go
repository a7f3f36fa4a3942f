package service

import (
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/repository"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config carries service-level settings.
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Game               config.GameConfig
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "change-me-in-production",
		AccessTokenExpiry:  24 * time.Hour,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Game: config.GameConfig{
			StartingGold:            100,
			StartingInsightTokens:   1,
			StartingHealingDraughts: 1,
			StartingWeapon:          "Mortal Spear",
			DefeatGoldReward:        500,
			DefeatInsightReward:     2,
			Combat: config.CombatConfig{
				PlayerDamageMin:   50,
				PlayerDamageMax:   150,
				EnemyDamageMin:    40,
				EnemyDamageMax:    120,
				DefendReduction:   0.5,
				SpecialMultiplier: 1.5,
				LogTail:           5,
			},
			Puzzle: config.PuzzleConfig{
				ChronosTimeLimit: 180 * time.Second,
				MaxHints:         3,
			},
		},
	}
}

// Broadcaster pushes game events to connected clients.
// Implemented by the websocket hub; nil disables broadcasting.
type Broadcaster interface {
	BroadcastGameEvent(gameID uint, event string, data map[string]interface{})
}

// Services bundles all service implementations.
type Services struct {
	Auth   AuthService
	Game   GameService
	Puzzle PuzzleService
	Combat CombatService
}

// NewServices wires repositories and services together.
func NewServices(db *gorm.DB, cfg *Config, log *zap.Logger, broadcaster Broadcaster) *Services {
	playerRepo := repository.NewPlayerRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	gameRepo := repository.NewGameRepository(db)
	oracleRepo := repository.NewOracleRepository(db)
	armyRepo := repository.NewArmyRepository(db)

	jwtManager := utils.NewJWTManager(
		cfg.JWTSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)

	authService := NewAuthService(db, playerRepo, sessionRepo, jwtManager, log)
	gameService := NewGameService(db, gameRepo, oracleRepo, armyRepo, playerRepo, &cfg.Game, log, broadcaster)
	puzzleService := NewPuzzleService(db, gameRepo, oracleRepo, &cfg.Game.Puzzle, log)
	combatService := NewCombatService(db, gameRepo, oracleRepo, armyRepo, &cfg.Game.Combat, log)

	return &Services{
		Auth:   authService,
		Game:   gameService,
		Puzzle: puzzleService,
		Combat: combatService,
	}
}
