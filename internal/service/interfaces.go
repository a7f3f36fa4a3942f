package service

import (
	"context"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
)

// AuthService handles accounts and token sessions.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, jti string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)

	// ValidateToken checks the signature and the live session row.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	CurrentPlayer(ctx context.Context, playerID uint) (*models.Player, error)

	RevokeAllSessions(ctx context.Context, playerID uint) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// GameService drives campaign progression.
type GameService interface {
	CreateGame(ctx context.Context, playerID uint, difficulty string) (*GameSnapshot, error)
	GetGame(ctx context.Context, gameID, playerID uint) (*GameSnapshot, error)
	GetInventory(ctx context.Context, gameID, playerID uint) (*Inventory, error)
	SaveGame(ctx context.Context, gameID, playerID uint) error
	UseInsightToken(ctx context.Context, gameID, playerID uint, question string) (*InsightResult, error)

	ChallengeOracle(ctx context.Context, gameID, playerID uint, oracleName string) (*ChallengeResult, error)
	DefeatOracle(ctx context.Context, gameID, playerID, oracleID uint) (*DefeatResult, error)
}

// PuzzleService generates and validates oracle puzzles.
type PuzzleService interface {
	GetPuzzle(ctx context.Context, gameID, playerID, oracleID uint) (*Puzzle, error)
	SolvePuzzle(ctx context.Context, gameID, playerID uint, req *PuzzleSolutionRequest) (*PuzzleResult, error)
}

// CombatService resolves turn-based battles.
type CombatService interface {
	StartBattle(ctx context.Context, gameID, playerID, oracleID uint) (*BattleStart, error)
	ExecuteTurn(ctx context.Context, gameID, playerID, oracleID uint, action string) (*BattleTurn, error)
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	IP          string `json:"-"`
	UserAgent   string `json:"-"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse carries the issued tokens and the player profile.
type AuthResponse struct {
	Player       *models.Player `json:"player"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
	TokenType    string         `json:"token_type"`
}

// TokenClaims is the validated token payload handed to middleware.
type TokenClaims struct {
	PlayerID  uint   `json:"player_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	JTI       string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// GameSnapshot is the full state view returned to clients.
type GameSnapshot struct {
	GameID          uint             `json:"game_id"`
	PlayerID        uint             `json:"player_id"`
	CurrentStage    int              `json:"current_stage"`
	OraclesDefeated int              `json:"oracles_defeated"`
	Gold            int              `json:"gold"`
	InsightTokens   int              `json:"insight_tokens"`
	HealingDraughts int              `json:"healing_draughts"`
	Weapons         []string         `json:"weapons"`
	Potions         []string         `json:"potions"`
	SpecialItems    []string         `json:"special_items"`
	IsCompleted     bool             `json:"is_completed"`
	DifficultyLevel string           `json:"difficulty_level"`
	Oracles         []OracleSummary  `json:"oracles"`
	Dominions       []DominionEntry  `json:"dominions"`
	Armies          []ArmyStackEntry `json:"armies"`
}

// OracleSummary is the per-oracle view within a snapshot.
type OracleSummary struct {
	OracleID     uint   `json:"oracle_id"`
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Title        string `json:"title"`
	Difficulty   int    `json:"difficulty_level"`
	IsDefeated   bool   `json:"is_defeated"`
	IsHostile    bool   `json:"is_hostile"`
	CurrentPhase string `json:"current_phase"`
}

// DominionEntry is the per-dominion view within a snapshot.
type DominionEntry struct {
	Name         string `json:"name"`
	OracleName   string `json:"oracle_name"`
	IsControlled bool   `json:"is_controlled"`
	IsAccessible bool   `json:"is_accessible"`
}

// ArmyStackEntry is one unit stack within a snapshot.
type ArmyStackEntry struct {
	UnitName    string `json:"unit_name"`
	UnitType    string `json:"unit_type"`
	Quantity    int    `json:"quantity"`
	TotalHealth int    `json:"total_health"`
	IsDeployed  bool   `json:"is_deployed"`
}

// Inventory is the resource view of a run.
type Inventory struct {
	Gold            int      `json:"gold"`
	InsightTokens   int      `json:"insight_tokens"`
	HealingDraughts int      `json:"healing_draughts"`
	Weapons         []string `json:"weapons"`
	Potions         []string `json:"potions"`
	SpecialItems    []string `json:"special_items"`
}

// InsightResult is returned after spending an insight token.
type InsightResult struct {
	TokensRemaining int    `json:"tokens_remaining"`
	Question        string `json:"question"`
	Message         string `json:"message"`
}

// ChallengeResult is returned when entering an oracle's domain.
type ChallengeResult struct {
	Oracle  OracleSummary `json:"oracle"`
	Phase   string        `json:"phase"`
	Message string        `json:"message"`
}

// DefeatRewards lists what a fallen oracle yields.
type DefeatRewards struct {
	ArmyUnit       string `json:"army_unit"`
	Weapon         string `json:"weapon"`
	SpecialAbility string `json:"special_ability"`
	InsightTokens  int    `json:"insight_tokens"`
	Gold           int    `json:"gold"`
}

// DefeatProgress summarises campaign progress after a defeat.
type DefeatProgress struct {
	OraclesDefeated int  `json:"oracles_defeated"`
	CurrentStage    int  `json:"current_stage"`
	GameCompleted   bool `json:"game_completed"`
}

// DefeatResult is returned after confirming an oracle's defeat.
type DefeatResult struct {
	Message  string         `json:"message"`
	Rewards  DefeatRewards  `json:"rewards"`
	Progress DefeatProgress `json:"progress"`
}

// Puzzle is the riddle presented during the puzzle phase.
type Puzzle struct {
	OracleStateID uint     `json:"oracle_state_id"`
	OracleName    string   `json:"oracle_name"`
	PuzzleType    string   `json:"puzzle_type"`
	Description   string   `json:"description"`
	Hints         []string `json:"hints"`
	FalseClues    []string `json:"false_clues,omitempty"`
	Difficulty    int      `json:"difficulty"`
	TimeLimit     int      `json:"time_limit,omitempty"` // seconds, 0 means untimed
	Attempts      int      `json:"attempts"`
}

// PuzzleSolutionRequest is the solve payload.
type PuzzleSolutionRequest struct {
	OracleStateID uint   `json:"oracle_state_id" binding:"required"`
	Solution      string `json:"solution" binding:"required"`
}

// PuzzleResult reports a solution attempt.
type PuzzleResult struct {
	Correct   bool   `json:"correct"`
	Attempts  int    `json:"attempts"`
	NextPhase string `json:"next_phase"`
	Message   string `json:"message"`
}

// CombatPower aggregates an army's stats.
type CombatPower struct {
	Attack     float64 `json:"attack"`
	Defense    float64 `json:"defense"`
	Health     int     `json:"health"`
	PowerScore float64 `json:"power_score"`
}

// BattleUnit is one stack inside a battle.
type BattleUnit struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Attack   int     `json:"attack"`
	Defense  int     `json:"defense"`
	Health   int     `json:"health"`
	Morale   float64 `json:"morale"`
}

// BattleStart is returned when a battle begins.
type BattleStart struct {
	BattleInitiated bool         `json:"battle_initiated"`
	PlayerPower     CombatPower  `json:"player_power"`
	EnemyPower      CombatPower  `json:"enemy_power"`
	PlayerHealth    int          `json:"player_health"`
	EnemyHealth     int          `json:"enemy_health"`
	EnemyUnits      []BattleUnit `json:"enemy_units"`
}

// BattleTurn reports one resolved combat turn.
type BattleTurn struct {
	Turn         int      `json:"turn"`
	PlayerHealth int      `json:"player_health"`
	EnemyHealth  int      `json:"enemy_health"`
	Status       string   `json:"status"` // in_progress, victory, defeat
	BattleLog    []string `json:"battle_log"`
	NextPhase    string   `json:"next_phase"`
}
