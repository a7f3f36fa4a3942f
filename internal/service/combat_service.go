package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Battle outcomes.
const (
	BattleInProgress = "in_progress"
	BattleVictory    = "victory"
	BattleDefeat     = "defeat"
)

// Battle actions.
const (
	ActionAttack  = "attack"
	ActionDefend  = "defend"
	ActionSpecial = "special_ability"
)

// enemyTemplates hold each oracle's themed army. Unlisted oracles
// field generic guards.
var enemyTemplates = map[string][]BattleUnit{
	"Chronos": {
		{Name: "Time Wraiths", Attack: 15, Defense: 10, Health: 80, Quantity: 8},
		{Name: "Temporal Guards", Attack: 20, Defense: 15, Health: 120, Quantity: 5},
	},
	"Nyx": {
		{Name: "Shadow Assassins", Attack: 25, Defense: 8, Health: 70, Quantity: 10},
		{Name: "Night Stalkers", Attack: 18, Defense: 12, Health: 90, Quantity: 6},
	},
	"Aresion": {
		{Name: "War Hoplites", Attack: 22, Defense: 20, Health: 150, Quantity: 10},
		{Name: "Battle Champions", Attack: 30, Defense: 25, Health: 200, Quantity: 4},
	},
}

var defaultEnemyTemplate = []BattleUnit{
	{Name: "Oracle Guards", Attack: 18, Defense: 15, Health: 100, Quantity: 8},
}

type combatService struct {
	db         *gorm.DB
	gameRepo   repository.GameRepository
	oracleRepo repository.OracleRepository
	armyRepo   repository.ArmyRepository
	cfg        *config.CombatConfig
	log        *zap.Logger
	rng        *rand.Rand
}

// NewCombatService builds the combat service.
func NewCombatService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	oracleRepo repository.OracleRepository,
	armyRepo repository.ArmyRepository,
	cfg *config.CombatConfig,
	log *zap.Logger,
) CombatService {
	return &combatService{
		db:         db,
		gameRepo:   gameRepo,
		oracleRepo: oracleRepo,
		armyRepo:   armyRepo,
		cfg:        cfg,
		log:        log,
	}
}

// CalculateCombatPower aggregates an army's stats with morale applied.
func CalculateCombatPower(units []BattleUnit) CombatPower {
	var power CombatPower
	for _, unit := range units {
		morale := unit.Morale
		if morale == 0 {
			morale = 1.0
		}
		power.Attack += float64(unit.Attack*unit.Quantity) * morale
		power.Defense += float64(unit.Defense*unit.Quantity) * morale
		power.Health += unit.Health * unit.Quantity
	}
	power.PowerScore = (power.Attack + power.Defense) * (float64(power.Health) / 100)
	return power
}

// GenerateEnemyArmy builds the oracle's force, scaled by difficulty.
func GenerateEnemyArmy(oracleName string, powerMultiplier float64) []BattleUnit {
	template, ok := enemyTemplates[oracleName]
	if !ok {
		template = defaultEnemyTemplate
	}

	army := make([]BattleUnit, len(template))
	for i, unit := range template {
		scaled := unit
		scaled.Attack = int(float64(unit.Attack) * powerMultiplier)
		scaled.Defense = int(float64(unit.Defense) * powerMultiplier)
		scaled.Health = int(float64(unit.Health) * powerMultiplier)
		scaled.Morale = 1.0
		army[i] = scaled
	}
	return army
}

// StartBattle rolls enemy forces and snapshots the opening positions.
func (s *combatService) StartBattle(ctx context.Context, gameID, playerID, oracleID uint) (*BattleStart, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}

	oracle, err := s.oracleRepo.FindByID(ctx, oracleID)
	if err != nil {
		return nil, err
	}

	state, err := s.oracleRepo.FindState(ctx, gameID, oracleID)
	if err != nil {
		return nil, err
	}
	if state.IsDefeated {
		return nil, apperrors.New(apperrors.ErrOracleDefeated)
	}

	deployed, err := s.armyRepo.ListDeployed(ctx, gameID)
	if err != nil {
		return nil, err
	}

	playerUnits := make([]BattleUnit, 0, len(deployed))
	for _, stack := range deployed {
		playerUnits = append(playerUnits, BattleUnit{
			Name:     stack.UnitType.Name,
			Quantity: stack.Quantity,
			Attack:   stack.UnitType.Attack,
			Defense:  stack.UnitType.Defense,
			Health:   stack.UnitType.Health,
			Morale:   stack.Morale,
		})
	}
	playerPower := CalculateCombatPower(playerUnits)

	multiplier := float64(oracle.DifficultyLevel) * 0.8
	enemyUnits := GenerateEnemyArmy(oracle.Name, multiplier)
	enemyPower := CalculateCombatPower(enemyUnits)

	state.BattleState = models.JSONMap{
		"turn":          1,
		"player_health": playerPower.Health,
		"enemy_health":  enemyPower.Health,
		"player_units":  unitsToState(playerUnits),
		"enemy_units":   unitsToState(enemyUnits),
		"battle_log":    []interface{}{},
		"status":        BattleInProgress,
	}
	state.CurrentPhase = models.PhaseBattle

	if err := s.oracleRepo.UpdateState(ctx, state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to open battle")
	}

	s.log.Info("battle started",
		zap.Uint("game_id", gameID),
		zap.String("oracle", oracle.Name),
		zap.Int("player_health", playerPower.Health),
		zap.Int("enemy_health", enemyPower.Health),
	)

	return &BattleStart{
		BattleInitiated: true,
		PlayerPower:     playerPower,
		EnemyPower:      enemyPower,
		PlayerHealth:    playerPower.Health,
		EnemyHealth:     enemyPower.Health,
		EnemyUnits:      enemyUnits,
	}, nil
}

// ExecuteTurn resolves one full combat round: the player's action, then
// the enemy's counterattack if it survives.
func (s *combatService) ExecuteTurn(ctx context.Context, gameID, playerID, oracleID uint, action string) (*BattleTurn, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}

	state, err := s.oracleRepo.FindState(ctx, gameID, oracleID)
	if err != nil {
		return nil, err
	}

	battle := state.BattleState
	status, _ := battle["status"].(string)
	if status == "" {
		return nil, apperrors.New(apperrors.ErrBattleNotStarted)
	}
	if status != BattleInProgress {
		return nil, apperrors.New(apperrors.ErrBattleFinished)
	}

	turn, _ := asInt(battle["turn"])
	playerHealth, _ := asInt(battle["player_health"])
	enemyHealth, _ := asInt(battle["enemy_health"])
	battleLog := toStringSlice(battle["battle_log"])

	var playerDamage, enemyDamage int

	switch action {
	case ActionAttack:
		playerDamage = s.roll(s.cfg.PlayerDamageMin, s.cfg.PlayerDamageMax)
		enemyHealth -= playerDamage
		battleLog = append(battleLog, fmt.Sprintf("Turn %d: Player dealt %d damage", turn, playerDamage))
	case ActionSpecial:
		playerDamage = int(float64(s.roll(s.cfg.PlayerDamageMin, s.cfg.PlayerDamageMax)) * s.cfg.SpecialMultiplier)
		enemyHealth -= playerDamage
		battleLog = append(battleLog, fmt.Sprintf("Turn %d: Player unleashed a special attack for %d damage", turn, playerDamage))
	case ActionDefend:
		battleLog = append(battleLog, fmt.Sprintf("Turn %d: Player braced for the enemy assault", turn))
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidBattleAction, "unknown action %q", action)
	}

	if enemyHealth > 0 {
		enemyDamage = s.roll(s.cfg.EnemyDamageMin, s.cfg.EnemyDamageMax)
		if action == ActionDefend {
			enemyDamage = int(float64(enemyDamage) * s.cfg.DefendReduction)
		}
		playerHealth -= enemyDamage
		battleLog = append(battleLog, fmt.Sprintf("Turn %d: Enemy dealt %d damage", turn, enemyDamage))
	}

	nextStatus := BattleInProgress
	if enemyHealth <= 0 {
		nextStatus = BattleVictory
		state.CurrentPhase = models.PhaseConfrontation
		battleLog = append(battleLog, "Victory! Enemy defeated!")
	} else if playerHealth <= 0 {
		nextStatus = BattleDefeat
		battleLog = append(battleLog, "Defeat! Your army has fallen!")
	}

	turn++
	battle["turn"] = turn
	battle["player_health"] = playerHealth
	battle["enemy_health"] = enemyHealth
	battle["status"] = nextStatus
	battle["battle_log"] = toInterfaceSlice(battleLog)
	state.BattleState = battle

	if err := s.oracleRepo.UpdateState(ctx, state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to record combat turn")
	}

	s.log.Info("combat turn resolved",
		zap.Uint("game_id", gameID),
		zap.Uint("oracle_id", oracleID),
		zap.String("action", action),
		zap.Int("player_damage", playerDamage),
		zap.Int("enemy_damage", enemyDamage),
		zap.String("status", nextStatus),
	)

	tail := battleLog
	if len(tail) > s.cfg.LogTail {
		tail = tail[len(tail)-s.cfg.LogTail:]
	}

	return &BattleTurn{
		Turn:         turn,
		PlayerHealth: playerHealth,
		EnemyHealth:  enemyHealth,
		Status:       nextStatus,
		BattleLog:    tail,
		NextPhase:    state.CurrentPhase,
	}, nil
}

// roll returns a random value in [min, max].
func (s *combatService) roll(min, max int) int {
	if max <= min {
		return min
	}
	if s.rng != nil {
		return min + s.rng.Intn(max-min+1)
	}
	return min + rand.Intn(max-min+1)
}

func unitsToState(units []BattleUnit) []interface{} {
	result := make([]interface{}, len(units))
	for i, unit := range units {
		result[i] = map[string]interface{}{
			"name":     unit.Name,
			"quantity": unit.Quantity,
			"attack":   unit.Attack,
			"defense":  unit.Defense,
			"health":   unit.Health,
			"morale":   unit.Morale,
		}
	}
	return result
}
