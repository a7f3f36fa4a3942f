package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/database"
	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gameService struct {
	db          *gorm.DB
	gameRepo    repository.GameRepository
	oracleRepo  repository.OracleRepository
	armyRepo    repository.ArmyRepository
	playerRepo  repository.PlayerRepository
	cfg         *config.GameConfig
	log         *zap.Logger
	broadcaster Broadcaster
}

// NewGameService builds the game service.
func NewGameService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	oracleRepo repository.OracleRepository,
	armyRepo repository.ArmyRepository,
	playerRepo repository.PlayerRepository,
	cfg *config.GameConfig,
	log *zap.Logger,
	broadcaster Broadcaster,
) GameService {
	return &gameService{
		db:          db,
		gameRepo:    gameRepo,
		oracleRepo:  oracleRepo,
		armyRepo:    armyRepo,
		playerRepo:  playerRepo,
		cfg:         cfg,
		log:         log,
		broadcaster: broadcaster,
	}
}

// CreateGame starts a fresh campaign with the standard starting kit.
func (s *gameService) CreateGame(ctx context.Context, playerID uint, difficulty string) (*GameSnapshot, error) {
	switch difficulty {
	case "":
		difficulty = models.DifficultyNormal
	case models.DifficultyEasy, models.DifficultyNormal, models.DifficultyHard:
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidParam, "unknown difficulty %q", difficulty)
	}

	game := &models.GameState{
		PlayerID:        playerID,
		CurrentStage:    1,
		OraclesDefeated: 0,
		Gold:            s.cfg.StartingGold,
		InsightTokens:   s.cfg.StartingInsightTokens,
		HealingDraughts: s.cfg.StartingHealingDraughts,
		Weapons:         models.StringList{s.cfg.StartingWeapon},
		SpecialItems:    models.StringList{},
		Potions:         models.StringList{"Basic Healing Draught"},
		IsActive:        true,
		DifficultyLevel: difficulty,
		WorldState: models.JSONMap{
			"global_modifiers": []interface{}{},
			"alliances":        []interface{}{},
			"hostilities":      []interface{}{},
			"rule_changes":     []interface{}{},
		},
		ActiveEvents: models.StringList{},
	}

	oracles, err := s.oracleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(oracles) == 0 {
		return nil, apperrors.New(apperrors.ErrGameStateError).WithDetails("oracle table is empty")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		gameRepo := s.gameRepo.WithTx(tx).(repository.GameRepository)
		oracleRepo := s.oracleRepo.WithTx(tx).(repository.OracleRepository)
		armyRepo := s.armyRepo.WithTx(tx).(repository.ArmyRepository)

		if err := gameRepo.Create(ctx, game); err != nil {
			return err
		}

		for _, oracle := range oracles {
			state := &models.OracleState{
				GameStateID:      game.ID,
				OracleID:         oracle.ID,
				IsHostile:        true,
				CurrentPhase:     models.PhaseLocked,
				PuzzleState:      models.JSONMap{},
				BattleState:      models.JSONMap{},
				DiplomaticStance: -0.5,
			}
			if err := oracleRepo.CreateState(ctx, state); err != nil {
				return err
			}
		}

		for _, pair := range database.DominionNames {
			dominion := &models.DominionState{
				GameStateID:   game.ID,
				Name:          pair[0],
				OracleName:    pair[1],
				IsControlled:  false,
				IsAccessible:  pair[1] == "Chronos",
				ResourceBonus: models.JSONMap{},
				ExploredAreas: models.StringList{},
			}
			if err := gameRepo.CreateDominion(ctx, dominion); err != nil {
				return err
			}
		}

		noviceUnit, err := armyRepo.FindUnitByName(ctx, "Novice Soldiers")
		if err != nil {
			return err
		}

		startingArmy := &models.PlayerArmy{
			GameStateID:     game.ID,
			ArmyUnitID:      noviceUnit.ID,
			Quantity:        10,
			TotalHealth:     1000,
			Morale:          1.0,
			ExperienceLevel: 1,
			IsDeployed:      true,
			CurrentLocation: "Chronos Domain",
		}
		return armyRepo.CreateStack(ctx, startingArmy)
	})
	if err != nil {
		s.log.Error("failed to create game", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "failed to create game")
	}

	if err := s.playerRepo.IncrementStats(ctx, playerID, "total_games", 1); err != nil {
		s.log.Warn("failed to bump total_games", zap.Error(err))
	}

	s.log.Info("game created",
		zap.Uint("game_id", game.ID),
		zap.Uint("player_id", playerID),
		zap.String("difficulty", difficulty),
	)

	return s.GetGame(ctx, game.ID, playerID)
}

// GetGame loads the full snapshot, enforcing ownership.
func (s *gameService) GetGame(ctx context.Context, gameID, playerID uint) (*GameSnapshot, error) {
	game, err := s.loadOwnedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	return s.buildSnapshot(game), nil
}

func (s *gameService) loadOwnedGame(ctx context.Context, gameID, playerID uint) (*models.GameState, error) {
	game, err := s.gameRepo.FindByIDFull(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}
	return game, nil
}

func (s *gameService) buildSnapshot(game *models.GameState) *GameSnapshot {
	snapshot := &GameSnapshot{
		GameID:          game.ID,
		PlayerID:        game.PlayerID,
		CurrentStage:    game.CurrentStage,
		OraclesDefeated: game.OraclesDefeated,
		Gold:            game.Gold,
		InsightTokens:   game.InsightTokens,
		HealingDraughts: game.HealingDraughts,
		Weapons:         game.Weapons,
		Potions:         game.Potions,
		SpecialItems:    game.SpecialItems,
		IsCompleted:     game.IsCompleted,
		DifficultyLevel: game.DifficultyLevel,
	}

	for _, state := range game.OracleStates {
		snapshot.Oracles = append(snapshot.Oracles, OracleSummary{
			OracleID:     state.OracleID,
			Name:         state.Oracle.Name,
			Domain:       state.Oracle.Domain,
			Title:        state.Oracle.Title,
			Difficulty:   state.Oracle.DifficultyLevel,
			IsDefeated:   state.IsDefeated,
			IsHostile:    state.IsHostile,
			CurrentPhase: state.CurrentPhase,
		})
	}

	for _, dominion := range game.DominionStates {
		snapshot.Dominions = append(snapshot.Dominions, DominionEntry{
			Name:         dominion.Name,
			OracleName:   dominion.OracleName,
			IsControlled: dominion.IsControlled,
			IsAccessible: dominion.IsAccessible,
		})
	}

	for _, stack := range game.PlayerArmies {
		snapshot.Armies = append(snapshot.Armies, ArmyStackEntry{
			UnitName:    stack.UnitType.Name,
			UnitType:    stack.UnitType.UnitType,
			Quantity:    stack.Quantity,
			TotalHealth: stack.TotalHealth,
			IsDeployed:  stack.IsDeployed,
		})
	}

	return snapshot
}

// GetInventory returns the resource view of a run.
func (s *gameService) GetInventory(ctx context.Context, gameID, playerID uint) (*Inventory, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}

	return &Inventory{
		Gold:            game.Gold,
		InsightTokens:   game.InsightTokens,
		HealingDraughts: game.HealingDraughts,
		Weapons:         game.Weapons,
		Potions:         game.Potions,
		SpecialItems:    game.SpecialItems,
	}, nil
}

// SaveGame stamps the last-save marker.
func (s *gameService) SaveGame(ctx context.Context, gameID, playerID uint) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game.PlayerID != playerID {
		return apperrors.New(apperrors.ErrGameNotOwned)
	}
	return s.gameRepo.TouchSave(ctx, gameID)
}

// UseInsightToken spends one token in exchange for guidance.
func (s *gameService) UseInsightToken(ctx context.Context, gameID, playerID uint, question string) (*InsightResult, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}
	if game.InsightTokens <= 0 {
		return nil, apperrors.New(apperrors.ErrNoInsightTokens)
	}

	game.InsightTokens--
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to spend insight token")
	}

	return &InsightResult{
		TokensRemaining: game.InsightTokens,
		Question:        question,
		Message:         "The oracles whisper their guidance...",
	}, nil
}

// ChallengeOracle opens an encounter, moving it to the exploration phase.
func (s *gameService) ChallengeOracle(ctx context.Context, gameID, playerID uint, oracleName string) (*ChallengeResult, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}

	oracle, err := s.oracleRepo.FindByName(ctx, oracleName)
	if err != nil {
		return nil, err
	}

	state, err := s.oracleRepo.FindState(ctx, gameID, oracle.ID)
	if err != nil {
		return nil, err
	}
	if state.IsDefeated {
		return nil, apperrors.New(apperrors.ErrOracleDefeated)
	}

	game.CurrentOracleID = &oracle.ID
	state.CurrentPhase = models.PhaseExploration
	state.RecordInteraction()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.gameRepo.WithTx(tx).(repository.GameRepository).Update(ctx, game); err != nil {
			return err
		}
		return s.oracleRepo.WithTx(tx).(repository.OracleRepository).UpdateState(ctx, state)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to open encounter")
	}

	s.log.Info("oracle challenged",
		zap.Uint("game_id", gameID),
		zap.String("oracle", oracle.Name),
	)

	return &ChallengeResult{
		Oracle: OracleSummary{
			OracleID:     oracle.ID,
			Name:         oracle.Name,
			Domain:       oracle.Domain,
			Title:        oracle.Title,
			Difficulty:   oracle.DifficultyLevel,
			IsDefeated:   state.IsDefeated,
			IsHostile:    state.IsHostile,
			CurrentPhase: state.CurrentPhase,
		},
		Phase:   models.PhaseExploration,
		Message: fmt.Sprintf("You have entered the domain of %s", oracle.Title),
	}, nil
}

// DefeatOracle finalizes a won encounter and pays out rewards.
func (s *gameService) DefeatOracle(ctx context.Context, gameID, playerID, oracleID uint) (*DefeatResult, error) {
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

	state.MarkDefeated()

	if oracle.WeaponReward != "" && !game.Weapons.Contains(oracle.WeaponReward) {
		game.Weapons = append(game.Weapons, oracle.WeaponReward)
	}
	game.InsightTokens += s.cfg.DefeatInsightReward
	game.Gold += s.cfg.DefeatGoldReward
	game.AdvanceStage()

	rewards := DefeatRewards{
		ArmyUnit:       oracle.ArmyUnitReward,
		Weapon:         oracle.WeaponReward,
		SpecialAbility: oracle.SpecialAbility,
		InsightTokens:  s.cfg.DefeatInsightReward,
		Gold:           s.cfg.DefeatGoldReward,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		gameRepo := s.gameRepo.WithTx(tx).(repository.GameRepository)
		oracleRepo := s.oracleRepo.WithTx(tx).(repository.OracleRepository)
		armyRepo := s.armyRepo.WithTx(tx).(repository.ArmyRepository)
		playerRepo := s.playerRepo.WithTx(tx).(repository.PlayerRepository)

		if err := oracleRepo.UpdateState(ctx, state); err != nil {
			return err
		}

		dominion, err := gameRepo.FindDominion(ctx, gameID, oracle.Name)
		if err == nil {
			dominion.IsControlled = true
			now := time.Now()
			dominion.ConqueredAt = &now
			if err := gameRepo.UpdateDominion(ctx, dominion); err != nil {
				return err
			}
		}

		if oracle.ArmyUnitReward != "" {
			unit, err := armyRepo.FindUnitByName(ctx, oracle.ArmyUnitReward)
			if err == nil {
				stack := &models.PlayerArmy{
					GameStateID:     gameID,
					ArmyUnitID:      unit.ID,
					Quantity:        5,
					TotalHealth:     unit.Health * 5,
					Morale:          1.0,
					ExperienceLevel: 1,
					IsDeployed:      false,
				}
				if err := armyRepo.CreateStack(ctx, stack); err != nil {
					return err
				}
			}
		}

		if err := playerRepo.IncrementStats(ctx, playerID, "oracles_defeated", 1); err != nil {
			return err
		}
		if game.IsCompleted {
			if err := playerRepo.IncrementStats(ctx, playerID, "games_won", 1); err != nil {
				return err
			}
		}

		return gameRepo.Update(ctx, game)
	})
	if err != nil {
		s.log.Error("failed to record oracle defeat", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrTransaction, "failed to record oracle defeat")
	}

	s.log.Info("oracle defeated",
		zap.Uint("game_id", gameID),
		zap.String("oracle", oracle.Name),
		zap.Int("oracles_defeated", game.OraclesDefeated),
		zap.Bool("game_completed", game.IsCompleted),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastGameEvent(gameID, "oracle_defeated", map[string]interface{}{
			"oracle_id":        oracleID,
			"oracle_name":      oracle.Name,
			"oracles_defeated": game.OraclesDefeated,
			"current_stage":    game.CurrentStage,
			"game_completed":   game.IsCompleted,
		})
	}

	return &DefeatResult{
		Message: fmt.Sprintf("Oracle %s has been defeated!", oracle.Name),
		Rewards: rewards,
		Progress: DefeatProgress{
			OraclesDefeated: game.OraclesDefeated,
			CurrentStage:    game.CurrentStage,
			GameCompleted:   game.IsCompleted,
		},
	}, nil
}
