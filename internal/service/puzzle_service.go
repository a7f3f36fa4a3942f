package service

import (
	"context"
	"strings"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// puzzleTemplate is one riddle bound to an oracle's domain.
type puzzleTemplate struct {
	PuzzleType  string
	Description string
	Solution    string
	Hints       []string
}

// puzzleTemplates keys riddles by oracle name. Oracles without an
// entry fall back to the default template.
var puzzleTemplates = map[string]puzzleTemplate{
	"Chronos": {
		PuzzleType:  "riddle",
		Description: "I am always coming but never arrive. What am I?",
		Solution:    "tomorrow",
		Hints:       []string{"It lies beyond every sunset.", "Yesterday's opposite.", "You plan for it but never live in it."},
	},
	"Nyx": {
		PuzzleType:  "riddle",
		Description: "The more of me there is, the less you see. What am I?",
		Solution:    "darkness",
		Hints:       []string{"I fill the realm of Nyx.", "Light is my only enemy.", "Close your eyes and find me."},
	},
	"Proteus": {
		PuzzleType:  "pattern",
		Description: "Water, ice, steam, water, ice, ... what comes next?",
		Solution:    "steam",
		Hints:       []string{"The cycle never breaks.", "Three forms, one substance.", "Follow the sequence."},
	},
	"Aresion": {
		PuzzleType:  "riddle",
		Description: "I am won before a single blow is struck, lost before the armies meet. What am I?",
		Solution:    "strategy",
		Hints:       []string{"Generals prize it above steel.", "It lives on maps and in minds.", "Athenaia's gift to warfare."},
	},
	"Athenaia": {
		PuzzleType:  "logic",
		Description: "Two guards: one always lies, one always speaks truth. One question reveals the safe door. What single word names what you must ask about?",
		Solution:    "other",
		Hints:       []string{"Ask one guard about his companion.", "Let the lie cancel itself.", "The answer points away from the truth."},
	},
	"Helios": {
		PuzzleType:  "riddle",
		Description: "I follow you all day yet vanish at noon when my master stands highest. What am I?",
		Solution:    "shadow",
		Hints:       []string{"The sun writes me on the ground.", "I stretch at dawn and dusk.", "Nyx claims my kin."},
	},
	"Boreas": {
		PuzzleType:  "riddle",
		Description: "Born of water, I kill water's flow. Sun's warmth is my death. What am I?",
		Solution:    "ice",
		Hints:       []string{"The frozen wastes are made of me.", "Rivers halt at my touch.", "I am winter's armor."},
	},
	"Gaia": {
		PuzzleType:  "riddle",
		Description: "I drink without a mouth and grow without flesh, yet rooted I remain. What am I?",
		Solution:    "tree",
		Hints:       []string{"The living gardens are full of me.", "My arms hold birds, my feet grip stone.", "Count my rings to know my age."},
	},
	"Themis": {
		PuzzleType:  "riddle",
		Description: "I weigh all things yet have no opinion of my own. What am I?",
		Solution:    "scales",
		Hints:       []string{"Justice holds me aloft.", "Balance is my only law.", "Two pans, one beam."},
	},
	"Echo": {
		PuzzleType:  "riddle",
		Description: "I speak every tongue yet have no voice of my own. What am I?",
		Solution:    "echo",
		Hints:       []string{"Speak to the chamber and listen.", "I return what I am given.", "The oracle's own name."},
	},
	"Selene": {
		PuzzleType:  "pattern",
		Description: "New, crescent, quarter, gibbous, ... what comes next?",
		Solution:    "full",
		Hints:       []string{"Watch the night sky for a month.", "The cycle waxes before it wanes.", "The palace shines brightest then."},
	},
	"DelphiX": {
		PuzzleType:  "riddle",
		Description: "I am told before I happen and doubted until I do. What am I?",
		Solution:    "prophecy",
		Hints:       []string{"The tower's only export.", "Seers trade in me.", "The final oracle's domain."},
	},
	"Typhon": {
		PuzzleType:  "riddle",
		Description: "I have no shape yet I shape all things; order is my child and my enemy. What am I?",
		Solution:    "chaos",
		Hints:       []string{"The abyss churns with me.", "Storms are my laughter.", "The father of monsters rules me."},
	},
}

var defaultPuzzleTemplate = puzzleTemplate{
	PuzzleType:  "riddle",
	Description: "What belongs to you, but others use it more than you do?",
	Solution:    "name",
	Hints:       []string{"You answer to it.", "It was given, not chosen.", "Strangers ask for it first."},
}

// nyxFalseClues are injected into Nyx's puzzle to mislead.
var nyxFalseClues = []string{
	"Path of light leads to treasure",
	"Trust the obvious route",
}

type puzzleService struct {
	db         *gorm.DB
	gameRepo   repository.GameRepository
	oracleRepo repository.OracleRepository
	cfg        *config.PuzzleConfig
	log        *zap.Logger
}

// NewPuzzleService builds the puzzle service.
func NewPuzzleService(
	db *gorm.DB,
	gameRepo repository.GameRepository,
	oracleRepo repository.OracleRepository,
	cfg *config.PuzzleConfig,
	log *zap.Logger,
) PuzzleService {
	return &puzzleService{
		db:         db,
		gameRepo:   gameRepo,
		oracleRepo: oracleRepo,
		cfg:        cfg,
		log:        log,
	}
}

// GetPuzzle returns the active puzzle, generating and persisting one on
// first request. Entering the puzzle also moves the encounter phase.
func (s *puzzleService) GetPuzzle(ctx context.Context, gameID, playerID, oracleID uint) (*Puzzle, error) {
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
	if state.CurrentPhase == models.PhaseLocked {
		return nil, apperrors.New(apperrors.ErrOracleNotChallenged)
	}

	if _, ok := state.PuzzleState["solution"]; !ok {
		s.generatePuzzle(state, oracle)
		state.CurrentPhase = models.PhasePuzzle
		if err := s.oracleRepo.UpdateState(ctx, state); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to persist puzzle")
		}
	}

	return s.toPuzzle(state, oracle), nil
}

// generatePuzzle fills the puzzle state from the oracle's template.
func (s *puzzleService) generatePuzzle(state *models.OracleState, oracle *models.Oracle) {
	template, ok := puzzleTemplates[oracle.Name]
	if !ok {
		template = defaultPuzzleTemplate
	}

	hints := template.Hints
	if len(hints) > s.cfg.MaxHints {
		hints = hints[:s.cfg.MaxHints]
	}

	puzzleState := models.JSONMap{
		"puzzle_type": template.PuzzleType,
		"description": template.Description,
		"solution":    template.Solution,
		"hints":       toInterfaceSlice(hints),
		"difficulty":  oracle.DifficultyLevel,
		"attempts":    0,
		"issued_at":   time.Now().Unix(),
	}

	// Nyx corrupts the playfield with lies.
	if oracle.Name == "Nyx" {
		puzzleState["false_clues"] = toInterfaceSlice(nyxFalseClues)
	}
	// Chronos puts the answer on a clock.
	if oracle.Name == "Chronos" {
		puzzleState["time_limit"] = int(s.cfg.ChronosTimeLimit.Seconds())
	}

	state.PuzzleState = puzzleState
}

// SolvePuzzle checks a submitted solution. Every submission counts as
// an attempt, correct or not.
func (s *puzzleService) SolvePuzzle(ctx context.Context, gameID, playerID uint, req *PuzzleSolutionRequest) (*PuzzleResult, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, apperrors.New(apperrors.ErrGameNotOwned)
	}

	state, err := s.findStateByID(ctx, gameID, req.OracleStateID)
	if err != nil {
		return nil, err
	}
	if state.IsDefeated {
		return nil, apperrors.New(apperrors.ErrOracleDefeated)
	}

	solution, ok := state.PuzzleState["solution"].(string)
	if !ok || solution == "" {
		return nil, apperrors.New(apperrors.ErrPuzzleNotFound)
	}

	if limit, ok := asInt(state.PuzzleState["time_limit"]); ok && limit > 0 {
		if issued, ok := asInt(state.PuzzleState["issued_at"]); ok {
			if time.Now().Unix() > int64(issued)+int64(limit) {
				return nil, apperrors.New(apperrors.ErrPuzzleExpired)
			}
		}
	}

	attempts, _ := asInt(state.PuzzleState["attempts"])
	attempts++
	state.PuzzleState["attempts"] = attempts

	correct := normalizeSolution(req.Solution) == normalizeSolution(solution)

	result := &PuzzleResult{
		Correct:  correct,
		Attempts: attempts,
	}

	if correct {
		state.CurrentPhase = models.PhaseBattle
		result.NextPhase = models.PhaseBattle
		result.Message = "The oracle's riddle shatters. Prepare for battle!"
	} else {
		result.NextPhase = state.CurrentPhase
		result.Message = "The oracle shakes its head. Try again."
	}

	if err := s.oracleRepo.UpdateState(ctx, state); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "failed to record puzzle attempt")
	}

	s.log.Info("puzzle attempt",
		zap.Uint("game_id", gameID),
		zap.Uint("oracle_state_id", state.ID),
		zap.Bool("correct", correct),
		zap.Int("attempts", attempts),
	)

	return result, nil
}

func (s *puzzleService) findStateByID(ctx context.Context, gameID, oracleStateID uint) (*models.OracleState, error) {
	states, err := s.oracleRepo.ListStates(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, state := range states {
		if state.ID == oracleStateID {
			return state, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrOracleNotFound)
}

func (s *puzzleService) toPuzzle(state *models.OracleState, oracle *models.Oracle) *Puzzle {
	puzzle := &Puzzle{
		OracleStateID: state.ID,
		OracleName:    oracle.Name,
		Difficulty:    oracle.DifficultyLevel,
	}

	if v, ok := state.PuzzleState["puzzle_type"].(string); ok {
		puzzle.PuzzleType = v
	}
	if v, ok := state.PuzzleState["description"].(string); ok {
		puzzle.Description = v
	}
	puzzle.Hints = toStringSlice(state.PuzzleState["hints"])
	puzzle.FalseClues = toStringSlice(state.PuzzleState["false_clues"])
	if v, ok := asInt(state.PuzzleState["time_limit"]); ok {
		puzzle.TimeLimit = v
	}
	if v, ok := asInt(state.PuzzleState["attempts"]); ok {
		puzzle.Attempts = v
	}

	return puzzle
}

// normalizeSolution lowercases and trims so "The Tomorrow " matches "tomorrow".
func normalizeSolution(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, "the ")
	normalized = strings.TrimPrefix(normalized, "a ")
	normalized = strings.TrimPrefix(normalized, "an ")
	return strings.TrimSpace(normalized)
}

func toInterfaceSlice(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

func toStringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// asInt tolerates the numeric types JSON round-tripping produces.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
