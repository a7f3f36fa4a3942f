package models

import "time"

// Oracle encounter phases.
const (
	PhaseLocked        = "locked"
	PhaseExploration   = "exploration"
	PhasePuzzle        = "puzzle"
	PhaseBattle        = "battle"
	PhaseConfrontation = "confrontation"
	PhaseDefeated      = "defeated"
)

// Oracle is the static definition of one of the thirteen oracles.
type Oracle struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Domain      string `gorm:"size:100;not null" json:"domain"`
	Title       string `gorm:"size:200" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Lore        string `gorm:"type:text" json:"lore"`

	DifficultyLevel int `gorm:"default:1" json:"difficulty_level"`
	UnlockOrder     int `json:"unlock_order"`

	ArmyUnitReward string `gorm:"size:100" json:"army_unit_reward"`
	WeaponReward   string `gorm:"size:100" json:"weapon_reward"`
	SpecialAbility string `gorm:"size:100" json:"special_ability"`

	CreatedAt time.Time `json:"created_at"`
}

// OracleState is the per-run encounter state for one oracle.
type OracleState struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	GameStateID uint `gorm:"index;not null" json:"game_state_id"`
	OracleID    uint `gorm:"index;not null" json:"oracle_id"`

	IsDefeated bool `gorm:"default:false" json:"is_defeated"`
	IsHostile  bool `gorm:"default:true" json:"is_hostile"`
	IsAllied   bool `gorm:"default:false" json:"is_allied"`

	InteractionsCount int        `gorm:"default:0" json:"interactions_count"`
	LastInteraction   *time.Time `json:"last_interaction,omitempty"`

	CurrentPhase string  `gorm:"size:50;default:'locked'" json:"current_phase"`
	PuzzleState  JSONMap `gorm:"type:text" json:"puzzle_state"`
	BattleState  JSONMap `gorm:"type:text" json:"battle_state"`

	DiplomaticStance float64 `gorm:"default:0" json:"diplomatic_stance"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DefeatedAt *time.Time `json:"defeated_at,omitempty"`

	Oracle Oracle `gorm:"foreignKey:OracleID" json:"oracle,omitempty"`
}

// TableName maps Oracle to its table.
func (Oracle) TableName() string {
	return "oracles"
}

// TableName maps OracleState to its table.
func (OracleState) TableName() string {
	return "oracle_states"
}

// MarkDefeated transitions the encounter to its terminal state.
func (s *OracleState) MarkDefeated() {
	s.IsDefeated = true
	s.IsHostile = false
	s.CurrentPhase = PhaseDefeated
	now := time.Now()
	s.DefeatedAt = &now
}

// RecordInteraction bumps the interaction counter.
func (s *OracleState) RecordInteraction() {
	s.InteractionsCount++
	now := time.Now()
	s.LastInteraction = &now
}
