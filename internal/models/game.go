package models

import "time"

// Game status phases over a run.
const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// TotalOracles is the number of oracles in a full campaign.
const TotalOracles = 13

// GameState is the main per-run session state.
type GameState struct {
	BaseModel
	PlayerID        uint  `gorm:"index;not null" json:"player_id"`
	CurrentStage    int   `gorm:"default:1" json:"current_stage"`
	OraclesDefeated int   `gorm:"default:0" json:"oracles_defeated"`
	CurrentOracleID *uint `json:"current_oracle_id,omitempty"`

	Gold            int `gorm:"default:100" json:"gold"`
	InsightTokens   int `gorm:"default:1" json:"insight_tokens"`
	HealingDraughts int `gorm:"default:1" json:"healing_draughts"`

	Weapons      StringList `gorm:"type:text" json:"weapons"`
	SpecialItems StringList `gorm:"type:text" json:"special_items"`
	Potions      StringList `gorm:"type:text" json:"potions"`

	IsActive        bool   `gorm:"default:true" json:"is_active"`
	IsCompleted     bool   `gorm:"default:false" json:"is_completed"`
	DifficultyLevel string `gorm:"size:20;default:'normal'" json:"difficulty_level"`

	WorldState   JSONMap    `gorm:"type:text" json:"world_state"`
	ActiveEvents StringList `gorm:"type:text" json:"active_events"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastSave    time.Time  `json:"last_save"`

	OracleStates   []OracleState   `gorm:"foreignKey:GameStateID" json:"oracle_states,omitempty"`
	DominionStates []DominionState `gorm:"foreignKey:GameStateID" json:"dominion_states,omitempty"`
	PlayerArmies   []PlayerArmy    `gorm:"foreignKey:GameStateID" json:"player_armies,omitempty"`
}

// DominionState is the per-run state of one floating dominion.
type DominionState struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	GameStateID uint   `gorm:"index;not null" json:"game_state_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	OracleName  string `gorm:"size:100;not null" json:"oracle_name"`

	IsControlled bool `gorm:"default:false" json:"is_controlled"`
	IsAccessible bool `gorm:"default:true" json:"is_accessible"`

	ResourceBonus JSONMap    `gorm:"type:text" json:"resource_bonus"`
	ExploredAreas StringList `gorm:"type:text" json:"explored_areas"`

	ConqueredAt *time.Time `json:"conquered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName maps GameState to its table.
func (GameState) TableName() string {
	return "game_states"
}

// TableName maps DominionState to its table.
func (DominionState) TableName() string {
	return "dominion_states"
}

// AdvanceStage recomputes stage from defeat count and flags completion.
func (g *GameState) AdvanceStage() {
	g.OraclesDefeated++
	g.CurrentStage = g.OraclesDefeated + 1
	if g.OraclesDefeated >= TotalOracles {
		g.IsCompleted = true
		now := time.Now()
		g.CompletedAt = &now
	}
}
