package models

import "time"

// Army unit categories.
const (
	UnitTypeInfantry = "infantry"
	UnitTypeCavalry  = "cavalry"
	UnitTypeArcher   = "archer"
	UnitTypeSpecial  = "special"
)

// ArmyUnit is a recruitable unit type definition.
type ArmyUnit struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	UnitType     string `gorm:"size:50;not null" json:"unit_type"`
	Description  string `gorm:"type:text" json:"description"`
	OriginOracle string `gorm:"size:100" json:"origin_oracle"`

	Attack  int `gorm:"default:10" json:"attack"`
	Defense int `gorm:"default:10" json:"defense"`
	Health  int `gorm:"default:100" json:"health"`
	Speed   int `gorm:"default:5" json:"speed"`

	SpecialAbilities StringList `gorm:"type:text" json:"special_abilities"`
	ElementAffinity  string     `gorm:"size:50" json:"element_affinity"`

	RecruitmentCost int    `gorm:"default:50" json:"recruitment_cost"`
	Rarity          string `gorm:"size:20;default:'common'" json:"rarity"`

	CreatedAt time.Time `json:"created_at"`
}

// PlayerArmy is a stack of one unit type within a run.
type PlayerArmy struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	GameStateID uint `gorm:"index;not null" json:"game_state_id"`
	ArmyUnitID  uint `gorm:"index;not null" json:"army_unit_id"`

	Quantity    int `gorm:"default:1" json:"quantity"`
	TotalHealth int `json:"total_health"`

	Morale          float64 `gorm:"default:1" json:"morale"`
	ExperienceLevel int     `gorm:"default:1" json:"experience_level"`

	IsDeployed      bool   `gorm:"default:false" json:"is_deployed"`
	CurrentLocation string `gorm:"size:100" json:"current_location"`

	RecruitedAt time.Time `json:"recruited_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	UnitType ArmyUnit `gorm:"foreignKey:ArmyUnitID" json:"unit_type,omitempty"`
}

// TableName maps ArmyUnit to its table.
func (ArmyUnit) TableName() string {
	return "army_units"
}

// TableName maps PlayerArmy to its table.
func (PlayerArmy) TableName() string {
	return "player_armies"
}
