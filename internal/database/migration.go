package database

import (
	"fmt"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/logger"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate creates or updates all tables.
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	migrationModels := []interface{}{
		// accounts
		&models.Player{},
		&models.PlayerSession{},

		// campaign state
		&models.GameState{},
		&models.DominionState{},

		// oracles
		&models.Oracle{},
		&models.OracleState{},

		// armies
		&models.ArmyUnit{},
		&models.PlayerArmy{},
	}

	logger.Info("running database migration")

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("migration failed",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
	}

	logger.Info("database migration complete")
	return nil
}

// oracleSeed defines one of the thirteen oracles.
type oracleSeed struct {
	Name           string
	Domain         string
	Title          string
	Description    string
	Difficulty     int
	ArmyUnitReward string
	WeaponReward   string
	SpecialAbility string
}

var oracleSeeds = []oracleSeed{
	{"Chronos", "Time", "Oracle of Time and Fate", "Master of temporal currents who sees every thread of what was and will be.", 1, "Temporal Guards", "Temporal Dagger", "Time Dilation"},
	{"Nyx", "Shadow", "Oracle of Night and Deception", "Weaver of lies whose domain swallows light and truth alike.", 2, "Night Stalkers", "Shadowfang Blade", "Veil of Lies"},
	{"Proteus", "Illusion", "Oracle of Shifting Forms", "The ever-changing one, never wearing the same face twice.", 3, "Mirage Dancers", "Mirror Lance", "Shapeshift"},
	{"Aresion", "War", "Oracle of Endless Battle", "Warlord of the citadel where conflict never sleeps.", 4, "Battle Champions", "Warbringer Axe", "Battle Fury"},
	{"Athenaia", "Wisdom", "Oracle of Strategy and Craft", "Keeper of the acropolis and patron of cunning minds.", 5, "Owl Sentinels", "Aegis Spear", "Strategic Insight"},
	{"Helios", "Sun", "Oracle of the Burning Spire", "Radiant sovereign whose gaze scorches the unworthy.", 6, "Solar Legionnaires", "Dawnfire Saber", "Solar Flare"},
	{"Boreas", "Ice", "Oracle of the Frozen Wastes", "Cold sovereign of the northern winds.", 7, "Frost Hoplites", "Glacier Maul", "Absolute Zero"},
	{"Gaia", "Earth", "Oracle of the Living Gardens", "Mother of growing things and shifting stone.", 8, "Grove Wardens", "Thornroot Staff", "Earthen Bulwark"},
	{"Themis", "Justice", "Oracle of Balance", "Arbiter whose scales weigh every deed.", 9, "Scale Keepers", "Verdict Blade", "Judgement"},
	{"Echo", "Sound", "Oracle of Resonance", "Voice of the chamber where every word returns changed.", 10, "Resonance Heralds", "Sonic Glaive", "Reverberation"},
	{"Selene", "Moon", "Oracle of the Lunar Palace", "Silver queen of tides and dreams.", 11, "Lunar Sentries", "Moonlit Bow", "Lunar Tide"},
	{"DelphiX", "Prophecy", "Oracle of the Final Tower", "Seer of seers, keeper of the last prophecy.", 12, "Prophecy Wardens", "Fateweaver Rod", "Foresight"},
	{"Typhon", "Chaos", "Oracle of the Abyss", "The storm given mind, father of monsters.", 13, "Chaos Spawn", "Stormbreaker", "Primordial Storm"},
}

// armyUnitSeed defines a recruitable unit template.
type armyUnitSeed struct {
	Name         string
	UnitType     string
	OriginOracle string
	Attack       int
	Defense      int
	Health       int
	Speed        int
	Rarity       string
}

var armyUnitSeeds = []armyUnitSeed{
	{"Novice Soldiers", models.UnitTypeInfantry, "", 10, 10, 100, 5, "common"},
	{"Temporal Guards", models.UnitTypeSpecial, "Chronos", 20, 15, 120, 6, "rare"},
	{"Night Stalkers", models.UnitTypeArcher, "Nyx", 18, 12, 90, 8, "rare"},
	{"Mirage Dancers", models.UnitTypeSpecial, "Proteus", 16, 10, 85, 9, "rare"},
	{"Battle Champions", models.UnitTypeInfantry, "Aresion", 30, 25, 200, 5, "rare"},
	{"Owl Sentinels", models.UnitTypeArcher, "Athenaia", 19, 16, 110, 7, "rare"},
	{"Solar Legionnaires", models.UnitTypeInfantry, "Helios", 24, 18, 140, 6, "rare"},
	{"Frost Hoplites", models.UnitTypeInfantry, "Boreas", 22, 22, 160, 4, "rare"},
	{"Grove Wardens", models.UnitTypeSpecial, "Gaia", 17, 24, 180, 3, "rare"},
	{"Scale Keepers", models.UnitTypeCavalry, "Themis", 21, 19, 150, 7, "rare"},
	{"Resonance Heralds", models.UnitTypeSpecial, "Echo", 23, 14, 100, 8, "rare"},
	{"Lunar Sentries", models.UnitTypeArcher, "Selene", 25, 15, 120, 9, "legendary"},
	{"Prophecy Wardens", models.UnitTypeSpecial, "DelphiX", 28, 22, 170, 7, "legendary"},
	{"Chaos Spawn", models.UnitTypeSpecial, "Typhon", 35, 20, 220, 8, "legendary"},
}

// SeedOracles loads the static oracle and unit tables if empty.
func SeedOracles() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	var oracleCount int64
	if err := DB.Model(&models.Oracle{}).Count(&oracleCount).Error; err != nil {
		return err
	}

	if oracleCount == 0 {
		for i, seed := range oracleSeeds {
			oracle := models.Oracle{
				Name:            seed.Name,
				Domain:          seed.Domain,
				Title:           seed.Title,
				Description:     seed.Description,
				DifficultyLevel: seed.Difficulty,
				UnlockOrder:     i + 1,
				ArmyUnitReward:  seed.ArmyUnitReward,
				WeaponReward:    seed.WeaponReward,
				SpecialAbility:  seed.SpecialAbility,
			}
			if err := DB.Create(&oracle).Error; err != nil {
				return fmt.Errorf("failed to seed oracle %s: %w", seed.Name, err)
			}
		}
		logger.Info("seeded oracles", zap.Int("count", len(oracleSeeds)))
	}

	var unitCount int64
	if err := DB.Model(&models.ArmyUnit{}).Count(&unitCount).Error; err != nil {
		return err
	}

	if unitCount == 0 {
		for _, seed := range armyUnitSeeds {
			unit := models.ArmyUnit{
				Name:         seed.Name,
				UnitType:     seed.UnitType,
				OriginOracle: seed.OriginOracle,
				Attack:       seed.Attack,
				Defense:      seed.Defense,
				Health:       seed.Health,
				Speed:        seed.Speed,
				Rarity:       seed.Rarity,
			}
			if err := DB.Create(&unit).Error; err != nil {
				return fmt.Errorf("failed to seed army unit %s: %w", seed.Name, err)
			}
		}
		logger.Info("seeded army units", zap.Int("count", len(armyUnitSeeds)))
	}

	return nil
}

// DominionNames pairs each dominion with its ruling oracle, in campaign order.
var DominionNames = [][2]string{
	{"Chronos Domain", "Chronos"},
	{"Shadow Realm of Nyx", "Nyx"},
	{"Proteus Mirage", "Proteus"},
	{"Aresion War Citadel", "Aresion"},
	{"Athenaia's Acropolis", "Athenaia"},
	{"Helios Solar Spire", "Helios"},
	{"Boreas Frozen Wastes", "Boreas"},
	{"Gaia's Living Gardens", "Gaia"},
	{"Themis Hall of Balance", "Themis"},
	{"Echo's Resonance Chamber", "Echo"},
	{"Selene's Lunar Palace", "Selene"},
	{"DelphiX Oracle Tower", "DelphiX"},
	{"Typhon's Chaos Abyss", "Typhon"},
}
