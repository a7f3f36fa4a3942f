package service

import (
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/database"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// openTestDB builds an in-memory database with all tables migrated and
// the static oracle and unit rows seeded.
func openTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, err
	}

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
	if err != nil {
		return nil, err
	}

	for i, pair := range database.DominionNames {
		oracle := models.Oracle{
			Name:            pair[1],
			Domain:          pair[1],
			Title:           "Oracle of " + pair[1],
			DifficultyLevel: i + 1,
			UnlockOrder:     i + 1,
		}
		if pair[1] == "Chronos" {
			oracle.Domain = "Time"
			oracle.Title = "Oracle of Time and Fate"
			oracle.ArmyUnitReward = "Temporal Guards"
			oracle.WeaponReward = "Temporal Dagger"
			oracle.SpecialAbility = "Time Dilation"
		}
		if err := db.Create(&oracle).Error; err != nil {
			return nil, err
		}
	}

	units := []models.ArmyUnit{
		{Name: "Novice Soldiers", UnitType: models.UnitTypeInfantry, Attack: 10, Defense: 10, Health: 100, Speed: 5, Rarity: "common"},
		{Name: "Temporal Guards", UnitType: models.UnitTypeSpecial, OriginOracle: "Chronos", Attack: 20, Defense: 15, Health: 120, Speed: 6, Rarity: "rare"},
	}
	for _, unit := range units {
		if err := db.Create(&unit).Error; err != nil {
			return nil, err
		}
	}

	return db, nil
}

// resetGameTables clears the per-run tables, keeping the seeded
// oracles and unit catalog.
func resetGameTables(db *gorm.DB) {
	db.Exec("DELETE FROM player_armies")
	db.Exec("DELETE FROM dominion_states")
	db.Exec("DELETE FROM oracle_states")
	db.Exec("DELETE FROM game_states")
	db.Exec("DELETE FROM player_sessions")
	db.Exec("DELETE FROM players")
}
