package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Season{},
		&XpEvent{},
		&XpType{},
		&XpGrant{},
		&AchievementConfig{},
		&UnlockedAchievement{},
		&GrantLimitConfig{},
	)
	if err != nil {
		return err
	}

	// At most one active season, whatever the caller does.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_seasons_single_active ON seasons (active) WHERE active`).Error
}

// InitExternalTables creates the tables owned by the HR and evaluation modules.
// Only tests and local setups call it.
func InitExternalTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Attendant{},
		&Evaluation{},
		&Holiday{},
	)
}
