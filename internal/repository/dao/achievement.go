package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAchievementNotFound = errors.New("achievement not found")

type AchievementConfig struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	XpReward    int            `gorm:"not null;default:0"`
	Active      bool           `gorm:"not null;default:true;index"`
	Criteria    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type UnlockedAchievement struct {
	ID            uint              `gorm:"primaryKey"`
	AttendantID   uint              `gorm:"not null;uniqueIndex:uni_unlocked_attendant_achievement,priority:1"`
	AchievementID uint              `gorm:"not null;uniqueIndex:uni_unlocked_attendant_achievement,priority:2"`
	Achievement   AchievementConfig `gorm:"foreignKey:AchievementID"`
	SeasonID      *uint             `gorm:"index"`
	XpGained      int               `gorm:"not null;default:0"`
	UnlockedAt    time.Time         `gorm:"not null"`
}

type AchievementDAO struct {
	db *gorm.DB
}

func NewAchievementDAO(db *gorm.DB) *AchievementDAO {
	return &AchievementDAO{
		db: db,
	}
}

func (d *AchievementDAO) Insert(ctx context.Context, achievement AchievementConfig) (AchievementConfig, error) {
	if err := conn(ctx, d.db).Create(&achievement).Error; err != nil {
		return AchievementConfig{}, err
	}

	return achievement, nil
}

func (d *AchievementDAO) Update(ctx context.Context, achievement AchievementConfig) (AchievementConfig, error) {
	result := conn(ctx, d.db).Model(&AchievementConfig{ID: achievement.ID}).Updates(map[string]any{
		"title":       achievement.Title,
		"description": achievement.Description,
		"xp_reward":   achievement.XpReward,
		"criteria":    achievement.Criteria,
	})
	if result.Error != nil {
		return AchievementConfig{}, result.Error
	}
	if result.RowsAffected == 0 {
		return AchievementConfig{}, ErrAchievementNotFound
	}

	return d.FindByID(ctx, achievement.ID)
}

func (d *AchievementDAO) SetActive(ctx context.Context, id uint, active bool) error {
	result := conn(ctx, d.db).Model(&AchievementConfig{ID: id}).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAchievementNotFound
	}

	return nil
}

func (d *AchievementDAO) FindByID(ctx context.Context, id uint) (AchievementConfig, error) {
	var achievement AchievementConfig

	result := conn(ctx, d.db).First(&achievement, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AchievementConfig{}, ErrAchievementNotFound
		}

		return AchievementConfig{}, result.Error
	}

	return achievement, nil
}

func (d *AchievementDAO) List(ctx context.Context, activeOnly bool) ([]AchievementConfig, error) {
	var achievements []AchievementConfig

	q := conn(ctx, d.db)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	return achievements, nil
}

// InsertUnlock records the unlock unless the (attendant, achievement) pair
// already exists. It reports whether a row was written.
func (d *AchievementDAO) InsertUnlock(ctx context.Context, unlock UnlockedAchievement) (UnlockedAchievement, bool, error) {
	result := conn(ctx, d.db).
		Omit("Achievement").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attendant_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&unlock)
	if result.Error != nil {
		return UnlockedAchievement{}, false, result.Error
	}

	return unlock, result.RowsAffected > 0, nil
}

func (d *AchievementDAO) ListUnlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]UnlockedAchievement, error) {
	var unlocked []UnlockedAchievement

	q := conn(ctx, d.db).Preload("Achievement").Where("attendant_id = ?", attendantID)
	if seasonID != nil {
		q = q.Where("season_id = ?", *seasonID)
	}
	if err := q.Order("unlocked_at ASC, id ASC").Find(&unlocked).Error; err != nil {
		return nil, err
	}

	return unlocked, nil
}

func (d *AchievementDAO) UnlockedIDs(ctx context.Context, attendantID uint) ([]uint, error) {
	var ids []uint

	err := conn(ctx, d.db).Model(&UnlockedAchievement{}).
		Where("attendant_id = ?", attendantID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
