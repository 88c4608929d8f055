package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrGrantLimitConfigNotFound = errors.New("grant limit config not found")

// grantLimitConfigID pins the single installation-wide row.
const grantLimitConfigID = 1

type GrantLimitConfig struct {
	ID                    uint `gorm:"primaryKey"`
	DailyLimitPoints      int  `gorm:"not null"`
	DailyLimitGrants      int  `gorm:"not null"`
	MinPointsPerGrant     int  `gorm:"not null"`
	MaxPointsPerGrant     int  `gorm:"not null"`
	MaxGrantsPerAttendant int  `gorm:"not null"`
	CooldownMinutes       int  `gorm:"not null;default:0"`
	RequireJustification  bool `gorm:"not null"`
	AllowWeekendGrants    bool `gorm:"not null"`
	AllowHolidayGrants    bool `gorm:"not null"`
	AutoApproveLimit      int  `gorm:"not null;default:0"`
	UpdatedBy             uint
	UpdatedAt             time.Time `gorm:"not null"`
}

type GrantLimitDAO struct {
	db *gorm.DB
}

func NewGrantLimitDAO(db *gorm.DB) *GrantLimitDAO {
	return &GrantLimitDAO{
		db: db,
	}
}

func (d *GrantLimitDAO) Get(ctx context.Context) (GrantLimitConfig, error) {
	var limits GrantLimitConfig

	result := conn(ctx, d.db).First(&limits, grantLimitConfigID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return GrantLimitConfig{}, ErrGrantLimitConfigNotFound
		}

		return GrantLimitConfig{}, result.Error
	}

	return limits, nil
}

func (d *GrantLimitDAO) Save(ctx context.Context, limits GrantLimitConfig) (GrantLimitConfig, error) {
	limits.ID = grantLimitConfigID
	if err := conn(ctx, d.db).Save(&limits).Error; err != nil {
		return GrantLimitConfig{}, err
	}

	return limits, nil
}
