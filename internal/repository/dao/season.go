package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrSeasonNotFound = errors.New("season not found")

type Season struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"not null"`
	StartDate  time.Time `gorm:"not null;index"`
	EndDate    time.Time `gorm:"not null;index"`
	Active     bool      `gorm:"not null;default:false"`
	Multiplier float64   `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type SeasonDAO struct {
	db *gorm.DB
}

func NewSeasonDAO(db *gorm.DB) *SeasonDAO {
	return &SeasonDAO{
		db: db,
	}
}

func (d *SeasonDAO) Insert(ctx context.Context, season Season) (Season, error) {
	if err := conn(ctx, d.db).Create(&season).Error; err != nil {
		return Season{}, err
	}

	return season, nil
}

func (d *SeasonDAO) Update(ctx context.Context, season Season) (Season, error) {
	result := conn(ctx, d.db).Model(&Season{ID: season.ID}).Updates(map[string]any{
		"name":       season.Name,
		"start_date": season.StartDate,
		"end_date":   season.EndDate,
		"multiplier": season.Multiplier,
	})
	if result.Error != nil {
		return Season{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Season{}, ErrSeasonNotFound
	}

	return d.FindByID(ctx, season.ID)
}

func (d *SeasonDAO) UpdateMultiplier(ctx context.Context, id uint, multiplier float64) error {
	result := conn(ctx, d.db).Model(&Season{ID: id}).Update("multiplier", multiplier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSeasonNotFound
	}

	return nil
}

func (d *SeasonDAO) FindByID(ctx context.Context, id uint) (Season, error) {
	var season Season

	result := conn(ctx, d.db).First(&season, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Season{}, ErrSeasonNotFound
		}

		return Season{}, result.Error
	}

	return season, nil
}

func (d *SeasonDAO) FindActive(ctx context.Context) (Season, error) {
	var season Season

	result := conn(ctx, d.db).Where("active = ?", true).First(&season)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Season{}, ErrSeasonNotFound
		}

		return Season{}, result.Error
	}

	return season, nil
}

func (d *SeasonDAO) List(ctx context.Context) ([]Season, error) {
	var seasons []Season

	if err := conn(ctx, d.db).Order("start_date DESC, id DESC").Find(&seasons).Error; err != nil {
		return nil, err
	}

	return seasons, nil
}

// FindOverlapping returns seasons whose closed window intersects [start, end],
// ignoring excludeID.
func (d *SeasonDAO) FindOverlapping(ctx context.Context, start, end time.Time, excludeID uint) ([]Season, error) {
	var seasons []Season

	err := conn(ctx, d.db).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Where("id <> ?", excludeID).
		Order("start_date ASC").
		Find(&seasons).Error
	if err != nil {
		return nil, err
	}

	return seasons, nil
}

func (d *SeasonDAO) DeactivateAll(ctx context.Context) error {
	return conn(ctx, d.db).Model(&Season{}).Where("active = ?", true).Update("active", false).Error
}

func (d *SeasonDAO) SetActive(ctx context.Context, id uint, active bool) error {
	result := conn(ctx, d.db).Model(&Season{ID: id}).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSeasonNotFound
	}

	return nil
}

func (d *SeasonDAO) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&Season{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSeasonNotFound
	}

	return nil
}
