package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAttendantNotFound  = errors.New("attendant not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
)

// Attendant, Evaluation and Holiday map tables owned by other modules. They
// are only read here.
type Attendant struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Evaluation struct {
	ID          uint      `gorm:"primaryKey"`
	AttendantID uint      `gorm:"not null;index:idx_evaluations_attendant_created,priority:1"`
	Rating      int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index:idx_evaluations_attendant_created,priority:2"`
}

type Holiday struct {
	ID   uint      `gorm:"primaryKey"`
	Date time.Time `gorm:"type:date;not null;uniqueIndex"`
	Name string    `gorm:"not null"`
}

// RatingStats summarizes every evaluation of one attendant.
type RatingStats struct {
	Count   int
	Average float64
}

type DirectoryDAO struct {
	db *gorm.DB
}

func NewDirectoryDAO(db *gorm.DB) *DirectoryDAO {
	return &DirectoryDAO{
		db: db,
	}
}

func (d *DirectoryDAO) FindAttendant(ctx context.Context, id uint) (Attendant, error) {
	var attendant Attendant

	result := conn(ctx, d.db).First(&attendant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendant{}, ErrAttendantNotFound
		}

		return Attendant{}, result.Error
	}

	return attendant, nil
}

func (d *DirectoryDAO) FindEvaluation(ctx context.Context, id uint) (Evaluation, error) {
	var evaluation Evaluation

	result := conn(ctx, d.db).First(&evaluation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Evaluation{}, ErrEvaluationNotFound
		}

		return Evaluation{}, result.Error
	}

	return evaluation, nil
}

// RecentRatings returns up to n ratings, newest first.
func (d *DirectoryDAO) RecentRatings(ctx context.Context, attendantID uint, n int) ([]int, error) {
	var ratings []int

	err := conn(ctx, d.db).Model(&Evaluation{}).
		Where("attendant_id = ?", attendantID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (d *DirectoryDAO) RatingStats(ctx context.Context, attendantID uint) (RatingStats, error) {
	var stats RatingStats

	err := conn(ctx, d.db).Model(&Evaluation{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("attendant_id = ?", attendantID).
		Scan(&stats).Error
	if err != nil {
		return RatingStats{}, err
	}

	return stats, nil
}

func (d *DirectoryDAO) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	var count int64

	err := conn(ctx, d.db).Model(&Holiday{}).
		Where("date = ?", day.Format(time.DateOnly)).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
