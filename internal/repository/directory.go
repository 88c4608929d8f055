package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

var (
	ErrAttendantNotFound  = dao.ErrAttendantNotFound
	ErrEvaluationNotFound = dao.ErrEvaluationNotFound
)

type DirectoryDAO interface {
	FindAttendant(ctx context.Context, id uint) (dao.Attendant, error)
	FindEvaluation(ctx context.Context, id uint) (dao.Evaluation, error)
	RecentRatings(ctx context.Context, attendantID uint, n int) ([]int, error)
	RatingStats(ctx context.Context, attendantID uint) (dao.RatingStats, error)
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
}

// DirectoryRepository reads the attendant, evaluation and holiday records
// maintained by the HR side of the application.
type DirectoryRepository struct {
	dao DirectoryDAO
}

func NewDirectoryRepository(dao DirectoryDAO) *DirectoryRepository {
	return &DirectoryRepository{
		dao: dao,
	}
}

func (r *DirectoryRepository) FindAttendant(ctx context.Context, id uint) (domain.Attendant, error) {
	found, err := r.dao.FindAttendant(ctx, id)
	if err != nil {
		return domain.Attendant{}, fmt.Errorf("r.dao.FindAttendant -> %w", err)
	}

	return domain.Attendant{ID: found.ID, Name: found.Name, Active: found.Active}, nil
}

func (r *DirectoryRepository) FindEvaluation(ctx context.Context, id uint) (domain.Evaluation, error) {
	found, err := r.dao.FindEvaluation(ctx, id)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("r.dao.FindEvaluation -> %w", err)
	}

	return domain.Evaluation{
		ID:          found.ID,
		AttendantID: found.AttendantID,
		Rating:      found.Rating,
		CreatedAt:   found.CreatedAt,
	}, nil
}

func (r *DirectoryRepository) RecentRatings(ctx context.Context, attendantID uint, n int) ([]int, error) {
	ratings, err := r.dao.RecentRatings(ctx, attendantID, n)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RecentRatings -> %w", err)
	}

	return ratings, nil
}

// RatingStats returns the number of evaluations and their mean rating.
func (r *DirectoryRepository) RatingStats(ctx context.Context, attendantID uint) (int, float64, error) {
	stats, err := r.dao.RatingStats(ctx, attendantID)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.RatingStats -> %w", err)
	}

	return stats.Count, stats.Average, nil
}

// IsHoliday implements the grant engine's holiday calendar on the holidays table.
func (r *DirectoryRepository) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	holiday, err := r.dao.IsHoliday(ctx, day)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsHoliday -> %w", err)
	}

	return holiday, nil
}
