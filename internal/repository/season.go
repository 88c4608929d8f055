package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

var ErrSeasonNotFound = dao.ErrSeasonNotFound

type SeasonDAO interface {
	Insert(ctx context.Context, season dao.Season) (dao.Season, error)
	Update(ctx context.Context, season dao.Season) (dao.Season, error)
	UpdateMultiplier(ctx context.Context, id uint, multiplier float64) error
	FindByID(ctx context.Context, id uint) (dao.Season, error)
	FindActive(ctx context.Context) (dao.Season, error)
	List(ctx context.Context) ([]dao.Season, error)
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID uint) ([]dao.Season, error)
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
}

type SeasonRepository struct {
	dao SeasonDAO
}

func NewSeasonRepository(dao SeasonDAO) *SeasonRepository {
	return &SeasonRepository{
		dao: dao,
	}
}

func (r *SeasonRepository) Create(ctx context.Context, season domain.Season) (domain.Season, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(season))
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *SeasonRepository) Update(ctx context.Context, season domain.Season) (domain.Season, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(season))
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *SeasonRepository) UpdateMultiplier(ctx context.Context, id uint, multiplier float64) error {
	if err := r.dao.UpdateMultiplier(ctx, id, multiplier); err != nil {
		return fmt.Errorf("r.dao.UpdateMultiplier -> %w", err)
	}

	return nil
}

func (r *SeasonRepository) FindByID(ctx context.Context, id uint) (domain.Season, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *SeasonRepository) FindActive(ctx context.Context) (domain.Season, error) {
	found, err := r.dao.FindActive(ctx)
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]domain.Season, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *SeasonRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID uint) ([]domain.Season, error) {
	found, err := r.dao.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOverlapping -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *SeasonRepository) DeactivateAll(ctx context.Context) error {
	if err := r.dao.DeactivateAll(ctx); err != nil {
		return fmt.Errorf("r.dao.DeactivateAll -> %w", err)
	}

	return nil
}

func (r *SeasonRepository) SetActive(ctx context.Context, id uint, active bool) error {
	if err := r.dao.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("r.dao.SetActive -> %w", err)
	}

	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *SeasonRepository) domainToDao(s domain.Season) dao.Season {
	return dao.Season{
		ID:         s.ID,
		Name:       s.Name,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Active:     s.Active,
		Multiplier: s.Multiplier,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (r *SeasonRepository) daoToDomain(s dao.Season) domain.Season {
	return domain.Season{
		ID:         s.ID,
		Name:       s.Name,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Active:     s.Active,
		Multiplier: s.Multiplier,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (r *SeasonRepository) daosToDomain(seasons []dao.Season) []domain.Season {
	out := make([]domain.Season, len(seasons))
	for i, s := range seasons {
		out[i] = r.daoToDomain(s)
	}
	return out
}
