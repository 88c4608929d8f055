package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

var ErrAchievementNotFound = dao.ErrAchievementNotFound

type AchievementDAO interface {
	Insert(ctx context.Context, achievement dao.AchievementConfig) (dao.AchievementConfig, error)
	Update(ctx context.Context, achievement dao.AchievementConfig) (dao.AchievementConfig, error)
	SetActive(ctx context.Context, id uint, active bool) error
	FindByID(ctx context.Context, id uint) (dao.AchievementConfig, error)
	List(ctx context.Context, activeOnly bool) ([]dao.AchievementConfig, error)
	InsertUnlock(ctx context.Context, unlock dao.UnlockedAchievement) (dao.UnlockedAchievement, bool, error)
	ListUnlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]dao.UnlockedAchievement, error)
	UnlockedIDs(ctx context.Context, attendantID uint) ([]uint, error)
}

type AchievementRepository struct {
	dao AchievementDAO
}

func NewAchievementRepository(dao AchievementDAO) *AchievementRepository {
	return &AchievementRepository{
		dao: dao,
	}
}

func (r *AchievementRepository) Create(ctx context.Context, achievement domain.AchievementConfig) (domain.AchievementConfig, error) {
	row, err := r.domainToDao(achievement)
	if err != nil {
		return domain.AchievementConfig{}, err
	}

	created, err := r.dao.Insert(ctx, row)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created)
}

func (r *AchievementRepository) Update(ctx context.Context, achievement domain.AchievementConfig) (domain.AchievementConfig, error) {
	row, err := r.domainToDao(achievement)
	if err != nil {
		return domain.AchievementConfig{}, err
	}

	updated, err := r.dao.Update(ctx, row)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated)
}

func (r *AchievementRepository) SetActive(ctx context.Context, id uint, active bool) error {
	if err := r.dao.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("r.dao.SetActive -> %w", err)
	}

	return nil
}

func (r *AchievementRepository) FindByID(ctx context.Context, id uint) (domain.AchievementConfig, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *AchievementRepository) List(ctx context.Context, activeOnly bool) ([]domain.AchievementConfig, error) {
	found, err := r.dao.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	achievements := make([]domain.AchievementConfig, 0, len(found))
	for _, a := range found {
		achievement, err := r.daoToDomain(a)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}

	return achievements, nil
}

// Unlock stores the unlock and reports false when the pair was already unlocked.
func (r *AchievementRepository) Unlock(ctx context.Context, unlock domain.UnlockedAchievement) (domain.UnlockedAchievement, bool, error) {
	created, inserted, err := r.dao.InsertUnlock(ctx, dao.UnlockedAchievement{
		AttendantID:   unlock.AttendantID,
		AchievementID: unlock.AchievementID,
		SeasonID:      unlock.SeasonID,
		XpGained:      unlock.XpGained,
		UnlockedAt:    unlock.UnlockedAt,
	})
	if err != nil {
		return domain.UnlockedAchievement{}, false, fmt.Errorf("r.dao.InsertUnlock -> %w", err)
	}

	out := unlockDaoToDomain(created)
	out.Title = unlock.Title

	return out, inserted, nil
}

func (r *AchievementRepository) Unlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error) {
	found, err := r.dao.ListUnlocked(ctx, attendantID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUnlocked -> %w", err)
	}

	unlocked := make([]domain.UnlockedAchievement, len(found))
	for i, u := range found {
		unlocked[i] = unlockDaoToDomain(u)
	}

	return unlocked, nil
}

func (r *AchievementRepository) UnlockedIDs(ctx context.Context, attendantID uint) (map[uint]bool, error) {
	ids, err := r.dao.UnlockedIDs(ctx, attendantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.UnlockedIDs -> %w", err)
	}

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

func (r *AchievementRepository) domainToDao(a domain.AchievementConfig) (dao.AchievementConfig, error) {
	criteria, err := domain.EncodeCriteria(a.Criteria)
	if err != nil {
		return dao.AchievementConfig{}, fmt.Errorf("domain.EncodeCriteria -> %w", err)
	}

	return dao.AchievementConfig{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		XpReward:    a.XpReward,
		Active:      a.Active,
		Criteria:    criteria,
	}, nil
}

func (r *AchievementRepository) daoToDomain(a dao.AchievementConfig) (domain.AchievementConfig, error) {
	criteria, err := domain.DecodeCriteria(a.Criteria)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("achievement %d: domain.DecodeCriteria -> %w", a.ID, err)
	}

	return domain.AchievementConfig{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		XpReward:    a.XpReward,
		Active:      a.Active,
		Criteria:    criteria,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func unlockDaoToDomain(u dao.UnlockedAchievement) domain.UnlockedAchievement {
	return domain.UnlockedAchievement{
		ID:            u.ID,
		AttendantID:   u.AttendantID,
		AchievementID: u.AchievementID,
		Title:         u.Achievement.Title,
		SeasonID:      u.SeasonID,
		XpGained:      u.XpGained,
		UnlockedAt:    u.UnlockedAt,
	}
}
