package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

var (
	ErrXpTypeNotFound           = dao.ErrXpTypeNotFound
	ErrXpTypeNameExists         = dao.ErrXpTypeNameExists
	ErrGrantLimitConfigNotFound = dao.ErrGrantLimitConfigNotFound
)

type XpTypeDAO interface {
	Insert(ctx context.Context, xpType dao.XpType) (dao.XpType, error)
	Update(ctx context.Context, xpType dao.XpType) (dao.XpType, error)
	SetActive(ctx context.Context, id uint, active bool) error
	FindByID(ctx context.Context, id uint) (dao.XpType, error)
	List(ctx context.Context, activeOnly bool) ([]dao.XpType, error)
}

type XpGrantDAO interface {
	Insert(ctx context.Context, grant dao.XpGrant) (dao.XpGrant, error)
	ListByAttendant(ctx context.Context, attendantID uint, limit int) ([]dao.XpGrant, error)
	UsageByGranter(ctx context.Context, granterID *uint, from, to time.Time) (dao.GrantUsage, error)
	CountForAttendant(ctx context.Context, attendantID uint, from, to time.Time) (int, error)
	LastGrantedAt(ctx context.Context, attendantID uint) (*time.Time, error)
}

type GrantLimitDAO interface {
	Get(ctx context.Context) (dao.GrantLimitConfig, error)
	Save(ctx context.Context, limits dao.GrantLimitConfig) (dao.GrantLimitConfig, error)
}

type GrantRepository struct {
	typeDAO   XpTypeDAO
	grantDAO  XpGrantDAO
	limitsDAO GrantLimitDAO
}

func NewGrantRepository(typeDAO XpTypeDAO, grantDAO XpGrantDAO, limitsDAO GrantLimitDAO) *GrantRepository {
	return &GrantRepository{
		typeDAO:   typeDAO,
		grantDAO:  grantDAO,
		limitsDAO: limitsDAO,
	}
}

func (r *GrantRepository) CreateType(ctx context.Context, xpType domain.XpType) (domain.XpType, error) {
	created, err := r.typeDAO.Insert(ctx, typeDomainToDao(xpType))
	if err != nil {
		return domain.XpType{}, fmt.Errorf("r.typeDAO.Insert -> %w", err)
	}

	return typeDaoToDomain(created), nil
}

func (r *GrantRepository) UpdateType(ctx context.Context, xpType domain.XpType) (domain.XpType, error) {
	updated, err := r.typeDAO.Update(ctx, typeDomainToDao(xpType))
	if err != nil {
		return domain.XpType{}, fmt.Errorf("r.typeDAO.Update -> %w", err)
	}

	return typeDaoToDomain(updated), nil
}

func (r *GrantRepository) SetTypeActive(ctx context.Context, id uint, active bool) error {
	if err := r.typeDAO.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("r.typeDAO.SetActive -> %w", err)
	}

	return nil
}

func (r *GrantRepository) FindType(ctx context.Context, id uint) (domain.XpType, error) {
	found, err := r.typeDAO.FindByID(ctx, id)
	if err != nil {
		return domain.XpType{}, fmt.Errorf("r.typeDAO.FindByID -> %w", err)
	}

	return typeDaoToDomain(found), nil
}

func (r *GrantRepository) ListTypes(ctx context.Context, activeOnly bool) ([]domain.XpType, error) {
	found, err := r.typeDAO.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("r.typeDAO.List -> %w", err)
	}

	types := make([]domain.XpType, len(found))
	for i, t := range found {
		types[i] = typeDaoToDomain(t)
	}

	return types, nil
}

func (r *GrantRepository) CreateGrant(ctx context.Context, grant domain.XpGrant) (domain.XpGrant, error) {
	created, err := r.grantDAO.Insert(ctx, dao.XpGrant{
		AttendantID:   grant.AttendantID,
		TypeID:        grant.TypeID,
		Points:        grant.Points,
		Justification: grant.Justification,
		GrantedBy:     grant.GrantedBy,
		GrantedAt:     grant.GrantedAt,
		XpEventID:     grant.XpEventID,
	})
	if err != nil {
		return domain.XpGrant{}, fmt.Errorf("r.grantDAO.Insert -> %w", err)
	}

	out := grantDaoToDomain(created)
	out.TypeName = grant.TypeName

	return out, nil
}

func (r *GrantRepository) GrantsByAttendant(ctx context.Context, attendantID uint, limit int) ([]domain.XpGrant, error) {
	found, err := r.grantDAO.ListByAttendant(ctx, attendantID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.grantDAO.ListByAttendant -> %w", err)
	}

	grants := make([]domain.XpGrant, len(found))
	for i, g := range found {
		grants[i] = grantDaoToDomain(g)
	}

	return grants, nil
}

func (r *GrantRepository) UsageByGranter(ctx context.Context, granterID *uint, from, to time.Time) (domain.GrantUsage, error) {
	usage, err := r.grantDAO.UsageByGranter(ctx, granterID, from, to)
	if err != nil {
		return domain.GrantUsage{}, fmt.Errorf("r.grantDAO.UsageByGranter -> %w", err)
	}

	return domain.GrantUsage{Grants: usage.Grants, Points: usage.Points}, nil
}

func (r *GrantRepository) CountForAttendant(ctx context.Context, attendantID uint, from, to time.Time) (int, error) {
	count, err := r.grantDAO.CountForAttendant(ctx, attendantID, from, to)
	if err != nil {
		return 0, fmt.Errorf("r.grantDAO.CountForAttendant -> %w", err)
	}

	return count, nil
}

func (r *GrantRepository) LastGrantedAt(ctx context.Context, attendantID uint) (*time.Time, error) {
	last, err := r.grantDAO.LastGrantedAt(ctx, attendantID)
	if err != nil {
		return nil, fmt.Errorf("r.grantDAO.LastGrantedAt -> %w", err)
	}

	return last, nil
}

// Limits returns the stored limit configuration, or the defaults when none
// has been saved yet.
func (r *GrantRepository) Limits(ctx context.Context) (domain.GrantLimitConfig, error) {
	found, err := r.limitsDAO.Get(ctx)
	if err != nil {
		if errors.Is(err, dao.ErrGrantLimitConfigNotFound) {
			return domain.DefaultGrantLimitConfig(), nil
		}
		return domain.GrantLimitConfig{}, fmt.Errorf("r.limitsDAO.Get -> %w", err)
	}

	return limitsDaoToDomain(found), nil
}

func (r *GrantRepository) SaveLimits(ctx context.Context, limits domain.GrantLimitConfig) (domain.GrantLimitConfig, error) {
	saved, err := r.limitsDAO.Save(ctx, dao.GrantLimitConfig{
		DailyLimitPoints:      limits.DailyLimitPoints,
		DailyLimitGrants:      limits.DailyLimitGrants,
		MinPointsPerGrant:     limits.MinPointsPerGrant,
		MaxPointsPerGrant:     limits.MaxPointsPerGrant,
		MaxGrantsPerAttendant: limits.MaxGrantsPerAttendant,
		CooldownMinutes:       limits.CooldownMinutes,
		RequireJustification:  limits.RequireJustification,
		AllowWeekendGrants:    limits.AllowWeekendGrants,
		AllowHolidayGrants:    limits.AllowHolidayGrants,
		AutoApproveLimit:      limits.AutoApproveLimit,
		UpdatedBy:             limits.UpdatedBy,
	})
	if err != nil {
		return domain.GrantLimitConfig{}, fmt.Errorf("r.limitsDAO.Save -> %w", err)
	}

	return limitsDaoToDomain(saved), nil
}

func typeDomainToDao(t domain.XpType) dao.XpType {
	return dao.XpType{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Points:      t.Points,
		Category:    t.Category,
		Active:      t.Active,
		CreatedBy:   t.CreatedBy,
	}
}

func typeDaoToDomain(t dao.XpType) domain.XpType {
	return domain.XpType{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Points:      t.Points,
		Category:    t.Category,
		Active:      t.Active,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func grantDaoToDomain(g dao.XpGrant) domain.XpGrant {
	return domain.XpGrant{
		ID:            g.ID,
		AttendantID:   g.AttendantID,
		TypeID:        g.TypeID,
		TypeName:      g.Type.Name,
		Points:        g.Points,
		Justification: g.Justification,
		GrantedBy:     g.GrantedBy,
		GrantedAt:     g.GrantedAt,
		XpEventID:     g.XpEventID,
	}
}

func limitsDaoToDomain(l dao.GrantLimitConfig) domain.GrantLimitConfig {
	return domain.GrantLimitConfig{
		ID:                    l.ID,
		DailyLimitPoints:      l.DailyLimitPoints,
		DailyLimitGrants:      l.DailyLimitGrants,
		MinPointsPerGrant:     l.MinPointsPerGrant,
		MaxPointsPerGrant:     l.MaxPointsPerGrant,
		MaxGrantsPerAttendant: l.MaxGrantsPerAttendant,
		CooldownMinutes:       l.CooldownMinutes,
		RequireJustification:  l.RequireJustification,
		AllowWeekendGrants:    l.AllowWeekendGrants,
		AllowHolidayGrants:    l.AllowHolidayGrants,
		AutoApproveLimit:      l.AutoApproveLimit,
		UpdatedBy:             l.UpdatedBy,
		UpdatedAt:             l.UpdatedAt,
	}
}
