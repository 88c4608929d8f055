package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository/dao"
)

var ErrXpEventNotFound = dao.ErrXpEventNotFound

type XpEventDAO interface {
	Insert(ctx context.Context, event dao.XpEvent) (dao.XpEvent, error)
	FindByID(ctx context.Context, id uint) (dao.XpEvent, error)
	SumByAttendant(ctx context.Context, attendantID uint, seasonID *uint) (int, error)
	SumGroupByAttendant(ctx context.Context, seasonID *uint) ([]dao.AttendantTotal, error)
	List(ctx context.Context, filter dao.XpEventFilter) ([]dao.XpEvent, error)
	CountBySeason(ctx context.Context, seasonID uint) (int64, error)
	ExistsForRelated(ctx context.Context, eventType string, relatedID uint) (bool, error)
}

// EventQuery narrows a ledger range query. Zero values mean no filter.
type EventQuery struct {
	AttendantID *uint
	SeasonID    *uint
	Type        domain.XpEventType
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type LedgerRepository struct {
	dao XpEventDAO
}

func NewLedgerRepository(dao XpEventDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func (r *LedgerRepository) Append(ctx context.Context, event domain.XpEvent) (domain.XpEvent, error) {
	created, err := r.dao.Insert(ctx, dao.XpEvent{
		AttendantID: event.AttendantID,
		BasePoints:  event.BasePoints,
		Multiplier:  event.Multiplier,
		FinalPoints: event.FinalPoints,
		Reason:      event.Reason,
		Type:        string(event.Type),
		RelatedID:   event.RelatedID,
		SeasonID:    event.SeasonID,
		CreatedAt:   event.CreatedAt,
	})
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *LedgerRepository) FindByID(ctx context.Context, id uint) (domain.XpEvent, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *LedgerRepository) TotalXP(ctx context.Context, attendantID uint, seasonID *uint) (int, error) {
	total, err := r.dao.SumByAttendant(ctx, attendantID, seasonID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumByAttendant -> %w", err)
	}

	return total, nil
}

func (r *LedgerRepository) Totals(ctx context.Context, seasonID *uint) ([]domain.RankedEntry, error) {
	totals, err := r.dao.SumGroupByAttendant(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.SumGroupByAttendant -> %w", err)
	}

	out := make([]domain.RankedEntry, len(totals))
	for i, t := range totals {
		out[i] = domain.RankedEntry{AttendantID: t.AttendantID, TotalXP: t.Total}
	}

	return out, nil
}

func (r *LedgerRepository) Events(ctx context.Context, q EventQuery) ([]domain.XpEvent, error) {
	found, err := r.dao.List(ctx, dao.XpEventFilter{
		AttendantID: q.AttendantID,
		SeasonID:    q.SeasonID,
		Type:        string(q.Type),
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	events := make([]domain.XpEvent, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *LedgerRepository) CountBySeason(ctx context.Context, seasonID uint) (int64, error) {
	count, err := r.dao.CountBySeason(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountBySeason -> %w", err)
	}

	return count, nil
}

func (r *LedgerRepository) ExistsForRelated(ctx context.Context, eventType domain.XpEventType, relatedID uint) (bool, error) {
	exists, err := r.dao.ExistsForRelated(ctx, string(eventType), relatedID)
	if err != nil {
		return false, fmt.Errorf("r.dao.ExistsForRelated -> %w", err)
	}

	return exists, nil
}

func (r *LedgerRepository) daoToDomain(e dao.XpEvent) domain.XpEvent {
	return domain.XpEvent{
		ID:          e.ID,
		AttendantID: e.AttendantID,
		BasePoints:  e.BasePoints,
		Multiplier:  e.Multiplier,
		FinalPoints: e.FinalPoints,
		Reason:      e.Reason,
		Type:        domain.XpEventType(e.Type),
		RelatedID:   e.RelatedID,
		SeasonID:    e.SeasonID,
		CreatedAt:   e.CreatedAt,
	}
}
