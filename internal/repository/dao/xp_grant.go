package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type XpGrant struct {
	ID            uint   `gorm:"primaryKey"`
	AttendantID   uint   `gorm:"not null;index:idx_xp_grants_attendant_granted,priority:1"`
	TypeID        uint   `gorm:"not null;index"`
	Type          XpType `gorm:"foreignKey:TypeID"`
	Points        int    `gorm:"not null"`
	Justification *string
	GrantedBy     uint      `gorm:"not null;index:idx_xp_grants_granter_granted,priority:1"`
	GrantedAt     time.Time `gorm:"not null;index:idx_xp_grants_granter_granted,priority:2;index:idx_xp_grants_attendant_granted,priority:2"`
	XpEventID     uint      `gorm:"not null;uniqueIndex"`
	XpEvent       XpEvent   `gorm:"foreignKey:XpEventID"`
}

// GrantUsage aggregates grants issued in a time window.
type GrantUsage struct {
	Grants int
	Points int
}

type XpGrantDAO struct {
	db *gorm.DB
}

func NewXpGrantDAO(db *gorm.DB) *XpGrantDAO {
	return &XpGrantDAO{
		db: db,
	}
}

func (d *XpGrantDAO) Insert(ctx context.Context, grant XpGrant) (XpGrant, error) {
	if err := conn(ctx, d.db).Omit("Type", "XpEvent").Create(&grant).Error; err != nil {
		return XpGrant{}, err
	}

	return grant, nil
}

func (d *XpGrantDAO) ListByAttendant(ctx context.Context, attendantID uint, limit int) ([]XpGrant, error) {
	var grants []XpGrant

	q := conn(ctx, d.db).Preload("Type").
		Where("attendant_id = ?", attendantID).
		Order("granted_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&grants).Error; err != nil {
		return nil, err
	}

	return grants, nil
}

// UsageByGranter aggregates grants issued in [from, to]. A nil granterID
// aggregates over every granter.
func (d *XpGrantDAO) UsageByGranter(ctx context.Context, granterID *uint, from, to time.Time) (GrantUsage, error) {
	var usage GrantUsage

	q := conn(ctx, d.db).Model(&XpGrant{}).
		Select("COUNT(*) AS grants, COALESCE(SUM(points), 0) AS points").
		Where("granted_at BETWEEN ? AND ?", from, to)
	if granterID != nil {
		q = q.Where("granted_by = ?", *granterID)
	}
	if err := q.Scan(&usage).Error; err != nil {
		return GrantUsage{}, err
	}

	return usage, nil
}

func (d *XpGrantDAO) CountForAttendant(ctx context.Context, attendantID uint, from, to time.Time) (int, error) {
	var count int64

	err := conn(ctx, d.db).Model(&XpGrant{}).
		Where("attendant_id = ? AND granted_at BETWEEN ? AND ?", attendantID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// LastGrantedAt returns the time of the most recent grant to the attendant, or
// nil if there is none.
func (d *XpGrantDAO) LastGrantedAt(ctx context.Context, attendantID uint) (*time.Time, error) {
	var grant XpGrant

	result := conn(ctx, d.db).Select("granted_at").
		Where("attendant_id = ?", attendantID).
		Order("granted_at DESC").
		Take(&grant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &grant.GrantedAt, nil
}
