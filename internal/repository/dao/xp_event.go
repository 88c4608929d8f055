package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrXpEventNotFound = errors.New("xp event not found")

// XpEvent rows are append-only: this DAO has no update or delete.
type XpEvent struct {
	ID          uint      `gorm:"primaryKey"`
	AttendantID uint      `gorm:"not null;index:idx_xp_events_attendant_created,priority:1"`
	BasePoints  int       `gorm:"not null"`
	Multiplier  float64   `gorm:"not null;default:1"`
	FinalPoints int       `gorm:"not null"`
	Reason      string    `gorm:"not null"`
	Type        string    `gorm:"not null;index:idx_xp_events_type_related,priority:1"`
	RelatedID   *uint     `gorm:"index:idx_xp_events_type_related,priority:2"`
	SeasonID    *uint     `gorm:"index"`
	CreatedAt   time.Time `gorm:"not null;index:idx_xp_events_attendant_created,priority:2"`
}

// AttendantTotal is one row of a ledger group-by.
type AttendantTotal struct {
	AttendantID uint
	Total       int
}

type XpEventFilter struct {
	AttendantID *uint
	SeasonID    *uint
	Type        string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type XpEventDAO struct {
	db *gorm.DB
}

func NewXpEventDAO(db *gorm.DB) *XpEventDAO {
	return &XpEventDAO{
		db: db,
	}
}

func (d *XpEventDAO) Insert(ctx context.Context, event XpEvent) (XpEvent, error) {
	if err := conn(ctx, d.db).Create(&event).Error; err != nil {
		return XpEvent{}, err
	}

	return event, nil
}

func (d *XpEventDAO) FindByID(ctx context.Context, id uint) (XpEvent, error) {
	var event XpEvent

	result := conn(ctx, d.db).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return XpEvent{}, ErrXpEventNotFound
		}

		return XpEvent{}, result.Error
	}

	return event, nil
}

// SumByAttendant totals final points for one attendant, optionally within a season.
func (d *XpEventDAO) SumByAttendant(ctx context.Context, attendantID uint, seasonID *uint) (int, error) {
	var total int

	q := conn(ctx, d.db).Model(&XpEvent{}).
		Select("COALESCE(SUM(final_points), 0)").
		Where("attendant_id = ?", attendantID)
	if seasonID != nil {
		q = q.Where("season_id = ?", *seasonID)
	}
	if err := q.Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// SumGroupByAttendant totals final points per attendant, ordered by total
// descending then attendant id ascending.
func (d *XpEventDAO) SumGroupByAttendant(ctx context.Context, seasonID *uint) ([]AttendantTotal, error) {
	var totals []AttendantTotal

	q := conn(ctx, d.db).Model(&XpEvent{}).
		Select("attendant_id, COALESCE(SUM(final_points), 0) AS total")
	if seasonID != nil {
		q = q.Where("season_id = ?", *seasonID)
	}
	err := q.Group("attendant_id").
		Order("total DESC, attendant_id ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}

func (d *XpEventDAO) List(ctx context.Context, filter XpEventFilter) ([]XpEvent, error) {
	var events []XpEvent

	q := conn(ctx, d.db).Model(&XpEvent{})
	if filter.AttendantID != nil {
		q = q.Where("attendant_id = ?", *filter.AttendantID)
	}
	if filter.SeasonID != nil {
		q = q.Where("season_id = ?", *filter.SeasonID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (d *XpEventDAO) CountBySeason(ctx context.Context, seasonID uint) (int64, error) {
	var count int64

	if err := conn(ctx, d.db).Model(&XpEvent{}).Where("season_id = ?", seasonID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (d *XpEventDAO) ExistsForRelated(ctx context.Context, eventType string, relatedID uint) (bool, error) {
	var count int64

	err := conn(ctx, d.db).Model(&XpEvent{}).
		Where("type = ? AND related_id = ?", eventType, relatedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
