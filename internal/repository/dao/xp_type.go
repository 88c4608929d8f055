package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrXpTypeNotFound   = errors.New("xp type not found")
	ErrXpTypeNameExists = errors.New("xp type name already exists")
)

type XpType struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex:uni_xp_types_name;not null"`
	Description string
	Points      int       `gorm:"not null"`
	Category    string    `gorm:"not null;default:'general'"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedBy   uint      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type XpTypeDAO struct {
	db *gorm.DB
}

func NewXpTypeDAO(db *gorm.DB) *XpTypeDAO {
	return &XpTypeDAO{
		db: db,
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}

func (d *XpTypeDAO) Insert(ctx context.Context, xpType XpType) (XpType, error) {
	if err := conn(ctx, d.db).Create(&xpType).Error; err != nil {
		if isUniqueViolation(err, "uni_xp_types_name") {
			return XpType{}, ErrXpTypeNameExists
		}

		return XpType{}, err
	}

	return xpType, nil
}

func (d *XpTypeDAO) Update(ctx context.Context, xpType XpType) (XpType, error) {
	result := conn(ctx, d.db).Model(&XpType{ID: xpType.ID}).Updates(map[string]any{
		"name":        xpType.Name,
		"description": xpType.Description,
		"points":      xpType.Points,
		"category":    xpType.Category,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_xp_types_name") {
			return XpType{}, ErrXpTypeNameExists
		}

		return XpType{}, result.Error
	}
	if result.RowsAffected == 0 {
		return XpType{}, ErrXpTypeNotFound
	}

	return d.FindByID(ctx, xpType.ID)
}

func (d *XpTypeDAO) SetActive(ctx context.Context, id uint, active bool) error {
	result := conn(ctx, d.db).Model(&XpType{ID: id}).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrXpTypeNotFound
	}

	return nil
}

func (d *XpTypeDAO) FindByID(ctx context.Context, id uint) (XpType, error) {
	var xpType XpType

	result := conn(ctx, d.db).First(&xpType, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return XpType{}, ErrXpTypeNotFound
		}

		return XpType{}, result.Error
	}

	return xpType, nil
}

func (d *XpTypeDAO) List(ctx context.Context, activeOnly bool) ([]XpType, error) {
	var types []XpType

	q := conn(ctx, d.db)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("category ASC, name ASC").Find(&types).Error; err != nil {
		return nil, err
	}

	return types, nil
}
