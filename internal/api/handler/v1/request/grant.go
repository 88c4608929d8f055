package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

const maxBulkGrants = 200

type GrantRequest struct {
	AttendantID   uint    `json:"attendant_id"`
	TypeID        uint    `json:"type_id"`
	Justification *string `json:"justification,omitempty"`
}

func (req GrantRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.AttendantID, validation.Required),
		validation.Field(&req.TypeID, validation.Required),
		validation.Field(&req.Justification, validation.NilOrNotEmpty, validation.Length(0, 500)),
	)
}

type BulkGrantRequest struct {
	Grants []GrantRequest `json:"grants"`
}

func (req *BulkGrantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Grants, validation.Required, validation.Length(1, maxBulkGrants)),
	)
}

type XpTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
}

func (req *XpTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Points, validation.Required, validation.Min(1)),
		validation.Field(&req.Category, validation.Length(0, 50)),
	)
}

type GrantLimitsRequest struct {
	DailyLimitPoints      int  `json:"daily_limit_points"`
	DailyLimitGrants      int  `json:"daily_limit_grants"`
	MinPointsPerGrant     int  `json:"min_points_per_grant"`
	MaxPointsPerGrant     int  `json:"max_points_per_grant"`
	MaxGrantsPerAttendant int  `json:"max_grants_per_attendant"`
	CooldownMinutes       int  `json:"cooldown_minutes"`
	RequireJustification  bool `json:"require_justification"`
	AllowWeekendGrants    bool `json:"allow_weekend_grants"`
	AllowHolidayGrants    bool `json:"allow_holiday_grants"`
	AutoApproveLimit      int  `json:"auto_approve_limit"`
}

func (req *GrantLimitsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DailyLimitPoints, validation.Required),
		validation.Field(&req.DailyLimitGrants, validation.Required),
		validation.Field(&req.MinPointsPerGrant, validation.Required),
		validation.Field(&req.MaxPointsPerGrant, validation.Required),
		validation.Field(&req.MaxGrantsPerAttendant, validation.Required),
		validation.Field(&req.CooldownMinutes, validation.Min(0)),
		validation.Field(&req.AutoApproveLimit, validation.Min(0)),
	)
}

func (req *GrantLimitsRequest) Config() domain.GrantLimitConfig {
	return domain.GrantLimitConfig{
		DailyLimitPoints:      req.DailyLimitPoints,
		DailyLimitGrants:      req.DailyLimitGrants,
		MinPointsPerGrant:     req.MinPointsPerGrant,
		MaxPointsPerGrant:     req.MaxPointsPerGrant,
		MaxGrantsPerAttendant: req.MaxGrantsPerAttendant,
		CooldownMinutes:       req.CooldownMinutes,
		RequireJustification:  req.RequireJustification,
		AllowWeekendGrants:    req.AllowWeekendGrants,
		AllowHolidayGrants:    req.AllowHolidayGrants,
		AutoApproveLimit:      req.AutoApproveLimit,
	}
}
