package domain

import (
	"math"
	"time"
)

type XpEventType string

const (
	XpEventEvaluation        XpEventType = "evaluation"
	XpEventManualGrant       XpEventType = "manual_grant"
	XpEventAchievementUnlock XpEventType = "achievement_unlock"
	XpEventAdjustment        XpEventType = "adjustment"
)

func (t XpEventType) Valid() bool {
	switch t {
	case XpEventEvaluation, XpEventManualGrant, XpEventAchievementUnlock, XpEventAdjustment:
		return true
	}
	return false
}

// XpEvent is one immutable ledger row. Corrections are new events.
type XpEvent struct {
	ID          uint        `json:"id"`
	AttendantID uint        `json:"attendant_id"`
	BasePoints  int         `json:"base_points"`
	Multiplier  float64     `json:"multiplier"`
	FinalPoints int         `json:"final_points"`
	Reason      string      `json:"reason"`
	Type        XpEventType `json:"type"`
	RelatedID   *uint       `json:"related_id,omitempty"`
	SeasonID    *uint       `json:"season_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ApplyMultiplier returns base scaled by m, rounded half away from zero.
func ApplyMultiplier(base int, m float64) int {
	return int(math.Round(float64(base) * m))
}

type XpType struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// XpGrant snapshots the type's point value at grant time.
type XpGrant struct {
	ID            uint      `json:"id"`
	AttendantID   uint      `json:"attendant_id"`
	TypeID        uint      `json:"type_id"`
	TypeName      string    `json:"type_name,omitempty"`
	Points        int       `json:"points"`
	Justification *string   `json:"justification,omitempty"`
	GrantedBy     uint      `json:"granted_by"`
	GrantedAt     time.Time `json:"granted_at"`
	XpEventID     uint      `json:"xp_event_id"`
}

type GrantLimitConfig struct {
	ID                    uint `json:"id"`
	DailyLimitPoints      int  `json:"daily_limit_points"`
	DailyLimitGrants      int  `json:"daily_limit_grants"`
	MinPointsPerGrant     int  `json:"min_points_per_grant"`
	MaxPointsPerGrant     int  `json:"max_points_per_grant"`
	MaxGrantsPerAttendant int  `json:"max_grants_per_attendant"`
	CooldownMinutes       int  `json:"cooldown_minutes"`
	RequireJustification  bool `json:"require_justification"`
	AllowWeekendGrants    bool `json:"allow_weekend_grants"`
	AllowHolidayGrants    bool `json:"allow_holiday_grants"`
	// AutoApproveLimit is stored for the admin UI. No approval workflow reads it.
	AutoApproveLimit int       `json:"auto_approve_limit"`
	UpdatedBy        uint      `json:"updated_by"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func DefaultGrantLimitConfig() GrantLimitConfig {
	return GrantLimitConfig{
		DailyLimitPoints:      500,
		DailyLimitGrants:      20,
		MinPointsPerGrant:     1,
		MaxPointsPerGrant:     200,
		MaxGrantsPerAttendant: 5,
		CooldownMinutes:       0,
		RequireJustification:  true,
		AllowWeekendGrants:    true,
		AllowHolidayGrants:    true,
		AutoApproveLimit:      100,
	}
}

// GrantUsage is the aggregate of grants issued during one calendar day.
type GrantUsage struct {
	Grants int `json:"grants"`
	Points int `json:"points"`
}

type DailyUsage struct {
	GranterID       *uint      `json:"granter_id,omitempty"`
	Date            time.Time  `json:"date"`
	Used            GrantUsage `json:"used"`
	Limits          GrantUsage `json:"limits"`
	RemainingGrants int        `json:"remaining_grants"`
	RemainingPoints int        `json:"remaining_points"`
}

// DayBounds returns local midnight of t's calendar day and the last
// representable millisecond of it.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
