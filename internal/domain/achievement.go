package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type CriteriaKind string

const (
	CriteriaXpThreshold     CriteriaKind = "xp_threshold"
	CriteriaFiveStarStreak  CriteriaKind = "five_star_streak"
	CriteriaHighAverage     CriteriaKind = "high_average"
	CriteriaRankingPosition CriteriaKind = "ranking_position"
)

// Criteria is the closed set of unlock predicates. Only the types in this file
// implement it.
type Criteria interface {
	Kind() CriteriaKind
	Validate() error
	isCriteria()
}

// XpThreshold unlocks when the attendant's total crosses Points.
type XpThreshold struct {
	Points int `json:"points"`
}

// FiveStarStreak unlocks after Count consecutive 5-star evaluations ending at
// the most recent one.
type FiveStarStreak struct {
	Count int `json:"count"`
}

// HighAverage unlocks when the mean rating is at least Rating over at least
// MinCount evaluations.
type HighAverage struct {
	Rating   float64 `json:"rating"`
	MinCount int     `json:"min_count"`
}

// RankingPosition unlocks when the attendant ranks at Position or better in the
// active season.
type RankingPosition struct {
	Position int `json:"position"`
}

func (XpThreshold) Kind() CriteriaKind     { return CriteriaXpThreshold }
func (FiveStarStreak) Kind() CriteriaKind  { return CriteriaFiveStarStreak }
func (HighAverage) Kind() CriteriaKind     { return CriteriaHighAverage }
func (RankingPosition) Kind() CriteriaKind { return CriteriaRankingPosition }

func (XpThreshold) isCriteria()     {}
func (FiveStarStreak) isCriteria()  {}
func (HighAverage) isCriteria()     {}
func (RankingPosition) isCriteria() {}

func (c XpThreshold) Validate() error {
	if c.Points <= 0 {
		return NewValidationError("criteria.points", "must be positive")
	}
	return nil
}

func (c FiveStarStreak) Validate() error {
	if c.Count <= 0 {
		return NewValidationError("criteria.count", "must be positive")
	}
	return nil
}

func (c HighAverage) Validate() error {
	if c.Rating < 1 || c.Rating > 5 {
		return NewValidationError("criteria.rating", "must be between 1 and 5")
	}
	if c.MinCount <= 0 {
		return NewValidationError("criteria.min_count", "must be positive")
	}
	return nil
}

func (c RankingPosition) Validate() error {
	if c.Position <= 0 {
		return NewValidationError("criteria.position", "must be positive")
	}
	return nil
}

type criteriaEnvelope struct {
	Type     CriteriaKind `json:"type"`
	Points   int          `json:"points,omitempty"`
	Count    int          `json:"count,omitempty"`
	Rating   float64      `json:"rating,omitempty"`
	MinCount int          `json:"min_count,omitempty"`
	Position int          `json:"position,omitempty"`
}

// EncodeCriteria serializes c as {"type": kind, ...fields}.
func EncodeCriteria(c Criteria) ([]byte, error) {
	var env criteriaEnvelope
	switch v := c.(type) {
	case XpThreshold:
		env = criteriaEnvelope{Type: CriteriaXpThreshold, Points: v.Points}
	case FiveStarStreak:
		env = criteriaEnvelope{Type: CriteriaFiveStarStreak, Count: v.Count}
	case HighAverage:
		env = criteriaEnvelope{Type: CriteriaHighAverage, Rating: v.Rating, MinCount: v.MinCount}
	case RankingPosition:
		env = criteriaEnvelope{Type: CriteriaRankingPosition, Position: v.Position}
	default:
		return nil, fmt.Errorf("unknown criteria %T", c)
	}

	return json.Marshal(env)
}

// DecodeCriteria parses the envelope written by EncodeCriteria.
func DecodeCriteria(raw []byte) (Criteria, error) {
	var env criteriaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	var c Criteria
	switch env.Type {
	case CriteriaXpThreshold:
		c = XpThreshold{Points: env.Points}
	case CriteriaFiveStarStreak:
		c = FiveStarStreak{Count: env.Count}
	case CriteriaHighAverage:
		c = HighAverage{Rating: env.Rating, MinCount: env.MinCount}
	case CriteriaRankingPosition:
		c = RankingPosition{Position: env.Position}
	default:
		return nil, NewValidationError("criteria.type", fmt.Sprintf("unknown criteria type %q", env.Type))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

type AchievementConfig struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	XpReward    int       `json:"xp_reward"`
	Active      bool      `json:"active"`
	Criteria    Criteria  `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarshalJSON inlines the criteria envelope.
func (a AchievementConfig) MarshalJSON() ([]byte, error) {
	type alias AchievementConfig
	var criteria json.RawMessage
	if a.Criteria != nil {
		raw, err := EncodeCriteria(a.Criteria)
		if err != nil {
			return nil, err
		}
		criteria = raw
	}

	return json.Marshal(struct {
		alias
		Criteria json.RawMessage `json:"criteria,omitempty"`
	}{alias: alias(a), Criteria: criteria})
}

type UnlockedAchievement struct {
	ID            uint      `json:"id"`
	AttendantID   uint      `json:"attendant_id"`
	AchievementID uint      `json:"achievement_id"`
	Title         string    `json:"title,omitempty"`
	SeasonID      *uint     `json:"season_id,omitempty"`
	XpGained      int       `json:"xp_gained"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
