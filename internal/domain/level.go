package domain

import "math"

const DefaultLevelStep = 100

// LevelForXP maps a total to a level: level n starts at step*(n-1)^2 XP.
func LevelForXP(total, step int) int {
	if step <= 0 {
		step = DefaultLevelStep
	}
	if total <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(total)/float64(step)))) + 1
}

// XPForLevel is the smallest total that reaches level.
func XPForLevel(level, step int) int {
	if step <= 0 {
		step = DefaultLevelStep
	}
	if level <= 1 {
		return 0
	}
	return step * (level - 1) * (level - 1)
}

type LevelUp struct {
	PreviousLevel int `json:"previous_level"`
	NewLevel      int `json:"new_level"`
}

// DetectLevelUp returns nil unless newTotal lands on a higher level than prevTotal.
func DetectLevelUp(prevTotal, newTotal, step int) *LevelUp {
	before, after := LevelForXP(prevTotal, step), LevelForXP(newTotal, step)
	if after <= before {
		return nil
	}
	return &LevelUp{PreviousLevel: before, NewLevel: after}
}

type XpSummary struct {
	AttendantID    uint  `json:"attendant_id"`
	TotalXP        int   `json:"total_xp"`
	Level          int   `json:"level"`
	CurrentLevelXP int   `json:"current_level_xp"`
	NextLevelXP    int   `json:"next_level_xp"`
	SeasonXP       int   `json:"season_xp"`
	SeasonID       *uint `json:"season_id,omitempty"`
}
