package response

import (
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/progress"
)

type Healthcheck struct {
	Status string `json:"status"`
}

type OperationAccepted struct {
	OperationID string         `json:"operation_id"`
	State       progress.State `json:"state"`
	Total       int            `json:"total"`
}

type Leaderboard struct {
	SeasonID *uint                `json:"season_id,omitempty"`
	Entries  []domain.RankedEntry `json:"entries"`
}

type Unlocked struct {
	AttendantID  uint                         `json:"attendant_id"`
	Achievements []domain.UnlockedAchievement `json:"achievements"`
}
