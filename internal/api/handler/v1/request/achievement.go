package request

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

type AchievementRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	XpReward    int             `json:"xp_reward"`
	Criteria    json.RawMessage `json:"criteria" swaggertype:"object"`
}

func (req *AchievementRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.XpReward, validation.Min(0)),
		validation.Field(&req.Criteria, validation.Required),
	)
}

// ParseCriteria decodes the {"type": ..., ...} criteria object.
func (req *AchievementRequest) ParseCriteria() (domain.Criteria, error) {
	return domain.DecodeCriteria(req.Criteria)
}
