package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

type RecordXPRequest struct {
	AttendantID uint   `json:"attendant_id"`
	Points      int    `json:"points"`
	Reason      string `json:"reason"`
	Type        string `json:"type"`
	RelatedID   *uint  `json:"related_id,omitempty"`
}

func (req *RecordXPRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AttendantID, validation.Required),
		validation.Field(&req.Points, validation.Required),
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Type, validation.Required, validation.In(
			string(domain.XpEventEvaluation),
			string(domain.XpEventManualGrant),
			string(domain.XpEventAchievementUnlock),
			string(domain.XpEventAdjustment),
		)),
	)
}

type CompensateRequest struct {
	Reason string `json:"reason"`
}

func (req *CompensateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 255)),
	)
}
