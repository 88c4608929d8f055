package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

type Kind string

const (
	KindGrantIssued         Kind = "grant_issued"
	KindXpRecorded          Kind = "xp_recorded"
	KindLevelUp             Kind = "level_up"
	KindAchievementUnlocked Kind = "achievement_unlocked"
)

// Notification is the payload handed to the UI layer. It is built from the
// values a core operation returns.
type Notification struct {
	Kind                 Kind                         `json:"kind"`
	AttendantID          uint                         `json:"attendant_id"`
	XpAmount             int                          `json:"xp_amount"`
	TypeName             string                       `json:"type_name,omitempty"`
	Justification        *string                      `json:"justification,omitempty"`
	LevelUp              *domain.LevelUp              `json:"level_up,omitempty"`
	AchievementsUnlocked []domain.UnlockedAchievement `json:"achievements_unlocked,omitempty"`
}

// Dispatcher delivers notifications. Delivery is best effort.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// ForGrant builds the notifications for an issued grant: the grant itself,
// then a level-up and one notification per unlocked achievement. The amount
// is what event credited, season multiplier included.
func ForGrant(grant domain.XpGrant, event domain.XpEvent, unlocked []domain.UnlockedAchievement, levelUp *domain.LevelUp) []Notification {
	head := Notification{
		Kind:                 KindGrantIssued,
		AttendantID:          grant.AttendantID,
		XpAmount:             event.FinalPoints,
		TypeName:             grant.TypeName,
		Justification:        grant.Justification,
		LevelUp:              levelUp,
		AchievementsUnlocked: unlocked,
	}

	return append([]Notification{head}, followUps(grant.AttendantID, unlocked, levelUp)...)
}

// ForEvent builds the notifications for XP recorded outside the grant flow.
func ForEvent(event domain.XpEvent, unlocked []domain.UnlockedAchievement, levelUp *domain.LevelUp) []Notification {
	head := Notification{
		Kind:                 KindXpRecorded,
		AttendantID:          event.AttendantID,
		XpAmount:             event.FinalPoints,
		TypeName:             string(event.Type),
		LevelUp:              levelUp,
		AchievementsUnlocked: unlocked,
	}

	return append([]Notification{head}, followUps(event.AttendantID, unlocked, levelUp)...)
}

func followUps(attendantID uint, unlocked []domain.UnlockedAchievement, levelUp *domain.LevelUp) []Notification {
	var out []Notification
	if levelUp != nil {
		out = append(out, Notification{
			Kind:        KindLevelUp,
			AttendantID: attendantID,
			LevelUp:     levelUp,
		})
	}
	for _, u := range unlocked {
		out = append(out, Notification{
			Kind:                 KindAchievementUnlocked,
			AttendantID:          attendantID,
			XpAmount:             u.XpGained,
			TypeName:             u.Title,
			AchievementsUnlocked: []domain.UnlockedAchievement{u},
		})
	}
	return out
}

// Forward dispatches every notification and logs failures instead of
// returning them. The operation that produced them has already committed.
func Forward(ctx context.Context, d Dispatcher, logger *zap.Logger, notes []Notification) {
	for _, n := range notes {
		if err := d.Dispatch(ctx, n); err != nil {
			logger.Warn("notification dropped",
				zap.String("kind", string(n.Kind)),
				zap.Uint("attendant_id", n.AttendantID),
				zap.Error(err),
			)
		}
	}
}
