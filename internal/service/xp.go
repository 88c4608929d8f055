package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository"
)

type Appender interface {
	Append(ctx context.Context, in AppendInput) (AppendResult, error)
}

type AchievementEvaluator interface {
	Evaluate(ctx context.Context, attendantID uint, previousTotal, newTotal int) ([]domain.UnlockedAchievement, error)
}

type DirectoryRepository interface {
	FindAttendant(ctx context.Context, id uint) (domain.Attendant, error)
	FindEvaluation(ctx context.Context, id uint) (domain.Evaluation, error)
	RecentRatings(ctx context.Context, attendantID uint, n int) ([]int, error)
	RatingStats(ctx context.Context, attendantID uint) (int, float64, error)
}

type RecordInput struct {
	AttendantID uint
	Points      int
	Reason      string
	Type        domain.XpEventType
	RelatedID   *uint
}

// RecordResult is what the boundary forwards to the notification layer.
type RecordResult struct {
	Event    domain.XpEvent               `json:"event"`
	Unlocked []domain.UnlockedAchievement `json:"unlocked"`
	LevelUp  *domain.LevelUp              `json:"level_up,omitempty"`
}

type EventsQuery struct {
	SeasonID *uint
	Type     domain.XpEventType
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// XpService records XP and runs achievement evaluation on the committed
// before and after totals.
type XpService struct {
	ledger       Appender
	events       LedgerRepository
	achievements AchievementEvaluator
	directory    DirectoryRepository
	seasons      ActiveSeasonFinder
	logger       *zap.Logger

	mu               sync.RWMutex
	evaluationPoints map[int]int
	levelStep        int
}

func NewXpService(
	ledger Appender,
	events LedgerRepository,
	achievements AchievementEvaluator,
	directory DirectoryRepository,
	seasons ActiveSeasonFinder,
	logger *zap.Logger,
) *XpService {
	return &XpService{
		ledger:           ledger,
		events:           events,
		achievements:     achievements,
		directory:        directory,
		seasons:          seasons,
		logger:           logger,
		evaluationPoints: map[int]int{},
		levelStep:        domain.DefaultLevelStep,
	}
}

// Configure replaces the rating to points table and the level step. It is
// safe to call while requests are in flight.
func (s *XpService) Configure(evaluationPoints map[string]int, levelStep int) error {
	points := make(map[int]int, len(evaluationPoints))
	for k, v := range evaluationPoints {
		rating, err := strconv.Atoi(k)
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("invalid evaluation rating %q", k)
		}
		if v < 0 {
			return fmt.Errorf("evaluation points for rating %d must not be negative", rating)
		}
		points[rating] = v
	}
	if levelStep <= 0 {
		levelStep = domain.DefaultLevelStep
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluationPoints = points
	s.levelStep = levelStep

	return nil
}

func (s *XpService) LevelStep() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelStep
}

func (s *XpService) pointsForRating(rating int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluationPoints[rating]
}

func (s *XpService) RecordXP(ctx context.Context, in RecordInput) (RecordResult, error) {
	if _, err := s.directory.FindAttendant(ctx, in.AttendantID); err != nil {
		return RecordResult{}, notFound("find attendant", err, ErrAttendantNotFound, "attendant", in.AttendantID)
	}

	return s.record(ctx, AppendInput{
		AttendantID: in.AttendantID,
		BasePoints:  in.Points,
		Reason:      in.Reason,
		Type:        in.Type,
		RelatedID:   in.RelatedID,
	})
}

// RecordEvaluationXP converts an evaluation's star rating into XP. Each
// evaluation is credited at most once.
func (s *XpService) RecordEvaluationXP(ctx context.Context, evaluationID uint) (RecordResult, error) {
	evaluation, err := s.directory.FindEvaluation(ctx, evaluationID)
	if err != nil {
		return RecordResult{}, notFound("find evaluation", err, ErrEvaluationNotFound, "evaluation", evaluationID)
	}

	id := evaluation.ID
	return s.record(ctx, AppendInput{
		AttendantID:    evaluation.AttendantID,
		BasePoints:     s.pointsForRating(evaluation.Rating),
		Reason:         fmt.Sprintf("%d-star evaluation", evaluation.Rating),
		Type:           domain.XpEventEvaluation,
		RelatedID:      &id,
		OncePerRelated: true,
	})
}

// Compensate appends an adjustment that cancels eventID's final points in the
// season the original was recorded in.
func (s *XpService) Compensate(ctx context.Context, eventID uint, reason string) (RecordResult, error) {
	original, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return RecordResult{}, notFound("find xp event", err, ErrXpEventNotFound, "xp event", eventID)
	}
	if original.Type == domain.XpEventAdjustment {
		return RecordResult{}, domain.NewValidationError("event_id", "adjustments cannot be compensated")
	}

	id := original.ID
	return s.record(ctx, AppendInput{
		AttendantID:    original.AttendantID,
		BasePoints:     -original.FinalPoints,
		Reason:         reason,
		Type:           domain.XpEventAdjustment,
		RelatedID:      &id,
		OncePerRelated: true,
		Unscaled:       true,
		SeasonID:       original.SeasonID,
	})
}

func (s *XpService) record(ctx context.Context, in AppendInput) (RecordResult, error) {
	appended, err := s.ledger.Append(ctx, in)
	if err != nil {
		return RecordResult{}, err
	}

	unlocked, levelUp := s.afterWrite(ctx, appended)

	return RecordResult{Event: appended.Event, Unlocked: unlocked, LevelUp: levelUp}, nil
}

// afterWrite evaluates achievements for a committed write. Evaluation
// failures are logged, never returned: the XP is already on the ledger.
func (s *XpService) afterWrite(ctx context.Context, appended AppendResult) ([]domain.UnlockedAchievement, *domain.LevelUp) {
	attendantID := appended.Event.AttendantID

	unlocked, err := s.achievements.Evaluate(ctx, attendantID, appended.PreviousTotal, appended.NewTotal)
	if err != nil {
		s.logger.Error("achievement evaluation failed",
			zap.Uint("attendant_id", attendantID),
			zap.Uint("event_id", appended.Event.ID),
			zap.Error(err),
		)
	}
	if unlocked == nil {
		unlocked = []domain.UnlockedAchievement{}
	}

	total := appended.NewTotal
	for _, u := range unlocked {
		total += u.XpGained
	}

	return unlocked, domain.DetectLevelUp(appended.PreviousTotal, total, s.LevelStep())
}

// Summary reports the attendant's overall total, level and, when a season is
// active, the season total.
func (s *XpService) Summary(ctx context.Context, attendantID uint) (domain.XpSummary, error) {
	if _, err := s.directory.FindAttendant(ctx, attendantID); err != nil {
		return domain.XpSummary{}, notFound("find attendant", err, ErrAttendantNotFound, "attendant", attendantID)
	}

	total, err := s.events.TotalXP(ctx, attendantID, nil)
	if err != nil {
		return domain.XpSummary{}, storageError("sum xp", err)
	}

	step := s.LevelStep()
	level := domain.LevelForXP(total, step)
	summary := domain.XpSummary{
		AttendantID:    attendantID,
		TotalXP:        total,
		Level:          level,
		CurrentLevelXP: domain.XPForLevel(level, step),
		NextLevelXP:    domain.XPForLevel(level+1, step),
	}

	season, err := s.seasons.GetActive(ctx)
	switch {
	case err == nil:
		seasonXP, err := s.events.TotalXP(ctx, attendantID, &season.ID)
		if err != nil {
			return domain.XpSummary{}, storageError("sum season xp", err)
		}
		id := season.ID
		summary.SeasonID = &id
		summary.SeasonXP = seasonXP
	case !errors.Is(err, domain.ErrNoActiveSeason):
		return domain.XpSummary{}, storageError("find active season", err)
	}

	return summary, nil
}

func (s *XpService) Events(ctx context.Context, attendantID uint, q EventsQuery) ([]domain.XpEvent, error) {
	events, err := s.events.Events(ctx, repository.EventQuery{
		AttendantID: &attendantID,
		SeasonID:    q.SeasonID,
		Type:        q.Type,
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, storageError("list xp events", err)
	}

	return events, nil
}
