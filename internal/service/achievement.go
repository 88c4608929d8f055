package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

const DefaultMaxIterations = 5

type AchievementRepository interface {
	Create(ctx context.Context, achievement domain.AchievementConfig) (domain.AchievementConfig, error)
	Update(ctx context.Context, achievement domain.AchievementConfig) (domain.AchievementConfig, error)
	SetActive(ctx context.Context, id uint, active bool) error
	FindByID(ctx context.Context, id uint) (domain.AchievementConfig, error)
	List(ctx context.Context, activeOnly bool) ([]domain.AchievementConfig, error)
	Unlock(ctx context.Context, unlock domain.UnlockedAchievement) (domain.UnlockedAchievement, bool, error)
	Unlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error)
	UnlockedIDs(ctx context.Context, attendantID uint) (map[uint]bool, error)
}

// RatingSource reads the evaluation history behind the rating criteria.
type RatingSource interface {
	RecentRatings(ctx context.Context, attendantID uint, n int) ([]int, error)
	RatingStats(ctx context.Context, attendantID uint) (int, float64, error)
}

// RankingSource resolves an attendant's leaderboard position, 0 when unranked.
type RankingSource interface {
	Position(ctx context.Context, seasonID *uint, attendantID uint) (int, error)
}

type AchievementInput struct {
	Title       string
	Description string
	XpReward    int
	Criteria    domain.Criteria
}

// errAlreadyUnlocked rolls back a reward whose unlock lost the race.
var errAlreadyUnlocked = errors.New("achievement already unlocked")

type AchievementService struct {
	tx            Transactor
	repo          AchievementRepository
	ledger        Appender
	ratings       RatingSource
	ranking       RankingSource
	seasons       ActiveSeasonFinder
	maxIterations int
	logger        *zap.Logger
	now           func() time.Time
}

func NewAchievementService(
	tx Transactor,
	repo AchievementRepository,
	ledger Appender,
	ratings RatingSource,
	ranking RankingSource,
	seasons ActiveSeasonFinder,
	maxIterations int,
	logger *zap.Logger,
) *AchievementService {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	return &AchievementService{
		tx:            tx,
		repo:          repo,
		ledger:        ledger,
		ratings:       ratings,
		ranking:       ranking,
		seasons:       seasons,
		maxIterations: maxIterations,
		logger:        logger,
		now:           time.Now,
	}
}

// Evaluate unlocks every active achievement the attendant now satisfies and
// returns the new unlocks. XP thresholds are judged against previousTotal and
// newTotal only, so reward XP granted here never crosses a threshold on its
// own. Passes repeat while they produce unlocks, up to maxIterations.
func (s *AchievementService) Evaluate(ctx context.Context, attendantID uint, previousTotal, newTotal int) ([]domain.UnlockedAchievement, error) {
	unlocked := []domain.UnlockedAchievement{}

	for pass := 1; ; pass++ {
		if pass > s.maxIterations {
			s.logger.Warn("achievement evaluation hit its iteration bound",
				zap.Uint("attendant_id", attendantID),
				zap.Int("max_iterations", s.maxIterations),
				zap.Int("unlocked", len(unlocked)),
			)
			return unlocked, nil
		}

		found, err := s.evaluatePass(ctx, attendantID, previousTotal, newTotal)
		unlocked = append(unlocked, found...)
		if err != nil {
			return unlocked, err
		}
		if len(found) == 0 {
			return unlocked, nil
		}
	}
}

func (s *AchievementService) evaluatePass(ctx context.Context, attendantID uint, previousTotal, newTotal int) ([]domain.UnlockedAchievement, error) {
	achievements, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, storageError("list achievements", err)
	}
	have, err := s.repo.UnlockedIDs(ctx, attendantID)
	if err != nil {
		return nil, storageError("list unlocked achievements", err)
	}

	var found []domain.UnlockedAchievement
	for _, a := range achievements {
		if have[a.ID] {
			continue
		}

		ok, err := s.satisfied(ctx, a.Criteria, attendantID, previousTotal, newTotal)
		if err != nil {
			return found, storageError("evaluate achievement criteria", err)
		}
		if !ok {
			continue
		}

		u, err := s.unlock(ctx, attendantID, a)
		if errors.Is(err, errAlreadyUnlocked) {
			continue
		}
		if err != nil {
			return found, err
		}

		s.logger.Info("achievement unlocked",
			zap.Uint("attendant_id", attendantID),
			zap.Uint("achievement_id", a.ID),
			zap.Int("xp_gained", u.XpGained),
		)
		found = append(found, u)
	}

	return found, nil
}

func (s *AchievementService) satisfied(ctx context.Context, criteria domain.Criteria, attendantID uint, previousTotal, newTotal int) (bool, error) {
	switch c := criteria.(type) {
	case domain.XpThreshold:
		return previousTotal < c.Points && c.Points <= newTotal, nil

	case domain.FiveStarStreak:
		ratings, err := s.ratings.RecentRatings(ctx, attendantID, c.Count)
		if err != nil {
			return false, err
		}
		if len(ratings) < c.Count {
			return false, nil
		}
		for _, r := range ratings {
			if r != 5 {
				return false, nil
			}
		}
		return true, nil

	case domain.HighAverage:
		count, avg, err := s.ratings.RatingStats(ctx, attendantID)
		if err != nil {
			return false, err
		}
		return count >= c.MinCount && avg >= c.Rating, nil

	case domain.RankingPosition:
		season, err := s.seasons.GetActive(ctx)
		if errors.Is(err, domain.ErrNoActiveSeason) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		pos, err := s.ranking.Position(ctx, &season.ID, attendantID)
		if err != nil {
			return false, err
		}
		return pos > 0 && pos <= c.Position, nil

	default:
		return false, fmt.Errorf("unknown criteria %T", criteria)
	}
}

// unlock writes the reward event and the unlock row in one transaction. When
// the pair already exists the reward is rolled back and errAlreadyUnlocked is
// returned.
func (s *AchievementService) unlock(ctx context.Context, attendantID uint, a domain.AchievementConfig) (domain.UnlockedAchievement, error) {
	var unlocked domain.UnlockedAchievement
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		u := domain.UnlockedAchievement{
			AttendantID:   attendantID,
			AchievementID: a.ID,
			Title:         a.Title,
			UnlockedAt:    s.now(),
		}

		if a.XpReward > 0 {
			id := a.ID
			reward, err := s.ledger.Append(ctx, AppendInput{
				AttendantID: attendantID,
				BasePoints:  a.XpReward,
				Reason:      "Achievement unlocked: " + a.Title,
				Type:        domain.XpEventAchievementUnlock,
				RelatedID:   &id,
			})
			if err != nil {
				return err
			}
			u.XpGained = reward.Event.FinalPoints
			u.SeasonID = reward.Event.SeasonID
		} else {
			season, err := s.seasons.GetActive(ctx)
			if err == nil {
				id := season.ID
				u.SeasonID = &id
			} else if !errors.Is(err, domain.ErrNoActiveSeason) {
				return err
			}
		}

		created, inserted, err := s.repo.Unlock(ctx, u)
		if err != nil {
			return err
		}
		if !inserted {
			return errAlreadyUnlocked
		}

		unlocked = created
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyUnlocked) {
			return domain.UnlockedAchievement{}, err
		}
		return domain.UnlockedAchievement{}, storageError("unlock achievement", err)
	}

	return unlocked, nil
}

func (s *AchievementService) GetUnlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error) {
	unlocked, err := s.repo.Unlocked(ctx, attendantID, seasonID)
	if err != nil {
		return nil, storageError("list unlocked achievements", err)
	}

	return unlocked, nil
}

func (s *AchievementService) Get(ctx context.Context, id uint) (domain.AchievementConfig, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.AchievementConfig{}, notFound("find achievement", err, ErrAchievementNotFound, "achievement", id)
	}

	return achievement, nil
}

func (s *AchievementService) List(ctx context.Context, activeOnly bool) ([]domain.AchievementConfig, error) {
	achievements, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, storageError("list achievements", err)
	}

	return achievements, nil
}

func (s *AchievementService) Create(ctx context.Context, in AchievementInput) (domain.AchievementConfig, error) {
	if err := validateAchievement(in); err != nil {
		return domain.AchievementConfig{}, err
	}

	created, err := s.repo.Create(ctx, domain.AchievementConfig{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		XpReward:    in.XpReward,
		Active:      true,
		Criteria:    in.Criteria,
	})
	if err != nil {
		return domain.AchievementConfig{}, storageError("create achievement", err)
	}

	return created, nil
}

func (s *AchievementService) Update(ctx context.Context, id uint, in AchievementInput) (domain.AchievementConfig, error) {
	if err := validateAchievement(in); err != nil {
		return domain.AchievementConfig{}, err
	}

	updated, err := s.repo.Update(ctx, domain.AchievementConfig{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		XpReward:    in.XpReward,
		Criteria:    in.Criteria,
	})
	if err != nil {
		return domain.AchievementConfig{}, notFound("update achievement", err, ErrAchievementNotFound, "achievement", id)
	}

	return updated, nil
}

func (s *AchievementService) SetActive(ctx context.Context, id uint, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return notFound("set achievement active", err, ErrAchievementNotFound, "achievement", id)
	}

	return nil
}

func validateAchievement(in AchievementInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	if in.XpReward < 0 {
		return domain.NewValidationError("xp_reward", "must not be negative")
	}
	if in.Criteria == nil {
		return domain.NewValidationError("criteria", "is required")
	}

	return in.Criteria.Validate()
}
