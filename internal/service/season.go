package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	LockSeasons(ctx context.Context) error
	LockGranter(ctx context.Context, granterID uint) error
	LockAttendant(ctx context.Context, attendantID uint) error
}

type SeasonRepository interface {
	Create(ctx context.Context, season domain.Season) (domain.Season, error)
	Update(ctx context.Context, season domain.Season) (domain.Season, error)
	UpdateMultiplier(ctx context.Context, id uint, multiplier float64) error
	FindByID(ctx context.Context, id uint) (domain.Season, error)
	FindActive(ctx context.Context) (domain.Season, error)
	List(ctx context.Context) ([]domain.Season, error)
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID uint) ([]domain.Season, error)
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
}

// SeasonEventCounter reports how many ledger events reference a season.
type SeasonEventCounter interface {
	CountBySeason(ctx context.Context, seasonID uint) (int64, error)
}

type SeasonInput struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Multiplier float64
}

// SeasonService owns the single-active-season invariant. Every mutation runs
// under the season advisory lock.
type SeasonService struct {
	tx     Transactor
	repo   SeasonRepository
	events SeasonEventCounter
	logger *zap.Logger
}

func NewSeasonService(tx Transactor, repo SeasonRepository, events SeasonEventCounter, logger *zap.Logger) *SeasonService {
	return &SeasonService{
		tx:     tx,
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// GetActive returns domain.ErrNoActiveSeason when no season is active.
func (s *SeasonService) GetActive(ctx context.Context) (domain.Season, error) {
	season, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, ErrSeasonNotFound) {
			return domain.Season{}, domain.ErrNoActiveSeason
		}
		return domain.Season{}, storageError("find active season", err)
	}

	return season, nil
}

func (s *SeasonService) Get(ctx context.Context, id uint) (domain.Season, error) {
	season, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Season{}, notFound("find season", err, ErrSeasonNotFound, "season", id)
	}

	return season, nil
}

func (s *SeasonService) List(ctx context.Context) ([]domain.Season, error) {
	seasons, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("list seasons", err)
	}

	return seasons, nil
}

func (s *SeasonService) Create(ctx context.Context, in SeasonInput) (domain.Season, error) {
	if err := validateSeason(in); err != nil {
		return domain.Season{}, err
	}

	var created domain.Season
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockSeasons(ctx); err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, in, 0); err != nil {
			return err
		}

		var err error
		created, err = s.repo.Create(ctx, domain.Season{
			Name:       strings.TrimSpace(in.Name),
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			Multiplier: in.Multiplier,
		})
		return err
	})
	if err != nil {
		return domain.Season{}, storageError("create season", err)
	}

	s.logger.Info("season created", zap.Uint("season_id", created.ID), zap.String("name", created.Name))

	return created, nil
}

func (s *SeasonService) Update(ctx context.Context, id uint, in SeasonInput) (domain.Season, error) {
	if err := validateSeason(in); err != nil {
		return domain.Season{}, err
	}

	var updated domain.Season
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockSeasons(ctx); err != nil {
			return err
		}
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return notFound("find season", err, ErrSeasonNotFound, "season", id)
		}
		if err := s.checkOverlap(ctx, in, id); err != nil {
			return err
		}

		existing.Name = strings.TrimSpace(in.Name)
		existing.StartDate = in.StartDate
		existing.EndDate = in.EndDate
		existing.Multiplier = in.Multiplier

		updated, err = s.repo.Update(ctx, existing)
		return err
	})
	if err != nil {
		return domain.Season{}, storageError("update season", err)
	}

	return updated, nil
}

// SetMultiplier changes only the multiplier. Past events keep the one they
// were recorded with.
func (s *SeasonService) SetMultiplier(ctx context.Context, id uint, multiplier float64) error {
	if multiplier < domain.MinSeasonMultiplier {
		return domain.NewValidationError("multiplier", "must be at least 0.1")
	}

	if err := s.repo.UpdateMultiplier(ctx, id, multiplier); err != nil {
		return notFound("update season multiplier", err, ErrSeasonNotFound, "season", id)
	}

	return nil
}

// Activate deactivates whichever season is active and activates id in the
// same transaction.
func (s *SeasonService) Activate(ctx context.Context, id uint) (domain.Season, error) {
	var season domain.Season
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockSeasons(ctx); err != nil {
			return err
		}

		var err error
		season, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return notFound("find season", err, ErrSeasonNotFound, "season", id)
		}
		if err := s.repo.DeactivateAll(ctx); err != nil {
			return err
		}
		if err := s.repo.SetActive(ctx, id, true); err != nil {
			return err
		}

		season.Active = true
		return nil
	})
	if err != nil {
		return domain.Season{}, storageError("activate season", err)
	}

	s.logger.Info("season activated", zap.Uint("season_id", id))

	return season, nil
}

func (s *SeasonService) Deactivate(ctx context.Context, id uint) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockSeasons(ctx); err != nil {
			return err
		}
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return notFound("find season", err, ErrSeasonNotFound, "season", id)
		}

		return s.repo.SetActive(ctx, id, false)
	})
	if err != nil {
		return storageError("deactivate season", err)
	}

	s.logger.Info("season deactivated", zap.Uint("season_id", id))

	return nil
}

// Delete refuses to remove the active season or one that ledger events
// already reference.
func (s *SeasonService) Delete(ctx context.Context, id uint) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockSeasons(ctx); err != nil {
			return err
		}
		season, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return notFound("find season", err, ErrSeasonNotFound, "season", id)
		}
		if season.Active {
			return &domain.ConflictError{
				Reason:  domain.ConflictSeasonActive,
				Message: "deactivate the season before deleting it",
			}
		}

		count, err := s.events.CountBySeason(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			s.logger.Warn("refusing to delete season with ledger events",
				zap.Uint("season_id", id), zap.Int64("events", count))
			return &domain.ConflictError{
				Reason:  domain.ConflictSeasonHasEvents,
				Message: "season has recorded xp events",
			}
		}

		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return storageError("delete season", err)
	}

	return nil
}

func (s *SeasonService) checkOverlap(ctx context.Context, in SeasonInput, excludeID uint) error {
	overlapping, err := s.repo.FindOverlapping(ctx, in.StartDate, in.EndDate, excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return &domain.ConflictError{
			Reason:  domain.ConflictOverlappingPeriod,
			Message: "period overlaps season " + overlapping[0].Name,
		}
	}

	return nil
}

func validateSeason(in SeasonInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return domain.NewValidationError("end_date", "must be after start_date")
	}
	if in.EndDate.Sub(in.StartDate) < domain.MinSeasonDuration {
		return domain.NewValidationError("end_date", "season must last at least one day")
	}
	if in.Multiplier < domain.MinSeasonMultiplier {
		return domain.NewValidationError("multiplier", "must be at least 0.1")
	}

	return nil
}
