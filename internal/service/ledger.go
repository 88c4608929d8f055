package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository"
)

type LedgerRepository interface {
	Append(ctx context.Context, event domain.XpEvent) (domain.XpEvent, error)
	FindByID(ctx context.Context, id uint) (domain.XpEvent, error)
	TotalXP(ctx context.Context, attendantID uint, seasonID *uint) (int, error)
	Totals(ctx context.Context, seasonID *uint) ([]domain.RankedEntry, error)
	Events(ctx context.Context, q repository.EventQuery) ([]domain.XpEvent, error)
	CountBySeason(ctx context.Context, seasonID uint) (int64, error)
	ExistsForRelated(ctx context.Context, eventType domain.XpEventType, relatedID uint) (bool, error)
}

// ActiveSeasonFinder supplies the season whose multiplier applies to new XP.
type ActiveSeasonFinder interface {
	GetActive(ctx context.Context) (domain.Season, error)
}

type AppendInput struct {
	AttendantID uint
	BasePoints  int
	Reason      string
	Type        domain.XpEventType
	RelatedID   *uint
	// OncePerRelated rejects the write with a ConflictError when an event of
	// the same type already references RelatedID.
	OncePerRelated bool
	// Unscaled records BasePoints with multiplier 1 against SeasonID instead
	// of the active season. Compensating events use it to mirror the original.
	Unscaled bool
	SeasonID *uint
}

// AppendResult carries the attendant's ledger total read just before and just
// after the event was written, inside the same transaction.
type AppendResult struct {
	Event         domain.XpEvent
	PreviousTotal int
	NewTotal      int
}

// LedgerService is the only writer of XP events.
type LedgerService struct {
	tx      Transactor
	repo    LedgerRepository
	seasons ActiveSeasonFinder
	logger  *zap.Logger
	now     func() time.Time
}

func NewLedgerService(tx Transactor, repo LedgerRepository, seasons ActiveSeasonFinder, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		tx:      tx,
		repo:    repo,
		seasons: seasons,
		logger:  logger,
		now:     time.Now,
	}
}

// Append writes one event. It joins the transaction carried by ctx, if any,
// and serializes writers for the same attendant so the before and after
// totals bracket exactly this event.
func (s *LedgerService) Append(ctx context.Context, in AppendInput) (AppendResult, error) {
	if err := validateAppend(in); err != nil {
		return AppendResult{}, err
	}

	var res AppendResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockAttendant(ctx, in.AttendantID); err != nil {
			return err
		}

		if in.OncePerRelated {
			exists, err := s.repo.ExistsForRelated(ctx, in.Type, *in.RelatedID)
			if err != nil {
				return err
			}
			if exists {
				return &domain.ConflictError{
					Reason:  domain.ConflictAlreadyRecorded,
					Message: "xp was already recorded for this " + string(in.Type),
				}
			}
		}

		before, err := s.repo.TotalXP(ctx, in.AttendantID, nil)
		if err != nil {
			return err
		}

		multiplier, seasonID := 1.0, in.SeasonID
		if !in.Unscaled {
			multiplier, seasonID, err = s.activeMultiplier(ctx)
			if err != nil {
				return err
			}
		}

		event, err := s.repo.Append(ctx, domain.XpEvent{
			AttendantID: in.AttendantID,
			BasePoints:  in.BasePoints,
			Multiplier:  multiplier,
			FinalPoints: domain.ApplyMultiplier(in.BasePoints, multiplier),
			Reason:      strings.TrimSpace(in.Reason),
			Type:        in.Type,
			RelatedID:   in.RelatedID,
			SeasonID:    seasonID,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return err
		}

		after, err := s.repo.TotalXP(ctx, in.AttendantID, nil)
		if err != nil {
			return err
		}

		res = AppendResult{Event: event, PreviousTotal: before, NewTotal: after}
		return nil
	})
	if err != nil {
		return AppendResult{}, storageError("append xp event", err)
	}

	s.logger.Debug("xp event appended",
		zap.Uint("event_id", res.Event.ID),
		zap.Uint("attendant_id", in.AttendantID),
		zap.String("type", string(in.Type)),
		zap.Int("final_points", res.Event.FinalPoints),
	)

	return res, nil
}

// activeMultiplier falls back to 1 and no season when none is active.
func (s *LedgerService) activeMultiplier(ctx context.Context) (float64, *uint, error) {
	season, err := s.seasons.GetActive(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSeason) {
			return 1, nil, nil
		}
		return 0, nil, err
	}

	id := season.ID
	return season.Multiplier, &id, nil
}

func validateAppend(in AppendInput) error {
	if in.AttendantID == 0 {
		return domain.NewValidationError("attendant_id", "is required")
	}
	if !in.Type.Valid() {
		return domain.NewValidationError("type", "unknown xp event type "+string(in.Type))
	}
	if strings.TrimSpace(in.Reason) == "" {
		return domain.NewValidationError("reason", "is required")
	}
	if in.BasePoints < 0 && in.Type != domain.XpEventAdjustment {
		return domain.NewValidationError("points", "only adjustments may be negative")
	}
	if in.OncePerRelated && in.RelatedID == nil {
		return domain.NewValidationError("related_id", "is required")
	}

	return nil
}
