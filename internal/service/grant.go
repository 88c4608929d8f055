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

type GrantRepository interface {
	CreateType(ctx context.Context, xpType domain.XpType) (domain.XpType, error)
	UpdateType(ctx context.Context, xpType domain.XpType) (domain.XpType, error)
	SetTypeActive(ctx context.Context, id uint, active bool) error
	FindType(ctx context.Context, id uint) (domain.XpType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]domain.XpType, error)
	CreateGrant(ctx context.Context, grant domain.XpGrant) (domain.XpGrant, error)
	GrantsByAttendant(ctx context.Context, attendantID uint, limit int) ([]domain.XpGrant, error)
	UsageByGranter(ctx context.Context, granterID *uint, from, to time.Time) (domain.GrantUsage, error)
	CountForAttendant(ctx context.Context, attendantID uint, from, to time.Time) (int, error)
	LastGrantedAt(ctx context.Context, attendantID uint) (*time.Time, error)
	Limits(ctx context.Context) (domain.GrantLimitConfig, error)
	SaveLimits(ctx context.Context, limits domain.GrantLimitConfig) (domain.GrantLimitConfig, error)
}

// HolidayCalendar reports whether a day is a public holiday. A nil calendar
// disables the holiday rule.
type HolidayCalendar interface {
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
}

type GrantInput struct {
	AttendantID   uint
	TypeID        uint
	GranterID     uint
	Justification *string
}

type GrantResult struct {
	Grant    domain.XpGrant               `json:"grant"`
	Event    domain.XpEvent               `json:"event"`
	Unlocked []domain.UnlockedAchievement `json:"unlocked"`
	LevelUp  *domain.LevelUp              `json:"level_up,omitempty"`
}

type XpTypeInput struct {
	Name        string
	Description string
	Points      int
	Category    string
}

// GrantService issues manual XP. Validation and persistence of one attempt run
// in a single transaction holding the granter's and the attendant's advisory
// locks, so concurrent grants sharing either see each other's committed totals.
type GrantService struct {
	tx           Transactor
	repo         GrantRepository
	ledger       Appender
	achievements AchievementEvaluator
	directory    DirectoryRepository
	seasons      ActiveSeasonFinder
	holidays     HolidayCalendar
	levelStep    func() int
	logger       *zap.Logger
	now          func() time.Time
}

func NewGrantService(
	tx Transactor,
	repo GrantRepository,
	ledger Appender,
	achievements AchievementEvaluator,
	directory DirectoryRepository,
	seasons ActiveSeasonFinder,
	holidays HolidayCalendar,
	levelStep func() int,
	logger *zap.Logger,
) *GrantService {
	if levelStep == nil {
		levelStep = func() int { return domain.DefaultLevelStep }
	}

	return &GrantService{
		tx:           tx,
		repo:         repo,
		ledger:       ledger,
		achievements: achievements,
		directory:    directory,
		seasons:      seasons,
		holidays:     holidays,
		levelStep:    levelStep,
		logger:       logger,
		now:          time.Now,
	}
}

// Grant validates the attempt against the rules below, in order, and returns
// the first violation:
//  1. attendant and type exist, type is active
//  2. a season is active
//  3. type points within the per-grant bounds
//  4. granter's daily point and grant caps
//  5. attendant's daily grant cap and cooldown
//  6. weekend and holiday restrictions
//  7. justification when required
//
// The grant row and its XP event are committed together, then achievements are
// evaluated against the committed totals.
func (s *GrantService) Grant(ctx context.Context, in GrantInput) (GrantResult, error) {
	now := s.now()

	var (
		grant    domain.XpGrant
		appended AppendResult
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		// Granter before attendant, always. Append takes the attendant lock
		// again, which is re-entrant within the transaction.
		if err := s.tx.LockGranter(ctx, in.GranterID); err != nil {
			return err
		}
		if err := s.tx.LockAttendant(ctx, in.AttendantID); err != nil {
			return err
		}

		xpType, err := s.validate(ctx, in, now)
		if err != nil {
			return err
		}

		typeID := xpType.ID
		appended, err = s.ledger.Append(ctx, AppendInput{
			AttendantID: in.AttendantID,
			BasePoints:  xpType.Points,
			Reason:      grantReason(xpType, in.Justification),
			Type:        domain.XpEventManualGrant,
			RelatedID:   &typeID,
		})
		if err != nil {
			return err
		}

		grant, err = s.repo.CreateGrant(ctx, domain.XpGrant{
			AttendantID:   in.AttendantID,
			TypeID:        xpType.ID,
			TypeName:      xpType.Name,
			Points:        xpType.Points,
			Justification: trimmed(in.Justification),
			GrantedBy:     in.GranterID,
			GrantedAt:     now,
			XpEventID:     appended.Event.ID,
		})
		return err
	})
	if err != nil {
		var limitErr *domain.LimitExceededError
		if errors.As(err, &limitErr) {
			s.logger.Info("grant rejected",
				zap.Uint("granter_id", in.GranterID),
				zap.Uint("attendant_id", in.AttendantID),
				zap.String("rule", limitErr.Rule),
			)
		}
		return GrantResult{}, storageError("grant xp", err)
	}

	s.logger.Info("grant issued",
		zap.Uint("grant_id", grant.ID),
		zap.Uint("granter_id", in.GranterID),
		zap.Uint("attendant_id", in.AttendantID),
		zap.Int("points", grant.Points),
	)

	unlocked, err := s.achievements.Evaluate(ctx, in.AttendantID, appended.PreviousTotal, appended.NewTotal)
	if err != nil {
		s.logger.Error("achievement evaluation failed",
			zap.Uint("attendant_id", in.AttendantID),
			zap.Uint("grant_id", grant.ID),
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

	return GrantResult{
		Grant:    grant,
		Event:    appended.Event,
		Unlocked: unlocked,
		LevelUp:  domain.DetectLevelUp(appended.PreviousTotal, total, s.levelStep()),
	}, nil
}

func (s *GrantService) validate(ctx context.Context, in GrantInput, now time.Time) (domain.XpType, error) {
	attendant, err := s.directory.FindAttendant(ctx, in.AttendantID)
	if err != nil {
		return domain.XpType{}, notFound("find attendant", err, ErrAttendantNotFound, "attendant", in.AttendantID)
	}
	if !attendant.Active {
		return domain.XpType{}, domain.NewValidationError("attendant_id", "attendant is inactive")
	}
	xpType, err := s.repo.FindType(ctx, in.TypeID)
	if err != nil {
		return domain.XpType{}, notFound("find xp type", err, ErrXpTypeNotFound, "xp type", in.TypeID)
	}
	if !xpType.Active {
		return domain.XpType{}, domain.NewValidationError("type_id", "xp type is inactive")
	}

	if _, err := s.seasons.GetActive(ctx); err != nil {
		return domain.XpType{}, err
	}

	limits, err := s.repo.Limits(ctx)
	if err != nil {
		return domain.XpType{}, err
	}

	if xpType.Points < limits.MinPointsPerGrant || xpType.Points > limits.MaxPointsPerGrant {
		return domain.XpType{}, &domain.LimitExceededError{
			Rule:    domain.RulePointsBounds,
			Limit:   limits.MaxPointsPerGrant,
			Current: xpType.Points,
			Message: fmt.Sprintf("points must be between %d and %d", limits.MinPointsPerGrant, limits.MaxPointsPerGrant),
		}
	}

	dayStart, dayEnd := domain.DayBounds(now)
	granterID := in.GranterID
	usage, err := s.repo.UsageByGranter(ctx, &granterID, dayStart, dayEnd)
	if err != nil {
		return domain.XpType{}, err
	}
	if usage.Points+xpType.Points > limits.DailyLimitPoints {
		return domain.XpType{}, &domain.LimitExceededError{
			Rule:    domain.RuleDailyPoints,
			Limit:   limits.DailyLimitPoints,
			Current: usage.Points,
			Message: fmt.Sprintf("granter has %d of %d daily points left", max(limits.DailyLimitPoints-usage.Points, 0), limits.DailyLimitPoints),
		}
	}
	if usage.Grants+1 > limits.DailyLimitGrants {
		return domain.XpType{}, &domain.LimitExceededError{
			Rule:    domain.RuleDailyGrants,
			Limit:   limits.DailyLimitGrants,
			Current: usage.Grants,
			Message: fmt.Sprintf("granter reached the daily limit of %d grants", limits.DailyLimitGrants),
		}
	}

	received, err := s.repo.CountForAttendant(ctx, in.AttendantID, dayStart, dayEnd)
	if err != nil {
		return domain.XpType{}, err
	}
	if received+1 > limits.MaxGrantsPerAttendant {
		return domain.XpType{}, &domain.LimitExceededError{
			Rule:    domain.RuleAttendantDaily,
			Limit:   limits.MaxGrantsPerAttendant,
			Current: received,
			Message: fmt.Sprintf("attendant reached the daily limit of %d grants", limits.MaxGrantsPerAttendant),
		}
	}
	if limits.CooldownMinutes > 0 {
		last, err := s.repo.LastGrantedAt(ctx, in.AttendantID)
		if err != nil {
			return domain.XpType{}, err
		}
		cooldown := time.Duration(limits.CooldownMinutes) * time.Minute
		if last != nil && now.Sub(*last) < cooldown {
			return domain.XpType{}, &domain.LimitExceededError{
				Rule:    domain.RuleCooldown,
				Limit:   limits.CooldownMinutes,
				Current: int(now.Sub(*last).Minutes()),
				Message: fmt.Sprintf("attendant can receive another grant after %s", last.Add(cooldown).Format(time.RFC3339)),
			}
		}
	}

	if !limits.AllowWeekendGrants && domain.IsWeekend(now) {
		return domain.XpType{}, &domain.LimitExceededError{
			Rule:    domain.RuleWeekend,
			Message: "grants are not allowed on weekends",
		}
	}
	if !limits.AllowHolidayGrants && s.holidays != nil {
		holiday, err := s.holidays.IsHoliday(ctx, now)
		if err != nil {
			return domain.XpType{}, err
		}
		if holiday {
			return domain.XpType{}, &domain.LimitExceededError{
				Rule:    domain.RuleHoliday,
				Message: "grants are not allowed on holidays",
			}
		}
	}

	if limits.RequireJustification && trimmed(in.Justification) == nil {
		return domain.XpType{}, domain.NewValidationError("justification", "is required")
	}

	return xpType, nil
}

// GrantMany issues each grant independently and reports every outcome to
// onResult in order. A failed grant does not stop the batch.
func (s *GrantService) GrantMany(ctx context.Context, inputs []GrantInput, onResult func(i int, res GrantResult, err error)) {
	for i, in := range inputs {
		if ctx.Err() != nil {
			onResult(i, GrantResult{}, storageError("grant xp", ctx.Err()))
			continue
		}
		res, err := s.Grant(ctx, in)
		onResult(i, res, err)
	}
}

func (s *GrantService) GrantsByAttendant(ctx context.Context, attendantID uint, limit int) ([]domain.XpGrant, error) {
	grants, err := s.repo.GrantsByAttendant(ctx, attendantID, limit)
	if err != nil {
		return nil, storageError("list grants", err)
	}

	return grants, nil
}

// DailyUsage reports a granter's usage on date's calendar day, or the usage of
// all granters when granterID is nil. A nil date means today.
func (s *GrantService) DailyUsage(ctx context.Context, granterID *uint, date *time.Time) (domain.DailyUsage, error) {
	day := s.now()
	if date != nil {
		day = *date
	}
	start, end := domain.DayBounds(day)

	limits, err := s.repo.Limits(ctx)
	if err != nil {
		return domain.DailyUsage{}, storageError("read grant limits", err)
	}
	used, err := s.repo.UsageByGranter(ctx, granterID, start, end)
	if err != nil {
		return domain.DailyUsage{}, storageError("read grant usage", err)
	}

	return domain.DailyUsage{
		GranterID:       granterID,
		Date:            start,
		Used:            used,
		Limits:          domain.GrantUsage{Grants: limits.DailyLimitGrants, Points: limits.DailyLimitPoints},
		RemainingGrants: max(limits.DailyLimitGrants-used.Grants, 0),
		RemainingPoints: max(limits.DailyLimitPoints-used.Points, 0),
	}, nil
}

func (s *GrantService) GetLimits(ctx context.Context) (domain.GrantLimitConfig, error) {
	limits, err := s.repo.Limits(ctx)
	if err != nil {
		return domain.GrantLimitConfig{}, storageError("read grant limits", err)
	}

	return limits, nil
}

func (s *GrantService) UpdateLimits(ctx context.Context, limits domain.GrantLimitConfig, updatedBy uint) (domain.GrantLimitConfig, error) {
	if err := validateLimits(limits); err != nil {
		return domain.GrantLimitConfig{}, err
	}

	limits.UpdatedBy = updatedBy
	saved, err := s.repo.SaveLimits(ctx, limits)
	if err != nil {
		return domain.GrantLimitConfig{}, storageError("save grant limits", err)
	}

	s.logger.Info("grant limits updated", zap.Uint("updated_by", updatedBy))

	return saved, nil
}

func (s *GrantService) GetType(ctx context.Context, id uint) (domain.XpType, error) {
	xpType, err := s.repo.FindType(ctx, id)
	if err != nil {
		return domain.XpType{}, notFound("find xp type", err, ErrXpTypeNotFound, "xp type", id)
	}

	return xpType, nil
}

func (s *GrantService) ListTypes(ctx context.Context, activeOnly bool) ([]domain.XpType, error) {
	types, err := s.repo.ListTypes(ctx, activeOnly)
	if err != nil {
		return nil, storageError("list xp types", err)
	}

	return types, nil
}

func (s *GrantService) CreateType(ctx context.Context, in XpTypeInput, createdBy uint) (domain.XpType, error) {
	if err := validateXpType(in); err != nil {
		return domain.XpType{}, err
	}

	created, err := s.repo.CreateType(ctx, domain.XpType{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Points:      in.Points,
		Category:    typeCategory(in.Category),
		Active:      true,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return domain.XpType{}, typeError("create xp type", err)
	}

	return created, nil
}

func (s *GrantService) UpdateType(ctx context.Context, id uint, in XpTypeInput) (domain.XpType, error) {
	if err := validateXpType(in); err != nil {
		return domain.XpType{}, err
	}

	updated, err := s.repo.UpdateType(ctx, domain.XpType{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Points:      in.Points,
		Category:    typeCategory(in.Category),
	})
	if err != nil {
		if errors.Is(err, ErrXpTypeNotFound) {
			return domain.XpType{}, domain.NewNotFoundError("xp type", id)
		}
		return domain.XpType{}, typeError("update xp type", err)
	}

	return updated, nil
}

// SetTypeActive hides or restores a type for future grants. Past grants keep
// their snapshot.
func (s *GrantService) SetTypeActive(ctx context.Context, id uint, active bool) error {
	if err := s.repo.SetTypeActive(ctx, id, active); err != nil {
		return notFound("set xp type active", err, ErrXpTypeNotFound, "xp type", id)
	}

	return nil
}

func typeError(op string, err error) error {
	if errors.Is(err, ErrXpTypeNameExists) {
		return &domain.ConflictError{Reason: domain.ConflictDuplicate, Message: "an xp type with this name already exists"}
	}

	return storageError(op, err)
}

func typeCategory(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return "general"
}

func grantReason(xpType domain.XpType, justification *string) string {
	if j := trimmed(justification); j != nil {
		return xpType.Name + ": " + *j
	}
	return xpType.Name
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func validateXpType(in XpTypeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if in.Points <= 0 {
		return domain.NewValidationError("points", "must be positive")
	}

	return nil
}

func validateLimits(l domain.GrantLimitConfig) error {
	switch {
	case l.MinPointsPerGrant < 1:
		return domain.NewValidationError("min_points_per_grant", "must be at least 1")
	case l.MaxPointsPerGrant < l.MinPointsPerGrant:
		return domain.NewValidationError("max_points_per_grant", "must not be below min_points_per_grant")
	case l.DailyLimitPoints < 1:
		return domain.NewValidationError("daily_limit_points", "must be positive")
	case l.DailyLimitGrants < 1:
		return domain.NewValidationError("daily_limit_grants", "must be positive")
	case l.MaxGrantsPerAttendant < 1:
		return domain.NewValidationError("max_grants_per_attendant", "must be positive")
	case l.CooldownMinutes < 0:
		return domain.NewValidationError("cooldown_minutes", "must not be negative")
	case l.AutoApproveLimit < 0:
		return domain.NewValidationError("auto_approve_limit", "must not be negative")
	}

	return nil
}
