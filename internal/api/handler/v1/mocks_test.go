package v1

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/notify"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/service"
)

type mockSeasonService struct{ mock.Mock }

func (m *mockSeasonService) GetActive(ctx context.Context) (domain.Season, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Season), args.Error(1)
}

func (m *mockSeasonService) Get(ctx context.Context, id uint) (domain.Season, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Season), args.Error(1)
}

func (m *mockSeasonService) List(ctx context.Context) ([]domain.Season, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Season), args.Error(1)
}

func (m *mockSeasonService) Create(ctx context.Context, in service.SeasonInput) (domain.Season, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Season), args.Error(1)
}

func (m *mockSeasonService) Update(ctx context.Context, id uint, in service.SeasonInput) (domain.Season, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.Season), args.Error(1)
}

func (m *mockSeasonService) SetMultiplier(ctx context.Context, id uint, multiplier float64) error {
	return m.Called(ctx, id, multiplier).Error(0)
}

func (m *mockSeasonService) Activate(ctx context.Context, id uint) (domain.Season, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Season), args.Error(1)
}

func (m *mockSeasonService) Deactivate(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSeasonService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockXpService struct{ mock.Mock }

func (m *mockXpService) RecordXP(ctx context.Context, in service.RecordInput) (service.RecordResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.RecordResult), args.Error(1)
}

func (m *mockXpService) RecordEvaluationXP(ctx context.Context, evaluationID uint) (service.RecordResult, error) {
	args := m.Called(ctx, evaluationID)
	return args.Get(0).(service.RecordResult), args.Error(1)
}

func (m *mockXpService) Compensate(ctx context.Context, eventID uint, reason string) (service.RecordResult, error) {
	args := m.Called(ctx, eventID, reason)
	return args.Get(0).(service.RecordResult), args.Error(1)
}

func (m *mockXpService) Summary(ctx context.Context, attendantID uint) (domain.XpSummary, error) {
	args := m.Called(ctx, attendantID)
	return args.Get(0).(domain.XpSummary), args.Error(1)
}

func (m *mockXpService) Events(ctx context.Context, attendantID uint, q service.EventsQuery) ([]domain.XpEvent, error) {
	args := m.Called(ctx, attendantID, q)
	return args.Get(0).([]domain.XpEvent), args.Error(1)
}

type mockGrantService struct{ mock.Mock }

func (m *mockGrantService) Grant(ctx context.Context, in service.GrantInput) (service.GrantResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.GrantResult), args.Error(1)
}

func (m *mockGrantService) GrantMany(ctx context.Context, inputs []service.GrantInput, onResult func(i int, res service.GrantResult, err error)) {
	m.Called(ctx, inputs, onResult)
}

func (m *mockGrantService) GrantsByAttendant(ctx context.Context, attendantID uint, limit int) ([]domain.XpGrant, error) {
	args := m.Called(ctx, attendantID, limit)
	return args.Get(0).([]domain.XpGrant), args.Error(1)
}

func (m *mockGrantService) DailyUsage(ctx context.Context, granterID *uint, date *time.Time) (domain.DailyUsage, error) {
	args := m.Called(ctx, granterID, date)
	return args.Get(0).(domain.DailyUsage), args.Error(1)
}

func (m *mockGrantService) GetLimits(ctx context.Context) (domain.GrantLimitConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.GrantLimitConfig), args.Error(1)
}

func (m *mockGrantService) UpdateLimits(ctx context.Context, limits domain.GrantLimitConfig, updatedBy uint) (domain.GrantLimitConfig, error) {
	args := m.Called(ctx, limits, updatedBy)
	return args.Get(0).(domain.GrantLimitConfig), args.Error(1)
}

func (m *mockGrantService) GetType(ctx context.Context, id uint) (domain.XpType, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.XpType), args.Error(1)
}

func (m *mockGrantService) ListTypes(ctx context.Context, activeOnly bool) ([]domain.XpType, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.XpType), args.Error(1)
}

func (m *mockGrantService) CreateType(ctx context.Context, in service.XpTypeInput, createdBy uint) (domain.XpType, error) {
	args := m.Called(ctx, in, createdBy)
	return args.Get(0).(domain.XpType), args.Error(1)
}

func (m *mockGrantService) UpdateType(ctx context.Context, id uint, in service.XpTypeInput) (domain.XpType, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.XpType), args.Error(1)
}

func (m *mockGrantService) SetTypeActive(ctx context.Context, id uint, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type mockAchievementService struct{ mock.Mock }

func (m *mockAchievementService) GetUnlocked(ctx context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error) {
	args := m.Called(ctx, attendantID, seasonID)
	return args.Get(0).([]domain.UnlockedAchievement), args.Error(1)
}

func (m *mockAchievementService) Get(ctx context.Context, id uint) (domain.AchievementConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AchievementConfig), args.Error(1)
}

func (m *mockAchievementService) List(ctx context.Context, activeOnly bool) ([]domain.AchievementConfig, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.AchievementConfig), args.Error(1)
}

func (m *mockAchievementService) Create(ctx context.Context, in service.AchievementInput) (domain.AchievementConfig, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.AchievementConfig), args.Error(1)
}

func (m *mockAchievementService) Update(ctx context.Context, id uint, in service.AchievementInput) (domain.AchievementConfig, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.AchievementConfig), args.Error(1)
}

func (m *mockAchievementService) SetActive(ctx context.Context, id uint, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type mockLeaderboardService struct{ mock.Mock }

func (m *mockLeaderboardService) Rank(ctx context.Context, seasonID *uint, limit int) ([]domain.RankedEntry, error) {
	args := m.Called(ctx, seasonID, limit)
	return args.Get(0).([]domain.RankedEntry), args.Error(1)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n notify.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, n)
	return nil
}

func (d *recordingDispatcher) kinds() []notify.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Kind, len(d.notes))
	for i, n := range d.notes {
		out[i] = n.Kind
	}
	return out
}
