package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

const granter uint = 77

func setLimits(t *testing.T, h *harness, mutate func(l *domain.GrantLimitConfig)) {
	t.Helper()
	limits := domain.DefaultGrantLimitConfig()
	mutate(&limits)
	_, err := h.grants.UpdateLimits(context.Background(), limits, granter)
	require.NoError(t, err)
}

func grantHarness(t *testing.T) (*harness, domain.XpType) {
	t.Helper()
	h := newHarness(t)
	h.addAttendant(1)
	h.addAttendant(2)
	h.activeSeason(t, 1)
	return h, h.xpType(t, "Helped a colleague", 40)
}

func TestGrantService_Grant(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)
	season, err := h.seasons.GetActive(ctx)
	require.NoError(t, err)
	require.NoError(t, h.seasons.SetMultiplier(ctx, season.ID, 1.5))

	res, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("  covered a shift ")})
	require.NoError(t, err)

	grant := res.Grant
	assert.NotZero(t, grant.ID)
	assert.Equal(t, 40, grant.Points)
	assert.Equal(t, "Helped a colleague", grant.TypeName)
	assert.Equal(t, granter, grant.GrantedBy)
	assert.Equal(t, wednesday, grant.GrantedAt)
	require.NotNil(t, grant.Justification)
	assert.Equal(t, "covered a shift", *grant.Justification)

	events, err := h.xp.Events(ctx, 1, EventsQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, grant.XpEventID, events[0].ID)
	assert.Equal(t, domain.XpEventManualGrant, events[0].Type)
	assert.Equal(t, 60, events[0].FinalPoints)
	assert.Equal(t, "Helped a colleague: covered a shift", events[0].Reason)
	assert.Equal(t, events[0], res.Event)

	assert.Contains(t, h.tx.locks, "granter")
	assert.Empty(t, res.Unlocked)
	assert.Nil(t, res.LevelUp)
}

func TestGrantService_GrantSnapshotsPoints(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)

	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("great work")})
	require.NoError(t, err)

	_, err = h.grants.UpdateType(ctx, xpType.ID, XpTypeInput{Name: xpType.Name, Points: 90})
	require.NoError(t, err)

	grants, err := h.grants.GrantsByAttendant(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, 40, grants[0].Points)
}

func TestGrantService_GrantRequiresActiveSeason(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAttendant(1)
	xpType := h.xpType(t, "Helped a colleague", 40)

	// No justification either: the season rule comes first.
	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter})
	require.ErrorIs(t, err, domain.ErrNoActiveSeason)

	events, grants, _ := h.counts()
	assert.Zero(t, events)
	assert.Zero(t, grants)
}

func TestGrantService_GrantValidationRules(t *testing.T) {
	ctx := context.Background()
	saturday := time.Date(2024, time.March, 16, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		setup   func(t *testing.T, h *harness, xpType domain.XpType) GrantInput
		wantErr error
		rule    string
	}{
		{
			name: "unknown attendant",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				return GrantInput{AttendantID: 99, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "unknown type",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				return GrantInput{AttendantID: 1, TypeID: 999, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "inactive type",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				require.NoError(t, h.grants.SetTypeActive(ctx, xpType.ID, false))
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "points above maximum",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.MaxPointsPerGrant = 30 })
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RulePointsBounds,
		},
		{
			name: "points below minimum",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.MinPointsPerGrant = 50 })
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RulePointsBounds,
		},
		{
			name: "granter daily points",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.DailyLimitPoints = 70 })
				_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 2, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
				require.NoError(t, err)
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleDailyPoints,
		},
		{
			name: "granter daily grants",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.DailyLimitGrants = 1 })
				_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 2, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
				require.NoError(t, err)
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleDailyGrants,
		},
		{
			name: "attendant daily grants",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.MaxGrantsPerAttendant = 1 })
				_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: 5, Justification: strPtr("x")})
				require.NoError(t, err)
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleAttendantDaily,
		},
		{
			name: "cooldown",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.CooldownMinutes = 30 })
				_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: 5, Justification: strPtr("x")})
				require.NoError(t, err)
				h.grants.now = func() time.Time { return wednesday.Add(29 * time.Minute) }
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleCooldown,
		},
		{
			name: "weekend",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.AllowWeekendGrants = false })
				h.grants.now = func() time.Time { return saturday }
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleWeekend,
		},
		{
			name: "holiday",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.AllowHolidayGrants = false })
				h.store.holidays[wednesday.Format(time.DateOnly)] = true
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleHoliday,
		},
		{
			name: "justification required",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("   ")}
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "daily limit reported before justification",
			setup: func(t *testing.T, h *harness, xpType domain.XpType) GrantInput {
				setLimits(t, h, func(l *domain.GrantLimitConfig) { l.DailyLimitPoints = 10 })
				return GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter}
			},
			wantErr: domain.ErrLimitExceeded,
			rule:    domain.RuleDailyPoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, xpType := grantHarness(t)
			in := tt.setup(t, h, xpType)
			eventsBefore, grantsBefore, _ := h.counts()

			_, err := h.grants.Grant(ctx, in)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.rule != "" {
				var lErr *domain.LimitExceededError
				require.ErrorAs(t, err, &lErr)
				assert.Equal(t, tt.rule, lErr.Rule)
			}

			events, grants, _ := h.counts()
			assert.Equal(t, eventsBefore, events)
			assert.Equal(t, grantsBefore, grants)
		})
	}
}

func TestGrantService_CooldownElapsed(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.CooldownMinutes = 30 })

	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)

	h.grants.now = func() time.Time { return wednesday.Add(30 * time.Minute) }
	_, err = h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)
}

func TestGrantService_DailyLimitsResetNextDay(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.DailyLimitGrants = 1 })

	h.grants.now = func() time.Time { return time.Date(2024, time.March, 13, 23, 59, 59, 0, time.Local) }
	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)

	h.grants.now = func() time.Time { return time.Date(2024, time.March, 14, 0, 0, 0, 0, time.Local) }
	_, err = h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)
}

func TestGrantService_ConcurrentGrantsRespectDailyPoints(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAttendant(1)
	h.addAttendant(2)
	h.activeSeason(t, 1)
	xpType := h.xpType(t, "Big help", 60)
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.DailyLimitPoints = 100 })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.grants.Grant(ctx, GrantInput{
				AttendantID:   uint(i + 1),
				TypeID:        xpType.ID,
				GranterID:     granter,
				Justification: strPtr("rush hour"),
			})
		}(i)
	}
	wg.Wait()

	succeeded, limited := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, domain.ErrLimitExceeded):
			limited++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, limited)

	usage, err := h.grants.DailyUsage(ctx, uintPtr(granter), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.GrantUsage{Grants: 1, Points: 60}, usage.Used)
}

func TestGrantService_ConcurrentGrantersRespectAttendantCap(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAttendant(1)
	h.activeSeason(t, 1)
	xpType := h.xpType(t, "Covered a shift", 20)
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.MaxGrantsPerAttendant = 1 })
	h.tx.keyed = true

	// Each attempt waits after reading the attendant's count until the other
	// one has read it too, or briefly when the other is blocked on a lock.
	var counted sync.WaitGroup
	counted.Add(2)
	bothCounted := make(chan struct{})
	go func() {
		counted.Wait()
		close(bothCounted)
	}()
	h.store.afterCount = func() {
		counted.Done()
		select {
		case <-bothCounted:
		case <-time.After(100 * time.Millisecond):
		}
	}

	granters := []uint{100, 101}
	errs := make([]error, len(granters))
	var wg sync.WaitGroup
	for i, g := range granters {
		wg.Add(1)
		go func(i int, g uint) {
			defer wg.Done()
			_, errs[i] = h.grants.Grant(ctx, GrantInput{
				AttendantID:   1,
				TypeID:        xpType.ID,
				GranterID:     g,
				Justification: strPtr("double booked"),
			})
		}(i, g)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var limitErr *domain.LimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, domain.RuleAttendantDaily, limitErr.Rule)
	}
	assert.Equal(t, 1, succeeded)

	grants, err := h.grants.GrantsByAttendant(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestGrantService_GrantLocksGranterBeforeAttendant(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)
	h.tx.locks = nil

	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(h.tx.locks), 2)
	assert.Equal(t, []string{"granter", "attendant"}, h.tx.locks[:2])
}

func TestGrantService_GrantIsAtomic(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)
	h.store.failOn["CreateGrant"] = errStoreDown

	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.ErrorIs(t, err, domain.ErrStorage)

	events, grants, _ := h.counts()
	assert.Zero(t, events)
	assert.Zero(t, grants)

	// Retrying once the store recovers succeeds and nothing was double counted.
	delete(h.store.failOn, "CreateGrant")
	_, err = h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, 40, h.ledgerSum(1))
}

func TestGrantService_LedgerSumInvariant(t *testing.T) {
	ctx := context.Background()
	h, small := grantHarness(t)
	big := h.xpType(t, "Saved the day", 150)
	h.achievement(t, "Centurion", 25, domain.XpThreshold{Points: 100})
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.MaxGrantsPerAttendant = 10 })

	var unlocked int
	for _, typeID := range []uint{small.ID, big.ID, small.ID, small.ID} {
		res, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: typeID, GranterID: granter, Justification: strPtr("x")})
		require.NoError(t, err)
		unlocked += len(res.Unlocked)

		summary, err := h.xp.Summary(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, h.ledgerSum(1), summary.TotalXP)
	}

	assert.Equal(t, 1, unlocked)
	assert.Equal(t, 40+150+25+40+40, h.ledgerSum(1))
}

func TestGrantService_GrantReportsUnlocksAndLevelUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addAttendant(1)
	h.activeSeason(t, 1)
	xpType := h.xpType(t, "Saved the day", 90)
	h.achievement(t, "First grant", 20, domain.XpThreshold{Points: 90})

	res, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, 20, res.Unlocked[0].XpGained)
	assert.Equal(t, &domain.LevelUp{PreviousLevel: 1, NewLevel: 2}, res.LevelUp)
}

func TestGrantService_AutoApproveLimitIsInert(t *testing.T) {
	ctx := context.Background()
	h, _ := grantHarness(t)
	xpType := h.xpType(t, "Saved the day", 150)
	setLimits(t, h, func(l *domain.GrantLimitConfig) { l.AutoApproveLimit = 10 })

	limits, err := h.grants.GetLimits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, limits.AutoApproveLimit)
	assert.Equal(t, granter, limits.UpdatedBy)

	_, err = h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
	require.NoError(t, err)
}

func TestGrantService_DailyUsage(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)

	for _, attendant := range []uint{1, 2} {
		_, err := h.grants.Grant(ctx, GrantInput{AttendantID: attendant, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")})
		require.NoError(t, err)
	}
	_, err := h.grants.Grant(ctx, GrantInput{AttendantID: 1, TypeID: xpType.ID, GranterID: 5, Justification: strPtr("x")})
	require.NoError(t, err)

	usage, err := h.grants.DailyUsage(ctx, uintPtr(granter), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.GrantUsage{Grants: 2, Points: 80}, usage.Used)
	assert.Equal(t, domain.GrantUsage{Grants: 20, Points: 500}, usage.Limits)
	assert.Equal(t, 18, usage.RemainingGrants)
	assert.Equal(t, 420, usage.RemainingPoints)

	all, err := h.grants.DailyUsage(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.GrantUsage{Grants: 3, Points: 120}, all.Used)

	yesterday := wednesday.AddDate(0, 0, -1)
	past, err := h.grants.DailyUsage(ctx, uintPtr(granter), &yesterday)
	require.NoError(t, err)
	assert.Zero(t, past.Used.Grants)
}

func TestGrantService_UpdateLimitsValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	tests := []struct {
		name   string
		mutate func(l *domain.GrantLimitConfig)
		field  string
	}{
		{"min below one", func(l *domain.GrantLimitConfig) { l.MinPointsPerGrant = 0 }, "min_points_per_grant"},
		{"max below min", func(l *domain.GrantLimitConfig) { l.MaxPointsPerGrant = 0 }, "max_points_per_grant"},
		{"no daily points", func(l *domain.GrantLimitConfig) { l.DailyLimitPoints = 0 }, "daily_limit_points"},
		{"no daily grants", func(l *domain.GrantLimitConfig) { l.DailyLimitGrants = 0 }, "daily_limit_grants"},
		{"no attendant grants", func(l *domain.GrantLimitConfig) { l.MaxGrantsPerAttendant = 0 }, "max_grants_per_attendant"},
		{"negative cooldown", func(l *domain.GrantLimitConfig) { l.CooldownMinutes = -1 }, "cooldown_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := domain.DefaultGrantLimitConfig()
			tt.mutate(&limits)

			_, err := h.grants.UpdateLimits(ctx, limits, granter)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestGrantService_Types(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	created, err := h.grants.CreateType(ctx, XpTypeInput{Name: " Mentoring ", Points: 25}, 3)
	require.NoError(t, err)
	assert.Equal(t, "Mentoring", created.Name)
	assert.Equal(t, "general", created.Category)
	assert.True(t, created.Active)
	assert.Equal(t, uint(3), created.CreatedBy)

	_, err = h.grants.CreateType(ctx, XpTypeInput{Name: "Mentoring", Points: 5}, 3)
	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, domain.ConflictDuplicate, cErr.Reason)

	_, err = h.grants.CreateType(ctx, XpTypeInput{Name: "Zero", Points: 0}, 3)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.grants.UpdateType(ctx, 999, XpTypeInput{Name: "Ghost", Points: 5})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, h.grants.SetTypeActive(ctx, created.ID, false))
	active, err := h.grants.ListTypes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := h.grants.ListTypes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = h.grants.GetType(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGrantService_GrantMany(t *testing.T) {
	ctx := context.Background()
	h, xpType := grantHarness(t)

	inputs := []GrantInput{
		{AttendantID: 1, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")},
		{AttendantID: 99, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")},
		{AttendantID: 2, TypeID: xpType.ID, GranterID: granter, Justification: strPtr("x")},
	}

	var outcomes []error
	h.grants.GrantMany(ctx, inputs, func(i int, res GrantResult, err error) {
		assert.Equal(t, len(outcomes), i)
		outcomes = append(outcomes, err)
	})

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0])
	assert.ErrorIs(t, outcomes[1], domain.ErrNotFound)
	assert.NoError(t, outcomes[2])
}
