package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/repository"
)

var errStoreDown = errors.New("connection reset by peer")

// memStore backs every fake repository. Writes made inside a failed fakeTx
// transaction are rolled back from a snapshot.
type memStore struct {
	mu           sync.Mutex
	nextID       uint
	seasons      map[uint]domain.Season
	events       []domain.XpEvent
	types        map[uint]domain.XpType
	grants       []domain.XpGrant
	limits       *domain.GrantLimitConfig
	achievements map[uint]domain.AchievementConfig
	unlocks      []domain.UnlockedAchievement
	attendants   map[uint]domain.Attendant
	evaluations  map[uint]domain.Evaluation
	holidays     map[string]bool
	failOn       map[string]error
	// afterCount runs after CountForAttendant releases the store.
	afterCount func()
}

func newMemStore() *memStore {
	return &memStore{
		seasons:      map[uint]domain.Season{},
		types:        map[uint]domain.XpType{},
		achievements: map[uint]domain.AchievementConfig{},
		attendants:   map[uint]domain.Attendant{},
		evaluations:  map[uint]domain.Evaluation{},
		holidays:     map[string]bool{},
		failOn:       map[string]error{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := &memStore{
		nextID:       m.nextID,
		seasons:      make(map[uint]domain.Season, len(m.seasons)),
		events:       append([]domain.XpEvent(nil), m.events...),
		types:        make(map[uint]domain.XpType, len(m.types)),
		grants:       append([]domain.XpGrant(nil), m.grants...),
		achievements: make(map[uint]domain.AchievementConfig, len(m.achievements)),
		unlocks:      append([]domain.UnlockedAchievement(nil), m.unlocks...),
	}
	for k, v := range m.seasons {
		cp.seasons[k] = v
	}
	for k, v := range m.types {
		cp.types[k] = v
	}
	for k, v := range m.achievements {
		cp.achievements[k] = v
	}
	if m.limits != nil {
		l := *m.limits
		cp.limits = &l
	}

	return cp
}

func (m *memStore) restore(cp *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID = cp.nextID
	m.seasons = cp.seasons
	m.events = cp.events
	m.types = cp.types
	m.grants = cp.grants
	m.achievements = cp.achievements
	m.unlocks = cp.unlocks
	m.limits = cp.limits
}

type fakeTxKey struct{}

// heldLocks are the keyed locks one fake transaction owns until it ends.
type heldLocks struct {
	keys    map[string]bool
	mutexes []*sync.Mutex
}

func (h *heldLocks) release() {
	for i := len(h.mutexes) - 1; i >= 0; i-- {
		h.mutexes[i].Unlock()
	}
}

// fakeTx runs one transaction at a time by default, which is at least as
// strict as the advisory locks taken in production. With keyed set it runs
// transactions concurrently and only serializes holders of the same lock, the
// way pg_advisory_xact_lock does. Keyed mode does not roll writes back.
type fakeTx struct {
	mu    sync.Mutex
	store *memStore
	keyed bool

	lockMu  sync.Mutex
	locks   []string
	mutexes map[string]*sync.Mutex
}

func (t *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}

	held := &heldLocks{keys: map[string]bool{}}
	ctx = context.WithValue(ctx, fakeTxKey{}, held)
	if t.keyed {
		defer held.release()
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}

	return nil
}

func (t *fakeTx) lock(ctx context.Context, name string, id uint) error {
	held, ok := ctx.Value(fakeTxKey{}).(*heldLocks)
	if !ok {
		return errors.New("lock outside transaction")
	}

	t.lockMu.Lock()
	t.locks = append(t.locks, name)
	key := fmt.Sprintf("%s:%d", name, id)
	if !t.keyed || held.keys[key] {
		t.lockMu.Unlock()
		return nil
	}
	if t.mutexes == nil {
		t.mutexes = map[string]*sync.Mutex{}
	}
	m, ok := t.mutexes[key]
	if !ok {
		m = &sync.Mutex{}
		t.mutexes[key] = m
	}
	t.lockMu.Unlock()

	m.Lock()
	held.keys[key] = true
	held.mutexes = append(held.mutexes, m)
	return nil
}

func (t *fakeTx) LockSeasons(ctx context.Context) error { return t.lock(ctx, "seasons", 0) }

func (t *fakeTx) LockGranter(ctx context.Context, id uint) error { return t.lock(ctx, "granter", id) }

func (t *fakeTx) LockAttendant(ctx context.Context, id uint) error {
	return t.lock(ctx, "attendant", id)
}

type fakeSeasonRepo struct{ *memStore }

func (r fakeSeasonRepo) Create(_ context.Context, s domain.Season) (domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("CreateSeason"); err != nil {
		return domain.Season{}, err
	}
	s.ID = r.id()
	r.seasons[s.ID] = s
	return s, nil
}

func (r fakeSeasonRepo) Update(_ context.Context, s domain.Season) (domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seasons[s.ID]; !ok {
		return domain.Season{}, repository.ErrSeasonNotFound
	}
	r.seasons[s.ID] = s
	return s, nil
}

func (r fakeSeasonRepo) UpdateMultiplier(_ context.Context, id uint, m float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return repository.ErrSeasonNotFound
	}
	s.Multiplier = m
	r.seasons[id] = s
	return nil
}

func (r fakeSeasonRepo) FindByID(_ context.Context, id uint) (domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[id]
	if !ok {
		return domain.Season{}, repository.ErrSeasonNotFound
	}
	return s, nil
}

func (r fakeSeasonRepo) FindActive(_ context.Context) (domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("FindActive"); err != nil {
		return domain.Season{}, err
	}
	for _, s := range r.seasons {
		if s.Active {
			return s, nil
		}
	}
	return domain.Season{}, repository.ErrSeasonNotFound
}

func (r fakeSeasonRepo) List(_ context.Context) ([]domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Season
	for _, s := range r.seasons {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r fakeSeasonRepo) FindOverlapping(_ context.Context, start, end time.Time, excludeID uint) ([]domain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Season
	for _, s := range r.seasons {
		if s.ID != excludeID && s.Overlaps(start, end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeSeasonRepo) DeactivateAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.seasons {
		s.Active = false
		r.seasons[id] = s
	}
	return nil
}

func (r fakeSeasonRepo) SetActive(_ context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("SetActive"); err != nil {
		return err
	}
	s, ok := r.seasons[id]
	if !ok {
		return repository.ErrSeasonNotFound
	}
	s.Active = active
	r.seasons[id] = s
	return nil
}

func (r fakeSeasonRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seasons[id]; !ok {
		return repository.ErrSeasonNotFound
	}
	delete(r.seasons, id)
	return nil
}

type fakeLedgerRepo struct{ *memStore }

func (r fakeLedgerRepo) Append(_ context.Context, e domain.XpEvent) (domain.XpEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("AppendEvent"); err != nil {
		return domain.XpEvent{}, err
	}
	e.ID = r.id()
	r.events = append(r.events, e)
	return e, nil
}

func (r fakeLedgerRepo) FindByID(_ context.Context, id uint) (domain.XpEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.XpEvent{}, repository.ErrXpEventNotFound
}

func (r fakeLedgerRepo) TotalXP(_ context.Context, attendantID uint, seasonID *uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, e := range r.events {
		if e.AttendantID != attendantID {
			continue
		}
		if seasonID != nil && (e.SeasonID == nil || *e.SeasonID != *seasonID) {
			continue
		}
		total += e.FinalPoints
	}
	return total, nil
}

func (r fakeLedgerRepo) Totals(_ context.Context, seasonID *uint) ([]domain.RankedEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("Totals"); err != nil {
		return nil, err
	}
	sums := map[uint]int{}
	var order []uint
	for _, e := range r.events {
		if seasonID != nil && (e.SeasonID == nil || *e.SeasonID != *seasonID) {
			continue
		}
		if _, ok := sums[e.AttendantID]; !ok {
			order = append(order, e.AttendantID)
		}
		sums[e.AttendantID] += e.FinalPoints
	}
	// Deliberately unsorted: ordering is the service's job.
	out := make([]domain.RankedEntry, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, domain.RankedEntry{AttendantID: order[i], TotalXP: sums[order[i]]})
	}
	return out, nil
}

func (r fakeLedgerRepo) Events(_ context.Context, q repository.EventQuery) ([]domain.XpEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.XpEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if q.AttendantID != nil && e.AttendantID != *q.AttendantID {
			continue
		}
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r fakeLedgerRepo) CountBySeason(_ context.Context, seasonID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.events {
		if e.SeasonID != nil && *e.SeasonID == seasonID {
			n++
		}
	}
	return n, nil
}

func (r fakeLedgerRepo) ExistsForRelated(_ context.Context, t domain.XpEventType, relatedID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == t && e.RelatedID != nil && *e.RelatedID == relatedID {
			return true, nil
		}
	}
	return false, nil
}

type fakeGrantRepo struct{ *memStore }

func (r fakeGrantRepo) CreateType(_ context.Context, t domain.XpType) (domain.XpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.types {
		if existing.Name == t.Name {
			return domain.XpType{}, repository.ErrXpTypeNameExists
		}
	}
	t.ID = r.id()
	r.types[t.ID] = t
	return t, nil
}

func (r fakeGrantRepo) UpdateType(_ context.Context, t domain.XpType) (domain.XpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.types[t.ID]
	if !ok {
		return domain.XpType{}, repository.ErrXpTypeNotFound
	}
	t.Active = existing.Active
	t.CreatedBy = existing.CreatedBy
	r.types[t.ID] = t
	return t, nil
}

func (r fakeGrantRepo) SetTypeActive(_ context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[id]
	if !ok {
		return repository.ErrXpTypeNotFound
	}
	t.Active = active
	r.types[id] = t
	return nil
}

func (r fakeGrantRepo) FindType(_ context.Context, id uint) (domain.XpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[id]
	if !ok {
		return domain.XpType{}, repository.ErrXpTypeNotFound
	}
	return t, nil
}

func (r fakeGrantRepo) ListTypes(_ context.Context, activeOnly bool) ([]domain.XpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.XpType
	for _, t := range r.types {
		if !activeOnly || t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeGrantRepo) CreateGrant(_ context.Context, g domain.XpGrant) (domain.XpGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("CreateGrant"); err != nil {
		return domain.XpGrant{}, err
	}
	g.ID = r.id()
	r.grants = append(r.grants, g)
	return g, nil
}

func (r fakeGrantRepo) GrantsByAttendant(_ context.Context, attendantID uint, limit int) ([]domain.XpGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.XpGrant
	for i := len(r.grants) - 1; i >= 0; i-- {
		if r.grants[i].AttendantID == attendantID {
			out = append(out, r.grants[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r fakeGrantRepo) UsageByGranter(_ context.Context, granterID *uint, from, to time.Time) (domain.GrantUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var u domain.GrantUsage
	for _, g := range r.grants {
		if granterID != nil && g.GrantedBy != *granterID {
			continue
		}
		if g.GrantedAt.Before(from) || g.GrantedAt.After(to) {
			continue
		}
		u.Grants++
		u.Points += g.Points
	}
	return u, nil
}

func (r fakeGrantRepo) CountForAttendant(_ context.Context, attendantID uint, from, to time.Time) (int, error) {
	r.mu.Lock()
	n := 0
	for _, g := range r.grants {
		if g.AttendantID == attendantID && !g.GrantedAt.Before(from) && !g.GrantedAt.After(to) {
			n++
		}
	}
	r.mu.Unlock()

	if r.afterCount != nil {
		r.afterCount()
	}
	return n, nil
}

func (r fakeGrantRepo) LastGrantedAt(_ context.Context, attendantID uint) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *time.Time
	for _, g := range r.grants {
		if g.AttendantID == attendantID && (last == nil || g.GrantedAt.After(*last)) {
			at := g.GrantedAt
			last = &at
		}
	}
	return last, nil
}

func (r fakeGrantRepo) Limits(_ context.Context) (domain.GrantLimitConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limits == nil {
		return domain.DefaultGrantLimitConfig(), nil
	}
	return *r.limits, nil
}

func (r fakeGrantRepo) SaveLimits(_ context.Context, l domain.GrantLimitConfig) (domain.GrantLimitConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = 1
	r.limits = &l
	return l, nil
}

type fakeAchievementRepo struct{ *memStore }

func (r fakeAchievementRepo) Create(_ context.Context, a domain.AchievementConfig) (domain.AchievementConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	r.achievements[a.ID] = a
	return a, nil
}

func (r fakeAchievementRepo) Update(_ context.Context, a domain.AchievementConfig) (domain.AchievementConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.achievements[a.ID]
	if !ok {
		return domain.AchievementConfig{}, repository.ErrAchievementNotFound
	}
	a.Active = existing.Active
	r.achievements[a.ID] = a
	return a, nil
}

func (r fakeAchievementRepo) SetActive(_ context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.achievements[id]
	if !ok {
		return repository.ErrAchievementNotFound
	}
	a.Active = active
	r.achievements[id] = a
	return nil
}

func (r fakeAchievementRepo) FindByID(_ context.Context, id uint) (domain.AchievementConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.achievements[id]
	if !ok {
		return domain.AchievementConfig{}, repository.ErrAchievementNotFound
	}
	return a, nil
}

func (r fakeAchievementRepo) List(_ context.Context, activeOnly bool) ([]domain.AchievementConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AchievementConfig
	for _, a := range r.achievements {
		if !activeOnly || a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeAchievementRepo) Unlock(_ context.Context, u domain.UnlockedAchievement) (domain.UnlockedAchievement, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.unlocks {
		if existing.AttendantID == u.AttendantID && existing.AchievementID == u.AchievementID {
			return existing, false, nil
		}
	}
	u.ID = r.id()
	r.unlocks = append(r.unlocks, u)
	return u, true, nil
}

func (r fakeAchievementRepo) Unlocked(_ context.Context, attendantID uint, seasonID *uint) ([]domain.UnlockedAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UnlockedAchievement
	for _, u := range r.unlocks {
		if u.AttendantID != attendantID {
			continue
		}
		if seasonID != nil && (u.SeasonID == nil || *u.SeasonID != *seasonID) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r fakeAchievementRepo) UnlockedIDs(_ context.Context, attendantID uint) (map[uint]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uint]bool{}
	for _, u := range r.unlocks {
		if u.AttendantID == attendantID {
			out[u.AchievementID] = true
		}
	}
	return out, nil
}

// fakeDirectory keeps evaluations in insertion order.
type fakeDirectory struct{ *memStore }

func (d fakeDirectory) FindAttendant(_ context.Context, id uint) (domain.Attendant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.attendants[id]
	if !ok {
		return domain.Attendant{}, repository.ErrAttendantNotFound
	}
	return a, nil
}

func (d fakeDirectory) FindEvaluation(_ context.Context, id uint) (domain.Evaluation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.evaluations[id]
	if !ok {
		return domain.Evaluation{}, repository.ErrEvaluationNotFound
	}
	return e, nil
}

func (d fakeDirectory) sortedEvaluations(attendantID uint) []domain.Evaluation {
	var out []domain.Evaluation
	for _, e := range d.evaluations {
		if e.AttendantID == attendantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (d fakeDirectory) RecentRatings(_ context.Context, attendantID uint, n int) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []int
	for _, e := range d.sortedEvaluations(attendantID) {
		if len(out) == n {
			break
		}
		out = append(out, e.Rating)
	}
	return out, nil
}

func (d fakeDirectory) RatingStats(_ context.Context, attendantID uint) (int, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	evals := d.sortedEvaluations(attendantID)
	if len(evals) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, e := range evals {
		sum += e.Rating
	}
	return len(evals), float64(sum) / float64(len(evals)), nil
}

func (d fakeDirectory) IsHoliday(_ context.Context, day time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.holidays[day.Format(time.DateOnly)], nil
}

// wednesday is a weekday used as "now" by default.
var wednesday = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.Local)

type harness struct {
	store        *memStore
	tx           *fakeTx
	logs         *observer.ObservedLogs
	seasons      *SeasonService
	ledger       *LedgerService
	leaderboard  *LeaderboardService
	achievements *AchievementService
	xp           *XpService
	grants       *GrantService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	store := newMemStore()
	tx := &fakeTx{store: store}
	directory := fakeDirectory{store}
	ledgerRepo := fakeLedgerRepo{store}

	seasons := NewSeasonService(tx, fakeSeasonRepo{store}, ledgerRepo, logger)
	ledger := NewLedgerService(tx, ledgerRepo, seasons, logger)
	ledger.now = func() time.Time { return wednesday }
	leaderboard := NewLeaderboardService(ledgerRepo)
	achievements := NewAchievementService(tx, fakeAchievementRepo{store}, ledger, directory, leaderboard, seasons, 3, logger)
	achievements.now = func() time.Time { return wednesday }
	xp := NewXpService(ledger, ledgerRepo, achievements, directory, seasons, logger)
	require.NoError(t, xp.Configure(map[string]int{"1": 0, "2": 5, "3": 10, "4": 20, "5": 30}, 100))
	grants := NewGrantService(tx, fakeGrantRepo{store}, ledger, achievements, directory, seasons, directory, xp.LevelStep, logger)
	grants.now = func() time.Time { return wednesday }

	return &harness{
		store:        store,
		tx:           tx,
		logs:         logs,
		seasons:      seasons,
		ledger:       ledger,
		leaderboard:  leaderboard,
		achievements: achievements,
		xp:           xp,
		grants:       grants,
	}
}

func (h *harness) addAttendant(id uint) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.attendants[id] = domain.Attendant{ID: id, Name: "attendant", Active: true}
}

func (h *harness) addEvaluation(attendantID uint, rating int) uint {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := h.store.id()
	h.store.evaluations[id] = domain.Evaluation{ID: id, AttendantID: attendantID, Rating: rating, CreatedAt: wednesday}
	return id
}

func (h *harness) activeSeason(t *testing.T, multiplier float64) domain.Season {
	t.Helper()
	s, err := h.seasons.Create(context.Background(), SeasonInput{
		Name:       "Spring",
		StartDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local),
		EndDate:    time.Date(2024, time.May, 31, 0, 0, 0, 0, time.Local),
		Multiplier: multiplier,
	})
	require.NoError(t, err)
	s, err = h.seasons.Activate(context.Background(), s.ID)
	require.NoError(t, err)
	return s
}

func (h *harness) xpType(t *testing.T, name string, points int) domain.XpType {
	t.Helper()
	xt, err := h.grants.CreateType(context.Background(), XpTypeInput{Name: name, Points: points}, 1)
	require.NoError(t, err)
	return xt
}

func (h *harness) achievement(t *testing.T, title string, reward int, c domain.Criteria) domain.AchievementConfig {
	t.Helper()
	a, err := h.achievements.Create(context.Background(), AchievementInput{Title: title, XpReward: reward, Criteria: c})
	require.NoError(t, err)
	return a
}

func (h *harness) ledgerSum(attendantID uint) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	sum := 0
	for _, e := range h.store.events {
		if e.AttendantID == attendantID {
			sum += e.FinalPoints
		}
	}
	return sum
}

func (h *harness) counts() (events, grants, unlocks int) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.events), len(h.store.grants), len(h.store.unlocks)
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
