package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ItemResult is the outcome of one unit of work inside an operation.
type ItemResult struct {
	Index int    `json:"index"`
	Ref   uint   `json:"ref,omitempty"`
	Error string `json:"error,omitempty"`
}

// Status is a snapshot of a long-running operation.
type Status struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	Total     int          `json:"total"`
	Done      int          `json:"done"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (s Status) clone() Status {
	s.Items = append([]ItemResult(nil), s.Items...)
	return s
}

// Tracker holds operation statuses keyed by id. Entries expire ttl after
// their last update and are removed by Sweep. When the tracker is full the
// least recently updated entry is evicted to make room.
type Tracker struct {
	mu       sync.Mutex
	entries  map[string]*Status
	capacity int
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewTracker(capacity int, ttl time.Duration, logger *zap.Logger) *Tracker {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Tracker{
		entries:  make(map[string]*Status, capacity),
		capacity: capacity,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers a running operation of total items and returns its id.
func (t *Tracker) Start(total int) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) >= t.capacity {
		t.evictOldest()
	}

	now := t.now()
	s := &Status{
		ID:        uuid.NewString(),
		State:     StateRunning,
		Total:     total,
		Items:     []ItemResult{},
		StartedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}
	t.entries[s.ID] = s

	return s.clone()
}

// Record appends one item result. A non-empty Error counts as a failure. The
// operation completes once every item is recorded.
func (t *Tracker) Record(id string, item ItemResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[id]
	if !ok {
		return false
	}

	s.Items = append(s.Items, item)
	s.Done++
	if item.Error != "" {
		s.Failed++
	}
	if s.Done >= s.Total {
		s.State = StateCompleted
	}
	t.touch(s)

	return true
}

// Fail marks the whole operation as failed.
func (t *Tracker) Fail(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[id]
	if !ok {
		return false
	}
	s.State = StateFailed
	t.touch(s)

	return true
}

func (t *Tracker) Get(id string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.entries[id]
	if !ok || !t.now().Before(s.ExpiresAt) {
		return Status{}, false
	}

	return s.clone(), true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for id, s := range t.entries {
		if !now.Before(s.ExpiresAt) {
			delete(t.entries, id)
			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("progress sweep stopped")
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				t.logger.Debug("expired operations swept", zap.Int("removed", n))
			}
		}
	}
}

func (t *Tracker) touch(s *Status) {
	s.UpdatedAt = t.now()
	s.ExpiresAt = s.UpdatedAt.Add(t.ttl)
}

func (t *Tracker) evictOldest() {
	var oldest *Status
	for _, s := range t.entries {
		if oldest == nil || s.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(t.entries, oldest.ID)
		t.logger.Warn("progress tracker full, evicted operation", zap.String("operation_id", oldest.ID))
	}
}
