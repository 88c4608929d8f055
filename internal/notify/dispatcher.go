package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LogDispatcher writes notifications to the log. It is used when no broker is
// configured.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{
		logger: logger,
	}
}

func (d *LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.logger.Info("notification",
		zap.String("kind", string(n.Kind)),
		zap.Uint("attendant_id", n.AttendantID),
		zap.Int("xp_amount", n.XpAmount),
		zap.String("type_name", n.TypeName),
		zap.Int("achievements_unlocked", len(n.AchievementsUnlocked)),
		zap.Bool("level_up", n.LevelUp != nil),
	)
	return nil
}

// Fanout hands every notification to each dispatcher in turn and joins their
// errors.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, n Notification) error {
	var errs []error
	for _, d := range f {
		if err := d.Dispatch(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
