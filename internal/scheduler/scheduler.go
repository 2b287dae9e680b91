// Package scheduler runs the daily push loop: every tick it computes
// the local calendar day and hour, asks the store who is due, and
// delivers. A user is marked sent only after a successful delivery, so
// failed sends are retried on the next tick within the same hour.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mkarpov/notibot/internal/metrics"
	"github.com/mkarpov/notibot/internal/store"
	"github.com/mkarpov/notibot/pkg/horoscope"
)

// Notifier delivers one daily text to a user.
type Notifier interface {
	SendDaily(ctx context.Context, userID int64, text string) error
}

// Scheduler drives the due-delivery selector.
type Scheduler struct {
	db       store.Store
	src      horoscope.Source
	notifier Notifier
	interval time.Duration
	loc      *time.Location
	log      *zap.Logger
}

// New creates a scheduler.
func New(db store.Store, src horoscope.Source, notifier Notifier, interval time.Duration, loc *time.Location, log *zap.Logger) *Scheduler {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		db:       db,
		src:      src,
		notifier: notifier,
		interval: interval,
		loc:      loc,
		log:      log.Named("scheduler"),
	}
}

// Run starts the delivery loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("running",
		zap.Duration("interval", s.interval),
		zap.String("source", s.src.Name()))

	// Deliver immediately on start, then on every tick.
	s.deliver(ctx, time.Now().In(s.loc))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopped")
			return ctx.Err()
		case <-ticker.C:
			s.deliver(ctx, time.Now().In(s.loc))
		}
	}
}

// deliver runs one pass for the given wall-clock moment. The day and
// hour are derived here, never inside the store, so the selection
// stays testable.
func (s *Scheduler) deliver(ctx context.Context, now time.Time) {
	today := now.Format("2006-01-02")
	hour := now.Hour()

	due, err := s.db.ListDueUsers(ctx, today, hour)
	if err != nil {
		s.log.Error("list due users failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.log.Info("delivering pushes", zap.Int("due", len(due)), zap.Int("hour", hour))

	for _, u := range due {
		text, err := s.src.Daily(ctx, u.Sign)
		if err != nil {
			s.log.Warn("horoscope generation failed",
				zap.Int64("user_id", u.UserID), zap.String("sign", u.Sign), zap.Error(err))
			s.db.RecordError(ctx, store.ErrorEntry{
				Level:   "warn",
				Source:  "scheduler",
				Message: "horoscope generation failed",
				UserID:  u.UserID,
				Details: err.Error(),
			})
			metrics.PushFailures.Inc()
			continue
		}

		if err := s.notifier.SendDaily(ctx, u.UserID, text); err != nil {
			s.log.Warn("push delivery failed",
				zap.Int64("user_id", u.UserID), zap.Error(err))
			s.db.RecordError(ctx, store.ErrorEntry{
				Level:   "warn",
				Source:  "scheduler",
				Message: "push delivery failed",
				UserID:  u.UserID,
				Details: err.Error(),
			})
			metrics.PushFailures.Inc()
			continue
		}

		if err := s.db.MarkSent(ctx, u.UserID, today); err != nil {
			s.log.Error("mark sent failed", zap.Int64("user_id", u.UserID), zap.Error(err))
			continue
		}
		metrics.PushesSent.Inc()
	}
}
