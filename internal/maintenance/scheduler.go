// Package maintenance runs periodic housekeeping against the project store.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger hard-deletes tombstones older than cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

type Options struct {
	// Schedule is a six-field cron expression, seconds first.
	Schedule  string
	Retention time.Duration
	// Timeout bounds one purge run.
	Timeout time.Duration
	Logger  *zap.Logger
	Clock   func() time.Time
}

type Scheduler struct {
	purger Purger
	opt    Options
	log    *zap.Logger
	cron   *cron.Cron
}

func NewScheduler(p Purger, opt Options) *Scheduler {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 5 * time.Minute
	}
	log := opt.Logger.Named("purge")
	return &Scheduler{
		purger: p,
		opt:    opt,
		log:    log,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(zap.NewStdLog(log)))),
		),
	}
}

// Start registers the purge job and starts the cron loop in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.opt.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opt.Timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("purge schedule %q: %w", s.opt.Schedule, err)
	}

	s.log.Info("purge scheduler started",
		zap.String("schedule", s.opt.Schedule),
		zap.Duration("retention", s.opt.Retention),
	)
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running purge, or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("purge still running at shutdown")
	}
}

// RunOnce purges tombstones older than the retention period.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := s.opt.Clock()
	cutoff := start.Add(-s.opt.Retention)

	n, err := s.purger.Purge(ctx, cutoff)
	if err != nil {
		s.log.Warn("purge failed", zap.Int("purged", n), zap.Error(err))
		return n, err
	}
	s.log.Info("purge completed",
		zap.Int("purged", n),
		zap.Time("cutoff", cutoff),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}
