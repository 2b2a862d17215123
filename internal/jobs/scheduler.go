package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner releases orphaned media handles
type Pruner interface {
	PruneMedia(grace time.Duration) int
}

// Scheduler runs housekeeping on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	pruner   Pruner
	schedule string
	grace    time.Duration
}

// NewScheduler prunes media on a cron schedule (e.g. "@every 10m"),
// sparing handles younger than grace.
func NewScheduler(pruner Pruner, schedule string, grace time.Duration) *Scheduler {
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &Scheduler{
		cron:     cron.New(),
		pruner:   pruner,
		schedule: schedule,
		grace:    grace,
	}
}

func (s *Scheduler) Start() error {
	if s.pruner == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.prune); err != nil {
		return err
	}
	s.cron.Start()
	slog.Debug("Housekeeping scheduled", "schedule", s.schedule, "grace", s.grace)
	return nil
}

// Stop waits up to five seconds for a running job
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		slog.Warn("Housekeeping job did not finish before shutdown")
	}
}

func (s *Scheduler) prune() {
	s.pruner.PruneMedia(s.grace)
}

// RunOnce runs every job immediately
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.pruner == nil || ctx.Err() != nil {
		return
	}
	s.prune()
}
