package sweeper

import (
	"context"
	"log/slog"

	"github.com/hermon-k/roomshare/backend/internal/engine"
	"github.com/robfig/cron/v3"
)

// Sweeper runs the payment-deadline expiry sweep on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	engine   *engine.Engine
	logger   *slog.Logger
	schedule string
}

// New creates a sweeper that runs on the given cron schedule.
func New(eng *engine.Engine, logger *slog.Logger, schedule string) *Sweeper {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Sweeper{
		cron:     c,
		engine:   eng,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		s.logger.Error("failed to schedule payment expiry sweep", "error", err)
	} else {
		s.logger.Info("scheduled payment expiry sweep", "schedule", s.schedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the scheduler. The returned context is done when
// any in-flight sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) runSweep() {
	result, err := s.engine.Sweep(context.Background(), nil, nil)
	if err != nil {
		s.logger.Error("payment expiry sweep failed", "error", err)
		return
	}
	if result.RemovedMembers > 0 || result.UpdatedGroups > 0 {
		s.logger.Info("payment expiry sweep finished",
			"removed_members", result.RemovedMembers,
			"updated_groups", result.UpdatedGroups)
	}
}
