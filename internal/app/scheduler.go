package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/avolkov/moex-reporter/internal/common"
)

// Scheduler runs report generation on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

// NewScheduler creates a scheduler. Standard 5-field cron expressions and
// descriptors like "@hourly" or "@every 30m" are accepted.
func NewScheduler(logger *common.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Add registers a named job. Overlapping runs are skipped rather than
// stacked: a slow run must not race a second one over the same cache
// and reports directory.
func (s *Scheduler) Add(schedule, name string, job func() error) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.logger.Debug().Str("job", name).Msg("Running job")

		if err := job(); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		} else {
			s.logger.Debug().Str("job", name).Msg("Job completed")
		}
	}))

	if _, err := s.cron.AddJob(schedule, wrapped); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.logger.Info().Str("schedule", schedule).Str("job", name).Msg("Job registered")
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// StartScheduler registers the report job under the configured cron
// expression and starts it. The returned scheduler should be stopped on
// shutdown.
func (a *App) StartScheduler(ctx context.Context) (*Scheduler, error) {
	s := NewScheduler(a.Logger)
	if err := s.Add(a.Config.Schedule, "portfolio-report", func() error {
		return a.Run(ctx)
	}); err != nil {
		return nil, err
	}
	s.Start()
	return s, nil
}
