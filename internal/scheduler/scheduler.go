// Package scheduler runs background jobs on cron schedules, such as the
// monthly thirty-year regulation pass.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a schedulable unit of work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a stopped scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("op", "scheduler.Start"),
	)
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped",
		zap.String("op", "scheduler.Stop"),
	)
}

// AddJob registers a job with a cron schedule, e.g. "0 0 6 1 * *" for the
// first of every month at 06:00.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug("running job",
			zap.String("op", "scheduler.AddJob"),
			zap.String("job", job.Name()),
		)
		if err := job.Run(); err != nil {
			s.logger.Error("job failed",
				zap.String("op", "scheduler.AddJob"),
				zap.String("job", job.Name()),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("job completed",
			zap.String("op", "scheduler.AddJob"),
			zap.String("job", job.Name()),
		)
	})
	if err != nil {
		return err
	}

	s.logger.Info("job registered",
		zap.String("op", "scheduler.AddJob"),
		zap.String("schedule", schedule),
		zap.String("job", job.Name()),
	)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.logger.Info("running job immediately",
		zap.String("op", "scheduler.RunNow"),
		zap.String("job", job.Name()),
	)
	return job.Run()
}
