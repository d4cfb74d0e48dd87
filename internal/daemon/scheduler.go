package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the periodic sync job.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleSync schedules task at the given interval, replacing any
// previously scheduled interval.
func (s *Scheduler) ScheduleSync(interval time.Duration, task func()) error {
	if s.job != nil {
		job, err := s.scheduler.Update(
			s.job.ID(),
			gocron.DurationJob(interval),
			gocron.NewTask(task),
			gocron.WithName("sync"),
		)
		if err != nil {
			return fmt.Errorf("failed to reschedule sync job: %w", err)
		}
		s.job = job
		slog.Info("Rescheduled sync job", "interval", interval)
		return nil
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("sync"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sync job: %w", err)
	}
	s.job = job
	return nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
