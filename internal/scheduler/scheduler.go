package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// OverdueMarker moves past-due sent invoices to overdue and reports how many changed.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	invoices OverdueMarker
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Schedules are standard five
// field cron expressions evaluated in loc.
func NewScheduler(schedule string, loc *time.Location, invoices OverdueMarker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		invoices: invoices,
		logger:   logger,
	}
}

// Start registers the overdue sweep and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("overdue_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sweepOverdue); err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	changed, err := s.invoices.MarkOverdue(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("overdue sweep finished", zap.Int64("invoices_marked", changed))
}
