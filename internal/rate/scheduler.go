package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultCron = "0 12 * * *"

type Scheduler struct {
	ingester Ingester
	cron     string
	location *time.Location
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
	job   gocron.Job
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(s.location))
	if err != nil {
		return err
	}

	task := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if ingestErr := IngestToday(jobCtx, execID, s.ingester, time.Now(), s.location); ingestErr != nil {
			logrus.WithError(ingestErr).WithField("exec_id", execID).Error("Daily rates ingestion job failed")
		}
	}

	job, err := scheduler.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(task),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule ingestion job %q: %w", s.cron, err)
	}

	s.mu.Lock()
	s.sched = scheduler
	s.job = job
	s.mu.Unlock()

	scheduler.Start()
	logrus.WithFields(logrus.Fields{"cron": s.cron, "location": s.location.String()}).Info("Ingestion job scheduled")

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// RunNow triggers the ingestion job outside of its schedule.
func (s *Scheduler) RunNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return fmt.Errorf("scheduler is not started")
	}
	return s.job.RunNow()
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	s.job = nil
	return err
}

func NewScheduler(ingester Ingester, cron string, location *time.Location) *Scheduler {
	if cron == "" {
		cron = defaultCron
	}
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{ingester: ingester, cron: cron, location: location}
}
