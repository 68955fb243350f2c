// Package scheduler wires up the cron job that periodically rebuilds the job
// cache so dashboard reads stay warm.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/model"
)

// Refresher rebuilds the job cache.
type Refresher interface {
	Refresh(ctx context.Context) ([]model.Job, error)
}

// StatusReporter is told whether the latest refresh succeeded.
type StatusReporter interface {
	SetServing(ok bool)
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	reporter  StatusReporter
	log       logger.Logger
	spec      string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours. reporter
// may be nil.
func New(refresher Refresher, intervalHours int, reporter StatusReporter, log logger.Logger) *Scheduler {
	return NewWithSpec(refresher, fmt.Sprintf("@every %dh", intervalHours), reporter, log)
}

// NewWithSpec is New with an arbitrary cron spec.
func NewWithSpec(refresher Refresher, spec string, reporter StatusReporter, log logger.Logger) *Scheduler {
	log = logger.OrNop(log)
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cronLogger{log: log})),
		refresher: refresher,
		reporter:  reporter,
		log:       log,
		spec:      spec,
	}
}

// Start registers the job and starts the scheduler. It also runs one refresh
// immediately so the cache is warm without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		_ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("Refresh cron started", logger.String("spec", s.spec))

	go func() { _ = s.RunOnce(ctx) }()

	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Refresh cron stopped")
}

// RunOnce performs one refresh and reports the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	jobs, err := s.refresher.Refresh(ctx)
	if s.reporter != nil {
		s.reporter.SetServing(err == nil)
	}
	if err != nil {
		s.log.Error("Scheduled refresh failed", logger.Error(err))
		return err
	}
	s.log.Info("Scheduled refresh complete",
		logger.Int("jobs", len(jobs)),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// cronLogger routes cron's own messages through the service logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, logger.Any("kv", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, logger.Error(err), logger.Any("kv", keysAndValues))
}
