package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const defaultSchedule = "@hourly"

type jobRecorder interface {
	ObserveJob(job string, elapsed time.Duration, err error)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  jobRecorder
	// Schedule is a five-field cron spec or descriptor; empty means hourly.
	Schedule string
}

// Service runs the registered jobs on a cron schedule. Each cycle holds Lock
// so replicas never overlap, and a cycle still running when the next one
// fires causes that tick to be skipped.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  jobRecorder
	schedule robfig.Schedule
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Lock == nil {
		return nil, errors.New("lock required")
	}
	spec := params.Schedule
	if spec == "" {
		spec = defaultSchedule
	}
	schedule, err := robfig.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("maintenance schedule %q: %w", spec, err)
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		schedule: schedule,
	}, nil
}

// Run executes one cycle straight away, then follows the schedule until ctx
// ends. It waits for an in-progress cycle before returning ctx.Err().
func (s *Service) Run(ctx context.Context) error {
	s.tick(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	adapter := cronLogger{ctx: ctx, logg: s.logg}
	scheduler := robfig.New(
		robfig.WithLogger(adapter),
		robfig.WithChain(robfig.Recover(adapter), robfig.SkipIfStillRunning(adapter)),
	)
	scheduler.Schedule(s.schedule, robfig.FuncJob(func() { s.tick(ctx) }))
	scheduler.Start()

	next := s.schedule.Next(time.Now())
	s.logg.Info(s.logg.WithField(ctx, "next_run", next.Format(time.RFC3339)), "maintenance.scheduled")

	<-ctx.Done()
	<-scheduler.Stop().Done()
	s.logg.Info(ctx, "maintenance.stopped")
	return ctx.Err()
}

func (s *Service) tick(ctx context.Context) {
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "maintenance.cycle.failed", err)
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire maintenance lock: %w", err)
	}
	if !held {
		s.logg.Info(ctx, "maintenance.cycle.skipped")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "maintenance.lock.release_failed", err)
		}
	}()

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
	return nil
}

// runJob records the outcome of one job; a failure never stops the cycle.
func (s *Service) runJob(ctx context.Context, job Job) {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	started := time.Now()
	err := job.Run(ctx)
	took := time.Since(started)

	if s.metrics != nil {
		s.metrics.ObserveJob(job.Name(), took, err)
	}
	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "maintenance.job.failed", err)
		return
	}
	s.logg.Info(ctx, "maintenance.job.complete")
}

// cronLogger routes the scheduler's own messages through the service logger.
type cronLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logg.Debug(l.withPairs(keysAndValues), "cron."+msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logg.Error(l.withPairs(keysAndValues), "cron."+msg, err)
}

func (l cronLogger) withPairs(keysAndValues []any) context.Context {
	if len(keysAndValues) < 2 {
		return l.ctx
	}
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return l.logg.WithFields(l.ctx, fields)
}
