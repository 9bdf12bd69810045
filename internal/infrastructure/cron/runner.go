// Package cron runs the named batch jobs on wall-clock schedules. Each
// job invocation logs a started/completed/failed lifecycle record, and a
// failure terminates only that invocation.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc executes one job run and returns summary fields for the
// completion log record.
type JobFunc func(ctx context.Context) ([]zap.Field, error)

// Job is a named, scheduled unit of batch work
type Job struct {
	Name string
	Spec string // Standard 5-field cron expression
	Run  JobFunc
}

// Runner owns the schedule and the job registry. Jobs are registered
// explicitly at startup; nothing is scheduled as an import side effect.
type Runner struct {
	cron    *cron.Cron
	jobs    map[string]Job
	logger  *zap.Logger
	timeout time.Duration
}

// NewRunner creates a new job runner
func NewRunner(logger *zap.Logger, timeout time.Duration) *Runner {
	return &Runner{
		cron:    cron.New(),
		jobs:    make(map[string]Job),
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a named job to the schedule
func (r *Runner) Register(job Job) error {
	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	_, err := r.cron.AddFunc(job.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		// Errors are fully handled inside invoke; a failed run must not
		// affect other jobs or future firings.
		_ = r.invoke(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", job.Name, err)
	}

	r.jobs[job.Name] = job
	r.logger.Info("job registered",
		zap.String("jobName", job.Name),
		zap.String("schedule", job.Spec))

	return nil
}

// RunJob invokes a registered job immediately, bypassing the schedule.
// This is the direct-call path used by tests and operators.
func (r *Runner) RunJob(ctx context.Context, name string) error {
	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return r.invoke(ctx, job)
}

// JobNames returns the registered job names
func (r *Runner) JobNames() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	return names
}

// invoke runs one job through its full lifecycle log
func (r *Runner) invoke(ctx context.Context, job Job) (err error) {
	started := time.Now()
	r.logger.Info("job lifecycle",
		zap.String("jobName", job.Name),
		zap.String("status", "started"))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
			r.logger.Error("job lifecycle",
				zap.String("jobName", job.Name),
				zap.String("status", "failed"),
				zap.Duration("duration", time.Since(started)),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"))
		}
	}()

	fields, err := job.Run(ctx)
	if err != nil {
		r.logger.Error("job lifecycle",
			zap.String("jobName", job.Name),
			zap.String("status", "failed"),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err))
		return err
	}

	completed := []zap.Field{
		zap.String("jobName", job.Name),
		zap.String("status", "completed"),
		zap.Duration("duration", time.Since(started)),
	}
	r.logger.Info("job lifecycle", append(completed, fields...)...)

	return nil
}

// Start starts the schedule
func (r *Runner) Start() {
	r.cron.Start()
	r.logger.Info("job runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop stops the schedule and waits for running jobs to finish
func (r *Runner) Stop() {
	r.logger.Info("stopping job runner")
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("job runner stopped")
}
