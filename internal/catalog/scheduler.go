package catalog

// scheduler.go refreshes the catalog on a cron schedule.
//
// A refresh that is still running when the next tick fires is skipped rather
// than queued. Failures are logged and leave the current snapshot in place.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and drives periodic reloads.
type Scheduler struct {
	cron    *cron.Cron
	catalog *Catalog
	spec    string // cron spec, e.g. "@every 30m"
	timeout time.Duration
	logger  *slog.Logger
}

// ScheduleDisabled reports whether spec turns periodic refresh off.
func ScheduleDisabled(spec string) bool {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "off", "none", "disabled":
		return true
	}
	return false
}

// ValidateSchedule checks spec with the standard cron parser.
// A disabled spec is valid.
func ValidateSchedule(spec string) error {
	if ScheduleDisabled(spec) {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return nil
}

// NewScheduler creates a scheduler that reloads c on spec. Each reload is
// bounded by timeout when it is positive.
func NewScheduler(c *Catalog, spec string, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if err := ValidateSchedule(spec); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger.With("component", "scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		catalog: c,
		spec:    strings.TrimSpace(spec),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Spec returns the configured schedule.
func (s *Scheduler) Spec() string { return s.spec }

// Enabled reports whether Start will register a job.
func (s *Scheduler) Enabled() bool { return !ScheduleDisabled(s.spec) }

// Start registers the refresh job and starts the cron loop. It does nothing
// when the schedule is disabled. Refreshes stop when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("catalog refresh schedule disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("catalog refresh scheduled", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish or ctx
// to be done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("catalog refresh scheduler stopped")
}

func (s *Scheduler) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if _, err := s.catalog.Reload(ctx); err != nil {
		// load already logged the failure
		return
	}
	s.logger.Debug("scheduled refresh completed", "duration_ms", time.Since(start).Milliseconds())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
