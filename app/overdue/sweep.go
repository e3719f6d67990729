package overdue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MrMariodude/LibraCore/lending"
)

// DefaultSchedule runs the sweep once per hour.
const DefaultSchedule = "@every 1h"

// Metric names recorded by each sweep.
const (
	OverdueLoansMetric        = "lending_overdue_loans"
	OverduePenaltyCentsMetric = "lending_overdue_penalty_cents"
	SweepDurationMetric       = "lending_overdue_sweep_seconds"
	SweepFailuresMetric       = "lending_overdue_sweep_failures_total"
)

const (
	logMsgSweepCompleted = "overdue sweep completed"
	logMsgSweepFailed    = "overdue sweep failed"
	logMsgSweepScheduled = "overdue sweep scheduled"
	logMsgSweepStopped   = "overdue sweep stopped"

	logAttrOverdueLoans = "overdue_loans"
	logAttrPenaltyTotal = "penalty_total"
	logAttrOldestDueAt  = "oldest_due_at"
	logAttrSchedule     = "schedule"
	logAttrDurationMS   = "duration_ms"
	logAttrError        = "error"
)

// runTimeout bounds a single scheduled run.
const runTimeout = 5 * time.Minute

var (
	// ErrInvalidSchedule is returned when the cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid overdue sweep schedule")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("overdue sweep already started")
)

// Report is the outcome of one sweep.
type Report struct {
	AsOf         time.Time
	OverdueLoans int
	PenaltyTotal lending.Amount
	OldestDueAt  time.Time // zero if nothing is overdue
}

// Sweeper evaluates overdue loans on a cron schedule.
type Sweeper struct {
	loans    lending.LoanRepository
	clock    lending.Clock
	policy   lending.PenaltyPolicy
	schedule string

	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector

	mu   sync.Mutex
	cron *cron.Cron
}

// Option defines a functional option for configuring the Sweeper.
type Option func(*Sweeper) error

// WithSchedule sets the cron expression. Descriptors like "@every 30m" and "@daily" are accepted.
func WithSchedule(schedule string) Option {
	return func(s *Sweeper) error {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return errors.Join(ErrInvalidSchedule, err)
		}

		s.schedule = schedule

		return nil
	}
}

// WithPenaltyPolicy replaces lending.DefaultPenaltyPolicy.
func WithPenaltyPolicy(policy lending.PenaltyPolicy) Option {
	return func(s *Sweeper) error {
		s.policy = policy
		return nil
	}
}

// WithLogger sets the logger for sweep summaries.
func WithLogger(logger lending.Logger) Option {
	return func(s *Sweeper) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. It takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *Sweeper) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the overdue gauges.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *Sweeper) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewSweeper creates a Sweeper reading loans from the repository.
func NewSweeper(loans lending.LoanRepository, clock lending.Clock, options ...Option) (*Sweeper, error) {
	s := &Sweeper{
		loans:    loans,
		clock:    clock,
		policy:   lending.DefaultPenaltyPolicy(),
		schedule: DefaultSchedule,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RunOnce performs one sweep synchronously.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	asOf := s.clock.Now()

	overdue, err := s.loans.ListOverdue(ctx, asOf)
	if err != nil {
		s.incrementCounter(ctx, SweepFailuresMetric)
		s.logError(ctx, logMsgSweepFailed, logAttrError, err.Error())

		return Report{}, err
	}

	report := Report{AsOf: asOf, OverdueLoans: len(overdue)}

	for _, loan := range overdue {
		report.PenaltyTotal += s.policy.Compute(loan.DueAt, asOf)

		if report.OldestDueAt.IsZero() || loan.DueAt.Before(report.OldestDueAt) {
			report.OldestDueAt = loan.DueAt
		}
	}

	duration := time.Since(start)
	s.recordValue(ctx, OverdueLoansMetric, float64(report.OverdueLoans))
	s.recordValue(ctx, OverduePenaltyCentsMetric, float64(report.PenaltyTotal.Cents()))
	s.recordDuration(ctx, SweepDurationMetric, duration)

	s.logInfo(ctx, logMsgSweepCompleted,
		logAttrOverdueLoans, report.OverdueLoans,
		logAttrPenaltyTotal, report.PenaltyTotal.String(),
		logAttrOldestDueAt, report.OldestDueAt,
		logAttrDurationMS, strconv.FormatInt(duration.Milliseconds(), 10),
	)

	return report, nil
}

// Start schedules the sweep in the background. ctx is the parent of every run.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()

		_, _ = s.RunOnce(runCtx)
	}); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}

	c.Start()
	s.cron = c
	s.logInfo(ctx, logMsgSweepScheduled, logAttrSchedule, s.schedule)

	return nil
}

// Stop unschedules the sweep and waits for a running sweep to finish, or for ctx to be done.
func (s *Sweeper) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}

	s.logInfo(ctx, logMsgSweepStopped)
}

func (s *Sweeper) recordValue(ctx context.Context, metric string, value float64) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, nil)
		return
	}

	s.metricsCollector.RecordValue(metric, value, nil)
}

func (s *Sweeper) recordDuration(ctx context.Context, metric string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, nil)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, nil)
}

func (s *Sweeper) incrementCounter(ctx context.Context, metric string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, nil)
		return
	}

	s.metricsCollector.IncrementCounter(metric, nil)
}

func (s *Sweeper) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sweeper) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
