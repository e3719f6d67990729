package lendingservice

import (
	"errors"

	"github.com/MrMariodude/LibraCore/app/shared/shell"
	"github.com/MrMariodude/LibraCore/lending"
)

var (
	// ErrNilClock is returned when WithClock gets a nil clock.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrInvalidPenaltyPolicy is returned when a policy has negative fees.
	ErrInvalidPenaltyPolicy = errors.New("penalty fees must not be negative")
)

// Option defines a functional option for configuring the Service.
type Option func(*Service) error

// WithClock sets the clock all lifecycle decisions and loan views read.
func WithClock(clock lending.Clock) Option {
	return func(s *Service) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithPenaltyPolicy replaces lending.DefaultPenaltyPolicy.
func WithPenaltyPolicy(policy lending.PenaltyPolicy) Option {
	return func(s *Service) error {
		if policy.BaseFee < 0 || policy.PerDiemFee < 0 {
			return ErrInvalidPenaltyPolicy
		}

		s.policy = policy

		return nil
	}
}

// WithLogger sets the logger for command and query logs.
func WithLogger(logger lending.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. It takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(s *Service) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for handler and retry metrics.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(s *Service) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for handler spans.
func WithTracing(collector lending.TracingCollector) Option {
	return func(s *Service) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithRetryOptions configures the optimistic concurrency retries of all commands.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = opts
		return nil
	}
}
