package memengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

const (
	metricReservations   = "lending_ledger_reservations_total"
	metricReleases       = "lending_ledger_releases_total"
	metricTxDuration     = "lending_memengine_tx_duration_seconds"
	logMsgClampedRelease = "release clamped at total copies"
	logMsgTxFinished     = "transaction finished"
	logAttrItemID        = "item_id"
	logAttrStatus        = "status"
	logAttrDurationMS    = "duration_ms"
	labelStatus          = "status"
	labelEngine          = "engine"
	engineName           = "memory"
)

const (
	statusReserved   = "reserved"
	statusNoCopies   = "no_copies"
	statusNotFound   = "not_found"
	statusReleased   = "released"
	statusClamped    = "clamped"
	statusCommitted  = "committed"
	statusRolledBack = "rolled_back"
	statusConflict   = "conflict"
)

func (s *Store) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) incrementCounter(ctx context.Context, metric, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelStatus: status, labelEngine: engineName}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s *Store) recordReservation(ctx context.Context, status string) {
	s.incrementCounter(ctx, metricReservations, status)
}

func (s *Store) recordRelease(ctx context.Context, itemID uuid.UUID, status string) {
	if status == statusClamped {
		s.logWarn(ctx, logMsgClampedRelease, logAttrItemID, itemID.String())
	}

	s.incrementCounter(ctx, metricReleases, status)
}

func (s *Store) recordTxMetrics(ctx context.Context, status string, duration time.Duration) {
	s.logDebug(ctx, logMsgTxFinished, logAttrStatus, status, logAttrDurationMS, float64(duration.Microseconds())/1000)

	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelStatus: status, labelEngine: engineName}

	if contextualCollector, ok := s.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricTxDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricTxDuration, duration, labels)
}
