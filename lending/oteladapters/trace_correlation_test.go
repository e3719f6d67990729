package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrMariodude/LibraCore/app/lendingservice"
	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/lending/oteladapters"
)

func Test_LendingService_WithOpenTelemetryAdapters(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()

	spanExporter := tracetest.NewInMemoryExporter()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter))
	defer func() { _ = tracerProvider.Shutdown(ctx) }()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	var logs bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler("lending", slog.NewJSONHandler(&logs, nil))

	store, err := memengine.NewStore()
	require.NoError(t, err)

	service, err := lendingservice.NewService(
		store,
		lendingservice.WithClock(lending.NewManualClock(fakeClock)),
		lendingservice.WithContextualLogger(logger),
		lendingservice.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("lending"))),
		lendingservice.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("lending"))),
	)
	require.NoError(t, err)

	// arrange
	item, err := service.AddItem(ctx, "Learning Domain-Driven Design", "Vlad Khononov", "software", fakeClock, 1)
	require.NoError(t, err)

	// act
	_, firstErr := service.Checkout(ctx, item.ID, "alice", fakeClock.Add(14*24*time.Hour))
	_, secondErr := service.Checkout(ctx, item.ID, "bob", fakeClock.Add(14*24*time.Hour))

	// assert
	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, lending.ErrNoCopiesAvailable)

	spans := spanExporter.GetSpans()
	require.Len(t, spans, 3)
	assertSpanHasAttribute(t, spans[0], "command_type", "AddItem")
	assertSpanHasAttribute(t, spans[2], "outcome", "rejected")

	rejected := findCounterMetric(t, collect(t, reader), "commandhandler_rejected_operations_total")
	require.Len(t, rejected.DataPoints, 1)
	assert.Equal(t, int64(1), rejected.DataPoints[0].Value)

	assert.Contains(t, logs.String(), `"command_type":"CheckoutItem"`)
}
