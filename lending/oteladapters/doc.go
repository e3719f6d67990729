// Package oteladapters plugs OpenTelemetry into the lending observability interfaces.
//
// The adapters live in their own module so the core lending module stays free of
// OpenTelemetry dependencies:
//   - SlogBridgeLogger and OTelLogger implement lending.ContextualLogger
//   - MetricsCollector implements lending.ContextualMetricsCollector
//   - TracingCollector implements lending.TracingCollector
package oteladapters
