// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for client metrics
const MeterName = "shopunion"

// Metric attribute keys
var (
	AttrPlatform  = attribute.Key("platform")
	AttrAPIMethod = attribute.Key("api_method")
	AttrOutcome   = attribute.Key("outcome")
)

// Outcome values for AttrOutcome
const (
	OutcomeSuccess   = "success"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
)

// MetricsError describes a failure while building instruments.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewAPIMetrics", Err: "meter cannot be nil"}

// Counter wraps an Int64Counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter instrument
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(
		name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc adds one to the counter
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram wraps a Float64Histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram instrument
func NewHistogram(meter metric.Meter, name, description, unit string) (*Histogram, error) {
	h, err := meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return &Histogram{histogram: h}, nil
}

// Record records a value
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// APIMetrics tracks outbound affiliate platform requests.
type APIMetrics struct {
	requestsTotal   *Counter
	requestDuration *Histogram
}

// NewAPIMetrics creates the request counter and latency histogram on meter
func NewAPIMetrics(meter metric.Meter) (*APIMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	requests, err := NewCounter(
		meter,
		"shopunion_api_requests_total",
		"Total number of affiliate platform API requests",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(
		meter,
		"shopunion_api_request_duration_seconds",
		"Affiliate platform API request latency",
		"s",
	)
	if err != nil {
		return nil, err
	}

	return &APIMetrics{requestsTotal: requests, requestDuration: duration}, nil
}

// NewGlobalAPIMetrics builds APIMetrics on the global meter provider
func NewGlobalAPIMetrics() (*APIMetrics, error) {
	return NewAPIMetrics(otel.GetMeterProvider().Meter(MeterName))
}

// RecordRequest records one finished request
func (m *APIMetrics) RecordRequest(ctx context.Context, platform, apiMethod, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPlatform.String(platform),
		AttrAPIMethod.String(apiMethod),
		AttrOutcome.String(outcome),
	}
	m.requestsTotal.Inc(ctx, attrs...)
	m.requestDuration.Record(ctx, elapsed.Seconds(), attrs...)
}
