// Package observe provides OpenTelemetry metric instruments for the
// enhancement and transcription pipelines.
//
// Instruments are created against a [metric.MeterProvider]. The
// package-level [DefaultMetrics] uses the global provider, which is a no-op
// unless the process installs one. Tests should use [NewMetrics] with their
// own provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all clearscribe metrics.
const meterName = "github.com/linuxmatters/clearscribe"

// Pipeline stages used as the "stage" attribute on failures.
const (
	StageValidate   = "validate"
	StageEnhance    = "enhance"
	StageTranscribe = "transcribe"
	StageExport     = "export"
)

// Metrics holds the metric instruments for the application.
type Metrics struct {
	// EnhanceDuration tracks decode-to-render time for one recording.
	EnhanceDuration metric.Float64Histogram

	// TranscribeDuration tracks backend round-trip time. Use with attribute:
	//   attribute.String("provider", ...)
	TranscribeDuration metric.Float64Histogram

	// Failures counts pipeline failures. Use with attributes:
	//   attribute.String("stage", ...), attribute.String("reason", ...)
	Failures metric.Int64Counter
}

// durationBuckets are histogram boundaries in seconds. Enhancement of long
// depositions and hosted transcription both run well past a second.
var durationBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EnhanceDuration, err = m.Float64Histogram("clearscribe.enhance.duration",
		metric.WithDescription("Time to decode, analyse and render one recording."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscribeDuration, err = m.Float64Histogram("clearscribe.transcribe.duration",
		metric.WithDescription("Latency of speech-to-text transcription by provider."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Failures, err = m.Int64Counter("clearscribe.failures",
		metric.WithDescription("Pipeline failures by stage and reason."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordEnhancement records one enhancement run. A nil receiver is a no-op.
func (m *Metrics) RecordEnhancement(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.EnhanceDuration.Record(ctx, d.Seconds())
}

// RecordTranscription records one backend call. A nil receiver is a no-op.
func (m *Metrics) RecordTranscription(ctx context.Context, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.TranscribeDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordFailure counts a failure at stage with a short reason code.
// A nil receiver is a no-op.
func (m *Metrics) RecordFailure(ctx context.Context, stage, reason string) {
	if m == nil {
		return
	}
	m.Failures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("reason", reason),
		),
	)
}
