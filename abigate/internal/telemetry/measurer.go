package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	Counter   = metric.Int64Counter
	Histogram = metric.Int64Histogram
)

// Measurer counts operations and records their duration in milliseconds.
// A single Measurer may be shared; each measurement keeps its own start time.
type Measurer struct {
	counter   Counter
	histogram Histogram
}

func NewMeasurer(meter Meter, name string) (*Measurer, error) {
	counter, err := meter.Int64Counter(name)
	if err != nil {
		return nil, err
	}
	histogram, err := meter.Int64Histogram(name+".duration", metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &Measurer{
		counter:   counter,
		histogram: histogram,
	}, nil
}

// Start begins a measurement; the returned func records it.
func (m *Measurer) Start() func(ctx context.Context, attrs ...attribute.KeyValue) {
	startTime := time.Now()
	return func(ctx context.Context, attrs ...attribute.KeyValue) {
		opt := metric.WithAttributeSet(attribute.NewSet(attrs...))
		m.counter.Add(ctx, 1, opt)
		m.histogram.Record(ctx, time.Since(startTime).Milliseconds(), opt)
	}
}
