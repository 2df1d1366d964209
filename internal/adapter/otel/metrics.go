package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChangeMetrics counts processed change notifications by kind.
type ChangeMetrics struct {
	changes metric.Int64Counter
}

// NewChangeMetrics registers the barberiq.changes counter on mp, or on the
// global MeterProvider when mp is nil.
func NewChangeMetrics(mp metric.MeterProvider) (*ChangeMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	counter, err := mp.Meter(tracerName).Int64Counter("barberiq.changes",
		metric.WithDescription("Change notifications processed, by change type."),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating change counter: %w", err)
	}
	return &ChangeMetrics{changes: counter}, nil
}

// Record counts one processed change.
func (m *ChangeMetrics) Record(ctx context.Context, change string) {
	m.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("change.type", change)))
}
