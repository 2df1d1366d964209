package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/barberiq/internal/domain"
)

var _ domain.EventPublisher = (*TracingPublisher)(nil)

// TracingPublisher opens a producer span per change notification. The span is
// named after the change ("publish record.created") so that each kind of
// change groups on its own in a trace backend.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{next: next, tracer: otel.Tracer(tracerName)}
}

func (p *TracingPublisher) Publish(ctx context.Context, change domain.Change, tenant domain.Tenant) (err error) {
	ctx, span := p.tracer.Start(ctx, "publish "+string(change),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(changeAttributes(change, tenant)...),
	)
	defer func() { endSpan(span, err) }()

	return p.next.Publish(ctx, change, tenant)
}

func changeAttributes(change domain.Change, tenant domain.Tenant) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("change.type", string(change)),
		attribute.String("tenant.id", tenant.ID),
		attribute.String("tenant.slug", tenant.Slug),
		attribute.String("tenant.plan", string(tenant.PlanType)),
	}
}
