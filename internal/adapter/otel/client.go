package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// TracingDirectory wraps the client-side domain.TenantDirectory.
type TracingDirectory struct {
	next   domain.TenantDirectory
	tracer trace.Tracer
}

var _ domain.TenantDirectory = (*TracingDirectory)(nil)

func NewTracingDirectory(next domain.TenantDirectory) *TracingDirectory {
	return &TracingDirectory{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (d *TracingDirectory) GetBySlug(ctx context.Context, slug string) (_ domain.Tenant, err error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.GetBySlug",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tenant.slug", slug)),
	)
	defer func() { endSpan(span, err) }()

	t, err := d.next.GetBySlug(ctx, slug)
	if err == nil {
		span.SetAttributes(attribute.String("tenant.id", t.ID))
	}
	return t, err
}

func (d *TracingDirectory) CheckSlug(ctx context.Context, slug string) (_ domain.SlugAvailability, err error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.CheckSlug",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("tenant.slug", slug)),
	)
	defer func() { endSpan(span, err) }()

	res, err := d.next.CheckSlug(ctx, slug)
	if err == nil {
		span.SetAttributes(attribute.Bool("slug.available", res.Available))
	}
	return res, err
}

// TracingRecords wraps the client-side repository of one collection.
type TracingRecords[T domain.Entity] struct {
	next       domain.Repository[T]
	collection string
	tracer     trace.Tracer
}

func NewTracingRecords[T domain.Entity](collection string, next domain.Repository[T]) *TracingRecords[T] {
	return &TracingRecords[T]{
		next:       next,
		collection: collection,
		tracer:     otel.Tracer(tracerName),
	}
}

func (r *TracingRecords[T]) start(ctx context.Context, op, tenantID string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "Repository."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("record.collection", r.collection),
		),
	)
}

func (r *TracingRecords[T]) List(ctx context.Context, tenantID string, filter domain.Filter) (_ []T, err error) {
	ctx, span := r.start(ctx, "List", tenantID)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("query.key", filter.Key()))
	items, err := r.next.List(ctx, tenantID, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(items)))
	}
	return items, err
}

func (r *TracingRecords[T]) Get(ctx context.Context, tenantID, id string) (_ T, err error) {
	ctx, span := r.start(ctx, "Get", tenantID)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", id))
	return r.next.Get(ctx, tenantID, id)
}

func (r *TracingRecords[T]) Create(ctx context.Context, tenantID string, entity T) (_ T, err error) {
	ctx, span := r.start(ctx, "Create", tenantID)
	defer func() { endSpan(span, err) }()

	return r.next.Create(ctx, tenantID, entity)
}

func (r *TracingRecords[T]) Update(ctx context.Context, tenantID, id string, patch map[string]any) (_ T, err error) {
	ctx, span := r.start(ctx, "Update", tenantID)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", id))
	return r.next.Update(ctx, tenantID, id, patch)
}

func (r *TracingRecords[T]) Delete(ctx context.Context, tenantID, id string) (err error) {
	ctx, span := r.start(ctx, "Delete", tenantID)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", id))
	return r.next.Delete(ctx, tenantID, id)
}
