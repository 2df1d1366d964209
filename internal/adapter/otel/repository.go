package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// TracingRepository wraps a domain.TenantRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingRepository struct {
	next   domain.TenantRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.TenantRepository.
var _ domain.TenantRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.TenantRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, tenant domain.Tenant) (err error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Create",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.slug", tenant.Slug),
			attribute.String("tenant.plan", string(tenant.PlanType)),
		),
	)
	defer func() { endSpan(span, err) }()

	return r.next.Create(ctx, tenant)
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (_ domain.Tenant, err error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetByID",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer func() { endSpan(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingRepository) GetBySlug(ctx context.Context, slug string) (_ domain.Tenant, err error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.GetBySlug",
		trace.WithAttributes(attribute.String("tenant.slug", slug)),
	)
	defer func() { endSpan(span, err) }()

	return r.next.GetBySlug(ctx, slug)
}

func (r *TracingRepository) List(ctx context.Context, filter domain.ListFilter) (_ []domain.Tenant, err error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer func() { endSpan(span, err) }()

	if filter.Plan != nil {
		span.SetAttributes(attribute.String("filter.plan", string(*filter.Plan)))
	}

	tenants, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

func (r *TracingRepository) Update(ctx context.Context, tenant domain.Tenant) (err error) {
	ctx, span := r.tracer.Start(ctx, "TenantRepository.Update",
		trace.WithAttributes(
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.plan", string(tenant.PlanType)),
		),
	)
	defer func() { endSpan(span, err) }()

	return r.next.Update(ctx, tenant)
}

// --- Records ---

// TracingRecordRepository wraps a domain.RecordRepository with tracing.
type TracingRecordRepository struct {
	next   domain.RecordRepository
	tracer trace.Tracer
}

var _ domain.RecordRepository = (*TracingRecordRepository)(nil)

func NewTracingRecordRepository(next domain.RecordRepository) *TracingRecordRepository {
	return &TracingRecordRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRecordRepository) start(ctx context.Context, op, tenantID, collection string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "RecordRepository."+op,
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("record.collection", collection),
		),
	)
}

func (r *TracingRecordRepository) Insert(ctx context.Context, rec domain.StoredRecord) (err error) {
	ctx, span := r.start(ctx, "Insert", rec.BarbershopID, rec.Collection)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", rec.ID))
	return r.next.Insert(ctx, rec)
}

func (r *TracingRecordRepository) Get(ctx context.Context, tenantID, collection, id string) (_ domain.StoredRecord, err error) {
	ctx, span := r.start(ctx, "Get", tenantID, collection)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", id))
	return r.next.Get(ctx, tenantID, collection, id)
}

func (r *TracingRecordRepository) List(ctx context.Context, tenantID, collection string) (_ []domain.StoredRecord, err error) {
	ctx, span := r.start(ctx, "List", tenantID, collection)
	defer func() { endSpan(span, err) }()

	recs, err := r.next.List(ctx, tenantID, collection)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(recs)))
	}
	return recs, err
}

func (r *TracingRecordRepository) Update(ctx context.Context, rec domain.StoredRecord) (err error) {
	ctx, span := r.start(ctx, "Update", rec.BarbershopID, rec.Collection)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", rec.ID))
	return r.next.Update(ctx, rec)
}

func (r *TracingRecordRepository) Delete(ctx context.Context, tenantID, collection, id string) (err error) {
	ctx, span := r.start(ctx, "Delete", tenantID, collection)
	defer func() { endSpan(span, err) }()

	span.SetAttributes(attribute.String("record.id", id))
	return r.next.Delete(ctx, tenantID, collection, id)
}
