package backend

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// reservedFields are owned by the backend and ignored in request bodies.
var reservedFields = []string{"id", "barbershopId", "createdAt", "updatedAt"}

// RecordService stores the tenant-owned records of every collection as JSON
// documents. Every operation is scoped by the tenant id it is given.
type RecordService struct {
	tenants   domain.TenantRepository
	records   domain.RecordRepository
	publisher domain.EventPublisher
}

func NewRecordService(tenants domain.TenantRepository, records domain.RecordRepository, publisher domain.EventPublisher) *RecordService {
	return &RecordService{
		tenants:   tenants,
		records:   records,
		publisher: publisher,
	}
}

// Document returns the JSON shape of rec: its data plus the record header.
func Document(rec domain.StoredRecord) map[string]any {
	doc := make(map[string]any, len(rec.Data)+len(reservedFields))
	maps.Copy(doc, rec.Data)
	doc["id"] = rec.ID
	doc["barbershopId"] = rec.BarbershopID
	doc["createdAt"] = rec.CreatedAt.UTC().Format(time.RFC3339Nano)
	doc["updatedAt"] = rec.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return doc
}

// List returns the records of a collection whose fields equal every value in
// filter. Values are compared in their text form, so "true" matches a
// boolean field.
func (s *RecordService) List(ctx context.Context, tenantID, collection string, filter domain.Filter) ([]domain.StoredRecord, error) {
	if _, err := s.scope(ctx, tenantID, collection); err != nil {
		return nil, err
	}
	recs, err := s.records.List(ctx, tenantID, collection)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(recs, func(rec domain.StoredRecord) bool {
		return !matches(Document(rec), filter)
	}), nil
}

func matches(doc map[string]any, filter domain.Filter) bool {
	for k, want := range filter {
		v, ok := doc[k]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

func (s *RecordService) Get(ctx context.Context, tenantID, collection, id string) (domain.StoredRecord, error) {
	if _, err := s.scope(ctx, tenantID, collection); err != nil {
		return domain.StoredRecord{}, err
	}
	return s.records.Get(ctx, tenantID, collection, id)
}

// Create stores data as a new record of the tenant.
func (s *RecordService) Create(ctx context.Context, tenantID, collection string, data map[string]any) (domain.StoredRecord, error) {
	tenant, err := s.scope(ctx, tenantID, collection)
	if err != nil {
		return domain.StoredRecord{}, err
	}

	now := time.Now().UTC()
	rec := domain.StoredRecord{
		ID:           uuid.NewString(),
		BarbershopID: tenantID,
		Collection:   collection,
		Data:         withoutReserved(data),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("creating %s record: %w", collection, err)
	}

	publish(ctx, s.publisher, domain.ChangeRecordCreated, tenant)
	return rec, nil
}

// Update merges patch into the record's fields.
func (s *RecordService) Update(ctx context.Context, tenantID, collection, id string, patch map[string]any) (domain.StoredRecord, error) {
	tenant, err := s.scope(ctx, tenantID, collection)
	if err != nil {
		return domain.StoredRecord{}, err
	}
	rec, err := s.records.Get(ctx, tenantID, collection, id)
	if err != nil {
		return domain.StoredRecord{}, err
	}

	if rec.Data == nil {
		rec.Data = make(map[string]any)
	}
	maps.Copy(rec.Data, withoutReserved(patch))
	rec.UpdatedAt = time.Now().UTC()

	if err := s.records.Update(ctx, rec); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("updating %s record: %w", collection, err)
	}

	publish(ctx, s.publisher, domain.ChangeRecordUpdated, tenant)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, tenantID, collection, id string) error {
	tenant, err := s.scope(ctx, tenantID, collection)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, tenantID, collection, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, domain.ChangeRecordDeleted, tenant)
	return nil
}

// scope checks the collection name and that the tenant exists.
func (s *RecordService) scope(ctx context.Context, tenantID, collection string) (domain.Tenant, error) {
	if !slices.Contains(domain.Collections, collection) {
		return domain.Tenant{}, fmt.Errorf("%w: unknown collection %q", domain.ErrInvalidInput, collection)
	}
	return s.tenants.GetByID(ctx, tenantID)
}

func withoutReserved(data map[string]any) map[string]any {
	out := maps.Clone(data)
	if out == nil {
		out = make(map[string]any)
	}
	for _, k := range reservedFields {
		delete(out, k)
	}
	return out
}
