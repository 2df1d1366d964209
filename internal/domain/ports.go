package domain

import (
	"context"
	"time"
)

// --- Client-side ports ---

// SlugAvailability is the backend's answer to a slug availability check.
type SlugAvailability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// TenantDirectory is the backend collaborator that knows every tenant.
// GetBySlug returns ErrTenantNotFound when the backend authoritatively has no
// such tenant; any other error is a transport failure.
type TenantDirectory interface {
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
	CheckSlug(ctx context.Context, slug string) (SlugAvailability, error)
}

// Repository is the per-entity backend collaborator. The tenant id is an
// explicit scoping parameter; how it reaches the backend is up to the
// implementation.
type Repository[T Entity] interface {
	List(ctx context.Context, tenantID string, filter Filter) ([]T, error)
	Get(ctx context.Context, tenantID, id string) (T, error)
	Create(ctx context.Context, tenantID string, entity T) (T, error)
	Update(ctx context.Context, tenantID, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// Storage is durable local key-value storage.
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// QueryCache caches encoded query results with a TTL.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TransitionValidator checks an Event against the current State and returns
// the destination State.
type TransitionValidator interface {
	Apply(ctx context.Context, current State, event Event) (State, error)
}

// --- Backend ports ---

// TenantRepository defines the persistence contract for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) error
}

// ListFilter holds optional criteria for listing tenants.
type ListFilter struct {
	Plan   *PlanType
	Limit  int
	Offset int
}

// StoredRecord is a tenant-owned entity as the backend persists it.
type StoredRecord struct {
	ID           string
	BarbershopID string
	Collection   string
	Data         map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordRepository persists tenant-owned entities of every collection.
type RecordRepository interface {
	Insert(ctx context.Context, rec StoredRecord) error
	Get(ctx context.Context, tenantID, collection, id string) (StoredRecord, error)
	List(ctx context.Context, tenantID, collection string) ([]StoredRecord, error)
	Update(ctx context.Context, rec StoredRecord) error
	Delete(ctx context.Context, tenantID, collection, id string) error
}

// Change names a backend change notification.
type Change string

const (
	ChangeTenantRegistered Change = "tenant.registered"
	ChangeSettingsUpdated  Change = "tenant.settings_updated"
	ChangeRecordCreated    Change = "record.created"
	ChangeRecordUpdated    Change = "record.updated"
	ChangeRecordDeleted    Change = "record.deleted"
)

// EventPublisher defines the contract for emitting change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, change Change, tenant Tenant) error
}
