package app

import (
	"context"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// ScopedRepository is a domain.Repository with the tenant id supplied
// implicitly. The id is read from the accessor on every call; when it is
// empty the call fails with domain.ErrTenantNotInitialized and the base
// repository is not touched.
type ScopedRepository[T domain.Entity] struct {
	base     domain.Repository[T]
	tenantID func() string
}

// Scope wraps base so every call is scoped to the tenant returned by tenantID.
func Scope[T domain.Entity](base domain.Repository[T], tenantID func() string) *ScopedRepository[T] {
	return &ScopedRepository[T]{base: base, tenantID: tenantID}
}

// Fixed returns an accessor that always yields id.
func Fixed(id string) func() string {
	return func() string { return id }
}

func (r *ScopedRepository[T]) current() (string, error) {
	id := r.tenantID()
	if id == "" {
		return "", domain.ErrTenantNotInitialized
	}
	return id, nil
}

func (r *ScopedRepository[T]) List(ctx context.Context, filter domain.Filter) ([]T, error) {
	id, err := r.current()
	if err != nil {
		return nil, err
	}
	return r.base.List(ctx, id, filter)
}

func (r *ScopedRepository[T]) Get(ctx context.Context, entityID string) (T, error) {
	id, err := r.current()
	if err != nil {
		var zero T
		return zero, err
	}
	return r.base.Get(ctx, id, entityID)
}

func (r *ScopedRepository[T]) Create(ctx context.Context, entity T) (T, error) {
	id, err := r.current()
	if err != nil {
		var zero T
		return zero, err
	}
	return r.base.Create(ctx, id, entity)
}

func (r *ScopedRepository[T]) Update(ctx context.Context, entityID string, patch map[string]any) (T, error) {
	id, err := r.current()
	if err != nil {
		var zero T
		return zero, err
	}
	return r.base.Update(ctx, id, entityID, patch)
}

func (r *ScopedRepository[T]) Delete(ctx context.Context, entityID string) error {
	id, err := r.current()
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, id, entityID)
}
