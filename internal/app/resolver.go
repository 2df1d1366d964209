package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Resolver turns a slug into a Tenant: cache first, then the tenant directory.
type Resolver struct {
	dir    domain.TenantDirectory
	cache  *TenantCache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverTTL sets the TTL of cache entries written after a lookup.
func WithResolverTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(dir domain.TenantDirectory, cache *TenantCache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dir:    dir,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the tenant addressed by slug. It caches the tenant entry but
// leaves the current-tenant keys to the TenantContext that commits it.
//
// A malformed slug fails with *domain.SlugFormatError before any lookup. A
// tenant the directory does not know fails with an error matching
// domain.ErrTenantNotFound. Any other failure is a *domain.ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, slug string) (domain.Tenant, error) {
	if err := domain.CheckSlug(slug); err != nil {
		return domain.Tenant{}, err
	}

	if t, ok := r.cache.Get(slug); ok {
		return t, nil
	}

	// The shared lookup outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := r.group.DoChan(slug, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), slug)
	})
	select {
	case <-ctx.Done():
		return domain.Tenant{}, &domain.ResolutionError{Slug: slug, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return domain.Tenant{}, res.Err
		}
		return res.Val.(domain.Tenant).Clone(), nil
	}
}

func (r *Resolver) fetch(ctx context.Context, slug string) (domain.Tenant, error) {
	t, err := r.dir.GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		return domain.Tenant{}, fmt.Errorf("resolving %q: %w", slug, domain.ErrTenantNotFound)
	case err != nil:
		r.logger.Warn("tenant resolution failed", "slug", slug, "error", err)
		return domain.Tenant{}, &domain.ResolutionError{Slug: slug, Err: err}
	case t.ID == "":
		return domain.Tenant{}, &domain.ResolutionError{Slug: slug, Err: errors.New("directory returned a tenant without id")}
	}

	r.cache.SetEntry(slug, t, r.ttl)
	return t, nil
}

// CheckSlugAvailability asks the directory whether slug is free. A malformed
// slug is reported unavailable with the validation message, without a lookup.
func (r *Resolver) CheckSlugAvailability(ctx context.Context, slug string) (domain.SlugAvailability, error) {
	if v := domain.ValidateSlugFormat(slug); !v.Valid {
		return domain.SlugAvailability{Available: false, Message: v.Message}, nil
	}
	res, err := r.dir.CheckSlug(ctx, slug)
	if err != nil {
		return domain.SlugAvailability{}, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return res, nil
}
