// Package backend is the reference implementation of the tenant directory
// and the per-collection record API that barberiq clients consume.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// publish announces a change whose write is already stored. Delivery is
// best effort: a failure is logged and the write still succeeds.
func publish(ctx context.Context, pub domain.EventPublisher, change domain.Change, tenant domain.Tenant) {
	if err := pub.Publish(ctx, change, tenant); err != nil {
		slog.WarnContext(ctx, "publishing change failed",
			"change", string(change), "tenant_id", tenant.ID, "error", err)
	}
}

// TenantService orchestrates barbershop registration and settings.
type TenantService struct {
	repo      domain.TenantRepository
	publisher domain.EventPublisher
}

// NewTenantService creates a service with the given adapters.
func NewTenantService(repo domain.TenantRepository, publisher domain.EventPublisher) *TenantService {
	return &TenantService{
		repo:      repo,
		publisher: publisher,
	}
}

// Register persists a new barbershop and publishes a registration event.
// An empty slug is generated from the name.
func (s *TenantService) Register(ctx context.Context, name, slug string, plan domain.PlanType) (domain.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tenant{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if slug == "" {
		slug = domain.GenerateSlugFromName(name)
	}
	if err := domain.CheckSlug(slug); err != nil {
		return domain.Tenant{}, err
	}
	switch plan {
	case "", domain.PlanFree, domain.PlanPro:
	default:
		return domain.Tenant{}, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, plan)
	}

	// Check slug uniqueness before creating.
	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return domain.Tenant{}, &domain.SlugConflictError{Slug: slug}
	}

	tenant := domain.NewTenant(uuid.NewString(), name, slug, plan)

	if err := s.repo.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("creating tenant: %w", err)
	}

	publish(ctx, s.publisher, domain.ChangeTenantRegistered, tenant)

	return tenant, nil
}

// GetByID returns a tenant by its unique identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns the tenant addressed by slug.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	if err := domain.CheckSlug(slug); err != nil {
		return domain.Tenant{}, err
	}
	return s.repo.GetBySlug(ctx, slug)
}

// CheckSlug reports whether slug can be registered.
func (s *TenantService) CheckSlug(ctx context.Context, slug string) (domain.SlugAvailability, error) {
	if v := domain.ValidateSlugFormat(slug); !v.Valid {
		return domain.SlugAvailability{Available: false, Message: v.Message}, nil
	}
	_, err := s.repo.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		return domain.SlugAvailability{Available: false, Message: "slug already in use"}, nil
	case errors.Is(err, domain.ErrTenantNotFound):
		return domain.SlugAvailability{Available: true, Message: "slug available"}, nil
	default:
		return domain.SlugAvailability{}, fmt.Errorf("checking slug: %w", err)
	}
}

// List returns tenants matching the given filter.
func (s *TenantService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	return s.repo.List(ctx, filter)
}

// UpdateSettings shallow-merges patch into the tenant's settings.
func (s *TenantService) UpdateSettings(ctx context.Context, id string, patch domain.SettingsPatch) (domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant.Settings = tenant.Settings.Apply(patch)
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}

	publish(ctx, s.publisher, domain.ChangeSettingsUpdated, tenant)

	return tenant, nil
}
