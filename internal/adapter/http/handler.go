package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/barberiq/internal/backend"
	"github.com/neomorfeo/barberiq/internal/domain"
)

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID        string          `json:"id" doc:"Unique identifier"`
	Slug      string          `json:"slug" doc:"URL-friendly identifier"`
	Name      string          `json:"name" doc:"Barbershop name"`
	PlanType  string          `json:"planType" doc:"Subscription plan"`
	Settings  domain.Settings `json:"settings" doc:"Barbershop settings"`
	CreatedAt time.Time       `json:"createdAt" doc:"Creation timestamp"`
	UpdatedAt time.Time       `json:"updatedAt" doc:"Last update timestamp"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Slug:      t.Slug,
		Name:      t.Name,
		PlanType:  string(t.PlanType),
		Settings:  t.Settings,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

// --- Register Tenant ---

type RegisterTenantInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Barbershop name"`
		Slug string `json:"slug,omitempty" maxLength:"50" doc:"URL slug; generated from the name when empty"`
		Plan string `json:"planType,omitempty" enum:"free,pro" default:"free" doc:"Subscription plan"`
	}
}

type TenantOutput struct {
	Body TenantResponse
}

// --- Get Tenant ---

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantBySlugInput struct {
	Slug string `path:"slug" doc:"Tenant slug"`
}

// --- Check Slug ---

type CheckSlugOutput struct {
	Body struct {
		Available bool   `json:"available" doc:"Whether the slug can be registered"`
		Message   string `json:"message" doc:"Human-readable reason"`
	}
}

// --- List Tenants ---

type ListTenantsInput struct {
	Plan   string `query:"plan" required:"false" enum:"free,pro" doc:"Filter by plan"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// --- Update Settings ---

type UpdateSettingsInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body domain.SettingsPatch
}

// Register adds every barberiq API route to the Huma API.
func Register(api huma.API, tenants *backend.TenantService, records *backend.RecordService) {
	registerTenants(api, tenants)
	registerRecords(api, records)
}

func registerTenants(api huma.API, svc *backend.TenantService) {
	huma.Register(api, huma.Operation{
		OperationID: "register-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants",
		Summary:     "Register a barbershop",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *RegisterTenantInput) (*TenantOutput, error) {
		tenant, err := svc.Register(ctx, input.Body.Name, input.Body.Slug, domain.PlanType(input.Body.Plan))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*TenantOutput, error) {
		tenant, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant-by-slug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/by-slug/{slug}",
		Summary:     "Resolve a tenant by slug",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantBySlugInput) (*TenantOutput, error) {
		tenant, err := svc.GetBySlug(ctx, input.Slug)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-slug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/check-slug/{slug}",
		Summary:     "Check whether a slug is available",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantBySlugInput) (*CheckSlugOutput, error) {
		res, err := svc.CheckSlug(ctx, input.Slug)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CheckSlugOutput{}
		out.Body.Available = res.Available
		out.Body.Message = res.Message
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Plan != "" {
			p := domain.PlanType(input.Plan)
			filter.Plan = &p
		}

		tenants, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant-settings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tenants/{id}/settings",
		Summary:     "Update barbershop settings",
		Description: "Each section present in the body replaces the stored section as a whole.",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateSettingsInput) (*TenantOutput, error) {
		tenant, err := svc.UpdateSettings(ctx, input.ID, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant)}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return huma.Error404NotFound("tenant not found")
	}

	if errors.Is(err, domain.ErrRecordNotFound) {
		return huma.Error404NotFound("record not found")
	}

	var slugErr *domain.SlugConflictError
	if errors.As(err, &slugErr) {
		return huma.Error409Conflict(slugErr.Error())
	}

	var formatErr *domain.SlugFormatError
	if errors.As(err, &formatErr) {
		return huma.Error422UnprocessableEntity(formatErr.Error())
	}

	if errors.Is(err, domain.ErrInvalidInput) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
