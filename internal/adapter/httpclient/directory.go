package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Compile-time interface check.
var _ domain.TenantDirectory = (*Directory)(nil)

// Directory looks tenants up through the tenants API.
type Directory struct {
	client *Client
}

func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

// GetBySlug returns domain.ErrTenantNotFound when the API answers 404.
func (d *Directory) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	var t domain.Tenant
	err := d.client.do(ctx, http.MethodGet, "/api/v1/tenants/by-slug/"+url.PathEscape(slug), nil, nil, &t)
	if errors.Is(err, errNotFound) {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	if err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}

func (d *Directory) CheckSlug(ctx context.Context, slug string) (domain.SlugAvailability, error) {
	var res domain.SlugAvailability
	err := d.client.do(ctx, http.MethodGet, "/api/v1/tenants/check-slug/"+url.PathEscape(slug), nil, nil, &res)
	if err != nil {
		return domain.SlugAvailability{}, err
	}
	return res, nil
}
