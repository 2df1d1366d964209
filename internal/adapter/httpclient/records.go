package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.Repository[domain.Appointment] = (*Records[domain.Appointment])(nil)
	_ domain.Repository[domain.Barber]      = (*Records[domain.Barber])(nil)
	_ domain.Repository[domain.Comment]     = (*Records[domain.Comment])(nil)
	_ domain.Repository[domain.Service]     = (*Records[domain.Service])(nil)
)

// Records is the repository of one collection. The tenant id is sent as a
// path segment: /api/v1/barbershops/{tenantId}/{collection}.
type Records[T domain.Entity] struct {
	client     *Client
	collection string
}

func NewRecords[T domain.Entity](client *Client, collection string) *Records[T] {
	return &Records[T]{client: client, collection: collection}
}

func (r *Records[T]) path(tenantID string, id ...string) string {
	p := "/api/v1/barbershops/" + url.PathEscape(tenantID) + "/" + r.collection
	for _, s := range id {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// List sends each filter entry as a query parameter.
func (r *Records[T]) List(ctx context.Context, tenantID string, filter domain.Filter) ([]T, error) {
	query := make(url.Values, len(filter))
	for k, v := range filter {
		query.Set(k, v)
	}

	var out []T
	if err := r.client.do(ctx, http.MethodGet, r.path(tenantID), query, nil, &out); err != nil {
		return nil, r.translate(err)
	}
	return out, nil
}

func (r *Records[T]) Get(ctx context.Context, tenantID, id string) (T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodGet, r.path(tenantID, id), nil, nil, &out); err != nil {
		var zero T
		return zero, r.translate(err)
	}
	return out, nil
}

func (r *Records[T]) Create(ctx context.Context, tenantID string, entity T) (T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodPost, r.path(tenantID), nil, entity, &out); err != nil {
		var zero T
		return zero, r.translate(err)
	}
	return out, nil
}

func (r *Records[T]) Update(ctx context.Context, tenantID, id string, patch map[string]any) (T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodPatch, r.path(tenantID, id), nil, patch, &out); err != nil {
		var zero T
		return zero, r.translate(err)
	}
	return out, nil
}

func (r *Records[T]) Delete(ctx context.Context, tenantID, id string) error {
	return r.translate(r.client.do(ctx, http.MethodDelete, r.path(tenantID, id), nil, nil, nil))
}

func (r *Records[T]) translate(err error) error {
	if errors.Is(err, errNotFound) {
		return domain.ErrRecordNotFound
	}
	return err
}
