package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// ChangeJobArgs carries a backend change notification through the queue.
// River serializes it as JSON into its job table. It snapshots the tenant at
// publish time, so the worker never needs to query the database.
type ChangeJobArgs struct {
	Change   string `json:"change"`
	TenantID string `json:"tenant_id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Plan     string `json:"plan"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (ChangeJobArgs) Kind() string { return "barberiq.change" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a change notification as an async job.
func (p *Publisher) Publish(ctx context.Context, change domain.Change, tenant domain.Tenant) error {
	_, err := p.client.Insert(ctx, ChangeJobArgs{
		Change:   string(change),
		TenantID: tenant.ID,
		Slug:     tenant.Slug,
		Name:     tenant.Name,
		Plan:     string(tenant.PlanType),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing %s job: %w", change, err)
	}
	return nil
}
