package app_test

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// --- Mock tenant directory ---

type mockDirectory struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
	err     error
	gates   map[string]chan struct{} // GetBySlug blocks until the gate is closed
	calls   atomic.Int32
	checks  atomic.Int32
	taken   map[string]bool
}

func newMockDirectory(tenants ...domain.Tenant) *mockDirectory {
	d := &mockDirectory{
		tenants: make(map[string]domain.Tenant),
		gates:   make(map[string]chan struct{}),
		taken:   make(map[string]bool),
	}
	for _, t := range tenants {
		d.tenants[t.Slug] = t
		d.taken[t.Slug] = true
	}
	return d
}

func (d *mockDirectory) gate(slug string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan struct{})
	d.gates[slug] = ch
	return ch
}

func (d *mockDirectory) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *mockDirectory) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	d.calls.Add(1)
	d.mu.Lock()
	gate := d.gates[slug]
	d.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Tenant{}, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return domain.Tenant{}, d.err
	}
	t, ok := d.tenants[slug]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (d *mockDirectory) CheckSlug(_ context.Context, slug string) (domain.SlugAvailability, error) {
	d.checks.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return domain.SlugAvailability{}, d.err
	}
	if d.taken[slug] {
		return domain.SlugAvailability{Available: false, Message: "slug already in use"}, nil
	}
	return domain.SlugAvailability{Available: true, Message: "slug available"}, nil
}

// --- Mock entity repository ---

// mockRepo is an in-memory domain.Repository keyed by tenant id. Filters
// are matched by the fieldOf function.
type mockRepo[T domain.Entity] struct {
	mu      sync.Mutex
	data    map[string][]T // tenantID -> entities
	fieldOf func(T, string) string
	withID  func(T, domain.Record) T
	err     error
	gate    chan struct{}
	seq     int
	lists   atomic.Int32
	calls   atomic.Int32
	tenants []string // tenant id of every call, in order
}

func newMockRepo[T domain.Entity](fieldOf func(T, string) string, withID func(T, domain.Record) T) *mockRepo[T] {
	return &mockRepo[T]{
		data:    make(map[string][]T),
		fieldOf: fieldOf,
		withID:  withID,
	}
}

func (r *mockRepo[T]) seed(tenantID string, items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[tenantID] = append(r.data[tenantID], items...)
}

func (r *mockRepo[T]) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *mockRepo[T]) setGate(ch chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = ch
}

func (r *mockRepo[T]) enter(tenantID string) error {
	r.calls.Add(1)
	r.mu.Lock()
	r.tenants = append(r.tenants, tenantID)
	gate := r.gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *mockRepo[T]) calledTenants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tenants...)
}

func (r *mockRepo[T]) List(_ context.Context, tenantID string, filter domain.Filter) ([]T, error) {
	r.lists.Add(1)
	if err := r.enter(tenantID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, item := range r.data[tenantID] {
		match := true
		for k, v := range filter {
			if r.fieldOf(item, k) != v {
				match = false
			}
		}
		if match {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *mockRepo[T]) Get(_ context.Context, tenantID, id string) (T, error) {
	var zero T
	if err := r.enter(tenantID); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.data[tenantID] {
		if item.Meta().ID == id {
			return item, nil
		}
	}
	return zero, domain.ErrRecordNotFound
}

func (r *mockRepo[T]) Create(_ context.Context, tenantID string, entity T) (T, error) {
	var zero T
	if err := r.enter(tenantID); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now().UTC()
	created := r.withID(entity, domain.Record{
		ID:           fmt.Sprintf("%s-new-%d", tenantID, r.seq),
		BarbershopID: tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	r.data[tenantID] = append(r.data[tenantID], created)
	return created, nil
}

func (r *mockRepo[T]) Update(_ context.Context, tenantID, id string, patch map[string]any) (T, error) {
	var zero T
	if err := r.enter(tenantID); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.data[tenantID] {
		if item.Meta().ID == id {
			meta := item.Meta()
			meta.UpdatedAt = time.Now().UTC()
			updated := r.withID(applyPatch(item, patch), meta)
			r.data[tenantID][i] = updated
			return updated, nil
		}
	}
	return zero, domain.ErrRecordNotFound
}

func (r *mockRepo[T]) Delete(_ context.Context, tenantID, id string) error {
	if err := r.enter(tenantID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[tenantID]
	for i, item := range items {
		if item.Meta().ID == id {
			r.data[tenantID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

// applyPatch understands the handful of fields the tests patch.
func applyPatch[T domain.Entity](item T, patch map[string]any) T {
	p := maps.Clone(patch)
	switch v := any(&item).(type) {
	case *domain.Appointment:
		if s, ok := p["status"].(string); ok {
			v.Status = domain.AppointmentStatus(s)
		}
	case *domain.Barber:
		if b, ok := p["active"].(bool); ok {
			v.Active = b
		}
		if s, ok := p["name"].(string); ok {
			v.Name = s
		}
	case *domain.Comment:
		if s, ok := p["status"].(string); ok {
			v.Status = domain.CommentStatus(s)
		}
	case *domain.Service:
		if b, ok := p["active"].(bool); ok {
			v.Active = b
		}
	}
	return item
}

// --- Fixtures ---

func appointmentField(a domain.Appointment, field string) string {
	switch field {
	case "status":
		return string(a.Status)
	case "barberId":
		return a.BarberID
	case "date":
		return a.Date
	}
	return ""
}

func barberField(b domain.Barber, field string) string {
	if field == "active" {
		return fmt.Sprint(b.Active)
	}
	return ""
}

func commentField(c domain.Comment, field string) string {
	switch field {
	case "status":
		return string(c.Status)
	case "barberId":
		return c.BarberID
	}
	return ""
}

func serviceField(s domain.Service, field string) string {
	if field == "active" {
		return fmt.Sprint(s.Active)
	}
	return ""
}

func newAppointmentRepo() *mockRepo[domain.Appointment] {
	return newMockRepo(appointmentField, func(a domain.Appointment, r domain.Record) domain.Appointment {
		a.Record = r
		return a
	})
}

func newBarberRepo() *mockRepo[domain.Barber] {
	return newMockRepo(barberField, func(b domain.Barber, r domain.Record) domain.Barber {
		b.Record = r
		return b
	})
}

func newCommentRepo() *mockRepo[domain.Comment] {
	return newMockRepo(commentField, func(c domain.Comment, r domain.Record) domain.Comment {
		c.Record = r
		return c
	})
}

func newServiceRepo() *mockRepo[domain.Service] {
	return newMockRepo(serviceField, func(s domain.Service, r domain.Record) domain.Service {
		s.Record = r
		return s
	})
}

func rec(id, tenantID string) domain.Record {
	return domain.Record{ID: id, BarbershopID: tenantID}
}
