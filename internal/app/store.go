package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// StoreState is a snapshot of a Store.
type StoreState[T domain.Entity] struct {
	TenantID string // "" while unbound
	Results  []T
	Loading  bool
	Err      error
}

// Bound reports whether the store is bound to a tenant.
func (s StoreState[T]) Bound() bool { return s.TenantID != "" }

// binding is everything a store holds for one tenant. A store is unbound when
// its binding is nil; a new binding is a new pointer, so work started under
// an older binding can tell it has been replaced.
type binding[T domain.Entity] struct {
	tenantID string
	repo     *ScopedRepository[T]
	ns       Namespace
}

// Store holds the fetched results of one collection for the bound tenant,
// with a short-lived result cache in front of the repository.
//
// Failures never panic: they are recorded in the error field of the state
// and also returned. Using an unbound store records
// domain.ErrTenantNotInitialized.
type Store[T domain.Entity] struct {
	collection string
	ttl        time.Duration
	base       domain.Repository[T]
	results    *ResultCache
	logger     *slog.Logger

	mu       sync.Mutex
	binding  *binding[T]
	items    []T
	filtered bool // items came from a filtered query
	loading  bool
	err      error
}

func NewStore[T domain.Entity](collection string, base domain.Repository[T], results *ResultCache, ttl time.Duration, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		collection: collection,
		ttl:        ttl,
		base:       base,
		results:    results,
		logger:     logger.With("collection", collection),
	}
}

// --- Binding ---

// InitializeTenant binds the store to tenantID in one step: results and
// error are cleared, the repository and cache namespace are replaced, and the
// previous tenant's namespace is invalidated. Binding to the tenant already
// bound is a no-op; an empty id releases the store.
func (s *Store[T]) InitializeTenant(ctx context.Context, tenantID string) {
	if tenantID == "" {
		s.Release(ctx)
		return
	}

	s.mu.Lock()
	prev := s.binding
	if prev != nil && prev.tenantID == tenantID {
		s.mu.Unlock()
		return
	}
	s.binding = &binding[T]{
		tenantID: tenantID,
		repo:     Scope(s.base, Fixed(tenantID)),
		ns:       s.results.Namespace(tenantID, s.collection, s.ttl),
	}
	s.items = nil
	s.filtered = false
	s.err = nil
	s.loading = false
	s.mu.Unlock()

	if prev != nil {
		prev.ns.Invalidate(ctx)
	}
	s.logger.Debug("store bound", "tenant_id", tenantID)
}

// Release unbinds the store and drops its results.
func (s *Store[T]) Release(ctx context.Context) {
	s.mu.Lock()
	prev := s.binding
	s.binding = nil
	s.items = nil
	s.filtered = false
	s.err = nil
	s.loading = false
	s.mu.Unlock()

	if prev != nil {
		prev.ns.Invalidate(ctx)
	}
}

// TenantID returns the bound tenant id, or "".
func (s *Store[T]) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil {
		return ""
	}
	return s.binding.tenantID
}

// --- Queries ---

// Fetch loads the records matching filter, from the result cache when
// possible, and makes them the store's results. A fetch whose binding was
// replaced before it completed returns domain.ErrSuperseded and changes
// nothing.
func (s *Store[T]) Fetch(ctx context.Context, filter domain.Filter) ([]T, error) {
	b, err := s.begin(true)
	if err != nil {
		return nil, err
	}

	key := filter.Key()
	var cached []T
	if b.ns.Get(ctx, key, &cached) {
		items := s.owned(b.tenantID, cached)
		if err := s.commit(b, items, len(filter) > 0); err != nil {
			return nil, err
		}
		return slices.Clone(items), nil
	}

	gen := b.ns.Generation()
	items, err := b.repo.List(ctx, filter)
	if err != nil {
		err = fmt.Errorf("fetching %s: %w", s.collection, err)
		s.fail(b, err)
		return nil, err
	}
	items = s.owned(b.tenantID, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return nil, domain.ErrSuperseded
	}
	b.ns.Put(ctx, key, gen, items)
	s.items = items
	s.filtered = len(filter) > 0
	s.loading = false
	s.err = nil
	return slices.Clone(items), nil
}

// Get fetches one record by id without touching the results.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	b, err := s.begin(false)
	if err != nil {
		return zero, err
	}
	item, err := b.repo.Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("getting %s %q: %w", s.collection, id, err)
	}
	if owned := s.owned(b.tenantID, []T{item}); len(owned) == 0 {
		return zero, domain.ErrRecordNotFound
	}
	return item, nil
}

// --- Mutations ---

// Create stores entity for the bound tenant. The result is appended only
// when the loaded results are unfiltered; a filtered list is left as fetched
// since the new record may not match the filter.
func (s *Store[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	b, err := s.begin(false)
	if err != nil {
		return zero, err
	}
	created, err := b.repo.Create(ctx, entity)
	if err != nil {
		return zero, s.mutationFailed(b, "create", err)
	}

	s.mutated(ctx, b, func(items []T) []T {
		if s.filtered {
			return items
		}
		return append(items, created)
	})
	return created, nil
}

// Update applies patch to the record id and replaces it in the results, even
// when the loaded results were filtered and the record no longer matches.
func (s *Store[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	b, err := s.begin(false)
	if err != nil {
		return zero, err
	}
	updated, err := b.repo.Update(ctx, id, patch)
	if err != nil {
		return zero, s.mutationFailed(b, "update", err)
	}

	s.mutated(ctx, b, func(items []T) []T {
		for i := range items {
			if items[i].Meta().ID == id {
				items[i] = updated
			}
		}
		return items
	})
	return updated, nil
}

// Delete removes the record id and drops it from the results.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	b, err := s.begin(false)
	if err != nil {
		return err
	}
	if err := b.repo.Delete(ctx, id); err != nil {
		return s.mutationFailed(b, "delete", err)
	}

	s.mutated(ctx, b, func(items []T) []T {
		return slices.DeleteFunc(items, func(item T) bool { return item.Meta().ID == id })
	})
	return nil
}

// --- State ---

// State returns a snapshot of the store.
func (s *Store[T]) State() StoreState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := StoreState[T]{
		Results: slices.Clone(s.items),
		Loading: s.loading,
		Err:     s.err,
	}
	if s.binding != nil {
		st.TenantID = s.binding.tenantID
	}
	return st
}

func (s *Store[T]) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

func (s *Store[T]) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// --- Internals ---

// begin returns the current binding, or records and returns
// domain.ErrTenantNotInitialized.
func (s *Store[T]) begin(loading bool) (*binding[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil {
		s.err = domain.ErrTenantNotInitialized
		return nil, domain.ErrTenantNotInitialized
	}
	if loading {
		s.loading = true
		s.err = nil
	}
	return s.binding, nil
}

func (s *Store[T]) commit(b *binding[T], items []T, filtered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return domain.ErrSuperseded
	}
	s.items = items
	s.filtered = filtered
	s.loading = false
	s.err = nil
	return nil
}

func (s *Store[T]) fail(b *binding[T], err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return
	}
	s.loading = false
	s.err = err
}

func (s *Store[T]) mutationFailed(b *binding[T], op string, err error) error {
	merr := &domain.MutationError{Op: op, Collection: s.collection, Err: err}
	s.fail(b, merr)
	return merr
}

// mutated invalidates the namespace before the results are updated, so the
// next fetch goes to the repository. update runs with s.mu held.
func (s *Store[T]) mutated(ctx context.Context, b *binding[T], update func([]T) []T) {
	b.ns.Invalidate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != b {
		return
	}
	s.items = update(slices.Clone(s.items))
	s.err = nil
}

// owned drops records that do not belong to tenantID.
func (s *Store[T]) owned(tenantID string, items []T) []T {
	out := items[:0:0]
	for _, item := range items {
		if got := item.Meta().BarbershopID; got != tenantID {
			s.logger.Warn("dropping record of another tenant",
				"tenant_id", tenantID, "record_tenant_id", got, "record_id", item.Meta().ID)
			continue
		}
		out = append(out, item)
	}
	return out
}
